package provider

import (
	"context"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.RateProvider.
var _ application.RateProvider = (*Fake)(nil)

type Fake struct {
	rate decimal.Decimal
}

func NewFake(rate float64) *Fake { return &Fake{rate: decimal.NewFromFloat(rate)} }

func (f *Fake) GetRate(_ context.Context, pair string) (domain.Quote, error) {
	return domain.Quote{
		Pair:       domain.Pair(pair),
		Rate:       f.rate,
		Source:     "fake",
		ObservedAt: time.Now().UTC(),
	}, nil
}
