package httpserver

import (
	"context"
	"sync"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/cache"
	"dolarcaro-service/internal/infrastructure/provider"

	"github.com/shopspring/decimal"
)

// In-memory wiring for handler tests and local smoke runs: fixed rate,
// fixed live prices, no network, no disk.

type memHistory struct {
	mu   sync.Mutex
	recs map[string][]domain.PriceRecord
}

func newMemHistory() *memHistory {
	return &memHistory{recs: make(map[string][]domain.PriceRecord)}
}

func (m *memHistory) Append(_ context.Context, key string, rec domain.PriceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[key] = append(m.recs[key], rec)
	return nil
}

func (m *memHistory) Latest(_ context.Context, key string) (domain.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.recs[key]
	if len(recs) == 0 {
		return domain.PriceRecord{}, application.ErrNotFound
	}
	return recs[len(recs)-1], nil
}

func (m *memHistory) History(_ context.Context, key string, limit int) ([]domain.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.recs[key]
	out := make([]domain.PriceRecord, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}

func (m *memHistory) Touch(_ context.Context, key string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recs[key]) == 0 {
		return application.ErrNotFound
	}
	return nil
}

type staticFetcher struct {
	origin    decimal.Decimal
	reference decimal.Decimal
}

func (f staticFetcher) Fetch(_ context.Context, p domain.Product) (domain.FetchResult, error) {
	now := time.Now().UTC()
	return domain.FetchResult{
		Origin: domain.RawPrice{
			ProductKey: p.Key, Locale: domain.LocaleOrigin,
			Amount: f.origin, SourceURL: p.OriginURL, FetchedAt: now,
		},
		Reference: domain.RawPrice{
			ProductKey: p.Key, Locale: domain.LocaleReference,
			Amount: f.reference, SourceURL: p.ReferenceURL, FetchedAt: now,
		},
	}, nil
}

// NewInMemoryService builds a fully wired PricingService on fakes. Every
// product prices at its configured fallback amounts, live, against the
// given rate.
func NewInMemoryService(rate float64) *application.PricingService {
	catalog := domain.Catalog()
	fetchers := make(map[string]application.ProductFetcher, len(catalog))
	for _, p := range catalog {
		fetchers[p.Store] = staticFetcher{origin: p.OriginFallback, reference: p.ReferenceFallback}
	}
	return application.NewPricingService(
		catalog,
		fetchers,
		provider.NewFake(rate),
		newMemHistory(),
		cache.NewMemory(time.Hour),
	)
}
