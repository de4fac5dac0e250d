package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Locale string

const (
	// LocaleOrigin is the market whose local price is under evaluation.
	LocaleOrigin Locale = "AR"
	// LocaleReference is the market supplying the comparison baseline.
	LocaleReference Locale = "US"
)

// RawPrice is the outcome of one locale-side fetch. IsFallback marks a
// configured default substituted because live extraction failed; a
// RawPrice is always usable either way.
type RawPrice struct {
	ProductKey string
	Locale     Locale
	Amount     decimal.Decimal
	SourceURL  string
	FetchedAt  time.Time
	IsFallback bool
}

// FetchResult carries both locale sides of one product fetch.
type FetchResult struct {
	Origin    RawPrice
	Reference RawPrice
}

// PriceRecord is the unit persisted to history and served by the API.
// ConvertedPrice always equals OriginPrice divided by ExchangeRate,
// rounded half up to two places.
type PriceRecord struct {
	ProductKey        string
	DisplayName       string
	OriginPrice       decimal.Decimal
	ReferencePrice    decimal.Decimal
	ConvertedPrice    decimal.Decimal
	ExchangeRate      decimal.Decimal
	OriginFallback    bool
	ReferenceFallback bool
	StaleRate         bool
	OriginURL         string
	ReferenceURL      string
	Timestamp         time.Time
}

// SameComparison reports whether two records carry identical comparison
// fields, ignoring timestamps. Used by the duplicate suppression policy.
func (r PriceRecord) SameComparison(o PriceRecord) bool {
	return r.ProductKey == o.ProductKey &&
		r.OriginPrice.Equal(o.OriginPrice) &&
		r.ReferencePrice.Equal(o.ReferencePrice) &&
		r.ConvertedPrice.Equal(o.ConvertedPrice) &&
		r.ExchangeRate.Equal(o.ExchangeRate) &&
		r.OriginFallback == o.OriginFallback &&
		r.ReferenceFallback == o.ReferenceFallback &&
		r.StaleRate == o.StaleRate
}
