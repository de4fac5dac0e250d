package domain

import (
	"fmt"
	"time"
)

const convertedScale = 2

// Normalize combines the two raw locale prices with an exchange rate
// quote into a PriceRecord. Pure: no I/O, and deterministic for fixed
// inputs including now. The quote must carry a positive rate; division
// by a zero or negative rate is rejected up front with ErrInvalidQuote.
func Normalize(p Product, origin, reference RawPrice, q Quote, now time.Time) (PriceRecord, error) {
	if q.Rate.Sign() <= 0 {
		return PriceRecord{}, fmt.Errorf("%w: non-positive rate %s", ErrInvalidQuote, q.Rate)
	}
	// Rate convention is ARS per USD, fixed once here: converted price
	// is origin divided by rate, rounded half up to two places.
	converted := origin.Amount.DivRound(q.Rate, convertedScale)
	return PriceRecord{
		ProductKey:        p.Key,
		DisplayName:       p.DisplayName,
		OriginPrice:       origin.Amount,
		ReferencePrice:    reference.Amount,
		ConvertedPrice:    converted,
		ExchangeRate:      q.Rate,
		OriginFallback:    origin.IsFallback,
		ReferenceFallback: reference.IsFallback,
		StaleRate:         q.Stale,
		OriginURL:         origin.SourceURL,
		ReferenceURL:      reference.SourceURL,
		Timestamp:         now.UTC(),
	}, nil
}
