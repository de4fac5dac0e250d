package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func nikeProduct() Product {
	for _, p := range Catalog() {
		if p.Key == KeyNikeAirForce {
			return p
		}
	}
	panic("nike product missing from catalog")
}

func rawPair(origin, reference int64) (RawPrice, RawPrice) {
	return RawPrice{
			ProductKey: KeyNikeAirForce,
			Locale:     LocaleOrigin,
			Amount:     decimal.NewFromInt(origin),
			SourceURL:  "https://www.nike.com.ar/p",
		}, RawPrice{
			ProductKey: KeyNikeAirForce,
			Locale:     LocaleReference,
			Amount:     decimal.NewFromInt(reference),
			SourceURL:  "https://www.nike.com/p",
		}
}

func TestNormalize_ConvertsAtBlueRate(t *testing.T) {
	t.Parallel()
	origin, reference := rawPair(199999, 110)
	q := Quote{Pair: BluePair, Rate: decimal.NewFromFloat(1375.0), Source: "dolarapi"}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec, err := Normalize(nikeProduct(), origin, reference, q, now)
	require.NoError(t, err)
	require.Equal(t, "145.45", rec.ConvertedPrice.StringFixed(2))
	require.Equal(t, "199999", rec.OriginPrice.String())
	require.Equal(t, "110", rec.ReferencePrice.String())
	require.True(t, rec.ExchangeRate.Equal(q.Rate))
	require.Equal(t, now, rec.Timestamp)
	require.False(t, rec.StaleRate)
}

func TestNormalize_StaleQuoteScenario(t *testing.T) {
	t.Parallel()
	origin, reference := rawPair(189999, 110)
	q := Quote{Pair: BluePair, Rate: decimal.NewFromFloat(1350.0), Source: "history", Stale: true}

	rec, err := Normalize(nikeProduct(), origin, reference, q, time.Now())
	require.NoError(t, err)
	require.Equal(t, "140.74", rec.ConvertedPrice.StringFixed(2))
	require.True(t, rec.StaleRate)
}

func TestNormalize_RoundsHalfUp(t *testing.T) {
	t.Parallel()
	origin, reference := rawPair(1015, 1)
	q := Quote{Pair: BluePair, Rate: decimal.NewFromInt(1000)}

	rec, err := Normalize(nikeProduct(), origin, reference, q, time.Now())
	require.NoError(t, err)
	// 1015/1000 = 1.015 -> 1.02
	require.Equal(t, "1.02", rec.ConvertedPrice.StringFixed(2))
}

func TestNormalize_RejectsNonPositiveRate(t *testing.T) {
	t.Parallel()
	origin, reference := rawPair(199999, 110)
	for _, rate := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		_, err := Normalize(nikeProduct(), origin, reference, Quote{Pair: BluePair, Rate: rate}, time.Now())
		require.ErrorIs(t, err, ErrInvalidQuote)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()
	origin, reference := rawPair(199999, 110)
	origin.IsFallback = true
	q := Quote{Pair: BluePair, Rate: decimal.NewFromFloat(1375.0)}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a, err := Normalize(nikeProduct(), origin, reference, q, now)
	require.NoError(t, err)
	b, err := Normalize(nikeProduct(), origin, reference, q, now)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.True(t, a.OriginFallback)
}

func TestValidatePair(t *testing.T) {
	t.Parallel()
	require.True(t, ValidatePair("ARS/USD"))
	require.True(t, ValidatePair("USD/ARS"))
	require.False(t, ValidatePair("ARS/ARS"))
	require.False(t, ValidatePair("EUR/USD"))
	require.False(t, ValidatePair("ars/usd"))
	require.False(t, ValidatePair("ARSUSD"))
}
