package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/filestore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func record(ts time.Time, converted string) domain.PriceRecord {
	return domain.PriceRecord{
		ProductKey:     domain.KeyNikeAirForce,
		DisplayName:    "Nike Air Force One",
		OriginPrice:    decimal.NewFromInt(199999),
		ReferencePrice: decimal.NewFromInt(110),
		ConvertedPrice: decimal.RequireFromString(converted),
		ExchangeRate:   decimal.NewFromInt(1375),
		OriginURL:      "https://www.nike.com.ar/p",
		ReferenceURL:   "https://www.nike.com/p",
		Timestamp:      ts,
	}
}

func TestStore_AppendLatestHistory(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err = store.Latest(ctx, domain.KeyNikeAirForce)
	require.ErrorIs(t, err, application.ErrNotFound)

	require.NoError(t, store.Append(ctx, domain.KeyNikeAirForce, record(base, "145.45")))
	require.NoError(t, store.Append(ctx, domain.KeyNikeAirForce, record(base.Add(time.Hour), "146")))
	require.NoError(t, store.Append(ctx, domain.KeyNikeAirForce, record(base.Add(2*time.Hour), "147.12")))

	latest, err := store.Latest(ctx, domain.KeyNikeAirForce)
	require.NoError(t, err)
	require.Equal(t, "147.12", latest.ConvertedPrice.StringFixed(2))
	require.True(t, latest.Timestamp.Equal(base.Add(2*time.Hour)))

	recs, err := store.History(ctx, domain.KeyNikeAirForce, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "147.12", recs[0].ConvertedPrice.StringFixed(2))
	require.Equal(t, "146.00", recs[1].ConvertedPrice.StringFixed(2))
}

func TestStore_LatestSidecarWritten(t *testing.T) {
	dir := t.TempDir()
	store, err := filestore.New(dir)
	require.NoError(t, err)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(context.Background(), domain.KeyNikeAirForce, record(base, "145.45")))

	_, err = os.Stat(filepath.Join(dir, domain.KeyNikeAirForce, "latest.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, domain.KeyNikeAirForce))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestStore_HistoryIsolatedPerKey(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	jersey := record(base, "94.54")
	jersey.ProductKey = domain.KeyAdidasJersey
	require.NoError(t, store.Append(ctx, domain.KeyNikeAirForce, record(base, "145.45")))
	require.NoError(t, store.Append(ctx, domain.KeyAdidasJersey, jersey))

	recs, err := store.History(ctx, domain.KeyNikeAirForce, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, domain.KeyNikeAirForce, recs[0].ProductKey)

	recs, err = store.History(ctx, "unknown", 10)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestStore_TouchDoesNotAppend(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.ErrorIs(t, store.Touch(ctx, domain.KeyNikeAirForce, base), application.ErrNotFound)

	require.NoError(t, store.Append(ctx, domain.KeyNikeAirForce, record(base, "145.45")))
	require.NoError(t, store.Touch(ctx, domain.KeyNikeAirForce, base.Add(time.Hour)))

	recs, err := store.History(ctx, domain.KeyNikeAirForce, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "145.45", recs[0].ConvertedPrice.StringFixed(2))
}
