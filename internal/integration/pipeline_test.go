package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/cache"
	"dolarcaro-service/internal/infrastructure/fetcher"
	"dolarcaro-service/internal/infrastructure/filestore"
	httpserver "dolarcaro-service/internal/infrastructure/http"
	"dolarcaro-service/internal/infrastructure/httpx"
	"dolarcaro-service/internal/infrastructure/provider"

	"github.com/stretchr/testify/require"
)

// Full in-process pass: stubbed retail pages and rate feed, real
// fetchers, real provider, file-backed history, HTTP surface on top.

func pageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rateServer(t *testing.T, venta float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/dolares/blue", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"moneda": "USD", "casa": "blue", "nombre": "Blue",
			"compra": venta - 25, "venta": venta,
			"fechaActualizacion": time.Now().UTC().Format(time.RFC3339),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	ar := pageServer(t, `<div class="price">$ 189.999</div>`)
	us := pageServer(t, `<meta itemprop="price" content="110.00">`)
	rates := rateServer(t, 1375)

	catalog := domain.Catalog()
	for i := range catalog {
		catalog[i].OriginURL = ar.URL
		catalog[i].ReferenceURL = us.URL
	}

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	svc := application.NewPricingService(
		catalog,
		fetcher.Registry(fetcher.Config{Client: &httpx.Client{}, Timeout: 5 * time.Second}),
		&provider.DolarAPIProvider{BaseURL: rates.URL, Client: &httpx.Client{}},
		store,
		cache.NewMemory(time.Hour),
	)
	router := httpserver.NewRouter(httpserver.NewServer(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/prices/"+domain.KeyNikeAirForce, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "189999.00", out["precio_ars"])
	require.Equal(t, "110.00", out["precio_usd"])
	// 189999 / 1375, half up to two places.
	require.Equal(t, "138.18", out["precio_ars_usd"])
	require.Equal(t, "1375", out["dolar_blue"])
	require.Equal(t, false, out["precio_ars_fallback"])
	require.Equal(t, false, out["dolar_blue_stale"])

	// The run is durably recorded.
	rec, err := store.Latest(ctx, domain.KeyNikeAirForce)
	require.NoError(t, err)
	require.Equal(t, "138.18", rec.ConvertedPrice.StringFixed(2))

	// Second request hits the cache; history stays at one record.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/prices/"+domain.KeyNikeAirForce, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	recs, err := store.History(ctx, domain.KeyNikeAirForce, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestPipelineEndToEnd_RateFeedDownDegradesToStaleRate(t *testing.T) {
	ctx := context.Background()
	ar := pageServer(t, `<div class="price">$ 189.999</div>`)
	us := pageServer(t, `<meta itemprop="price" content="110.00">`)
	rates := rateServer(t, 1350)

	catalog := domain.Catalog()
	for i := range catalog {
		catalog[i].OriginURL = ar.URL
		catalog[i].ReferenceURL = us.URL
	}

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	newSvc := func(rateURL string) *application.PricingService {
		return application.NewPricingService(
			catalog,
			fetcher.Registry(fetcher.Config{Client: &httpx.Client{}, Timeout: 5 * time.Second}),
			&provider.DolarAPIProvider{BaseURL: rateURL, Client: &httpx.Client{}},
			store,
			cache.NewMemory(time.Hour), // fresh per service, never shared
		)
	}

	// Seed history with a live-rate run, then kill the feed.
	_, err = newSvc(rates.URL).Run(ctx, domain.KeyNikeAirForce)
	require.NoError(t, err)
	rates.Close()

	rec, err := newSvc(rates.URL).Run(ctx, domain.KeyNikeAirForce)
	require.NoError(t, err)
	require.True(t, rec.StaleRate)
	require.Equal(t, "1350", rec.ExchangeRate.String())
	// 189999 / 1350, half up.
	require.Equal(t, "140.74", rec.ConvertedPrice.StringFixed(2))
}
