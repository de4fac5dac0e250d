package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/cache"
	"dolarcaro-service/internal/infrastructure/provider"
	"dolarcaro-service/internal/infrastructure/worker"

	"github.com/stretchr/testify/require"
)

type memHistory struct {
	mu   sync.Mutex
	recs map[string][]domain.PriceRecord
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

func (m *memHistory) Touch(context.Context, string, time.Time) error { return nil }

func (m *memHistory) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs[key])
}

type staticFetcher struct{}

func (staticFetcher) Fetch(_ context.Context, p domain.Product) (domain.FetchResult, error) {
	now := time.Now().UTC()
	return domain.FetchResult{
		Origin: domain.RawPrice{
			ProductKey: p.Key, Locale: domain.LocaleOrigin,
			Amount: p.OriginFallback, SourceURL: p.OriginURL, FetchedAt: now,
		},
		Reference: domain.RawPrice{
			ProductKey: p.Key, Locale: domain.LocaleReference,
			Amount: p.ReferenceFallback, SourceURL: p.ReferenceURL, FetchedAt: now,
		},
	}, nil
}

func TestScheduler_RunsImmediatePassAndStops(t *testing.T) {
	catalog := domain.Catalog()
	fetchers := map[string]application.ProductFetcher{
		domain.StoreNike:   staticFetcher{},
		domain.StoreAdidas: staticFetcher{},
	}
	history := &memHistory{recs: make(map[string][]domain.PriceRecord)}
	svc := application.NewPricingService(
		catalog, fetchers, provider.NewFake(1375), history, cache.NewMemory(time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.NewScheduler(svc, time.Hour).Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return history.count(domain.KeyNikeAirForce) == 1 &&
			history.count(domain.KeyAdidasJersey) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
