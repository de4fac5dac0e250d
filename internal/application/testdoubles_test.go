package application

import (
	"context"
	"sync"
	"time"

	"dolarcaro-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeRateProvider struct {
	mu    sync.Mutex
	out   domain.Quote
	err   error
	delay time.Duration
	calls int
}

func (f *fakeRateProvider) GetRate(ctx context.Context, _ string) (domain.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Quote{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	return f.out, nil
}

func (f *fakeRateProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFetcher struct {
	mu    sync.Mutex
	out   domain.FetchResult
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ domain.Product) (domain.FetchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return domain.FetchResult{}, f.err
	}
	return f.out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeHistoryStore struct {
	mu        sync.Mutex
	records   map[string][]domain.PriceRecord
	touched   map[string]time.Time
	appendErr error
	touchErr  error
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{
		records: map[string][]domain.PriceRecord{},
		touched: map[string]time.Time{},
	}
}

func (f *fakeHistoryStore) Append(_ context.Context, key string, rec domain.PriceRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[key] = append(f.records[key], rec)
	return nil
}

func (f *fakeHistoryStore) Latest(_ context.Context, key string) (domain.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.records[key]
	if len(recs) == 0 {
		return domain.PriceRecord{}, ErrNotFound
	}
	return recs[len(recs)-1], nil
}

func (f *fakeHistoryStore) History(_ context.Context, key string, limit int) ([]domain.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.records[key]
	out := make([]domain.PriceRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}

func (f *fakeHistoryStore) Touch(_ context.Context, key string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[key] = at
	return nil
}

func (f *fakeHistoryStore) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[key])
}

type fakeCache struct {
	mu       sync.Mutex
	store    map[string]domain.PriceRecord
	disabled bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]domain.PriceRecord{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (domain.PriceRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disabled {
		return domain.PriceRecord{}, false
	}
	rec, ok := f.store[key]
	return rec, ok
}

func (f *fakeCache) Set(_ context.Context, key string, rec domain.PriceRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = rec
}
