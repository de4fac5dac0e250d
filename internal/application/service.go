package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dolarcaro-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultRunConcurrency = 4

// Outcome is one entry of a RunAll result: either a record or the error
// that stopped its run. Never both.
type Outcome struct {
	Record domain.PriceRecord
	Err    error
}

// PricingService orchestrates one pricing run per product key: rate
// quote and page fetch in parallel, normalization, durable append,
// cache refresh. It owns the transient Quote/RawPrice values for the
// duration of a run; durable records belong to the HistoryStore.
type PricingService struct {
	catalog  map[string]domain.Product
	order    []string
	fetchers map[string]ProductFetcher
	rates    RateProvider
	history  HistoryStore
	cache    ResultCache
	locks    *keyLocks

	clock              Clock
	log                *zap.Logger
	runTimeout         time.Duration
	suppressDuplicates bool
}

type Option func(*PricingService)

func WithClock(c Clock) Option { return func(s *PricingService) { s.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(s *PricingService) { s.log = l } }

// WithRunTimeout bounds a single Run; zero disables the bound.
func WithRunTimeout(d time.Duration) Option {
	return func(s *PricingService) { s.runTimeout = d }
}

// WithDuplicateSuppression makes Run skip appending a record whose
// comparison fields match the current latest entry, refreshing its
// checked_at instead. Off by default.
func WithDuplicateSuppression(on bool) Option {
	return func(s *PricingService) { s.suppressDuplicates = on }
}

func NewPricingService(catalog []domain.Product, fetchers map[string]ProductFetcher, rates RateProvider, history HistoryStore, cache ResultCache, opts ...Option) *PricingService {
	s := &PricingService{
		catalog:  make(map[string]domain.Product, len(catalog)),
		fetchers: fetchers,
		rates:    rates,
		history:  history,
		cache:    cache,
		locks:    newKeyLocks(),
	}
	for _, p := range catalog {
		s.catalog[p.Key] = p
		s.order = append(s.order, p.Key)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Keys returns the catalog keys in serving order.
func (s *PricingService) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *PricingService) Products() []domain.Product {
	out := make([]domain.Product, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.catalog[k])
	}
	return out
}

func (s *PricingService) Latest(ctx context.Context, key string) (domain.PriceRecord, error) {
	if _, ok := s.catalog[key]; !ok {
		return domain.PriceRecord{}, fmt.Errorf("%w: unknown product %q", ErrNotFound, key)
	}
	return s.history.Latest(ctx, key)
}

func (s *PricingService) History(ctx context.Context, key string, limit int) ([]domain.PriceRecord, error) {
	if _, ok := s.catalog[key]; !ok {
		return nil, fmt.Errorf("%w: unknown product %q", ErrNotFound, key)
	}
	return s.history.History(ctx, key, limit)
}

// Run produces the current PriceRecord for one product key. A fresh
// cached record short-circuits the whole pipeline with zero network
// calls. Otherwise the rate quote and the product fetch run in
// parallel; normalization starts only after both have resolved.
func (s *PricingService) Run(ctx context.Context, key string) (domain.PriceRecord, error) {
	p, ok := s.catalog[key]
	if !ok {
		return domain.PriceRecord{}, fmt.Errorf("%w: unknown product %q", ErrNotFound, key)
	}
	if rec, hit := s.cache.Get(ctx, key); hit {
		s.log.Debug("pipeline.cache_hit", zap.String("key", key))
		return rec, nil
	}
	fetcher, ok := s.fetchers[p.Store]
	if !ok {
		return domain.PriceRecord{}, fmt.Errorf("%w: no fetcher for store %q", ErrProductUnavailable, p.Store)
	}

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	// Both calls are independent network I/O. A quote failure must not
	// cancel the product fetch: the run may still complete on a stale
	// rate from history.
	var (
		wg       sync.WaitGroup
		quote    domain.Quote
		quoteErr error
		result   domain.FetchResult
		fetchErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quote, quoteErr = s.rates.GetRate(ctx, string(domain.BluePair))
	}()
	go func() {
		defer wg.Done()
		result, fetchErr = fetcher.Fetch(ctx, p)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("%w: run for %q: %v", ErrPipelineUnavailable, key, err)
	}
	if fetchErr != nil {
		return domain.PriceRecord{}, fetchErr
	}
	if quoteErr != nil {
		quote, quoteErr = s.staleQuote(ctx, key, quoteErr)
		if quoteErr != nil {
			return domain.PriceRecord{}, quoteErr
		}
	}

	rec, err := domain.Normalize(p, result.Origin, result.Reference, quote, s.clock.Now())
	if err != nil {
		return domain.PriceRecord{}, err
	}
	if err := s.persist(ctx, key, rec); err != nil {
		return domain.PriceRecord{}, err
	}
	s.cache.Set(ctx, key, rec)

	s.log.Info("pipeline.run_done",
		zap.String("key", key),
		zap.String("converted", rec.ConvertedPrice.String()),
		zap.Bool("origin_fallback", rec.OriginFallback),
		zap.Bool("reference_fallback", rec.ReferenceFallback),
		zap.Bool("stale_rate", rec.StaleRate),
	)
	return rec, nil
}

// staleQuote degrades a failed rate fetch to the most recent rate this
// key was priced with. No prior record means the run cannot proceed.
func (s *PricingService) staleQuote(ctx context.Context, key string, cause error) (domain.Quote, error) {
	prev, err := s.history.Latest(ctx, key)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: rate feed down and no prior rate for %q: %v", ErrPipelineUnavailable, key, cause)
	}
	s.log.Warn("pipeline.stale_rate",
		zap.String("key", key),
		zap.String("rate", prev.ExchangeRate.String()),
		zap.Error(cause),
	)
	return domain.Quote{
		Pair:       domain.BluePair,
		Rate:       prev.ExchangeRate,
		Source:     "history",
		Stale:      true,
		ObservedAt: prev.Timestamp,
	}, nil
}

func (s *PricingService) persist(ctx context.Context, key string, rec domain.PriceRecord) error {
	mu := s.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	if s.suppressDuplicates {
		last, err := s.history.Latest(ctx, key)
		if err == nil && last.SameComparison(rec) {
			if err := s.history.Touch(ctx, key, rec.Timestamp); err != nil {
				return fmt.Errorf("%w: touch %q: %v", ErrStoreWrite, key, err)
			}
			s.log.Debug("pipeline.duplicate_suppressed", zap.String("key", key))
			return nil
		}
	}
	if err := s.history.Append(ctx, key, rec); err != nil {
		return fmt.Errorf("%w: append %q: %v", ErrStoreWrite, key, err)
	}
	return nil
}

// RunAll runs the pipeline for every key independently. A failing key
// contributes an error Outcome and never suppresses sibling results.
func (s *PricingService) RunAll(ctx context.Context, keys []string) map[string]Outcome {
	out := make(map[string]Outcome, len(keys))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(defaultRunConcurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			rec, err := s.Run(ctx, key)
			mu.Lock()
			out[key] = Outcome{Record: rec, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
