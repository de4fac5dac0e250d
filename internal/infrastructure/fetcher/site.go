package fetcher

import (
	"context"
	"fmt"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Config carries the shared dependencies of every store fetcher.
type Config struct {
	Client *httpx.Client
	// Timeout bounds a single page fetch.
	Timeout time.Duration
	// Limiter paces outbound requests toward the retail sites.
	Limiter *rate.Limiter
	// Snapshots captures fetched pages for diagnostics; nil disables.
	Snapshots *Snapshotter
	Log       *zap.Logger
}

// site is the shared fetch core. Store fetchers embed it and supply
// their extraction patterns and locale headers.
type site struct {
	store     string
	client    *httpx.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	snapshots *Snapshotter
	log       *zap.Logger
	patterns  map[domain.Locale][]*pricePattern
	headers   map[domain.Locale]map[string]string
	now       func() time.Time
}

func newSite(store string, cfg Config) site {
	s := site{
		store:     store,
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		limiter:   cfg.Limiter,
		snapshots: cfg.Snapshots,
		log:       cfg.Log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if s.client == nil {
		s.client = &httpx.Client{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Fetch retrieves both locale sides independently. A failed side is
// absorbed into its configured fallback price; only a side with no
// fallback at all turns into a hard ProductUnavailable error.
func (s *site) Fetch(ctx context.Context, p domain.Product) (domain.FetchResult, error) {
	var origin, reference domain.RawPrice

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		origin, err = s.fetchSide(gctx, p, domain.LocaleOrigin, p.OriginURL, p.OriginFallback)
		return err
	})
	g.Go(func() error {
		var err error
		reference, err = s.fetchSide(gctx, p, domain.LocaleReference, p.ReferenceURL, p.ReferenceFallback)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.FetchResult{}, err
	}
	return domain.FetchResult{Origin: origin, Reference: reference}, nil
}

func (s *site) fetchSide(ctx context.Context, p domain.Product, locale domain.Locale, url string, fallback decimal.Decimal) (domain.RawPrice, error) {
	amount, err := s.extractLive(ctx, url, locale)
	if err == nil {
		return domain.RawPrice{
			ProductKey: p.Key,
			Locale:     locale,
			Amount:     amount,
			SourceURL:  url,
			FetchedAt:  s.now(),
		}, nil
	}

	s.log.Warn("fetcher.side_failed",
		zap.String("store", s.store),
		zap.String("key", p.Key),
		zap.String("locale", string(locale)),
		zap.Error(err),
	)
	if fallback.Sign() <= 0 {
		return domain.RawPrice{}, fmt.Errorf("%w: %s %s side failed with no fallback: %v",
			application.ErrProductUnavailable, p.Key, locale, err)
	}
	return domain.RawPrice{
		ProductKey: p.Key,
		Locale:     locale,
		Amount:     fallback,
		SourceURL:  url,
		FetchedAt:  s.now(),
		IsFallback: true,
	}, nil
}

func (s *site) extractLive(ctx context.Context, url string, locale domain.Locale) (decimal.Decimal, error) {
	if url == "" {
		return decimal.Decimal{}, fmt.Errorf("no %s url configured", locale)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return decimal.Decimal{}, err
		}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := s.client.FetchPage(ctx, url, s.headers[locale])
	if err != nil {
		return decimal.Decimal{}, err
	}
	s.snapshots.Capture(s.store, locale, body)
	return extractPrice(body, s.patterns[locale], locale)
}
