package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/config"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/cache"
	"dolarcaro-service/internal/infrastructure/fetcher"
	"dolarcaro-service/internal/infrastructure/filestore"
	"dolarcaro-service/internal/infrastructure/httpx"
	"dolarcaro-service/internal/infrastructure/logx"
	"dolarcaro-service/internal/infrastructure/pg"
	"dolarcaro-service/internal/infrastructure/provider"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const fetchUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// App is the fully wired service plus everything its hosts need to run
// and tear it down.
type App struct {
	Cfg config.Config
	Svc *application.PricingService
	// Ping probes the history store; nil when the store has no probe.
	Ping    func(ctx context.Context) error
	cleanup []func()
}

func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// Build assembles the service from environment configuration.
func Build(ctx context.Context) (*App, error) {
	cfg := config.Load()
	app := &App{Cfg: cfg}

	history, err := buildHistoryStore(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	resultCache := buildCache(cfg, app)

	app.Svc = application.NewPricingService(
		domain.Catalog(),
		buildFetchers(cfg),
		buildRateProvider(cfg),
		history,
		resultCache,
		application.WithLogger(logx.L()),
		application.WithRunTimeout(cfg.RunTimeout),
		application.WithDuplicateSuppression(cfg.SuppressDuplicates),
	)
	return app, nil
}

func buildHistoryStore(ctx context.Context, cfg config.Config, app *App) (application.HistoryStore, error) {
	log := logx.L()
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for STORAGE=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		app.cleanup = append(app.cleanup, func() {
			log.Info("closing pg")
			db.Close()
		})
		app.Ping = db.Ping
		return pg.NewPriceRepo(db), nil
	case "file":
		store, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

func buildCache(cfg config.Config, app *App) application.ResultCache {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.cleanup = append(app.cleanup, func() { _ = client.Close() })
		return cache.NewRedis(client, cfg.CacheTTL, logx.L())
	default:
		return cache.NewMemory(cfg.CacheTTL)
	}
}

func buildRateProvider(cfg config.Config) application.RateProvider {
	switch cfg.Provider {
	case "fake":
		return provider.NewFake(1375)
	default:
		return &provider.DolarAPIProvider{
			BaseURL: cfg.DolarAPIBase,
			Client: &httpx.Client{
				HTTP: &http.Client{Timeout: cfg.FetchTimeout},
			},
		}
	}
}

func buildFetchers(cfg config.Config) map[string]application.ProductFetcher {
	fc := fetcher.Config{
		Client: &httpx.Client{
			HTTP:      &http.Client{Timeout: cfg.FetchTimeout},
			UserAgent: fetchUserAgent,
		},
		Timeout: cfg.FetchTimeout,
		Limiter: rate.NewLimiter(rate.Limit(cfg.FetchRPS), 1),
		Log:     logx.L(),
	}
	if cfg.DebugSnapshots {
		fc.Snapshots = &fetcher.Snapshotter{Dir: cfg.SnapshotsDir, Log: logx.L()}
	}
	return fetcher.Registry(fc)
}
