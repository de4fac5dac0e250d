package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dolarcaro-service/internal/bootstrap"
	"dolarcaro-service/internal/domain"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func init() { _ = godotenv.Load() }

type priceOut struct {
	Producto       string    `json:"producto"`
	PrecioARS      string    `json:"precio_ars"`
	PrecioUSD      string    `json:"precio_usd"`
	PrecioARSUSD   string    `json:"precio_ars_usd"`
	DolarBlue      string    `json:"dolar_blue"`
	URLAR          string    `json:"url_ar"`
	URLUS          string    `json:"url_us"`
	PrecioARSFall  bool      `json:"precio_ars_fallback"`
	PrecioUSDFall  bool      `json:"precio_usd_fallback"`
	DolarBlueStale bool      `json:"dolar_blue_stale"`
	Timestamp      time.Time `json:"timestamp"`
}

func toOut(rec domain.PriceRecord) priceOut {
	return priceOut{
		Producto:       rec.DisplayName,
		PrecioARS:      rec.OriginPrice.StringFixed(2),
		PrecioUSD:      rec.ReferencePrice.StringFixed(2),
		PrecioARSUSD:   rec.ConvertedPrice.StringFixed(2),
		DolarBlue:      rec.ExchangeRate.String(),
		URLAR:          rec.OriginURL,
		URLUS:          rec.ReferenceURL,
		PrecioARSFall:  rec.OriginFallback,
		PrecioUSDFall:  rec.ReferenceFallback,
		DolarBlueStale: rec.StaleRate,
		Timestamp:      rec.Timestamp,
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func withApp(fn func(ctx context.Context, app *bootstrap.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		app, err := bootstrap.Build(c.Context)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(c.Context, app)
	}
}

func main() {
	app := &cli.App{
		Name:  "dolarcaro",
		Usage: "price a fixed retail catalog in ARS against its USD reference",
		Commands: []*cli.Command{
			{
				Name:      "fetch",
				Usage:     "run the pipeline for one product key",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return cli.Exit("usage: fetch <key>", 2)
					}
					return withApp(func(ctx context.Context, a *bootstrap.App) error {
						rec, err := a.Svc.Run(ctx, key)
						if err != nil {
							return err
						}
						return printJSON(toOut(rec))
					})(c)
				},
			},
			{
				Name:  "all",
				Usage: "run the pipeline for every catalog product",
				Action: withApp(func(ctx context.Context, a *bootstrap.App) error {
					outcomes := a.Svc.RunAll(ctx, a.Svc.Keys())
					results := make(map[string]any, len(outcomes))
					failed := 0
					for key, o := range outcomes {
						if o.Err != nil {
							results[key] = map[string]string{"error": o.Err.Error()}
							failed++
							continue
						}
						results[key] = toOut(o.Record)
					}
					if err := printJSON(results); err != nil {
						return err
					}
					if failed == len(outcomes) && failed > 0 {
						return cli.Exit("all products failed", 1)
					}
					return nil
				}),
			},
			{
				Name:      "latest",
				Usage:     "show the most recent stored record for a product",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return cli.Exit("usage: latest <key>", 2)
					}
					return withApp(func(ctx context.Context, a *bootstrap.App) error {
						rec, err := a.Svc.Latest(ctx, key)
						if err != nil {
							return err
						}
						return printJSON(toOut(rec))
					})(c)
				},
			},
			{
				Name:      "history",
				Usage:     "show stored records for a product, most recent first",
				ArgsUsage: "<key>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum records"},
				},
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return cli.Exit("usage: history <key>", 2)
					}
					limit := c.Int("limit")
					if limit <= 0 {
						return cli.Exit("limit must be positive", 2)
					}
					return withApp(func(ctx context.Context, a *bootstrap.App) error {
						recs, err := a.Svc.History(ctx, key, limit)
						if err != nil {
							return err
						}
						out := make([]priceOut, 0, len(recs))
						for _, rec := range recs {
							out = append(out, toOut(rec))
						}
						return printJSON(out)
					})(c)
				},
			},
			{
				Name:  "products",
				Usage: "list the catalog",
				Action: withApp(func(_ context.Context, a *bootstrap.App) error {
					type productOut struct {
						Key    string `json:"key"`
						Nombre string `json:"nombre"`
						URLAR  string `json:"url_ar"`
						URLUS  string `json:"url_us"`
					}
					products := a.Svc.Products()
					out := make([]productOut, 0, len(products))
					for _, p := range products {
						out = append(out, productOut{
							Key:    p.Key,
							Nombre: p.DisplayName,
							URLAR:  p.OriginURL,
							URLUS:  p.ReferenceURL,
						})
					}
					return printJSON(out)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
