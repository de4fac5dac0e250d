package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
	"dolarcaro-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const dolarBluePath = "/v1/dolares/blue"

// DolarAPIProvider quotes the informal peso/dollar rate from
// dolarapi.com. The sell side ("venta") is what a buyer of dollars
// pays, so that is the rate used for comparisons.
type DolarAPIProvider struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.RateProvider = (*DolarAPIProvider)(nil)

type blueResp struct {
	Moneda             string  `json:"moneda"`
	Casa               string  `json:"casa"`
	Nombre             string  `json:"nombre"`
	Compra             float64 `json:"compra"`
	Venta              float64 `json:"venta"`
	FechaActualizacion string  `json:"fechaActualizacion"`
}

func (p *DolarAPIProvider) GetRate(ctx context.Context, pair string) (domain.Quote, error) {
	if p.BaseURL == "" {
		return domain.Quote{}, fmt.Errorf("%w: dolarapi: missing base url", application.ErrRateUnavailable)
	}
	if !domain.ValidatePair(pair) {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, pair)
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: dolarapi: invalid base url: %v", application.ErrRateUnavailable, err)
	}
	u.Path = dolarBluePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: dolarapi: create request: %v", application.ErrRateUnavailable, err)
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body blueResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return domain.Quote{}, fmt.Errorf("%w: dolarapi: %v", application.ErrRateUnavailable, err)
	}
	if body.Venta <= 0 {
		return domain.Quote{}, fmt.Errorf("%w: dolarapi: non-positive venta %v", application.ErrRateUnavailable, body.Venta)
	}

	observedAt := time.Now().UTC()
	if body.FechaActualizacion != "" {
		if ts, err := time.Parse(time.RFC3339, body.FechaActualizacion); err == nil {
			observedAt = ts.UTC()
		}
	}

	return domain.Quote{
		Pair:       domain.Pair(pair),
		Rate:       decimal.NewFromFloat(body.Venta),
		Source:     "dolarapi",
		ObservedAt: observedAt,
	}, nil
}
