package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

const defaultHistoryLimit = 50

type Server struct {
	svc  *application.PricingService
	ping func(ctx context.Context) error
}

// NewServer wires the service behind the HTTP handlers. ping is used by
// /readyz and may be nil when the store needs no health probe.
func NewServer(svc *application.PricingService, ping func(ctx context.Context) error) *Server {
	return &Server{svc: svc, ping: ping}
}

// priceResponse keeps the field names the public consumers already
// parse: producto, precio_ars, precio_usd, precio_ars_usd, dolar_blue.
type priceResponse struct {
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

func toResponse(rec domain.PriceRecord) priceResponse {
	return priceResponse{
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

type productResponse struct {
	Key    string `json:"key"`
	Nombre string `json:"nombre"`
	URLAR  string `json:"url_ar"`
	URLUS  string `json:"url_us"`
}

type historyResponse struct {
	Endpoint string          `json:"endpoint"`
	Count    int             `json:"count"`
	Records  []priceResponse `json:"records"`
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	products := s.svc.Products()
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{
			Key:    p.Key,
			Nombre: p.DisplayName,
			URLAR:  p.OriginURL,
			URLUS:  p.ReferenceURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rec, err := s.svc.Run(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	outcomes := s.svc.RunAll(r.Context(), s.svc.Keys())
	results := make(map[string]any, len(outcomes))
	succeeded := 0
	for key, o := range outcomes {
		if o.Err != nil {
			results[key] = map[string]string{"error": o.Err.Error()}
			continue
		}
		results[key] = toResponse(o.Record)
		succeeded++
	}
	status := http.StatusOK
	if succeeded == 0 && len(outcomes) > 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{"results": results})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
			return
		}
		limit = n
	}
	recs, err := s.svc.History(r.Context(), key, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]priceResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	writeJSON(w, http.StatusOK, historyResponse{Endpoint: key, Count: len(out), Records: out})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrProductUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, application.ErrRateUnavailable),
		errors.Is(err, application.ErrPipelineUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": msg,
	})
}
