package fetcher

import (
	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
)

var _ application.ProductFetcher = (*Adidas)(nil)

// Adidas fetches adidas.com.ar and adidas.com product pages.
type Adidas struct {
	site
}

func NewAdidas(cfg Config) *Adidas {
	s := newSite(domain.StoreAdidas, cfg)
	s.patterns = map[domain.Locale][]*pricePattern{
		domain.LocaleOrigin: append([]*pricePattern{
			pattern("sale_price", `"salePrice"\s*:\s*"?([0-9][0-9.,]*)"?`),
			pattern("gl_price", `gl-price-item[^>]*>\s*\$?\s*([0-9][0-9.,]*)`),
		}, genericPatterns()...),
		domain.LocaleReference: append([]*pricePattern{
			pattern("sale_price", `"salePrice"\s*:\s*"?([0-9][0-9.]*)"?`),
		}, genericPatterns()...),
	}
	s.headers = map[domain.Locale]map[string]string{
		domain.LocaleOrigin: {
			"Accept-Language": "es-AR,es;q=0.9",
			"Referer":         "https://www.adidas.com.ar/",
		},
		domain.LocaleReference: {
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
	return &Adidas{site: s}
}
