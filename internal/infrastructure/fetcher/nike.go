package fetcher

import (
	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
)

var _ application.ProductFetcher = (*Nike)(nil)

// Nike fetches nike.com.ar (a VTEX storefront) and nike.com product
// pages.
type Nike struct {
	site
}

func NewNike(cfg Config) *Nike {
	s := newSite(domain.StoreNike, cfg)
	s.patterns = map[domain.Locale][]*pricePattern{
		domain.LocaleOrigin: append([]*pricePattern{
			pattern("vtex_selling_price", `sellingPriceValue[^>]*>\s*\$?\s*([0-9][0-9.,]*)`),
			pattern("vtex_json", `"sellingPrice"\s*:\s*"?([0-9][0-9.,]*)"?`),
		}, genericPatterns()...),
		domain.LocaleReference: append([]*pricePattern{
			pattern("current_price", `"currentPrice"\s*:\s*([0-9][0-9.]*)`),
		}, genericPatterns()...),
	}
	s.headers = map[domain.Locale]map[string]string{
		domain.LocaleOrigin: {
			"Accept-Language": "es-AR,es;q=0.9",
			"Referer":         "https://www.nike.com.ar/calzado/zapatillas",
		},
		domain.LocaleReference: {
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
	return &Nike{site: s}
}
