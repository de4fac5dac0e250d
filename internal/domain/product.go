package domain

import "github.com/shopspring/decimal"

// Product describes one catalog entry: the two locale endpoints to fetch
// and the configured fallback prices used when live extraction fails.
// Store selects the fetcher implementation responsible for the product.
type Product struct {
	Key               string
	DisplayName       string
	Brand             string
	Store             string
	OriginURL         string
	ReferenceURL      string
	OriginFallback    decimal.Decimal
	ReferenceFallback decimal.Decimal
}

const (
	StoreNike   = "nike"
	StoreAdidas = "adidas"

	KeyNikeAirForce = "nike"
	KeyAdidasJersey = "adidas-jersey"
)

// Catalog returns the fixed product set, in serving order.
func Catalog() []Product {
	return []Product{
		{
			Key:               KeyNikeAirForce,
			DisplayName:       "Nike Air Force One",
			Brand:             "Nike",
			Store:             StoreNike,
			OriginURL:         "https://www.nike.com.ar/nike-air-force-1--07-cw2288-111/p",
			ReferenceURL:      "https://www.nike.com/t/air-force-1-07-mens-shoes-5QFp5Z/CW2288-111",
			OriginFallback:    decimal.NewFromInt(199999),
			ReferenceFallback: decimal.NewFromInt(110),
		},
		{
			Key:               KeyAdidasJersey,
			DisplayName:       "Adidas Argentina Anniversary Jersey",
			Brand:             "Adidas",
			Store:             StoreAdidas,
			OriginURL:         "https://www.adidas.com.ar/camiseta-aniversario-50-anos-seleccion-argentina/JF0395.html",
			ReferenceURL:      "https://www.adidas.com/us/argentina-anniversary-jersey/JF2641.html",
			OriginFallback:    decimal.NewFromInt(129999),
			ReferenceFallback: decimal.NewFromInt(100),
		},
	}
}
