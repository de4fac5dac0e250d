package fetcher

import (
	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"
)

// Registry maps each store to its fetcher. The pipeline depends only
// on the ProductFetcher capability, never on a concrete store type.
func Registry(cfg Config) map[string]application.ProductFetcher {
	return map[string]application.ProductFetcher{
		domain.StoreNike:   NewNike(cfg),
		domain.StoreAdidas: NewAdidas(cfg),
	}
}
