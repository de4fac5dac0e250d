package application

import (
	"context"
	"time"

	"dolarcaro-service/internal/domain"
)

// RateProvider fetches the current exchange rate quote for a pair.
type RateProvider interface {
	GetRate(ctx context.Context, pair string) (domain.Quote, error)
}

// ProductFetcher retrieves the current displayed price for both locale
// sides of one product. Single-side failures are absorbed into fallback
// substitution; an error means the product could not be priced at all.
type ProductFetcher interface {
	Fetch(ctx context.Context, p domain.Product) (domain.FetchResult, error)
}

// HistoryStore is the durable append-only record keeper. Latest is a
// derived view of the newest append; the two can never disagree.
type HistoryStore interface {
	Append(ctx context.Context, key string, rec domain.PriceRecord) error
	Latest(ctx context.Context, key string) (domain.PriceRecord, error)
	// History returns records most recent first, at most limit entries.
	History(ctx context.Context, key string, limit int) ([]domain.PriceRecord, error)
	// Touch refreshes the latest entry's checked_at without appending.
	Touch(ctx context.Context, key string, at time.Time) error
}

// ResultCache holds the most recent pipeline outcome per key inside a
// freshness window. Loss of the cache is never data loss.
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.PriceRecord, bool)
	Set(ctx context.Context, key string, rec domain.PriceRecord)
}

// Worker represents a background processor. Implementations must run
// until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
