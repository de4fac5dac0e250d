package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one observation of the exchange rate. Rate is expressed as
// origin currency units per reference currency unit (ARS per USD).
// Stale marks a quote reconstructed from history because the live feed
// was unavailable.
type Quote struct {
	Pair       Pair
	Rate       decimal.Decimal
	Source     string
	Stale      bool
	ObservedAt time.Time
}
