package application

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrRateUnavailable: the exchange feed was unreachable or returned
	// an unusable quote.
	ErrRateUnavailable = errors.New("rate unavailable")
	// ErrProductUnavailable: live extraction failed on a side with no
	// configured fallback.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrPipelineUnavailable: run-level timeout, or a rate failure with
	// no prior rate in history to degrade to.
	ErrPipelineUnavailable = errors.New("pipeline unavailable")
	// ErrStoreWrite: the durable append failed; the run must not report
	// success.
	ErrStoreWrite = errors.New("store write failure")
)
