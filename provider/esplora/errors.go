package esplora

import "errors"

var (
	ErrMissingBaseURL   = errors.New("esplora: BaseURL is required")
	ErrInvalidRateLimit = errors.New("esplora: RateLimit must be positive")
	ErrNoTxsToBroadcast = errors.New("esplora: at least one transaction hex is required")
	ErrTooManyTxs       = errors.New("esplora: broadcast accepts at most a parent+child (1C1P) pair")
	ErrResourceNotFound = errors.New("esplora: resource not found")
)
