package indexer

import "errors"

var (
	ErrMissingBaseURL      = errors.New("indexer: BaseURL is required")
	ErrInvalidRateLimit    = errors.New("indexer: RateLimit must be positive")
	ErrUnknownSubscription = errors.New("indexer: subscription id not recognized by this client")
	ErrStreamClosed        = errors.New("indexer: subscription stream closed by server")
)
