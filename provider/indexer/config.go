// Package indexer implements provider.IndexerProvider against an Ark
// indexer's REST/NDJSON API: plain paginated REST calls for vtxos, batch
// trees and history, plus a newline-delimited-JSON long-poll subscription
// stream with reconnect for incoming vtxo activity.
package indexer

import "time"

// Config configures Client.
type Config struct {
	// BaseURL is the indexer API root, e.g. https://indexer.ark.example/v1.
	BaseURL string

	// RateLimit is the number of requests per second allowed.
	RateLimit int

	// Timeout is the per-request HTTP timeout. It does not bound the
	// long-lived subscription stream connection.
	Timeout time.Duration

	// RetryAttempts is the number of retries after a failed REST request.
	RetryAttempts int

	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration

	// ReconnectDelay is how long to wait before reopening a subscription
	// stream after it drops.
	ReconnectDelay time.Duration
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		RateLimit:      10,
		Timeout:        30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		ReconnectDelay: 2 * time.Second,
	}
}

// Validate reports whether cfg is usable.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if cfg.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}
