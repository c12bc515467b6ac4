package provider

import "errors"

var (
	ErrScriptsXorOutpoints  = errors.New("provider: exactly one of scripts or outpoints must be set")
	ErrSubscriptionClosed   = errors.New("provider: subscription stream is closed")
	ErrSubscriptionNotFound = errors.New("provider: unknown subscription id")
	ErrNoTransactions       = errors.New("provider: no transactions supplied to broadcast")
)
