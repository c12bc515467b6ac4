package arknote

import "errors"

var (
	ErrInvalidLength = errors.New("arknote: decoded payload is not 36 bytes")
	ErrInvalidPrefix = errors.New("arknote: missing or unrecognized human-readable prefix")
	ErrBase58Decode  = errors.New("arknote: base58 decode failed")
)
