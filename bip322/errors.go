package bip322

import "errors"

var (
	ErrUnsupportedAddressType = errors.New("bip322: unsupported address type")
	ErrMalformedWitness       = errors.New("bip322: malformed witness")
	ErrUnallowedSighash       = errors.New("bip322: sighash type not allowed")
	ErrNoWitnessProduced      = errors.New("bip322: signing produced no witness")
	ErrInvalidSignature       = errors.New("bip322: invalid signature encoding")
)
