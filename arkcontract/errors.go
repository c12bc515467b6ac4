package arkcontract

import "errors"

var (
	ErrUnregisteredType  = errors.New("arkcontract: type is not registered")
	ErrMalformedURI      = errors.New("arkcontract: URI does not start with arkcontract=<type>")
	ErrScriptMismatch    = errors.New("arkcontract: params derive a different pkScript than the stored one")
	ErrAlreadyRegistered = errors.New("arkcontract: handler type already registered")
	ErrContractNotFound  = errors.New("arkcontract: contract id not found")
	ErrScriptTaken       = errors.New("arkcontract: pkScript already indexed by another contract")
)
