// Package arkerrors defines the closed error taxonomy shared by every
// package in the SDK. Callers that need to branch on failure kind use
// errors.As against *Error rather than matching sentinel values from each
// package individually.
package arkerrors

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Unknown is the zero value and should not be produced deliberately.
	Unknown Kind = iota

	// InvalidInput marks a caller-supplied value that fails validation
	// before any cryptographic or network work is attempted.
	InvalidInput

	// CryptoError marks a failure inside a signing, verification, or
	// key-aggregation routine.
	CryptoError

	// ProtocolError marks a violation of the Ark wire/transaction
	// protocol, e.g. a malformed tapscript tree or a signature over the
	// wrong sighash.
	ProtocolError

	// ProviderError marks a failure surfaced by an IndexerProvider,
	// ArkProvider, or OnchainProvider implementation.
	ProviderError

	// StateError marks an operation attempted against a VTXO or wallet
	// in the wrong lifecycle state.
	StateError

	// Policy marks a deliberate refusal, e.g. rejecting a mixed-unit
	// locktime comparison rather than guessing at one.
	Policy

	// Cancelled marks an operation aborted via context cancellation or
	// explicit user cancellation of a round.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case CryptoError:
		return "crypto_error"
	case ProtocolError:
		return "protocol_error"
	case ProviderError:
		return "provider_error"
	case StateError:
		return "state_error"
	case Policy:
		return "policy"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across package boundaries in
// this module. Op names the failing function using "package.Func" form.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error wrapping err under op with the given kind. A nil err
// still produces a usable error carrying only the kind and op.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind, unwrapping through
// the chain as errors.As would.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
