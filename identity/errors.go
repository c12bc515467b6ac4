package identity

import "errors"

var (
	// ErrNoSignableInputs is returned when Sign is asked to sign a set
	// of inputs and none of them could be signed.
	ErrNoSignableInputs = errors.New("identity: no inputs could be signed")

	// ErrNonceNotGenerated is returned when Sign is called on a
	// SignerSession before GenerateNonce.
	ErrNonceNotGenerated = errors.New("identity: signer session has no generated nonce")

	// ErrNonceReused is returned when Sign is called twice against the
	// same generated nonce.
	ErrNonceReused = errors.New("identity: signer session nonce already consumed")

	// ErrUnsupportedScript is returned by NewSingleKeyFromHex when the key
	// does not decode to 32 bytes, and by SignMessage for an unknown
	// SigKind.
	ErrUnsupportedScript = errors.New("identity: unsupported script for signing")

	// ErrReadonlyIdentity is returned when signing is attempted against
	// a ReadonlyIdentity value accidentally upgraded at a call site.
	ErrReadonlyIdentity = errors.New("identity: readonly identity cannot sign")
)
