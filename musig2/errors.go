package musig2

import "errors"

var (
	// ErrKeyAggEmpty is returned when key aggregation is attempted with
	// no public keys.
	ErrKeyAggEmpty = errors.New("musig2: key aggregation requires at least one public key")

	// ErrKeyAggDuplicate is returned when some, but not all, of the keys in
	// the set repeat; a set in which every entry is the same key is
	// accepted.
	ErrKeyAggDuplicate = errors.New("musig2: duplicate public key in aggregation set")

	// ErrSignSizeMismatch is returned when the pubkey list and nonce
	// list used during signing disagree in length or content.
	ErrSignSizeMismatch = errors.New("musig2: nonce and pubkey set size mismatch")

	// ErrSignZeroNonce is returned when a generated or supplied secret
	// nonce scalar is zero.
	ErrSignZeroNonce = errors.New("musig2: zero secret nonce")

	// ErrSignerNotInSet is returned when the signer's public key is not
	// a member of the aggregated key set.
	ErrSignerNotInSet = errors.New("musig2: signer is not a member of the key set")

	// ErrPartialSigOverflow is returned when a partial signature scalar
	// decodes to a value not reduced modulo the curve order.
	ErrPartialSigOverflow = errors.New("musig2: partial signature scalar overflow")

	// ErrInfinitePoint is returned internally when an intermediate sum
	// reaches the point at infinity and no fallback is defined.
	ErrInfinitePoint = errors.New("musig2: unexpected point at infinity")
)
