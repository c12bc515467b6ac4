// Package identity abstracts over the signer backing an Ark wallet: an
// in-memory single key, a BIP-86 HD descriptor-derived key, or a readonly
// (pubkey/descriptor only) view with no signing capability.
package identity

import (
	"context"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/ark-network/ark-sdk-go/musig2"
)

// SigKind selects which signature scheme SignMessage produces.
type SigKind int

const (
	SigSchnorr SigKind = iota
	SigECDSA
)

// ReadonlyIdentity is the capability subset with no signing ability: just
// enough to derive addresses and verify signatures made by others.
type ReadonlyIdentity interface {
	XOnlyPublicKey() [32]byte
	CompressedPublicKey() [33]byte
}

// Identity is the full signer capability surface. Implementations must be
// safe for concurrent use, since a single identity may back concurrent
// send/settle/unroll tasks.
type Identity interface {
	ReadonlyIdentity

	// Sign partially signs the PSBT at the given input indexes (or every
	// input if inputIndexes is empty) using whichever accepted sighash
	// types apply to each input's script. It fails only when none of the
	// targeted inputs could be signed; partial success is allowed.
	Sign(ctx context.Context, packet *psbt.Packet, inputIndexes []int) (*psbt.Packet, error)

	// SignMessage signs a 32-byte message digest directly, without any
	// BIP-322 scaffolding, returning a 64-byte signature.
	SignMessage(ctx context.Context, msg [32]byte, kind SigKind) ([]byte, error)

	// SignerSession returns a fresh MuSig2 session capable of holding a
	// secret nonce and producing a partial signature bound to one tree
	// node of a batch-round signing ceremony.
	SignerSession() SignerSession

	// ToReadonly strips signing capability, returning a value safe to
	// pass to code that must not be able to sign.
	ToReadonly() ReadonlyIdentity
}

// SignerSession is a single-use holder for one MuSig2 signing round: it
// remembers the secret nonce it generated so that Sign can use it exactly
// once.
type SignerSession interface {
	// PublicKey returns the key this session signs with.
	PublicKey() *btcec.PublicKey

	// GenerateNonce derives and retains a fresh secret nonce, returning
	// the public nonce to broadcast.
	GenerateNonce() ([66]byte, error)

	// Sign produces a partial signature for msg given the session's
	// combined-nonce and key-aggregation context. It may be called only
	// once per GenerateNonce call.
	Sign(combinedNonce [66]byte, msg [32]byte, keyAgg *musig2.KeyAggResult) (*musig2.PartialSig, error)
}
