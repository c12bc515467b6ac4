package identity

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// SingleKey is an in-memory Identity backed by one secp256k1 private key.
type SingleKey struct {
	priv *btcec.PrivateKey
}

// NewSingleKey wraps an existing private key.
func NewSingleKey(priv *btcec.PrivateKey) *SingleKey {
	return &SingleKey{priv: priv}
}

// NewSingleKeyFromHex decodes a 32-byte hex-encoded private key.
func NewSingleKeyFromHex(s string) (*SingleKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "identity.NewSingleKeyFromHex", err)
	}
	if len(b) != 32 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "identity.NewSingleKeyFromHex", ErrUnsupportedScript)
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return &SingleKey{priv: priv}, nil
}

// GenerateSingleKey creates a fresh random single-key identity.
func GenerateSingleKey() (*SingleKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "identity.GenerateSingleKey", err)
	}
	return &SingleKey{priv: priv}, nil
}

// ToHex exposes the raw private key. Used only for testing and storage
// round-trips, never during normal signing flows.
func (s *SingleKey) ToHex() string {
	return hex.EncodeToString(s.priv.Serialize())
}

func (s *SingleKey) XOnlyPublicKey() [32]byte {
	return curve.XOnly(s.priv.PubKey())
}

func (s *SingleKey) CompressedPublicKey() [33]byte {
	return curve.Compressed(s.priv.PubKey())
}

func (s *SingleKey) Sign(_ context.Context, packet *psbt.Packet, inputIndexes []int) (*psbt.Packet, error) {
	if _, err := signTaprootInputs(packet, inputIndexes, s.priv); err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "identity.SingleKey.Sign", err)
	}
	return packet, nil
}

func (s *SingleKey) SignMessage(_ context.Context, msg [32]byte, kind SigKind) ([]byte, error) {
	switch kind {
	case SigSchnorr:
		sig, err := curve.SignSchnorr(s.priv, msg[:])
		if err != nil {
			return nil, arkerrors.New(arkerrors.CryptoError, "identity.SingleKey.SignMessage", err)
		}
		return sig, nil
	case SigECDSA:
		// Drop the compact form's leading recovery byte, leaving r || s.
		sig := curve.SignECDSACompact(s.priv, msg[:], true)
		return sig[1:], nil
	default:
		return nil, arkerrors.New(arkerrors.InvalidInput, "identity.SingleKey.SignMessage", ErrUnsupportedScript)
	}
}

func (s *SingleKey) SignerSession() SignerSession {
	return newMusigSession(s.priv)
}

func (s *SingleKey) ToReadonly() ReadonlyIdentity {
	return readonly{xOnly: s.XOnlyPublicKey(), compressed: s.CompressedPublicKey()}
}

var _ Identity = (*SingleKey)(nil)
