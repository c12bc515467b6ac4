// Package curve wraps secp256k1 scalar/point arithmetic and the BIP-340
// tagged-hash construction used throughout the MuSig2 engine, tapscript
// model, and BIP-322 signer.
package curve

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// TaggedHash computes SHA256(SHA256(tag) || SHA256(tag) || data) per BIP-340.
//
// Neither btcd's exported schnorr package nor any library in the dependency
// closure exposes this at the general (tag, data) shape the MuSig2 and
// BIP-322 layers need, so it is implemented directly against crypto/sha256.
func TaggedHash(tag string, data ...[]byte) *chainhash.Hash {
	tagHash := sha256.Sum256([]byte(tag))

	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, d := range data {
		h.Write(d)
	}

	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return &out
}

// Hash160 returns RIPEMD160(SHA256(data)).
func Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// Sha256d returns SHA256(SHA256(data)).
func Sha256d(data []byte) [32]byte {
	h := chainhash.DoubleHashH(data)
	return [32]byte(h)
}

// XOnly returns the 32-byte x-only (even-Y) encoding of pub.
func XOnly(pub *btcec.PublicKey) [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(pub))
	return out
}

// Compressed returns the 33-byte compressed SEC1 encoding of pub.
func Compressed(pub *btcec.PublicKey) [33]byte {
	var out [33]byte
	copy(out[:], pub.SerializeCompressed())
	return out
}

// ParseXOnly parses a 32-byte x-only public key, resolving to its even-Y
// representative as BIP-340 requires.
func ParseXOnly(b []byte) (*btcec.PublicKey, error) {
	pub, err := schnorr.ParsePubKey(b)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "curve.ParseXOnly", err)
	}
	return pub, nil
}

// ParseCompressed parses a 33-byte compressed public key, rejecting points
// not on the curve.
func ParseCompressed(b []byte) (*btcec.PublicKey, error) {
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "curve.ParseCompressed", err)
	}
	return pub, nil
}

// SignSchnorr produces a BIP-340 signature over msg (must be 32 bytes).
func SignSchnorr(priv *btcec.PrivateKey, msg []byte) ([]byte, error) {
	if len(msg) != 32 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "curve.SignSchnorr",
			fmt.Errorf("message must be 32 bytes, got %d", len(msg)))
	}
	sig, err := schnorr.Sign(priv, msg)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "curve.SignSchnorr", err)
	}
	return sig.Serialize(), nil
}

// VerifySchnorr verifies a BIP-340 signature over msg against pub.
func VerifySchnorr(pub *btcec.PublicKey, msg, sig []byte) bool {
	if len(msg) != 32 {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	xOnly := XOnly(pub)
	xOnlyPub, err := schnorr.ParsePubKey(xOnly[:])
	if err != nil {
		return false
	}
	return parsed.Verify(msg, xOnlyPub)
}

// SignECDSACompact produces a 65-byte recoverable ECDSA signature over msg.
func SignECDSACompact(priv *btcec.PrivateKey, msg []byte, compressed bool) []byte {
	sig, _ := ecdsa.SignCompact(priv, msg, compressed)
	return sig
}

// VerifyECDSADER verifies a DER-encoded ECDSA signature over msg against pub.
func VerifyECDSADER(pub *btcec.PublicKey, msg, sig []byte) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(msg, pub)
}

// RecoverCompact recovers the public key and compression flag from a
// 65-byte [flag, r, s] compact signature and the signed message hash, per
// the legacy "Bitcoin Signed Message" recovery scheme used by P2PKH
// verification.
func RecoverCompact(sig, msg []byte) (pub *btcec.PublicKey, compressed bool, err error) {
	pub, compressed, err = ecdsa.RecoverCompact(sig, msg)
	if err != nil {
		return nil, false, arkerrors.New(arkerrors.CryptoError, "curve.RecoverCompact", err)
	}
	return pub, compressed, nil
}
