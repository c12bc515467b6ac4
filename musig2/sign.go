package musig2

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// PartialSig is one signer's contribution to the aggregate schnorr
// signature: the scalar s and the session's combined-and-blinded nonce R.
type PartialSig struct {
	S [32]byte
	R [32]byte // x-only
}

// SignOptions carries the session values a partial signature is bound to.
type SignOptions struct {
	KeyAgg        *KeyAggResult
	CombinedNonce [66]byte
	Message       [32]byte
}

// Sign produces this signer's partial signature per BIP-327 §Signing, given
// its retained secret nonce, private key, and the session's key-aggregation
// and combined-nonce state.
func Sign(secNonce [64]byte, priv *btcec.PrivateKey, opts SignOptions) (*PartialSig, error) {
	agg := opts.KeyAgg

	var k1, k2 btcec.ModNScalar
	if overflow := k1.SetByteSlice(secNonce[0:32]); overflow {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Sign", ErrSignZeroNonce)
	}
	if overflow := k2.SetByteSlice(secNonce[32:64]); overflow {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Sign", ErrSignZeroNonce)
	}
	if k1.IsZero() || k2.IsZero() {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Sign", ErrSignZeroNonce)
	}

	r1, r2, err := ParsePubNonce(opts.CombinedNonce)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Sign", err)
	}

	xFinal := curve.XOnly(agg.FinalKey)
	bHash := curve.TaggedHash("MuSig/noncecoef", opts.CombinedNonce[:], xFinal[:], opts.Message[:])
	var b btcec.ModNScalar
	if overflow := b.SetByteSlice(bHash[:]); overflow {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Sign", ErrPartialSigOverflow)
	}

	var j1, j2, bR2, R btcec.JacobianPoint
	r1.AsJacobian(&j1)
	r2.AsJacobian(&j2)
	btcec.ScalarMultNonConst(&b, &j2, &bR2)
	btcec.AddNonConst(&j1, &bR2, &R)

	if R.Z.IsZero() {
		// R == infinity: BIP-327 substitutes the generator point.
		btcec.ScalarBaseMultNonConst(new(btcec.ModNScalar).SetInt(1), &R)
	}
	R.ToAffine()

	if R.Y.IsOdd() {
		k1.Negate()
		k2.Negate()
	}

	rPub := btcec.NewPublicKey(&R.X, &R.Y)
	xR := curve.XOnly(rPub)

	challengeHash := curve.TaggedHash("BIP0340/challenge", xR[:], xFinal[:], opts.Message[:])
	var e btcec.ModNScalar
	if overflow := e.SetByteSlice(challengeHash[:]); overflow {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Sign", ErrPartialSigOverflow)
	}

	a, err := agg.Coefficient(priv.PubKey())
	if err != nil {
		return nil, err
	}

	// d' = d · parityAcc: the accumulated sign flips from even-Y
	// normalization and the taproot tweak fold into the secret key here,
	// never into the individual public keys.
	var dPrime btcec.ModNScalar
	dPrime = priv.Key
	dPrime.Mul(agg.ParityAcc)

	var s btcec.ModNScalar
	s.Set(&k1)
	var bk2 btcec.ModNScalar
	bk2.Set(&b).Mul(&k2)
	s.Add(&bk2)

	var eAd btcec.ModNScalar
	eAd.Set(&e).Mul(a).Mul(&dPrime)
	s.Add(&eAd)

	sBytes := s.Bytes()

	return &PartialSig{S: sBytes, R: xR}, nil
}

// AggregateSignatures sums partial signatures and adds the taproot-tweak
// compensation e·t, producing a standard BIP-340 schnorr signature (x(R), s)
// verifiable against the final aggregated key.
func AggregateSignatures(partials []*PartialSig, agg *KeyAggResult, msg [32]byte) ([64]byte, error) {
	var out [64]byte
	if len(partials) == 0 {
		return out, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateSignatures", ErrSignSizeMismatch)
	}

	r := partials[0].R
	var sSum btcec.ModNScalar
	for _, p := range partials {
		if p.R != r {
			return out, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateSignatures", ErrSignSizeMismatch)
		}
		var s btcec.ModNScalar
		if overflow := s.SetByteSlice(p.S[:]); overflow {
			return out, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateSignatures", ErrPartialSigOverflow)
		}
		sSum.Add(&s)
	}

	xFinal := curve.XOnly(agg.FinalKey)
	challengeHash := curve.TaggedHash("BIP0340/challenge", r[:], xFinal[:], msg[:])
	var e btcec.ModNScalar
	if overflow := e.SetByteSlice(challengeHash[:]); overflow {
		return out, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateSignatures", ErrPartialSigOverflow)
	}

	var tweakTerm btcec.ModNScalar
	tweakTerm.Set(&e).Mul(agg.TweakParity).Mul(agg.Tweak)
	sSum.Add(&tweakTerm)

	sBytes := sSum.Bytes()
	copy(out[0:32], r[:])
	copy(out[32:64], sBytes[:])
	return out, nil
}
