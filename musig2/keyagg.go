// Package musig2 implements the BIP-327 two-round MuSig2 signing protocol
// used to drive the Ark batch-round tree-signing ceremony: key sort, key
// aggregation with the taproot tweak, nonce generation, partial signing,
// and signature aggregation.
package musig2

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// SortKeys returns a new slice with keys ordered lexicographically ascending
// on their compressed encoding. Stable and idempotent: sorting an
// already-sorted set is a no-op.
func SortKeys(keys []*btcec.PublicKey) []*btcec.PublicKey {
	out := make([]*btcec.PublicKey, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		a := out[i].SerializeCompressed()
		b := out[j].SerializeCompressed()
		return bytes.Compare(a, b) < 0
	})
	return out
}

// KeyAggOptions controls aggregateKeys behavior.
type KeyAggOptions struct {
	Sort         bool
	TaprootTweak []byte // nil for a bare (no script path) taproot tweak
	SkipTweak    bool   // true when the caller wants the pre-tweak key only
}

// KeyAggResult is the outcome of aggregateKeys: the pre-tweak and final
// (post taproot-tweak) aggregated keys, plus enough state to sign.
type KeyAggResult struct {
	Keys          []*btcec.PublicKey // keys in the order aggregation used
	PreTweakedKey *btcec.PublicKey
	FinalKey      *btcec.PublicKey
	// ParityAcc is the accumulated sign-flip factor applied across the
	// Q-negation (BIP-340 even-Y enforcement) and the taproot tweak,
	// tracked mod n as {1, n-1}.
	ParityAcc *btcec.ModNScalar
	// Tweak is the taproot tweak scalar t added to the aggregated key,
	// zero when the tweak was skipped. TweakParity is the sign-flip
	// applied to the post-tweak key alone; signature aggregation adds
	// e·TweakParity·Tweak to compensate for the tweak term.
	Tweak       *btcec.ModNScalar
	TweakParity *btcec.ModNScalar
	coeffs      map[string]*btcec.ModNScalar
}

// Coefficient returns this key's MuSig2 aggregation coefficient aᵢ.
func (r *KeyAggResult) Coefficient(pub *btcec.PublicKey) (*btcec.ModNScalar, error) {
	key := string(pub.SerializeCompressed())
	c, ok := r.coeffs[key]
	if !ok {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.Coefficient", ErrSignerNotInSet)
	}
	return c, nil
}

// AggregateKeys implements BIP-327 KeyAgg plus the Ark taproot tweak.
func AggregateKeys(pubkeys []*btcec.PublicKey, opts KeyAggOptions) (*KeyAggResult, error) {
	if len(pubkeys) == 0 {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateKeys", ErrKeyAggEmpty)
	}

	keys := pubkeys
	if opts.Sort {
		keys = SortKeys(pubkeys)
	}

	if err := rejectPartialDuplicates(keys); err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateKeys", err)
	}

	// L = taggedHash("KeyAgg list", concat(pubkeys))
	var buf bytes.Buffer
	for _, k := range keys {
		buf.Write(k.SerializeCompressed())
	}
	listHash := curve.TaggedHash("KeyAgg list", buf.Bytes())

	secondUnique := secondUniqueKey(keys)

	coeffs := make(map[string]*btcec.ModNScalar, len(keys))
	var Q btcec.JacobianPoint
	Q.X.SetInt(0)
	Q.Y.SetInt(0)
	Q.Z.SetInt(0)
	first := true

	for _, k := range keys {
		keyBytes := k.SerializeCompressed()
		keyStr := string(keyBytes)

		var coeff btcec.ModNScalar
		if secondUnique != nil && bytes.Equal(keyBytes, secondUnique.SerializeCompressed()) {
			coeff.SetInt(1)
		} else if existing, ok := coeffs[keyStr]; ok {
			coeff = *existing
		} else {
			h := curve.TaggedHash("KeyAgg coefficient", listHash[:], keyBytes)
			if overflow := coeff.SetByteSlice(h[:]); overflow {
				return nil, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateKeys", ErrPartialSigOverflow)
			}
		}
		coeffs[keyStr] = &coeff

		var Pi, term btcec.JacobianPoint
		k.AsJacobian(&Pi)
		btcec.ScalarMultNonConst(&coeff, &Pi, &term)

		if first {
			Q = term
			first = false
			continue
		}
		var sum btcec.JacobianPoint
		btcec.AddNonConst(&Q, &term, &sum)
		Q = sum
	}

	Q.ToAffine()
	parityAcc := new(btcec.ModNScalar).SetInt(1)

	if Q.Y.IsOdd() {
		Q.Y.Negate(1).Normalize()
		parityAcc.Negate()
	}

	preTweaked := btcec.NewPublicKey(&Q.X, &Q.Y)

	if opts.SkipTweak {
		return &KeyAggResult{
			Keys:          keys,
			PreTweakedKey: preTweaked,
			FinalKey:      preTweaked,
			ParityAcc:     parityAcc,
			Tweak:         new(btcec.ModNScalar),
			TweakParity:   new(btcec.ModNScalar).SetInt(1),
			coeffs:        coeffs,
		}, nil
	}

	xOnly := curve.XOnly(preTweaked)
	tweakHash := curve.TaggedHash("TapTweak", xOnly[:], opts.TaprootTweak)

	var t btcec.ModNScalar
	if overflow := t.SetByteSlice(tweakHash[:]); overflow {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateKeys", ErrPartialSigOverflow)
	}

	var tG, QFinal btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&t, &tG)
	btcec.AddNonConst(&Q, &tG, &QFinal)
	QFinal.ToAffine()

	tweakParity := new(btcec.ModNScalar).SetInt(1)
	if QFinal.Y.IsOdd() {
		QFinal.Y.Negate(1).Normalize()
		parityAcc.Negate()
		tweakParity.Negate()
	}

	finalKey := btcec.NewPublicKey(&QFinal.X, &QFinal.Y)

	return &KeyAggResult{
		Keys:          keys,
		PreTweakedKey: preTweaked,
		FinalKey:      finalKey,
		ParityAcc:     parityAcc,
		Tweak:         &t,
		TweakParity:   tweakParity,
		coeffs:        coeffs,
	}, nil
}

// rejectPartialDuplicates allows the all-keys-identical BIP-327 coincidence
// but rejects a key set where some (not all) keys repeat, which is always a
// caller bug rather than a legitimate aggregation.
func rejectPartialDuplicates(keys []*btcec.PublicKey) error {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[string(k.SerializeCompressed())]++
	}
	if len(counts) == 1 {
		return nil
	}
	for _, c := range counts {
		if c > 1 {
			return ErrKeyAggDuplicate
		}
	}
	return nil
}

// secondUniqueKey returns the first key in keys that differs from keys[0],
// or nil if all keys are identical to keys[0] (the BIP-327 "second unique
// key" coincidence optimization).
func secondUniqueKey(keys []*btcec.PublicKey) *btcec.PublicKey {
	if len(keys) == 0 {
		return nil
	}
	first := keys[0].SerializeCompressed()
	for _, k := range keys[1:] {
		if !bytes.Equal(k.SerializeCompressed(), first) {
			return k
		}
	}
	return nil
}
