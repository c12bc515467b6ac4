package musig2

import (
	"crypto/rand"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// Nonces is a signer's MuSig2 nonce pair: the public nonce (two compressed
// points) to broadcast, and the secret nonce to retain for signing.
type Nonces struct {
	PubNonce [66]byte // R1 (33) || R2 (33), compressed
	SecNonce [64]byte // k1 (32) || k2 (32)
	PubKey   [33]byte
}

// GenerateNonces derives a fresh nonce pair for pubkey, per BIP-327's
// deterministic-with-randomness construction: two secret scalars are
// derived by tagged-hashing 32 bytes of randomness together with the
// signer's pubkey and an index byte.
func GenerateNonces(pubkey *btcec.PublicKey) (*Nonces, error) {
	var rand32 [32]byte
	if _, err := rand.Read(rand32[:]); err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "musig2.GenerateNonces", err)
	}
	return generateNoncesFromRand(pubkey, rand32)
}

func generateNoncesFromRand(pubkey *btcec.PublicKey, rand32 [32]byte) (*Nonces, error) {
	pkBytes := pubkey.SerializeCompressed()

	var secs [2]btcec.ModNScalar
	var pubs [2]*btcec.PublicKey

	for i := 0; i < 2; i++ {
		h := curve.TaggedHash(
			"MuSig/nonce",
			rand32[:],
			[]byte{byte(len(pkBytes))},
			pkBytes,
			[]byte{0x00},
			[]byte{byte(i)},
		)
		var k btcec.ModNScalar
		if overflow := k.SetByteSlice(h[:]); overflow || k.IsZero() {
			return nil, arkerrors.New(arkerrors.CryptoError, "musig2.GenerateNonces", ErrSignZeroNonce)
		}
		secs[i] = k

		var R btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(&k, &R)
		R.ToAffine()
		pubs[i] = btcec.NewPublicKey(&R.X, &R.Y)
	}

	n := &Nonces{PubKey: [33]byte(pkBytes)}
	copy(n.PubNonce[0:33], pubs[0].SerializeCompressed())
	copy(n.PubNonce[33:66], pubs[1].SerializeCompressed())

	k1 := secs[0].Bytes()
	k2 := secs[1].Bytes()
	copy(n.SecNonce[0:32], k1[:])
	copy(n.SecNonce[32:64], k2[:])

	return n, nil
}

// ParsePubNonce decodes a 66-byte public nonce into its two constituent
// points.
func ParsePubNonce(b [66]byte) (r1, r2 *btcec.PublicKey, err error) {
	r1, err = btcec.ParsePubKey(b[0:33])
	if err != nil {
		return nil, nil, arkerrors.New(arkerrors.CryptoError, "musig2.ParsePubNonce", err)
	}
	r2, err = btcec.ParsePubKey(b[33:66])
	if err != nil {
		return nil, nil, arkerrors.New(arkerrors.CryptoError, "musig2.ParsePubNonce", err)
	}
	return r1, r2, nil
}

// AggregateNonces sums the R1 and R2 components across all signers'
// public nonces, producing the combined nonce used in the signing round.
func AggregateNonces(pubNonces [][66]byte) ([66]byte, error) {
	var combined [66]byte
	if len(pubNonces) == 0 {
		return combined, arkerrors.New(arkerrors.CryptoError, "musig2.AggregateNonces", ErrSignSizeMismatch)
	}

	var sum1, sum2 btcec.JacobianPoint
	sum1.X.SetInt(0)
	sum1.Y.SetInt(0)
	sum1.Z.SetInt(0)
	sum2 = sum1

	for i, pn := range pubNonces {
		r1, r2, err := ParsePubNonce(pn)
		if err != nil {
			return combined, err
		}
		var j1, j2 btcec.JacobianPoint
		r1.AsJacobian(&j1)
		r2.AsJacobian(&j2)

		if i == 0 {
			sum1, sum2 = j1, j2
			continue
		}
		var t1, t2 btcec.JacobianPoint
		btcec.AddNonConst(&sum1, &j1, &t1)
		btcec.AddNonConst(&sum2, &j2, &t2)
		sum1, sum2 = t1, t2
	}

	sum1.ToAffine()
	sum2.ToAffine()
	p1 := btcec.NewPublicKey(&sum1.X, &sum1.Y)
	p2 := btcec.NewPublicKey(&sum2.X, &sum2.Y)

	copy(combined[0:33], p1.SerializeCompressed())
	copy(combined[33:66], p2.SerializeCompressed())
	return combined, nil
}
