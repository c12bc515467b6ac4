package musig2

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
)

func TestSortKeysIdempotent(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	p2, _ := btcec.NewPrivateKey()
	p3, _ := btcec.NewPrivateKey()
	keys := []*btcec.PublicKey{p1.PubKey(), p2.PubKey(), p3.PubKey()}

	sorted := SortKeys(keys)
	sortedAgain := SortKeys(sorted)
	require.Equal(t, sorted, sortedAgain)
}

func TestAggregateKeysRejectsEmpty(t *testing.T) {
	_, err := AggregateKeys(nil, KeyAggOptions{Sort: true})
	require.Error(t, err)
}

func TestAggregateKeysAllSameIsCoincidence(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	keys := []*btcec.PublicKey{p1.PubKey(), p1.PubKey(), p1.PubKey()}
	_, err := AggregateKeys(keys, KeyAggOptions{Sort: true})
	require.NoError(t, err)
}

func TestAggregateKeysRejectsPartialDuplicate(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	p2, _ := btcec.NewPrivateKey()
	keys := []*btcec.PublicKey{p1.PubKey(), p1.PubKey(), p2.PubKey()}
	_, err := AggregateKeys(keys, KeyAggOptions{Sort: true})
	require.Error(t, err)
}

func TestSignAndAggregateVerifies(t *testing.T) {
	privs := make([]*btcec.PrivateKey, 3)
	pubs := make([]*btcec.PublicKey, 3)
	for i := range privs {
		p, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		privs[i] = p
		pubs[i] = p.PubKey()
	}

	agg, err := AggregateKeys(pubs, KeyAggOptions{Sort: true})
	require.NoError(t, err)

	nonces := make([]*Nonces, 3)
	pubNonces := make([][66]byte, 3)
	for i, p := range privs {
		n, err := GenerateNonces(p.PubKey())
		require.NoError(t, err)
		nonces[i] = n
		pubNonces[i] = n.PubNonce
	}

	combined, err := AggregateNonces(pubNonces)
	require.NoError(t, err)

	var msg [32]byte
	copy(msg[:], []byte("test message for musig2 signing"))

	partials := make([]*PartialSig, 3)
	for i, p := range privs {
		ps, err := Sign(nonces[i].SecNonce, p, SignOptions{
			KeyAgg:        agg,
			CombinedNonce: combined,
			Message:       msg,
		})
		require.NoError(t, err)
		partials[i] = ps
	}

	sig, err := AggregateSignatures(partials, agg, msg)
	require.NoError(t, err)

	// The aggregate must be a plain BIP-340 signature against the final
	// (tweaked) aggregated key.
	parsed, err := schnorr.ParseSignature(sig[:])
	require.NoError(t, err)
	xOnlyFinal, err := schnorr.ParsePubKey(schnorr.SerializePubKey(agg.FinalKey))
	require.NoError(t, err)
	require.True(t, parsed.Verify(msg[:], xOnlyFinal))
}

func TestSignAndAggregateVerifiesWithoutTweak(t *testing.T) {
	privs := make([]*btcec.PrivateKey, 2)
	pubs := make([]*btcec.PublicKey, 2)
	for i := range privs {
		p, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		privs[i] = p
		pubs[i] = p.PubKey()
	}

	agg, err := AggregateKeys(pubs, KeyAggOptions{Sort: true, SkipTweak: true})
	require.NoError(t, err)

	pubNonces := make([][66]byte, 2)
	nonces := make([]*Nonces, 2)
	for i, p := range privs {
		n, err := GenerateNonces(p.PubKey())
		require.NoError(t, err)
		nonces[i] = n
		pubNonces[i] = n.PubNonce
	}
	combined, err := AggregateNonces(pubNonces)
	require.NoError(t, err)

	var msg [32]byte
	copy(msg[:], []byte("untweaked musig2 aggregate check"))

	partials := make([]*PartialSig, 2)
	for i, p := range privs {
		ps, err := Sign(nonces[i].SecNonce, p, SignOptions{
			KeyAgg:        agg,
			CombinedNonce: combined,
			Message:       msg,
		})
		require.NoError(t, err)
		partials[i] = ps
	}

	sig, err := AggregateSignatures(partials, agg, msg)
	require.NoError(t, err)

	parsed, err := schnorr.ParseSignature(sig[:])
	require.NoError(t, err)
	xOnlyFinal, err := schnorr.ParsePubKey(schnorr.SerializePubKey(agg.FinalKey))
	require.NoError(t, err)
	require.True(t, parsed.Verify(msg[:], xOnlyFinal))
}

// TestAggregateKeysOrderIndependentWhenSorted verifies that key aggregation with sort=true
// produces the same final key regardless of input permutation, as the
// spec's concurrency model requires for server-agreed ordering.
func TestAggregateKeysOrderIndependentWhenSorted(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	p2, _ := btcec.NewPrivateKey()
	p3, _ := btcec.NewPrivateKey()

	perm1 := []*btcec.PublicKey{p1.PubKey(), p2.PubKey(), p3.PubKey()}
	perm2 := []*btcec.PublicKey{p3.PubKey(), p1.PubKey(), p2.PubKey()}

	agg1, err := AggregateKeys(perm1, KeyAggOptions{Sort: true})
	require.NoError(t, err)
	agg2, err := AggregateKeys(perm2, KeyAggOptions{Sort: true})
	require.NoError(t, err)

	require.Equal(t, agg1.FinalKey.SerializeCompressed(), agg2.FinalKey.SerializeCompressed())
}

func TestAggregateKeysOrderSensitiveWhenUnsorted(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	p2, _ := btcec.NewPrivateKey()
	p3, _ := btcec.NewPrivateKey()

	perm1 := []*btcec.PublicKey{p1.PubKey(), p2.PubKey(), p3.PubKey()}
	perm2 := []*btcec.PublicKey{p3.PubKey(), p1.PubKey(), p2.PubKey()}

	agg1, err := AggregateKeys(perm1, KeyAggOptions{Sort: false})
	require.NoError(t, err)
	agg2, err := AggregateKeys(perm2, KeyAggOptions{Sort: false})
	require.NoError(t, err)

	require.NotEqual(t, agg1.FinalKey.SerializeCompressed(), agg2.FinalKey.SerializeCompressed())
}
