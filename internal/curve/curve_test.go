package curve

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func TestTaggedHashDeterministic(t *testing.T) {
	h1 := TaggedHash("TapTweak", []byte("hello"))
	h2 := TaggedHash("TapTweak", []byte("hello"))
	require.Equal(t, h1[:], h2[:])

	h3 := TaggedHash("KeyAgg list", []byte("hello"))
	require.NotEqual(t, h1[:], h3[:])
}

func TestSchnorrRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg := Sha256d([]byte("message"))
	sig, err := SignSchnorr(priv, msg[:])
	require.NoError(t, err)
	require.True(t, VerifySchnorr(priv.PubKey(), msg[:], sig))

	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	require.False(t, VerifySchnorr(otherPriv.PubKey(), msg[:], sig))
}

func TestXOnlyRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	xo := XOnly(priv.PubKey())
	pub, err := ParseXOnly(xo[:])
	require.NoError(t, err)
	require.Equal(t, xo, XOnly(pub))
}

func TestHash160NotEmpty(t *testing.T) {
	out := Hash160([]byte("data"))
	require.Len(t, out, 20)
}
