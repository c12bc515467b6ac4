package arknote

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeVector(t *testing.T) {
	var preimage [32]byte
	for i := range preimage {
		preimage[i] = 0x01
	}
	n := Note{Preimage: preimage, Value: 0x64}

	encoded := n.Encode()
	require.Len(t, encoded, 36)
	require.True(t, bytes.HasSuffix(encoded[:], []byte{0x00, 0x00, 0x00, 0x64}))
}

func TestRoundTripAllValues(t *testing.T) {
	var preimage [32]byte
	for i := range preimage {
		preimage[i] = byte(i)
	}
	for _, v := range []uint32{0, 1, 100, 4294967295} {
		n := Note{Preimage: preimage, Value: v}
		encoded := n.Encode()
		decoded, err := Decode(encoded[:])
		require.NoError(t, err)
		require.Equal(t, n, decoded)
	}
}

func TestStringRoundTrip(t *testing.T) {
	var preimage [32]byte
	for i := range preimage {
		preimage[i] = 0x01
	}
	n := Note{Preimage: preimage, Value: 100}

	s := n.String()
	require.Contains(t, s, DefaultPrefix+"1")

	decoded, err := FromString(s)
	require.NoError(t, err)
	require.Equal(t, n, decoded)
}

func TestFromStringRejectsWrongPrefix(t *testing.T) {
	_, err := FromString("notarknote1abc")
	require.Error(t, err)
}

func TestPkScriptShape(t *testing.T) {
	var preimage [32]byte
	n := Note{Preimage: preimage, Value: 1}
	script, err := n.PkScript()
	require.NoError(t, err)
	require.Equal(t, byte(0xa8), script[0])             // OP_SHA256
	require.Equal(t, byte(0x87), script[len(script)-1]) // OP_EQUAL
}
