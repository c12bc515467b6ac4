package assetpacket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func assetID(b byte) AssetID {
	var id AssetID
	for i := range id {
		id[i] = b
	}
	return id
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Packet{Groups: []Group{
		{AssetID: assetID(0x01), Kind: GroupIssued, Amount: 1000, Payload: []byte("issued")},
		{AssetID: assetID(0x02), Kind: GroupChanged, Amount: 42, Payload: nil},
	}}

	decoded, err := Decode(p.Encode())
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	encoded := Packet{Groups: []Group{{AssetID: assetID(0x01), Kind: GroupBurned, Amount: 1}}}.Encode()
	_, err := Decode(encoded[:len(encoded)-1])
	require.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	encoded := Packet{Groups: []Group{{AssetID: assetID(0x01), Kind: GroupBurned, Amount: 1}}}.Encode()
	_, err := Decode(append(encoded, 0xff))
	require.Error(t, err)
}

func TestOutputRoundTrip(t *testing.T) {
	p := Packet{Groups: []Group{
		{AssetID: assetID(0x03), Kind: GroupChanged, Amount: 7},
	}}

	out, err := NewOutput(p)
	require.NoError(t, err)
	require.Zero(t, out.Value)

	decoded, err := ParseOutput(out)
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestNewOutputRejectsEmptyPacket(t *testing.T) {
	_, err := NewOutput(Packet{})
	require.Error(t, err)
}

func TestVerifyConservationBalanced(t *testing.T) {
	id := assetID(0x04)
	inputs := []Group{{AssetID: id, Kind: GroupChanged, Amount: 100}}
	outputs := []Group{
		{AssetID: id, Kind: GroupChanged, Amount: 60},
		{AssetID: id, Kind: GroupChanged, Amount: 40},
	}
	require.NoError(t, VerifyConservation(inputs, outputs))
}

func TestVerifyConservationRejectsUnbalanced(t *testing.T) {
	id := assetID(0x05)
	inputs := []Group{{AssetID: id, Kind: GroupChanged, Amount: 100}}
	outputs := []Group{{AssetID: id, Kind: GroupChanged, Amount: 99}}
	require.Error(t, VerifyConservation(inputs, outputs))
}

func TestVerifyConservationExemptsIssuedAndBurned(t *testing.T) {
	id := assetID(0x06)
	inputs := []Group{{AssetID: id, Kind: GroupIssued, Amount: 1000}}
	outputs := []Group{{AssetID: id, Kind: GroupBurned, Amount: 5}}
	require.NoError(t, VerifyConservation(inputs, outputs))
}
