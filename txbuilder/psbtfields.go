package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/ark-network/ark-sdk-go/script"
)

// vtxoTaprootTreeKey is the proprietary PSBT unknown-field key Ark uses to
// carry a VTXO's encoded taproot script tree out of band, the way
// tappsbt/proof.go attaches a taproot-assets commitment root onto a PSBT
// input's Unknown fields: a single fixed key identifies the field, and its
// value is the protocol-specific payload.
var vtxoTaprootTreeKey = []byte("arkpsbt:vtxo-taproot-tree")

// SetVtxoTaprootTree attaches the encoded tap tree for this input's VTXO
// script onto the PSBT input as a proprietary unknown field.
func SetVtxoTaprootTree(input *psbt.PInput, encodedTree []byte) {
	input.Unknowns = append(removeVtxoTaprootTree(input.Unknowns), &psbt.Unknown{
		Key:   vtxoTaprootTreeKey,
		Value: encodedTree,
	})
}

// GetVtxoTaprootTree reads back the VtxoTaprootTree unknown field, if
// present.
func GetVtxoTaprootTree(input psbt.PInput) ([]byte, bool) {
	for _, u := range input.Unknowns {
		if bytes.Equal(u.Key, vtxoTaprootTreeKey) {
			return u.Value, true
		}
	}
	return nil, false
}

func removeVtxoTaprootTree(unknowns []*psbt.Unknown) []*psbt.Unknown {
	out := make([]*psbt.Unknown, 0, len(unknowns))
	for _, u := range unknowns {
		if bytes.Equal(u.Key, vtxoTaprootTreeKey) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// EncodeTapTree serializes a VtxoScript's leaves in Ark's tap-tree wire
// format: count (1 byte) then, per leaf, a 2-byte big-endian length of the
// raw script followed by the script bytes and a trailing tapscript
// leaf-version byte. This is Ark's own wire format for the field, not a
// BIP-371 taproot-tree PSBT record.
func EncodeTapTree(leafScripts [][]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(leafScripts)))
	for _, s := range leafScripts {
		var lenBytes [2]byte
		lenBytes[0] = byte(len(s) >> 8)
		lenBytes[1] = byte(len(s))
		buf.Write(lenBytes[:])
		buf.Write(s)
		buf.WriteByte(byte(script.LeafVersion))
	}
	return buf.Bytes()
}

// DecodeTapTree reverses EncodeTapTree, returning each leaf's raw script
// with its trailing leaf-version byte stripped (every Ark leaf currently
// uses the single fixed script.LeafVersion).
func DecodeTapTree(encoded []byte) ([][]byte, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	count := int(encoded[0])
	pos := 1
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if pos+2 > len(encoded) {
			return nil, ErrDecodeLeaf
		}
		length := int(encoded[pos])<<8 | int(encoded[pos+1])
		pos += 2
		if pos+length+1 > len(encoded) {
			return nil, ErrDecodeLeaf
		}
		out = append(out, encoded[pos:pos+length])
		pos += length
		pos++ // skip the trailing leaf-version byte
	}
	return out, nil
}
