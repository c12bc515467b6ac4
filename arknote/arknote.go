// Package arknote implements Ark's bearer-credential notes: a 32-byte
// preimage and a 4-byte big-endian value, whose pkScript is a single-leaf
// VTXO unlocked by revealing the preimage.
package arknote

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/txscript"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// DefaultPrefix is the human-readable prefix prepended before base58
// encoding, separated from the payload by a "1".
const DefaultPrefix = "arknote"

// PreimageLen and ValueLen sum to the note's fixed 36-byte payload.
const (
	PreimageLen = 32
	ValueLen    = 4
	PayloadLen  = PreimageLen + ValueLen
)

// Note is a decoded Ark bearer credential.
type Note struct {
	Preimage [PreimageLen]byte
	Value    uint32
}

// Encode serializes n to its 36-byte wire payload: preimage(32) ||
// value_u32_BE.
func (n Note) Encode() [PayloadLen]byte {
	var out [PayloadLen]byte
	copy(out[:PreimageLen], n.Preimage[:])
	binary.BigEndian.PutUint32(out[PreimageLen:], n.Value)
	return out
}

// Decode parses a 36-byte payload into a Note.
func Decode(payload []byte) (Note, error) {
	if len(payload) != PayloadLen {
		return Note{}, arkerrors.New(arkerrors.InvalidInput, "arknote.Decode", ErrInvalidLength)
	}
	var n Note
	copy(n.Preimage[:], payload[:PreimageLen])
	n.Value = binary.BigEndian.Uint32(payload[PreimageLen:])
	return n, nil
}

// String renders n as "<prefix>1<base58(payload)>", following the
// bech32-style human-readable-prefix convention used elsewhere in Bitcoin
// bearer-token encodings.
func (n Note) String() string {
	return ToString(n, DefaultPrefix)
}

// ToString renders n with an explicit prefix.
func ToString(n Note, prefix string) string {
	payload := n.Encode()
	return prefix + "1" + base58.Encode(payload[:])
}

// FromString parses a string produced by ToString/String.
func FromString(s string) (Note, error) {
	return fromStringWithPrefix(s, DefaultPrefix)
}

func fromStringWithPrefix(s, prefix string) (Note, error) {
	want := prefix + "1"
	if !strings.HasPrefix(s, want) {
		return Note{}, arkerrors.New(arkerrors.InvalidInput, "arknote.FromString", ErrInvalidPrefix)
	}
	encoded := s[len(want):]
	payload := base58.Decode(encoded)
	if len(payload) != PayloadLen {
		return Note{}, arkerrors.New(arkerrors.InvalidInput, "arknote.FromString", ErrBase58Decode)
	}
	return Decode(payload)
}

// PkScript returns the OP_SHA256 <sha256(preimage)> OP_EQUAL script that a
// single-leaf VTXO wraps this note's preimage in.
func (n Note) PkScript() ([]byte, error) {
	sum := sha256.Sum256(n.Preimage[:])
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_SHA256).
		AddData(sum[:]).
		AddOp(txscript.OP_EQUAL).
		Script()
}
