// Package assetpacket implements the thin asset layer an issuance manager
// carries alongside the BTC output of an Ark transaction: a parallel,
// opaque "asset packet" output describing asset groups
// (issued/reissued/burned/changed). The per-group payload is opaque to this
// package; structural validation of that payload is the registered
// handler's job (see arkcontract.Handler); this package only enforces
// conservation of Changed-group amounts per asset id.
package assetpacket

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// GroupKind is the tagged variant of an asset group within a packet.
type GroupKind uint8

const (
	// GroupIssued mints new supply of an asset id. Exempt from the
	// per-asset conservation check.
	GroupIssued GroupKind = iota
	// GroupReissued adds supply to an already-issued asset id. Exempt
	// from the per-asset conservation check.
	GroupReissued
	// GroupBurned destroys supply of an asset id. Exempt from the
	// per-asset conservation check.
	GroupBurned
	// GroupChanged transfers existing supply without altering the total;
	// the handler's conservation invariant applies only to this kind.
	GroupChanged
)

// marker is the fixed byte sequence identifying an assetpacket OP_RETURN
// output, so an unrelated OP_RETURN output never parses as a packet.
var marker = []byte("arkassets")

// AssetID is a 32-byte asset identifier, opaque to this package.
type AssetID [32]byte

// Group is one opaque-payload entry in a Packet.
type Group struct {
	AssetID AssetID
	Kind    GroupKind
	Amount  uint64
	Payload []byte
}

// Packet is the full set of asset groups a single Ark tx output carries.
type Packet struct {
	Groups []Group
}

// Encode serializes p deterministically: count (2-byte BE) then, per group,
// AssetID(32) || Kind(1) || Amount(8-byte BE) || len(Payload)(2-byte BE) ||
// Payload.
func (p Packet) Encode() []byte {
	var buf bytes.Buffer
	var countBytes [2]byte
	binary.BigEndian.PutUint16(countBytes[:], uint16(len(p.Groups)))
	buf.Write(countBytes[:])

	for _, g := range p.Groups {
		buf.Write(g.AssetID[:])
		buf.WriteByte(byte(g.Kind))

		var amountBytes [8]byte
		binary.BigEndian.PutUint64(amountBytes[:], g.Amount)
		buf.Write(amountBytes[:])

		var lenBytes [2]byte
		binary.BigEndian.PutUint16(lenBytes[:], uint16(len(g.Payload)))
		buf.Write(lenBytes[:])
		buf.Write(g.Payload)
	}
	return buf.Bytes()
}

// Decode reverses Encode, failing closed on any truncation or trailing
// bytes rather than silently accepting a partially-parsed packet.
func Decode(encoded []byte) (Packet, error) {
	if len(encoded) < 2 {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.Decode", ErrTruncated)
	}
	count := int(binary.BigEndian.Uint16(encoded[:2]))
	pos := 2

	groups := make([]Group, 0, count)
	for i := 0; i < count; i++ {
		if pos+32+1+8+2 > len(encoded) {
			return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.Decode", ErrTruncated)
		}
		var g Group
		copy(g.AssetID[:], encoded[pos:pos+32])
		pos += 32

		g.Kind = GroupKind(encoded[pos])
		pos++

		g.Amount = binary.BigEndian.Uint64(encoded[pos : pos+8])
		pos += 8

		payloadLen := int(binary.BigEndian.Uint16(encoded[pos : pos+2]))
		pos += 2
		if pos+payloadLen > len(encoded) {
			return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.Decode", ErrTruncated)
		}
		if payloadLen > 0 {
			g.Payload = append([]byte(nil), encoded[pos:pos+payloadLen]...)
		}
		pos += payloadLen

		groups = append(groups, g)
	}

	if pos != len(encoded) {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.Decode", ErrTrailingBytes)
	}
	return Packet{Groups: groups}, nil
}

// NewOutput builds the zero-value OP_RETURN output that carries p alongside
// an Ark tx's BTC output.
func NewOutput(p Packet) (*wire.TxOut, error) {
	if len(p.Groups) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "assetpacket.NewOutput", ErrEmptyPacket)
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_RETURN)
	builder.AddData(marker)
	builder.AddData(p.Encode())
	pkScript, err := builder.Script()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "assetpacket.NewOutput", err)
	}

	return &wire.TxOut{Value: 0, PkScript: pkScript}, nil
}

// ParseOutput reverses NewOutput, failing if txOut is not a well-formed
// asset-packet output.
func ParseOutput(txOut *wire.TxOut) (Packet, error) {
	if txOut.Value != 0 {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.ParseOutput", ErrNonZeroValue)
	}

	tokenizer := txscript.MakeScriptTokenizer(0, txOut.PkScript)
	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.ParseOutput", ErrNotOpReturn)
	}
	if !tokenizer.Next() || !bytes.Equal(tokenizer.Data(), marker) {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.ParseOutput", ErrNotOpReturn)
	}
	if !tokenizer.Next() {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.ParseOutput", ErrTruncated)
	}
	payload := tokenizer.Data()
	if err := tokenizer.Err(); err != nil {
		return Packet{}, arkerrors.New(arkerrors.InvalidInput, "assetpacket.ParseOutput", err)
	}

	p, err := Decode(payload)
	if err != nil {
		return Packet{}, err
	}
	return p, nil
}
