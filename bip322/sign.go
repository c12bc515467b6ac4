package bip322

import (
	"context"
	"encoding/base64"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/identity"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// Address returns the P2TR address a BIP-322 signature by id is bound to:
// the identity's x-only pubkey as a taproot internal key, tweaked with an
// empty script tree per BIP-341/BIP-86.
func Address(id identity.ReadonlyIdentity, network *chaincfg.Params) (string, error) {
	xOnly := id.XOnlyPublicKey()
	internal, err := curve.ParseXOnly(xOnly[:])
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "bip322.Address", err)
	}
	outputKey := txscript.ComputeTaprootKeyNoScript(internal)

	addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), network)
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "bip322.Address", err)
	}
	return addr.EncodeAddress(), nil
}

// Sign produces a BIP-322 simple signature for message over the P2TR
// address derived from id's x-only pubkey (see Address). Only the taproot
// key-path address form is supported.
func Sign(ctx context.Context, tag string, message []byte, id identity.Identity, network *chaincfg.Params) (string, error) {
	xOnly := id.XOnlyPublicKey()
	internal, err := curve.ParseXOnly(xOnly[:])
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "bip322.Sign", err)
	}
	outputKey := txscript.ComputeTaprootKeyNoScript(internal)

	addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), network)
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "bip322.Sign", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "bip322.Sign", err)
	}

	toSpendTx := ToSpend(tag, message, pkScript)
	toSpendTxid := toSpendTx.TxHash()
	toSignTx := ToSign(wire.OutPoint{Hash: toSpendTxid, Index: 0})

	packet, err := psbt.NewFromUnsignedTx(toSignTx)
	if err != nil {
		return "", arkerrors.New(arkerrors.ProtocolError, "bip322.Sign", err)
	}
	packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 0, PkScript: pkScript}
	packet.Inputs[0].TaprootInternalKey = xOnly[:]

	signed, err := id.Sign(ctx, packet, []int{0})
	if err != nil {
		return "", arkerrors.New(arkerrors.CryptoError, "bip322.Sign", err)
	}

	sig := signed.Inputs[0].TaprootKeySpendSig
	if len(sig) == 0 {
		return "", arkerrors.New(arkerrors.ProtocolError, "bip322.Sign", ErrNoWitnessProduced)
	}

	witness := wire.TxWitness{sig}
	witnessBytes := serializeWitness(witness)

	return base64.StdEncoding.EncodeToString(witnessBytes), nil
}

func serializeWitness(witness wire.TxWitness) []byte {
	var buf []byte
	buf = appendVarInt(buf, uint64(len(witness)))
	for _, item := range witness {
		buf = appendVarInt(buf, uint64(len(item)))
		buf = append(buf, item...)
	}
	return buf
}

func appendVarInt(buf []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(buf, byte(v))
	case v <= 0xffff:
		b := make([]byte, 3)
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(v))
		return append(buf, b...)
	case v <= 0xffffffff:
		b := make([]byte, 5)
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(v))
		return append(buf, b...)
	default:
		b := make([]byte, 9)
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], v)
		return append(buf, b...)
	}
}
