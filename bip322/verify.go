package bip322

import (
	"bytes"
	"encoding/base64"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// Verify checks a base64-encoded BIP-322 simple signature for message
// against address. It returns false (never panics) on any malformed input.
func Verify(tag string, message []byte, signature string, address string, network *chaincfg.Params) bool {
	addr, err := btcutil.DecodeAddress(address, network)
	if err != nil {
		return false
	}

	switch a := addr.(type) {
	case *btcutil.AddressTaproot:
		return verifyTaproot(tag, message, signature, a, network)
	case *btcutil.AddressWitnessPubKeyHash:
		return verifyWPKH(tag, message, signature, a, network)
	case *btcutil.AddressPubKeyHash:
		return verifyPKH(tag, message, signature, a)
	default:
		return false
	}
}

func verifyTaproot(tag string, message []byte, signature string, addr *btcutil.AddressTaproot, network *chaincfg.Params) bool {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	witness, err := deserializeWitness(raw)
	if err != nil {
		return false
	}
	if len(witness) != 1 {
		return false
	}
	sig := witness[0]
	if len(sig) != 64 && len(sig) != 65 {
		return false
	}
	sighashType := txscript.SigHashDefault
	if len(sig) == 65 {
		sighashType = txscript.SigHashType(sig[64])
	}
	if sighashType != txscript.SigHashDefault && sighashType != txscript.SigHashAll {
		return false
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return false
	}

	toSpendTx := ToSpend(tag, message, pkScript)
	toSignTx := ToSign(wire.OutPoint{Hash: toSpendTx.TxHash(), Index: 0})

	fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, 0)
	sigHashes := txscript.NewTxSigHashes(toSignTx, fetcher)
	hash, err := txscript.CalcTaprootSignatureHash(sigHashes, sighashType, toSignTx, 0, fetcher)
	if err != nil {
		return false
	}

	xOnly, err := curve.ParseXOnly(addr.ScriptAddress())
	if err != nil {
		return false
	}
	return curve.VerifySchnorr(xOnly, hash, sig[:64])
}

func verifyWPKH(tag string, message []byte, signature string, addr *btcutil.AddressWitnessPubKeyHash, network *chaincfg.Params) bool {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	witness, err := deserializeWitness(raw)
	if err != nil {
		return false
	}
	if len(witness) != 2 {
		return false
	}
	sigWithHashByte, pubBytes := witness[0], witness[1]
	if len(sigWithHashByte) < 2 || len(pubBytes) != 33 {
		return false
	}
	if txscript.SigHashType(sigWithHashByte[len(sigWithHashByte)-1]) != txscript.SigHashAll {
		return false
	}

	pub, err := curve.ParseCompressed(pubBytes)
	if err != nil {
		return false
	}
	if !bytes.Equal(curve.Hash160(pubBytes), addr.ScriptAddress()) {
		return false
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return false
	}
	toSpendTx := ToSpend(tag, message, pkScript)
	toSignTx := ToSign(wire.OutPoint{Hash: toSpendTx.TxHash(), Index: 0})

	scriptCode, err := txscript.PayToAddrScript(
		mustP2PKH(curve.Hash160(pubBytes), network),
	)
	if err != nil {
		return false
	}

	fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, 0)
	sigHashes := txscript.NewTxSigHashes(toSignTx, fetcher)
	hash, err := txscript.CalcWitnessSigHash(
		scriptCode, sigHashes, txscript.SigHashAll, toSignTx, 0, 0,
	)
	if err != nil {
		return false
	}

	derSig := sigWithHashByte[:len(sigWithHashByte)-1]
	return curve.VerifyECDSADER(pub, hash, derSig)
}

func verifyPKH(tag string, message []byte, signature string, addr *btcutil.AddressPubKeyHash) bool {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(raw) != 65 {
		return false
	}
	flag := raw[0]
	if flag < 27 || flag > 34 {
		return false
	}

	msgHash := legacyMessageHash(message)

	pub, _, err := curve.RecoverCompact(raw, msgHash[:])
	if err != nil {
		return false
	}
	if !bytes.Equal(curve.Hash160(pub.SerializeCompressed()), addr.ScriptAddress()) &&
		!bytes.Equal(curve.Hash160(pub.SerializeUncompressed()), addr.ScriptAddress()) {
		return false
	}
	return true
}

// legacyMessageHash computes SHA256d("\x18Bitcoin Signed Message:\n" ||
// varint(len(msg)) || msg), the legacy signmessage digest.
func legacyMessageHash(msg []byte) [32]byte {
	const prefix = "\x18Bitcoin Signed Message:\n"
	var buf []byte
	buf = append(buf, prefix...)
	buf = appendVarInt(buf, uint64(len(msg)))
	buf = append(buf, msg...)
	return curve.Sha256d(buf)
}

func mustP2PKH(hash160 []byte, network *chaincfg.Params) *btcutil.AddressPubKeyHash {
	addr, err := btcutil.NewAddressPubKeyHash(hash160, network)
	if err != nil {
		panic(err)
	}
	return addr
}

func deserializeWitness(raw []byte) (wire.TxWitness, error) {
	r := &byteReader{b: raw}
	count, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	witness := make(wire.TxWitness, 0, count)
	for i := uint64(0); i < count; i++ {
		n, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		item, err := r.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		witness = append(witness, item)
	}
	return witness, nil
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) readVarInt() (uint64, error) {
	if r.pos >= len(r.b) {
		return 0, ErrMalformedWitness
	}
	first := r.b[r.pos]
	r.pos++
	switch first {
	case 0xfd:
		v, err := r.readBytes(2)
		if err != nil {
			return 0, err
		}
		return uint64(v[0]) | uint64(v[1])<<8, nil
	case 0xfe:
		v, err := r.readBytes(4)
		if err != nil {
			return 0, err
		}
		return uint64(v[0]) | uint64(v[1])<<8 | uint64(v[2])<<16 | uint64(v[3])<<24, nil
	case 0xff:
		v, err := r.readBytes(8)
		if err != nil {
			return 0, err
		}
		var out uint64
		for i := 0; i < 8; i++ {
			out |= uint64(v[i]) << (8 * i)
		}
		return out, nil
	default:
		return uint64(first), nil
	}
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.b) {
		return nil, ErrMalformedWitness
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}
