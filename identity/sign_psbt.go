package identity

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// acceptedSighashes are the sighash flags a VTXO collaborative-path
// signature may be produced under; the tapscript verifier enforces the
// same allowlist on the receiving end.
var acceptedSighashes = []txscript.SigHashType{
	txscript.SigHashDefault,
	txscript.SigHashAll,
}

// signTaprootInputs walks packet, signing every index in targets (or every
// input when targets is empty) whose witness UTXO is a taproot output this
// key controls via one of its declared tapLeafScripts. It returns the
// number of inputs actually signed.
func signTaprootInputs(packet *psbt.Packet, targets []int, priv *btcec.PrivateKey) (int, error) {
	indexes := targets
	if len(indexes) == 0 {
		indexes = make([]int, len(packet.Inputs))
		for i := range indexes {
			indexes[i] = i
		}
	}

	prevScripts := make([][]byte, len(packet.Inputs))
	prevAmounts := make([]int64, len(packet.Inputs))
	for i, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			continue
		}
		prevScripts[i] = in.WitnessUtxo.PkScript
		prevAmounts[i] = in.WitnessUtxo.Value
	}
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, out := range packet.UnsignedTx.TxIn {
		if prevScripts[i] == nil {
			continue
		}
		fetcher.AddPrevOut(out.PreviousOutPoint, &wire.TxOut{
			Value:    prevAmounts[i],
			PkScript: prevScripts[i],
		})
	}
	sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)

	signed := 0
	xOnlyPub := curve.XOnly(priv.PubKey())

	for _, idx := range indexes {
		if idx < 0 || idx >= len(packet.Inputs) {
			continue
		}
		in := &packet.Inputs[idx]

		// Key-path spend: the input names this key as its taproot
		// internal key and declares no script leaves.
		if len(in.TaprootLeafScript) == 0 {
			if len(in.TaprootKeySpendSig) == 0 &&
				len(in.TaprootInternalKey) == 32 &&
				[32]byte(in.TaprootInternalKey) == xOnlyPub &&
				in.WitnessUtxo != nil {
				sig, err := txscript.RawTxInTaprootSignature(
					packet.UnsignedTx, sigHashes, idx,
					in.WitnessUtxo.Value, in.WitnessUtxo.PkScript,
					in.TaprootMerkleRoot, txscript.SigHashDefault, priv,
				)
				if err != nil {
					continue
				}
				in.TaprootKeySpendSig = sig
				signed++
			}
			continue
		}

		// Sign only a leaf that actually names this key; the first leaf
		// in the packet may belong to the server's unroll path.
		leaf := leafForKey(in.TaprootLeafScript, xOnlyPub)
		if leaf == nil {
			continue
		}

		sigHashType := txscript.SigHashDefault
		if in.SighashType != 0 && sighashAccepted(in.SighashType) {
			sigHashType = in.SighashType
		}

		tapLeaf := txscript.NewBaseTapLeaf(leaf.Script)
		leafHash := tapLeaf.TapHash()

		sigHash, err := txscript.CalcTapscriptSignaturehash(
			sigHashes, sigHashType, packet.UnsignedTx, idx,
			fetcher, tapLeaf,
		)
		if err != nil {
			continue
		}

		sig, err := curve.SignSchnorr(priv, sigHash)
		if err != nil {
			continue
		}

		in.TaprootScriptSpendSig = append(in.TaprootScriptSpendSig, &psbt.TaprootScriptSpendSig{
			XOnlyPubKey: xOnlyPub[:],
			LeafHash:    leafHash[:],
			Signature:   sig,
			SigHash:     sigHashType,
		})
		signed++
	}

	if signed == 0 {
		return 0, arkerrors.New(arkerrors.StateError, "identity.signTaprootInputs", ErrNoSignableInputs)
	}
	return signed, nil
}

// leafForKey returns the first tap leaf whose script pushes xOnlyPub, or nil
// when this key appears in none of them.
func leafForKey(leaves []*psbt.TaprootTapLeafScript, xOnlyPub [32]byte) *psbt.TaprootTapLeafScript {
	for _, l := range leaves {
		if scriptReferencesKey(l.Script, xOnlyPub) {
			return l
		}
	}
	return nil
}

func scriptReferencesKey(script []byte, xOnlyPub [32]byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		data := tokenizer.Data()
		if len(data) == 32 && [32]byte(data) == xOnlyPub {
			return true
		}
	}
	return false
}

func sighashAccepted(t txscript.SigHashType) bool {
	for _, a := range acceptedSighashes {
		if t == a {
			return true
		}
	}
	return false
}
