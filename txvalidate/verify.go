// Package txvalidate verifies that a tapscript-spending PSBT input carries
// valid signatures from the required signer set, per BIP-341.
package txvalidate

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// Options configures VerifyTapscriptSignatures.
type Options struct {
	RequiredSigners  [][32]byte // x-only pubkeys that must all have signed
	ExcludePubkeys   [][32]byte
	AllowedSighashes []txscript.SigHashType // defaults to {SigHashDefault} if empty
}

// VerifyTapscriptSignatures checks every tapScriptSig entry on
// packet.Inputs[inputIndex] against the reconstructed BIP-341 sighash for
// its matching tapLeafScript, then confirms every required signer (minus
// any excluded) produced a valid signature.
func VerifyTapscriptSignatures(packet *psbt.Packet, inputIndex int, opts Options) error {
	if inputIndex < 0 || inputIndex >= len(packet.Inputs) {
		return arkerrors.New(arkerrors.InvalidInput, "txvalidate.VerifyTapscriptSignatures",
			ErrMissingWitnessUtxo)
	}

	allowed := opts.AllowedSighashes
	if len(allowed) == 0 {
		allowed = []txscript.SigHashType{txscript.SigHashDefault}
	}

	prevScripts := make([][]byte, len(packet.Inputs))
	prevAmounts := make([]int64, len(packet.Inputs))
	for i, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
				ErrMissingWitnessUtxo)
		}
		prevScripts[i] = in.WitnessUtxo.PkScript
		prevAmounts[i] = in.WitnessUtxo.Value
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range packet.UnsignedTx.TxIn {
		fetcher.AddPrevOut(in.PreviousOutPoint, &wire.TxOut{
			Value:    prevAmounts[i],
			PkScript: prevScripts[i],
		})
	}
	sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)

	input := packet.Inputs[inputIndex]
	if len(input.TaprootScriptSpendSig) == 0 {
		return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
			ErrMissingTapScriptSig)
	}
	if len(input.TaprootLeafScript) == 0 {
		return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
			ErrMissingTapScriptSig)
	}

	signed := make(map[[32]byte]bool)

	for _, sigEntry := range input.TaprootScriptSpendSig {
		var pub [32]byte
		copy(pub[:], sigEntry.XOnlyPubKey)

		if containsKey(opts.ExcludePubkeys, pub) {
			continue
		}

		sig := sigEntry.Signature
		sighashType := sigEntry.SigHash
		if len(sig) == 65 {
			sighashType = txscript.SigHashType(sig[64])
			sig = sig[:64]
		}
		if !containsSighash(allowed, sighashType) {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
				ErrUnallowedSighash)
		}

		var leaf *psbt.TaprootTapLeafScript
		for _, l := range input.TaprootLeafScript {
			tl := txscript.NewBaseTapLeaf(l.Script)
			h := tl.TapHash()
			if bytes.Equal(h[:], sigEntry.LeafHash) {
				leaf = l
				break
			}
		}
		if leaf == nil {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
				ErrLeafHashMismatch)
		}

		sigHash, err := txscript.CalcTapscriptSignaturehash(
			sigHashes, sighashType, packet.UnsignedTx, inputIndex, fetcher,
			txscript.NewBaseTapLeaf(leaf.Script),
		)
		if err != nil {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures", err)
		}

		xOnlyPub, err := curve.ParseXOnly(sigEntry.XOnlyPubKey)
		if err != nil {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
				ErrInvalidSignature)
		}
		if !curve.VerifySchnorr(xOnlyPub, sigHash, sig) {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
				ErrInvalidSignature)
		}

		signed[pub] = true
	}

	for _, required := range opts.RequiredSigners {
		if containsKey(opts.ExcludePubkeys, required) {
			continue
		}
		if !signed[required] {
			return arkerrors.New(arkerrors.ProtocolError, "txvalidate.VerifyTapscriptSignatures",
				ErrMissingSigners)
		}
	}

	return nil
}

func containsKey(set [][32]byte, key [32]byte) bool {
	for _, k := range set {
		if k == key {
			return true
		}
	}
	return false
}

func containsSighash(set []txscript.SigHashType, h txscript.SigHashType) bool {
	for _, s := range set {
		if s == h {
			return true
		}
	}
	return false
}
