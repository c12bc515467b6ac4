// Package bip322 implements BIP-322 "simple" message signing and
// verification for taproot, P2WPKH, and legacy P2PKH addresses, plus the
// Ark "intent" variant used to authenticate batch-round registrations,
// which reuses the same toSpend/toSign skeleton under a different tag.
package bip322

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// BIP322Tag is the standard message tag.
const BIP322Tag = "BIP0322-signed-message"

// IntentTag authenticates an Ark batch-round input-registration envelope;
// it is structurally identical to BIP-322 signing but must never verify
// against a BIP322Tag signature and vice versa.
const IntentTag = "ark-intent-message"

// ToSpend builds the virtual "to_spend" transaction BIP-322 defines: one
// null input whose scriptSig commits to tag and message, spending into an
// output carrying pkScript at zero value.
func ToSpend(tag string, message []byte, pkScript []byte) *wire.MsgTx {
	msgHash := curve.TaggedHash(tag, message)

	scriptSig, _ := txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(msgHash[:]).
		Script()

	tx := wire.NewMsgTx(0)
	tx.LockTime = 0
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  scriptSig,
		Sequence:         0,
	})
	tx.AddTxOut(&wire.TxOut{Value: 0, PkScript: pkScript})
	return tx
}

// ToSign builds the virtual "to_sign" transaction: one input spending
// toSpendTxid:0, one zero-value OP_RETURN output.
func ToSign(toSpendTxid wire.OutPoint) *wire.MsgTx {
	tx := wire.NewMsgTx(0)
	tx.LockTime = 0
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: toSpendTxid,
		Sequence:         0,
	})
	tx.AddTxOut(&wire.TxOut{Value: 0, PkScript: []byte{0x6a}}) // OP_RETURN
	return tx
}
