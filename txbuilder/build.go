// Package txbuilder assembles Ark offchain transactions: the per-input
// checkpoint transactions that re-wrap each VTXO's collaborative closure
// under the server's unroll script, and the ark transaction that spends
// every checkpoint output into the caller's requested outputs.
package txbuilder

import (
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/script"
)

// defaultSequence is BIP-68/BIP-112's "final" sentinel; subtracting one
// from it, per spec, marks an input as locktime-bearing without itself
// imposing a relative timelock.
const defaultSequence = wire.MaxTxInSequenceNum

// Output is a value going into the new ark transaction.
type Output struct {
	PkScript []byte
	Value    int64
}

// p2aPkScript is the well-known pay-to-anchor script: OP_1 <2-byte
// 0x4e73> used as an ephemeral CPFP anchor.
var p2aPkScript = []byte{txscript.OP_1, 0x02, 0x4e, 0x73}

// OffchainTx is the result of BuildOffchainTx: the ark transaction plus the
// per-input checkpoint transactions it depends on.
type OffchainTx struct {
	ArkTx       *psbt.Packet
	Checkpoints []Checkpoint
}

// BuildOffchainTx implements buildOffchainTx: it builds a checkpoint per
// input, then an ark transaction consuming every checkpoint output and
// producing outputs, enforcing single-unit CLTV locktime discipline and
// appending a trailing P2A anchor output.
func BuildOffchainTx(inputs []Input, outputs []Output, serverUnrollScript []byte) (*OffchainTx, error) {
	if len(inputs) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "txbuilder.BuildOffchainTx", ErrNoInputs)
	}

	checkpoints, err := buildCheckpoints(inputs, serverUnrollScript)
	if err != nil {
		return nil, err
	}

	lockTime, err := resolveLockTime(inputs)
	if err != nil {
		return nil, err
	}

	arkTx := wire.NewMsgTx(3)
	arkTx.LockTime = uint32(lockTime)

	for _, cp := range checkpoints {
		seq := defaultSequence
		if lockTime != 0 {
			seq = defaultSequence - 1
		}
		arkTx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: cp.Txid, Index: 0},
			Sequence:         seq,
		})
	}
	for _, o := range outputs {
		arkTx.AddTxOut(&wire.TxOut{Value: o.Value, PkScript: o.PkScript})
	}
	arkTx.AddTxOut(&wire.TxOut{Value: 0, PkScript: p2aPkScript})

	packet, err := psbt.NewFromUnsignedTx(arkTx)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "txbuilder.BuildOffchainTx", err)
	}

	for i, cp := range checkpoints {
		value := cp.Tx.TxOut[0].Value
		pkScript := cp.Tx.TxOut[0].PkScript

		packet.Inputs[i].WitnessUtxo = &wire.TxOut{Value: value, PkScript: pkScript}
		packet.Inputs[i].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
			{
				ControlBlock: cp.CollaborativeCB,
				Script:       cp.CollaborativeLeaf,
				LeafVersion:  script.LeafVersion,
			},
		}

		leaves := make([][]byte, len(cp.VtxoScript.Leaves))
		for j, l := range cp.VtxoScript.Leaves {
			leaves[j] = l.Script
		}
		SetVtxoTaprootTree(&packet.Inputs[i], EncodeTapTree(leaves))
	}

	return &OffchainTx{ArkTx: packet, Checkpoints: checkpoints}, nil
}

// resolveLockTime computes max(absolute CLTV timelock) across all CLTV
// leaves, rejecting disagreement on block-vs-second units.
func resolveLockTime(inputs []Input) (int64, error) {
	var lockTime int64
	var unit script.LocktimeUnit

	for _, in := range inputs {
		leafScript := in.checkpointLeaf()
		decoded, err := script.DecodeTapscript(leafScript)
		if err != nil {
			continue
		}
		if decoded.Kind != script.KindCLTVMultisig {
			continue
		}

		if unit == script.UnitUnset {
			unit = decoded.Unit
		} else if unit != decoded.Unit {
			return 0, arkerrors.New(arkerrors.Policy, "txbuilder.resolveLockTime", ErrMixedLocktimeUnits)
		}

		if decoded.Locktime > lockTime {
			lockTime = decoded.Locktime
		}
	}

	return lockTime, nil
}
