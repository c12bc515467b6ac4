package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/script"
)

// Input is one spend the builder consumes: the outpoint being spent, its
// value, the taproot internal key its VTXO tree was built under, and the
// collaborative-closure leaf script it will be re-signed under.
type Input struct {
	Outpoint    wire.OutPoint
	Value       int64
	InternalKey *btcec.PublicKey

	// TapLeafScript is the collaborative closure's raw leaf script and
	// control block against the VTXO's own tree.
	TapLeafScript []byte
	ControlBlock  []byte

	// CheckpointTapLeafScript overrides TapLeafScript as the closure
	// re-wrapped into the checkpoint tree, when the two must differ.
	CheckpointTapLeafScript []byte
}

// checkpointLeaf returns the leaf script used to build the checkpoint's
// collaborative closure.
func (in Input) checkpointLeaf() []byte {
	if len(in.CheckpointTapLeafScript) > 0 {
		return in.CheckpointTapLeafScript
	}
	return in.TapLeafScript
}

// Checkpoint is one input's intermediate checkpoint transaction plus the
// tapLeafScript/control-block pair the arkTx needs to spend its output.
type Checkpoint struct {
	Tx                *wire.MsgTx
	Txid              chainhash.Hash
	VtxoScript        *script.VtxoScript
	CollaborativeLeaf []byte
	CollaborativeCB   []byte
}

// buildCheckpoints implements step 1 of buildOffchainTx: for every input,
// decode its collaborative closure, build a VtxoScript combining it with
// serverUnrollScript, and produce a single-input/single-output tx spending
// the original input into that new tree.
func buildCheckpoints(inputs []Input, serverUnrollScript []byte) ([]Checkpoint, error) {
	checkpoints := make([]Checkpoint, 0, len(inputs))

	for _, in := range inputs {
		leafScript := in.checkpointLeaf()
		if len(leafScript) == 0 {
			return nil, arkerrors.New(arkerrors.InvalidInput, "txbuilder.buildCheckpoints", ErrMissingLeafScript)
		}
		if _, err := script.DecodeTapscript(leafScript); err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "txbuilder.buildCheckpoints", ErrDecodeLeaf)
		}

		checkpointVtxoScript, err := script.NewVtxoScript(in.InternalKey, [][]byte{serverUnrollScript, leafScript})
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "txbuilder.buildCheckpoints", err)
		}
		pkScript, err := checkpointVtxoScript.PkScript()
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "txbuilder.buildCheckpoints", err)
		}

		tx := wire.NewMsgTx(3)
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: in.Outpoint, Sequence: wire.MaxTxInSequenceNum})
		tx.AddTxOut(&wire.TxOut{Value: in.Value, PkScript: pkScript})

		// leaves[1] is the collaborative closure, re-wrapped in the new
		// tree alongside the server's unroll script at leaves[0].
		collabLeaf := checkpointVtxoScript.Leaves[1]

		checkpoints = append(checkpoints, Checkpoint{
			Tx:                tx,
			Txid:              tx.TxHash(),
			VtxoScript:        checkpointVtxoScript,
			CollaborativeLeaf: collabLeaf.Script,
			CollaborativeCB:   collabLeaf.ControlBlock,
		})
	}

	return checkpoints, nil
}
