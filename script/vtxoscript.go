package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// LeafVersion is the tapscript leaf version Ark uses for every closure.
const LeafVersion = txscript.BaseLeafVersion // 0xC0

// Leaf pairs a raw tapscript with its precomputed control block against the
// VtxoScript's tree.
type Leaf struct {
	Script       []byte // raw leaf script, without a leaf-version byte
	ControlBlock []byte // serialized; first byte is LeafVersion with the output key's parity in its low bit
}

// VtxoScript is the taproot tree a VTXO output is committed to: an internal
// (unspendable or NUMS) key plus an ordered list of raw leaf scripts.
type VtxoScript struct {
	InternalKey *btcec.PublicKey
	Leaves      []Leaf
	TweakedKey  *btcec.PublicKey // output key after the taproot tweak
	Parity      bool
}

// NewVtxoScript builds the taproot tree for scripts under internalKey,
// computing the tweaked output key and a (controlBlock, script) pair for
// every leaf. Leaf.Script is the raw script as given: no leaf-version byte
// is appended to it, and the version is carried only in the control block.
func NewVtxoScript(internalKey *btcec.PublicKey, scripts [][]byte) (*VtxoScript, error) {
	if len(scripts) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "script.NewVtxoScript", ErrEmptyLeaves)
	}

	leaves := make([]txscript.TapLeaf, len(scripts))
	for i, s := range scripts {
		leaves[i] = txscript.NewBaseTapLeaf(s)
	}

	tree := txscript.AssembleTaprootScriptTree(leaves...)
	root := tree.RootNode.TapHash()
	tweakedKey := txscript.ComputeTaprootOutputKey(internalKey, root[:])

	out := &VtxoScript{
		InternalKey: internalKey,
		TweakedKey:  tweakedKey,
		Parity:      tweakedKey.SerializeCompressed()[0] == secp256k1.PubKeyFormatCompressedOdd,
	}

	for i, s := range scripts {
		proof := tree.LeafMerkleProofs[i]
		cb := proof.ToControlBlock(internalKey)
		cbBytes, err := cb.ToBytes()
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "script.NewVtxoScript", err)
		}
		out.Leaves = append(out.Leaves, Leaf{Script: s, ControlBlock: cbBytes})
	}

	return out, nil
}

// PkScript returns the OP_1 <32-byte x-only key> witness program for this
// VtxoScript's output.
func (v *VtxoScript) PkScript() ([]byte, error) {
	xOnly := schnorr.SerializePubKey(v.TweakedKey)
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(xOnly).
		Script()
}
