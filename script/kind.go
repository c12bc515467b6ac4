// Package script builds and decodes the tapscript leaves used by Ark VTXOs:
// collaborative multisig closures, CSV/CLTV-locked unilateral-exit closures,
// conditional closures, and hashlock wrappers, plus the VtxoScript taproot
// tree these leaves are assembled into.
package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// Kind identifies the shape of a decoded tapscript leaf.
type Kind int

const (
	KindUnknown Kind = iota
	KindMultisig
	KindCSVMultisig
	KindCLTVMultisig
	KindConditionMultisig
	KindHashlock160
)

func (k Kind) String() string {
	switch k {
	case KindMultisig:
		return "multisig"
	case KindCSVMultisig:
		return "csv_multisig"
	case KindCLTVMultisig:
		return "cltv_multisig"
	case KindConditionMultisig:
		return "condition_multisig"
	case KindHashlock160:
		return "hashlock160"
	default:
		return "unknown"
	}
}

// LocktimeUnit distinguishes whether a CSV/CLTV value names a block count
// or a time quantity, per BIP-112/BIP-65.
type LocktimeUnit int

const (
	UnitUnset LocktimeUnit = iota
	UnitBlocks
	UnitSeconds
)

// cltvThreshold is the BIP-65 split point: values below it are block
// heights, values at or above it are UNIX timestamps.
const cltvThreshold = 500_000_000

// csvSecondsFlag is bit 22 of an nSequence-style CSV value (BIP-112): when
// set, the low 16 bits are a 512-second granularity time-lock instead of a
// block count.
const csvSecondsFlag = 1 << 22

// Tapscript is a decoded leaf: its kind, the pubkeys it references, and any
// locktime it imposes.
type Tapscript struct {
	Kind      Kind
	Threshold int // n in "n-of-k"
	Locktime  int64
	Unit      LocktimeUnit
	Pubkeys   []*btcec.PublicKey
	HashImage [32]byte // for KindHashlock160, the sha256 preimage hash target
	Condition []byte   // for KindConditionMultisig, the raw condition script
	Inner     *Tapscript
	RawScript []byte
}

// RequiredSignerCount returns the threshold multisig needs, or 0 if this
// leaf isn't a multisig variant.
func (t *Tapscript) RequiredSignerCount() int {
	switch t.Kind {
	case KindMultisig, KindCSVMultisig, KindCLTVMultisig, KindConditionMultisig:
		return t.Threshold
	default:
		return 0
	}
}
