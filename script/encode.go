package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// MultisigScript encodes an n-of-k CHECKSIGADD multisig leaf:
// <pub> OP_CHECKSIG (<pub> OP_CHECKSIGADD)* <threshold> OP_NUMEQUAL.
func MultisigScript(threshold int, pubkeys ...*btcec.PublicKey) ([]byte, error) {
	if len(pubkeys) == 0 || threshold < 1 || threshold > len(pubkeys) {
		return nil, arkerrors.New(arkerrors.InvalidInput, "script.MultisigScript", ErrAmbiguousScript)
	}

	b := txscript.NewScriptBuilder()
	for i, pub := range pubkeys {
		b.AddData(schnorr.SerializePubKey(pub))
		if i == 0 {
			b.AddOp(txscript.OP_CHECKSIG)
		} else {
			b.AddOp(txscript.OP_CHECKSIGADD)
		}
	}
	b.AddInt64(int64(threshold))
	b.AddOp(txscript.OP_NUMEQUAL)

	out, err := b.Script()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.MultisigScript", err)
	}
	return out, nil
}

// CSVMultisigScript encodes a relative-timelocked multisig leaf:
// <value> OP_CSV OP_DROP <multisig>. The locktime is given in its natural
// unit and converted to the nSequence encoding here: block counts pass
// through, second counts are rounded down to 512-second granularity and
// carry the type flag (bit 22).
func CSVMultisigScript(locktime int64, unit LocktimeUnit, threshold int, pubkeys ...*btcec.PublicKey) ([]byte, error) {
	var value int64
	switch unit {
	case UnitBlocks:
		if locktime < 1 || locktime > 0xffff {
			return nil, arkerrors.New(arkerrors.InvalidInput, "script.CSVMultisigScript", ErrAmbiguousScript)
		}
		value = locktime
	case UnitSeconds:
		granules := locktime >> 9
		if granules < 1 || granules > 0xffff {
			return nil, arkerrors.New(arkerrors.InvalidInput, "script.CSVMultisigScript", ErrAmbiguousScript)
		}
		value = csvSecondsFlag | granules
	default:
		return nil, arkerrors.New(arkerrors.InvalidInput, "script.CSVMultisigScript", ErrAmbiguousScript)
	}

	inner, err := MultisigScript(threshold, pubkeys...)
	if err != nil {
		return nil, err
	}

	b := txscript.NewScriptBuilder()
	b.AddInt64(value)
	b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddOps(inner)

	out, err := b.Script()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.CSVMultisigScript", err)
	}
	return out, nil
}

// CLTVMultisigScript encodes an absolute-timelocked multisig leaf:
// <value> OP_CLTV OP_DROP <multisig>. The value's unit follows the BIP-65
// convention: below 500_000_000 it names a block height, at or above it a
// UNIX timestamp.
func CLTVMultisigScript(locktime int64, threshold int, pubkeys ...*btcec.PublicKey) ([]byte, error) {
	if locktime < 1 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "script.CLTVMultisigScript", ErrAmbiguousScript)
	}

	inner, err := MultisigScript(threshold, pubkeys...)
	if err != nil {
		return nil, err
	}

	b := txscript.NewScriptBuilder()
	b.AddInt64(locktime)
	b.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddOps(inner)

	out, err := b.Script()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.CLTVMultisigScript", err)
	}
	return out, nil
}

// ConditionMultisigScript encodes a multisig leaf gated on an arbitrary
// condition script: <condition> OP_VERIFY <multisig>. The condition must
// leave a truthy value on the stack for OP_VERIFY to consume before the
// multisig runs; its bytes are carried opaquely and round-trip through
// DecodeTapscript as Tapscript.Condition.
func ConditionMultisigScript(condition []byte, threshold int, pubkeys ...*btcec.PublicKey) ([]byte, error) {
	if len(condition) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "script.ConditionMultisigScript", ErrAmbiguousScript)
	}

	inner, err := MultisigScript(threshold, pubkeys...)
	if err != nil {
		return nil, err
	}

	b := txscript.NewScriptBuilder()
	b.AddOps(condition)
	b.AddOp(txscript.OP_VERIFY)
	b.AddOps(inner)

	out, err := b.Script()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.ConditionMultisigScript", err)
	}
	return out, nil
}

// HashlockScript wraps inner behind a sha256 preimage reveal:
// OP_SHA256 <hash> OP_EQUALVERIFY <inner>.
func HashlockScript(hash [32]byte, inner []byte) ([]byte, error) {
	if len(inner) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "script.HashlockScript", ErrEmptyLeaves)
	}

	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_SHA256)
	b.AddData(hash[:])
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOps(inner)

	out, err := b.Script()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "script.HashlockScript", err)
	}
	return out, nil
}
