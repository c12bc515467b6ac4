package script

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

func TestMultisigScriptRoundTrip(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	p2, _ := btcec.NewPrivateKey()
	p3, _ := btcec.NewPrivateKey()

	encoded, err := MultisigScript(2, p1.PubKey(), p2.PubKey(), p3.PubKey())
	require.NoError(t, err)

	ts, err := DecodeTapscript(encoded)
	require.NoError(t, err)
	require.Equal(t, KindMultisig, ts.Kind)
	require.Equal(t, 2, ts.Threshold)
	require.Len(t, ts.Pubkeys, 3)
}

func TestMultisigScriptRejectsBadThreshold(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	_, err := MultisigScript(0, p1.PubKey())
	require.Error(t, err)
	_, err = MultisigScript(2, p1.PubKey())
	require.Error(t, err)
}

func TestCSVMultisigScriptBlocksRoundTrip(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()

	encoded, err := CSVMultisigScript(144, UnitBlocks, 1, p1.PubKey())
	require.NoError(t, err)

	ts, err := DecodeTapscript(encoded)
	require.NoError(t, err)
	require.Equal(t, KindCSVMultisig, ts.Kind)
	require.Equal(t, UnitBlocks, ts.Unit)
	require.Equal(t, int64(144), ts.Locktime)
}

func TestCSVMultisigScriptSecondsRoundTrip(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()

	// 1024 seconds = 2 granules of 512s; the decoder reports the rounded
	// value back in seconds.
	encoded, err := CSVMultisigScript(1024, UnitSeconds, 1, p1.PubKey())
	require.NoError(t, err)

	ts, err := DecodeTapscript(encoded)
	require.NoError(t, err)
	require.Equal(t, KindCSVMultisig, ts.Kind)
	require.Equal(t, UnitSeconds, ts.Unit)
	require.Equal(t, int64(1024), ts.Locktime)
}

func TestCLTVMultisigScriptRoundTrip(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()

	blocks, err := CLTVMultisigScript(800_000, 1, p1.PubKey())
	require.NoError(t, err)
	tsBlocks, err := DecodeTapscript(blocks)
	require.NoError(t, err)
	require.Equal(t, KindCLTVMultisig, tsBlocks.Kind)
	require.Equal(t, UnitBlocks, tsBlocks.Unit)

	seconds, err := CLTVMultisigScript(1_700_000_000, 1, p1.PubKey())
	require.NoError(t, err)
	tsSeconds, err := DecodeTapscript(seconds)
	require.NoError(t, err)
	require.Equal(t, UnitSeconds, tsSeconds.Unit)
}

func TestConditionMultisigScriptRoundTrip(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	p2, _ := btcec.NewPrivateKey()

	// Condition: reveal a sha256 preimage, leaving true for OP_VERIFY.
	var hash [32]byte
	hash[0] = 0xcd
	condition, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_SHA256).
		AddData(hash[:]).
		AddOp(txscript.OP_EQUAL).
		Script()
	require.NoError(t, err)

	encoded, err := ConditionMultisigScript(condition, 2, p1.PubKey(), p2.PubKey())
	require.NoError(t, err)

	ts, err := DecodeTapscript(encoded)
	require.NoError(t, err)
	require.Equal(t, KindConditionMultisig, ts.Kind)
	require.Equal(t, condition, ts.Condition)
	require.Equal(t, 2, ts.Threshold)
	require.Len(t, ts.Pubkeys, 2)
	require.Equal(t, 2, ts.RequiredSignerCount())
}

func TestConditionMultisigScriptRejectsEmptyCondition(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	_, err := ConditionMultisigScript(nil, 1, p1.PubKey())
	require.Error(t, err)
}

func TestHashlockScriptRoundTrip(t *testing.T) {
	p1, _ := btcec.NewPrivateKey()
	inner, err := MultisigScript(1, p1.PubKey())
	require.NoError(t, err)

	var hash [32]byte
	hash[0] = 0xab

	encoded, err := HashlockScript(hash, inner)
	require.NoError(t, err)

	ts, err := DecodeTapscript(encoded)
	require.NoError(t, err)
	require.Equal(t, KindHashlock160, ts.Kind)
	require.Equal(t, hash, ts.HashImage)
	require.NotNil(t, ts.Inner)
}
