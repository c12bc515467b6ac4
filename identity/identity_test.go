package identity

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/internal/curve"
	"github.com/ark-network/ark-sdk-go/musig2"
)

func TestSingleKeyHexRoundTrip(t *testing.T) {
	key, err := GenerateSingleKey()
	require.NoError(t, err)

	restored, err := NewSingleKeyFromHex(key.ToHex())
	require.NoError(t, err)
	require.Equal(t, key.XOnlyPublicKey(), restored.XOnlyPublicKey())
	require.Equal(t, key.CompressedPublicKey(), restored.CompressedPublicKey())
}

func TestSingleKeySignsTapscriptInput(t *testing.T) {
	key, err := GenerateSingleKey()
	require.NoError(t, err)
	xOnly := key.XOnlyPublicKey()

	leafScript, err := txscript.NewScriptBuilder().
		AddData(xOnly[:]).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)

	internal, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	tapLeaf := txscript.NewBaseTapLeaf(leafScript)
	tree := txscript.AssembleTaprootScriptTree(tapLeaf)
	root := tree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(internal.PubKey(), root[:])
	pkScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(schnorr.SerializePubKey(outputKey)).
		Script()
	require.NoError(t, err)

	tx := wire.NewMsgTx(3)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900, PkScript: pkScript})

	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 1000, PkScript: pkScript}
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
		{Script: leafScript, LeafVersion: txscript.BaseLeafVersion},
	}

	signed, err := key.Sign(context.Background(), packet, nil)
	require.NoError(t, err)
	require.Len(t, signed.Inputs[0].TaprootScriptSpendSig, 1)
	require.Equal(t, xOnly[:], signed.Inputs[0].TaprootScriptSpendSig[0].XOnlyPubKey)
}

func TestSingleKeySignsKeyPathInput(t *testing.T) {
	key, err := GenerateSingleKey()
	require.NoError(t, err)
	xOnly := key.XOnlyPublicKey()

	internal, err := curve.ParseXOnly(xOnly[:])
	require.NoError(t, err)
	outputKey := txscript.ComputeTaprootKeyNoScript(internal)
	pkScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(schnorr.SerializePubKey(outputKey)).
		Script()
	require.NoError(t, err)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 0, PkScript: []byte{txscript.OP_RETURN}})

	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 0, PkScript: pkScript}
	packet.Inputs[0].TaprootInternalKey = xOnly[:]

	signed, err := key.Sign(context.Background(), packet, []int{0})
	require.NoError(t, err)
	require.Len(t, signed.Inputs[0].TaprootKeySpendSig, 64)
}

func TestSignFailsWhenNothingSignable(t *testing.T) {
	key, err := GenerateSingleKey()
	require.NoError(t, err)
	other, err := GenerateSingleKey()
	require.NoError(t, err)
	otherXOnly := other.XOnlyPublicKey()

	leafScript, err := txscript.NewScriptBuilder().
		AddData(otherXOnly[:]).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)

	tx := wire.NewMsgTx(3)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 0, PkScript: []byte{txscript.OP_RETURN}})
	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 1000, PkScript: []byte{txscript.OP_1, 0x20}}
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
		{Script: leafScript, LeafVersion: txscript.BaseLeafVersion},
	}

	_, err = key.Sign(context.Background(), packet, nil)
	require.Error(t, err)
}

func TestSignerSessionSingleUseNonce(t *testing.T) {
	key, err := GenerateSingleKey()
	require.NoError(t, err)
	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	session := key.SignerSession()

	// Signing before any nonce was generated must fail.
	compressed := key.CompressedPublicKey()
	pub, err := btcec.ParsePubKey(compressed[:])
	require.NoError(t, err)
	keyAgg, err := musig2.AggregateKeys([]*btcec.PublicKey{pub, otherPriv.PubKey()}, musig2.KeyAggOptions{Sort: true})
	require.NoError(t, err)

	var msg [32]byte
	_, err = session.Sign([66]byte{}, msg, keyAgg)
	require.Error(t, err)

	nonce, err := session.GenerateNonce()
	require.NoError(t, err)

	otherNonces, err := musig2.GenerateNonces(otherPriv.PubKey())
	require.NoError(t, err)
	combined, err := musig2.AggregateNonces([][66]byte{nonce, otherNonces.PubNonce})
	require.NoError(t, err)

	_, err = session.Sign(combined, msg, keyAgg)
	require.NoError(t, err)

	// The same nonce may never sign twice.
	_, err = session.Sign(combined, msg, keyAgg)
	require.Error(t, err)
}

func TestHDDerivationIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 7)
	}

	hd1, err := NewHD(DefaultHDConfig(&chaincfg.RegressionNetParams, seed))
	require.NoError(t, err)
	hd2, err := NewHD(DefaultHDConfig(&chaincfg.RegressionNetParams, seed))
	require.NoError(t, err)

	require.Equal(t, hd1.XOnlyPublicKey(), hd2.XOnlyPublicKey())

	k0, err := hd1.KeyAt(0)
	require.NoError(t, err)
	k1, err := hd1.KeyAt(1)
	require.NoError(t, err)
	require.NotEqual(t, k0.PubKey().SerializeCompressed(), k1.PubKey().SerializeCompressed())
}

func TestToReadonlyDropsSigning(t *testing.T) {
	key, err := GenerateSingleKey()
	require.NoError(t, err)

	ro := key.ToReadonly()
	require.Equal(t, key.XOnlyPublicKey(), ro.XOnlyPublicKey())
	require.Equal(t, key.CompressedPublicKey(), ro.CompressedPublicKey())

	_, canSign := ro.(Identity)
	require.False(t, canSign)
}
