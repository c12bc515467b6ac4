package txvalidate

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/internal/curve"
	"github.com/ark-network/ark-sdk-go/script"
)

func TestVerifyTapscriptSignaturesHappyPath(t *testing.T) {
	internal, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	signer, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	leafScript := buildSingleSigLeaf(t, signer.PubKey())
	vs, err := script.NewVtxoScript(internal.PubKey(), [][]byte{leafScript})
	require.NoError(t, err)
	pkScript, err := vs.PkScript()
	require.NoError(t, err)

	tx := wire.NewMsgTx(3)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: pkScript})

	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 50000, PkScript: pkScript}
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
		{Script: leafScript, LeafVersion: script.LeafVersion},
	}

	fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, 50000)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)
	tapLeaf := txscript.NewBaseTapLeaf(leafScript)
	leafHash := tapLeaf.TapHash()

	sigHash, err := txscript.CalcTapscriptSignaturehash(
		sigHashes, txscript.SigHashDefault, tx, 0, fetcher, tapLeaf)
	require.NoError(t, err)

	sig, err := curve.SignSchnorr(signer, sigHash)
	require.NoError(t, err)

	xOnly := curve.XOnly(signer.PubKey())
	packet.Inputs[0].TaprootScriptSpendSig = []*psbt.TaprootScriptSpendSig{
		{XOnlyPubKey: xOnly[:], LeafHash: leafHash[:], Signature: sig, SigHash: txscript.SigHashDefault},
	}

	err = VerifyTapscriptSignatures(packet, 0, Options{
		RequiredSigners: [][32]byte{xOnly},
	})
	require.NoError(t, err)
}

func TestVerifyTapscriptSignaturesMissingSigner(t *testing.T) {
	internal, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	signer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	leafScript := buildSingleSigLeaf(t, signer.PubKey())
	vs, err := script.NewVtxoScript(internal.PubKey(), [][]byte{leafScript})
	require.NoError(t, err)
	pkScript, err := vs.PkScript()
	require.NoError(t, err)

	tx := wire.NewMsgTx(3)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: pkScript})

	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 50000, PkScript: pkScript}
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
		{Script: leafScript, LeafVersion: script.LeafVersion},
	}
	packet.Inputs[0].TaprootScriptSpendSig = []*psbt.TaprootScriptSpendSig{}

	otherXOnly := curve.XOnly(other.PubKey())
	err = VerifyTapscriptSignatures(packet, 0, Options{
		RequiredSigners: [][32]byte{otherXOnly},
	})
	require.Error(t, err)
}

// TestVerifyThreeOfThree drives one 3-of-3 leaf through every outcome: all
// three valid signatures pass, omitting one fails with ErrMissingSigners, a
// flipped signature byte fails with ErrInvalidSignature, and an appended
// SIGHASH_ALL byte fails with ErrUnallowedSighash under the default
// allowlist.
func TestVerifyThreeOfThree(t *testing.T) {
	internal, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	signers := make([]*btcec.PrivateKey, 3)
	xOnlys := make([][32]byte, 3)
	for i := range signers {
		p, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		signers[i] = p
		xOnlys[i] = curve.XOnly(p.PubKey())
	}

	b := txscript.NewScriptBuilder()
	for i, x := range xOnlys {
		b.AddData(x[:])
		if i == 0 {
			b.AddOp(txscript.OP_CHECKSIG)
		} else {
			b.AddOp(txscript.OP_CHECKSIGADD)
		}
	}
	b.AddInt64(3)
	b.AddOp(txscript.OP_NUMEQUAL)
	leafScript, err := b.Script()
	require.NoError(t, err)

	vs, err := script.NewVtxoScript(internal.PubKey(), [][]byte{leafScript})
	require.NoError(t, err)
	pkScript, err := vs.PkScript()
	require.NoError(t, err)

	newPacket := func() *psbt.Packet {
		tx := wire.NewMsgTx(3)
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
		tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: pkScript})
		packet, err := psbt.NewFromUnsignedTx(tx)
		require.NoError(t, err)
		packet.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 50000, PkScript: pkScript}
		packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
			{Script: leafScript, LeafVersion: script.LeafVersion},
		}
		return packet
	}

	signAll := func(packet *psbt.Packet, skip int) {
		fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, 50000)
		sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)
		tapLeaf := txscript.NewBaseTapLeaf(leafScript)
		leafHash := tapLeaf.TapHash()

		sigHash, err := txscript.CalcTapscriptSignaturehash(
			sigHashes, txscript.SigHashDefault, packet.UnsignedTx, 0, fetcher, tapLeaf)
		require.NoError(t, err)

		for i, s := range signers {
			if i == skip {
				continue
			}
			sig, err := curve.SignSchnorr(s, sigHash)
			require.NoError(t, err)
			packet.Inputs[0].TaprootScriptSpendSig = append(
				packet.Inputs[0].TaprootScriptSpendSig,
				&psbt.TaprootScriptSpendSig{
					XOnlyPubKey: xOnlys[i][:],
					LeafHash:    leafHash[:],
					Signature:   sig,
					SigHash:     txscript.SigHashDefault,
				})
		}
	}

	opts := Options{RequiredSigners: xOnlys}

	full := newPacket()
	signAll(full, -1)
	require.NoError(t, VerifyTapscriptSignatures(full, 0, opts))

	missing := newPacket()
	signAll(missing, 2)
	err = VerifyTapscriptSignatures(missing, 0, opts)
	require.ErrorIs(t, err, ErrMissingSigners)

	flipped := newPacket()
	signAll(flipped, -1)
	flipped.Inputs[0].TaprootScriptSpendSig[1].Signature[10] ^= 0x01
	err = VerifyTapscriptSignatures(flipped, 0, opts)
	require.ErrorIs(t, err, ErrInvalidSignature)

	badSighash := newPacket()
	signAll(badSighash, -1)
	entry := badSighash.Inputs[0].TaprootScriptSpendSig[0]
	entry.Signature = append(entry.Signature, byte(txscript.SigHashAll))
	err = VerifyTapscriptSignatures(badSighash, 0, opts)
	require.ErrorIs(t, err, ErrUnallowedSighash)
}

func buildSingleSigLeaf(t *testing.T, pub *btcec.PublicKey) []byte {
	t.Helper()
	b := txscript.NewScriptBuilder()
	b.AddData(curveXOnlyBytes(pub))
	b.AddOp(txscript.OP_CHECKSIG)
	out, err := b.Script()
	require.NoError(t, err)
	return out
}

func curveXOnlyBytes(pub *btcec.PublicKey) []byte {
	x := curve.XOnly(pub)
	return x[:]
}
