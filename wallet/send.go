package wallet

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/script"
	"github.com/ark-network/ark-sdk-go/txbuilder"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// Recipient is one outgoing off-chain payment.
type Recipient struct {
	Address string
	Amount  int64
}

// SendResult reports the txids of a completed off-chain send.
type SendResult struct {
	ArkTxid         string
	CheckpointTxids []string
}

// Send runs an off-chain send orchestration: select spendable coins
// covering the recipients plus the server's per-output intent fee, build
// the ark tx and its checkpoints, sign every checkpoint input and the ark
// tx's collaborative closure, and submit both to the ArkProvider.
func (w *Wallet) Send(ctx context.Context, recipients []Recipient) (*SendResult, error) {
	if len(recipients) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.Send", ErrNoRecipients)
	}
	log.Debugf("send: %d recipient(s)", len(recipients))

	info, err := w.serverInfoCached(ctx)
	if err != nil {
		return nil, err
	}

	var outAmount int64
	outputs := make([]txbuilder.Output, 0, len(recipients)+1)
	for _, r := range recipients {
		if r.Amount <= 0 {
			return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.Send", ErrZeroAmount)
		}
		pkScript, err := DecodeArkAddress(r.Address)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, txbuilder.Output{PkScript: pkScript, Value: r.Amount})
		outAmount += r.Amount
	}

	feeEstimate := info.Fees.IntentFee.OnchainOutput * int64(len(recipients))
	target := outAmount + feeEstimate

	arkAddr, err := w.GetAddress()
	if err != nil {
		return nil, err
	}
	myScript, err := DecodeArkAddress(arkAddr)
	if err != nil {
		return nil, err
	}

	page, err := w.cfg.Indexer.GetVtxos(ctx, provider.VtxoQueryFilter{
		Scripts:       []string{hex.EncodeToString(myScript)},
		SpendableOnly: true,
	})
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Send", err)
	}

	selection, err := SelectVirtualCoins(page.Vtxos, target, info.Dust)
	if err != nil {
		return nil, err
	}
	log.Debugf("send: selected %d input(s), change=%d", len(selection.Inputs), selection.ChangeSats)

	if selection.ChangeSats > 0 {
		outputs = append(outputs, txbuilder.Output{PkScript: myScript, Value: selection.ChangeSats})
	}

	builderInputs := make([]txbuilder.Input, len(selection.Inputs))
	ownScripts := make([]*script.VtxoScript, len(selection.Inputs))
	for i, v := range selection.Inputs {
		in, vs, err := resolveBuilderInput(v)
		if err != nil {
			return nil, err
		}
		builderInputs[i] = in
		ownScripts[i] = vs
	}

	offchain, err := txbuilder.BuildOffchainTx(builderInputs, outputs, info.CheckpointTapscript)
	if err != nil {
		return nil, err
	}

	checkpointsB64 := make([]string, len(offchain.Checkpoints))
	for i, cp := range offchain.Checkpoints {
		in := builderInputs[i]

		pkt, err := psbt.NewFromUnsignedTx(cp.Tx)
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.Send", err)
		}
		ownPkScript, err := ownScripts[i].PkScript()
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.Send", err)
		}
		pkt.Inputs[0].WitnessUtxo = &wire.TxOut{Value: in.Value, PkScript: ownPkScript}
		pkt.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{
			{
				ControlBlock: in.ControlBlock,
				Script:       in.TapLeafScript,
				LeafVersion:  script.LeafVersion,
			},
		}

		signed, err := w.identity.Sign(ctx, pkt, []int{0})
		if err != nil {
			return nil, arkerrors.New(arkerrors.CryptoError, "wallet.Send", err)
		}
		b64, err := signed.B64Encode()
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.Send", err)
		}
		checkpointsB64[i] = b64
	}

	signedArkTx, err := w.identity.Sign(ctx, offchain.ArkTx, nil)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "wallet.Send", err)
	}
	arkTxB64, err := signedArkTx.B64Encode()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.Send", err)
	}

	txid, err := w.cfg.Ark.SubmitVirtualTx(ctx, arkTxB64, checkpointsB64)
	if err != nil {
		log.Errorf("send: submit failed: %v", err)
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Send", err)
	}
	log.Infof("send: submitted ark tx %s with %d checkpoint(s)", txid, len(checkpointsB64))

	cpTxids := make([]string, len(offchain.Checkpoints))
	for i, cp := range offchain.Checkpoints {
		cpTxids[i] = cp.Txid.String()
	}

	return &SendResult{ArkTxid: txid, CheckpointTxids: cpTxids}, nil
}

// resolveBuilderInput reconstructs v's own VtxoScript from its encoded
// leaves to recover the collaborative leaf's control block, then wraps it
// as the txbuilder.Input the offchain tx builder and checkpoint signer
// both need, alongside the VtxoScript itself for re-deriving the
// checkpoint's witness UTXO pkScript.
func resolveBuilderInput(v vtxo.ExtendedVirtualCoin) (txbuilder.Input, *script.VtxoScript, error) {
	vs, err := script.NewVtxoScript(unspendableInternalKey(), v.Tapscripts)
	if err != nil {
		return txbuilder.Input{}, nil, arkerrors.New(arkerrors.ProtocolError, "wallet.resolveBuilderInput", err)
	}

	var leaf *script.Leaf
	for i := range vs.Leaves {
		if string(vs.Leaves[i].Script) == string(v.CheckpointTapLeaf) {
			leaf = &vs.Leaves[i]
			break
		}
	}
	if leaf == nil {
		return txbuilder.Input{}, nil, arkerrors.New(arkerrors.ProtocolError,
			"wallet.resolveBuilderInput", ErrLeafNotFound)
	}

	txid, err := chainhash.NewHashFromStr(v.Outpoint.Txid)
	if err != nil {
		return txbuilder.Input{}, nil, arkerrors.New(arkerrors.InvalidInput, "wallet.resolveBuilderInput", err)
	}

	return txbuilder.Input{
		Outpoint:      wire.OutPoint{Hash: *txid, Index: v.Outpoint.VOut},
		Value:         v.Value,
		InternalKey:   unspendableInternalKey(),
		TapLeafScript: leaf.Script,
		ControlBlock:  leaf.ControlBlock,
	}, vs, nil
}
