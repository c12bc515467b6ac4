package wallet

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/wire"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// UnrollStepType names one hop's outcome in the unilateral-exit walk.
type UnrollStepType int

const (
	// StepDone means every hop in the chain down to the commitment tx
	// is already confirmed on chain; there is nothing left to exit.
	StepDone UnrollStepType = iota
	// StepWait means the next unconfirmed hop has no FeeBumper
	// available to push it along; the caller should re-poll once it
	// (or a bump the caller arranged out of band) confirms.
	StepWait
	// StepUnroll means a CPFP package was built (and broadcast, when
	// UnrollNextStep was called with broadcast set) for the next
	// unconfirmed hop.
	StepUnroll
)

// UnrollStep is one hop's outcome of walking a vtxo's unilateral exit chain.
type UnrollStep struct {
	Type      UnrollStepType
	ParentHex string
	ChildHex  string
	Tx        *wire.MsgTx
}

// FeeBumper builds a CPFP child spending a parent transaction's P2A
// anchor output at feeRate, paying the fee from the wallet's own funds.
type FeeBumper interface {
	BuildCPFP(ctx context.Context, parentTx *wire.MsgTx, feeRate float64) (*wire.MsgTx, error)
}

// UnrollNextStep walks outpoint's vtxo chain toward its commitment
// transaction and acts on the first unconfirmed hop it finds: it either
// builds (and, with a FeeBumper and broadcast requested, submits) a CPFP
// package, or reports that the caller must wait. Callers drive a full
// unroll by calling this repeatedly until it returns StepDone.
func (w *Wallet) UnrollNextStep(ctx context.Context, outpoint vtxo.Outpoint, broadcast bool) (*UnrollStep, error) {
	chainPage, err := w.cfg.Indexer.GetVtxoChain(ctx, outpoint, provider.PageRequest{})
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.UnrollNextStep", err)
	}
	if len(chainPage.Chain) == 0 {
		return &UnrollStep{Type: StepDone}, nil
	}
	log.Debugf("unroll %v: walking %d hop(s)", outpoint, len(chainPage.Chain))

	for _, hop := range chainPage.Chain {
		status, err := w.cfg.Onchain.GetTxStatus(ctx, hop.Txid)
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProviderError, "wallet.UnrollNextStep", err)
		}
		if status.Confirmed {
			continue
		}

		txs, err := w.cfg.Indexer.GetVirtualTxs(ctx, []string{hop.Txid})
		if err != nil || len(txs) == 0 {
			return nil, arkerrors.New(arkerrors.ProviderError, "wallet.UnrollNextStep", err)
		}
		parentHex := txs[0]

		if w.cfg.FeeBumper == nil {
			return &UnrollStep{Type: StepWait, ParentHex: parentHex}, nil
		}

		parentTx, err := decodeRawTxHex(parentHex)
		if err != nil {
			return nil, err
		}
		feeRate, err := w.cfg.Onchain.GetFeeRate(ctx)
		if err != nil {
			return nil, arkerrors.New(arkerrors.ProviderError, "wallet.UnrollNextStep", err)
		}
		childTx, err := w.cfg.FeeBumper.BuildCPFP(ctx, parentTx, feeRate)
		if err != nil {
			return nil, err
		}
		childHex, err := encodeRawTxHex(childTx)
		if err != nil {
			return nil, err
		}

		if broadcast {
			if _, err := w.cfg.Onchain.BroadcastTransaction(ctx, parentHex, childHex); err != nil {
				log.Errorf("unroll: broadcast of CPFP package failed: %v", err)
				return nil, arkerrors.New(arkerrors.ProviderError, "wallet.UnrollNextStep", err)
			}
			log.Infof("unroll: broadcast CPFP package for hop %s", hop.Txid)
		}

		return &UnrollStep{Type: StepUnroll, ParentHex: parentHex, ChildHex: childHex, Tx: childTx}, nil
	}

	return &UnrollStep{Type: StepDone}, nil
}

func decodeRawTxHex(h string) (*wire.MsgTx, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.decodeRawTxHex", err)
	}
	tx := wire.NewMsgTx(0)
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.decodeRawTxHex", err)
	}
	return tx, nil
}

func encodeRawTxHex(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", arkerrors.New(arkerrors.ProtocolError, "wallet.encodeRawTxHex", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
