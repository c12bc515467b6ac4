package wallet

import (
	"context"
	"errors"

	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

var errNotImplemented = errors.New("wallet test fake: method not exercised by these tests")

// fakeIndexer is a minimal in-memory provider.IndexerProvider backing
// wallet's own orchestration tests: it answers GetVtxos, GetVirtualTxs, and
// GetVtxoChain from fixtures the test sets up, and leaves every other
// method unimplemented since no wallet operation under test calls them.
type fakeIndexer struct {
	vtxos      []vtxo.ExtendedVirtualCoin
	virtualTxs map[string]string
	chain      []provider.ChainTx
}

func (f *fakeIndexer) GetVtxos(ctx context.Context, filter provider.VtxoQueryFilter) (provider.VtxoPage, error) {
	if filter.SpendableOnly {
		var spendable []vtxo.ExtendedVirtualCoin
		for _, v := range f.vtxos {
			if vtxo.IsSpendable(v.VirtualCoin) {
				spendable = append(spendable, v)
			}
		}
		return provider.VtxoPage{Vtxos: spendable}, nil
	}
	return provider.VtxoPage{Vtxos: f.vtxos}, nil
}

func (f *fakeIndexer) GetVtxoTree(ctx context.Context, batchOutpoint vtxo.Outpoint, page provider.PageRequest) (provider.VtxoTreePage, error) {
	return provider.VtxoTreePage{}, errNotImplemented
}

func (f *fakeIndexer) GetVtxoTreeLeaves(ctx context.Context, batchOutpoint vtxo.Outpoint, page provider.PageRequest) (provider.LeavesPage, error) {
	return provider.LeavesPage{}, errNotImplemented
}

func (f *fakeIndexer) GetCommitmentTx(ctx context.Context, txid string) (provider.CommitmentTxInfo, error) {
	return provider.CommitmentTxInfo{}, errNotImplemented
}

func (f *fakeIndexer) GetCommitmentTxConnectors(ctx context.Context, txid string, page provider.PageRequest) (provider.LeavesPage, error) {
	return provider.LeavesPage{}, errNotImplemented
}

func (f *fakeIndexer) GetCommitmentTxForfeitTxs(ctx context.Context, txid string, page provider.PageRequest) (provider.StringsPage, error) {
	return provider.StringsPage{}, errNotImplemented
}

func (f *fakeIndexer) GetCommitmentTxLeaves(ctx context.Context, txid string, page provider.PageRequest) (provider.LeavesPage, error) {
	return provider.LeavesPage{}, errNotImplemented
}

func (f *fakeIndexer) GetBatchSweepTransactions(ctx context.Context, batchOutpoint vtxo.Outpoint) ([]string, error) {
	return nil, errNotImplemented
}

func (f *fakeIndexer) GetVirtualTxs(ctx context.Context, txids []string) ([]string, error) {
	out := make([]string, len(txids))
	for i, id := range txids {
		out[i] = f.virtualTxs[id]
	}
	return out, nil
}

func (f *fakeIndexer) GetVtxoChain(ctx context.Context, outpoint vtxo.Outpoint, page provider.PageRequest) (provider.VtxoChainPage, error) {
	return provider.VtxoChainPage{Chain: f.chain}, nil
}

func (f *fakeIndexer) GetTransactionHistory(ctx context.Context, address string, opts provider.HistoryOptions) (provider.HistoryPage, error) {
	return provider.HistoryPage{}, errNotImplemented
}

func (f *fakeIndexer) SubscribeForScripts(ctx context.Context, scripts []string, existingID string) (string, error) {
	return "", errNotImplemented
}

func (f *fakeIndexer) GetSubscription(ctx context.Context, id string, cancel <-chan struct{}) (<-chan provider.SubscriptionEvent, <-chan error) {
	return nil, nil
}

func (f *fakeIndexer) UnsubscribeForScripts(ctx context.Context, id string, scripts []string) error {
	return errNotImplemented
}

var _ provider.IndexerProvider = (*fakeIndexer)(nil)

// fakeOnchain is a minimal in-memory provider.OnchainProvider: a fixed
// chain tip, fee rate, and set of boarding coins per address, plus a
// status table for unroll's confirmation checks.
type fakeOnchain struct {
	coins        map[string][]vtxo.Coin
	feeRate      float64
	chainTip     uint32
	statuses     map[string]provider.TxStatus
	broadcastErr error
	broadcasts   [][]string
}

func (f *fakeOnchain) GetCoins(ctx context.Context, address string) ([]vtxo.Coin, error) {
	return f.coins[address], nil
}

func (f *fakeOnchain) GetFeeRate(ctx context.Context) (float64, error) {
	return f.feeRate, nil
}

func (f *fakeOnchain) BroadcastTransaction(ctx context.Context, txsHex ...string) (string, error) {
	if f.broadcastErr != nil {
		return "", f.broadcastErr
	}
	f.broadcasts = append(f.broadcasts, txsHex)
	return "broadcast-txid", nil
}

func (f *fakeOnchain) GetTxOutspends(ctx context.Context, txid string) ([]provider.OutspendStatus, error) {
	return nil, errNotImplemented
}

func (f *fakeOnchain) GetTransactions(ctx context.Context, address string) ([]string, error) {
	return nil, errNotImplemented
}

func (f *fakeOnchain) GetTxStatus(ctx context.Context, txid string) (provider.TxStatus, error) {
	return f.statuses[txid], nil
}

func (f *fakeOnchain) GetChainTip(ctx context.Context) (uint32, error) {
	return f.chainTip, nil
}

var _ provider.OnchainProvider = (*fakeOnchain)(nil)
