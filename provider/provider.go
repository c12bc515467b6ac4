package provider

import (
	"context"

	"github.com/ark-network/ark-sdk-go/vtxo"
)

// IndexerProvider is the read-only view of an Ark server's ledger: vtxos,
// batch trees, commitment transactions, and the vtxo/address subscription
// streams the wallet polls for incoming activity.
type IndexerProvider interface {
	GetVtxos(ctx context.Context, filter VtxoQueryFilter) (VtxoPage, error)
	GetVtxoTree(ctx context.Context, batchOutpoint vtxo.Outpoint, page PageRequest) (VtxoTreePage, error)
	GetVtxoTreeLeaves(ctx context.Context, batchOutpoint vtxo.Outpoint, page PageRequest) (LeavesPage, error)

	GetCommitmentTx(ctx context.Context, txid string) (CommitmentTxInfo, error)
	GetCommitmentTxConnectors(ctx context.Context, txid string, page PageRequest) (LeavesPage, error)
	GetCommitmentTxForfeitTxs(ctx context.Context, txid string, page PageRequest) (StringsPage, error)
	GetCommitmentTxLeaves(ctx context.Context, txid string, page PageRequest) (LeavesPage, error)
	GetBatchSweepTransactions(ctx context.Context, batchOutpoint vtxo.Outpoint) ([]string, error)

	GetVirtualTxs(ctx context.Context, txids []string) ([]string, error)
	GetVtxoChain(ctx context.Context, outpoint vtxo.Outpoint, page PageRequest) (VtxoChainPage, error)
	GetTransactionHistory(ctx context.Context, address string, opts HistoryOptions) (HistoryPage, error)

	// SubscribeForScripts opens or extends a subscription to the given
	// scripts, returning its subscription id. Pass an existing id to add
	// scripts to it.
	SubscribeForScripts(ctx context.Context, scripts []string, existingID string) (string, error)
	// GetSubscription returns an infinite lazy stream of SubscriptionEvent
	// pushed by the server, one per line, until cancel fires or the
	// returned channel is closed. Reconnects on transport errors reopen
	// the stream without replay guarantees; callers must be idempotent
	// against double-delivery.
	GetSubscription(ctx context.Context, id string, cancel <-chan struct{}) (<-chan SubscriptionEvent, <-chan error)
	UnsubscribeForScripts(ctx context.Context, id string, scripts []string) error
}

// ArkProvider is the writeable, round-coordination side of an Ark server:
// the contract a client drives a settlement round and a direct offchain
// send through.
type ArkProvider interface {
	GetInfo(ctx context.Context) (ServerInfo, error)

	RegisterInputsForNextRound(ctx context.Context, inputs []RoundInput, vtxoTreeSigningPublicKey string) (paymentID string, err error)
	RegisterOutputsForNextRound(ctx context.Context, paymentID string, outputs []RoundOutput) error

	SubmitTreeNonces(ctx context.Context, roundID, cosignerPubkey string, nonces TreeNonces) error
	SubmitTreeSignatures(ctx context.Context, roundID, cosignerPubkey string, sigs TreeSignatures) error
	SubmitSignedForfeitTxs(ctx context.Context, signedForfeitTxs []string) error

	SubmitVirtualTx(ctx context.Context, arkTxPSBTBase64 string, checkpointPSBTsBase64 []string) (txid string, err error)

	// SubscribeToEvents drives cb with every SettleEvent for the life of
	// the round. The returned func unsubscribes.
	SubscribeToEvents(ctx context.Context, cb func(SettleEvent)) (unsubscribe func(), err error)
	Ping(ctx context.Context, paymentID string) error
}

// OnchainProvider is an Esplora-style on-chain data and broadcast surface.
type OnchainProvider interface {
	GetCoins(ctx context.Context, address string) ([]vtxo.Coin, error)
	GetFeeRate(ctx context.Context) (float64, error)
	// BroadcastTransaction accepts one raw tx hex, or a parent+child pair
	// forming a 1C1P (one-child-one-parent) package.
	BroadcastTransaction(ctx context.Context, txsHex ...string) (txid string, err error)
	GetTxOutspends(ctx context.Context, txid string) ([]OutspendStatus, error)
	GetTransactions(ctx context.Context, address string) ([]string, error)
	GetTxStatus(ctx context.Context, txid string) (TxStatus, error)
	GetChainTip(ctx context.Context) (uint32, error)
}
