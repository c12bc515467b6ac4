// Package provider defines the read/write/on-chain contracts an Ark client
// speaks to a server and an indexer over, plus the shared wire-level types
// those contracts pass back and forth. All numeric amounts and timestamps
// are decoded to Go integer types at the provider boundary; nothing upstream
// of this package should see a string where a number belongs.
package provider

import (
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// PageRequest asks for one page of a paginated listing.
type PageRequest struct {
	Index int
	Size  int
}

// PageResponse describes where a returned page sits in the overall listing.
// Next is -1 when there is no further page.
type PageResponse struct {
	Current int
	Next    int
	Total   int
}

// VtxoQueryFilter selects which vtxos getVtxos returns. Exactly one of
// Scripts or Outpoints must be set.
type VtxoQueryFilter struct {
	Scripts   []string
	Outpoints []vtxo.Outpoint

	SpendableOnly   bool
	SpentOnly       bool
	RecoverableOnly bool

	Page PageRequest
}

// Validate enforces that exactly one of Scripts or Outpoints is set.
func (f VtxoQueryFilter) Validate() error {
	hasScripts := len(f.Scripts) > 0
	hasOutpoints := len(f.Outpoints) > 0
	if hasScripts == hasOutpoints {
		return ErrScriptsXorOutpoints
	}
	return nil
}

// VtxoPage is one page of a getVtxos response.
type VtxoPage struct {
	Vtxos []vtxo.ExtendedVirtualCoin
	Page  PageResponse
}

// TreeTx is one node of a vtxo batch tree: its txid and the txids of its
// children, keyed by output index.
type TreeTx struct {
	Txid     string
	Children map[uint32]string
}

// VtxoTreePage is one page of a getVtxoTree response.
type VtxoTreePage struct {
	Tree []TreeTx
	Page PageResponse
}

// LeavesPage is one page of an outpoint listing (tree leaves, connectors,
// forfeit leaves).
type LeavesPage struct {
	Leaves []vtxo.Outpoint
	Page   PageResponse
}

// StringsPage is one page of a txid/hex listing (forfeit txs).
type StringsPage struct {
	Items []string
	Page  PageResponse
}

// BatchInfo summarizes one batch within a commitment transaction's
// lifetime.
type BatchInfo struct {
	TotalOutputAmount int64
	TotalOutputVtxos  int
	ExpiresAt         int64
	Swept             bool
}

// CommitmentTxInfo is the getCommitmentTx response shape.
type CommitmentTxInfo struct {
	Txid              string
	StartedAt         int64
	EndedAt           int64
	Batches           map[uint32]BatchInfo
	TotalInputAmount  int64
	TotalInputVtxos   int
	TotalOutputAmount int64
	TotalOutputVtxos  int
}

// ChainTx is one hop of a vtxo's ancestry, as returned by getVtxoChain.
type ChainTx struct {
	Txid      string
	Spends    []string
	Type      string
	ExpiresAt int64
}

// VtxoChainPage is one page of a getVtxoChain response.
type VtxoChainPage struct {
	Chain []ChainTx
	Page  PageResponse
}

// HistoryOptions bounds a getTransactionHistory query.
type HistoryOptions struct {
	StartTime int64
	EndTime   int64
	Page      PageRequest
}

// HistoryEntry is one transaction affecting an address's balance.
type HistoryEntry struct {
	Txid      string
	Amount    int64
	CreatedAt int64
	Type      string
	Settled   bool
}

// HistoryPage is one page of a getTransactionHistory response.
type HistoryPage struct {
	History []HistoryEntry
	Page    PageResponse
}

// SubscriptionEvent is one message pushed by a script subscription stream:
// vtxos newly associated with, or spent from, the subscribed scripts.
type SubscriptionEvent struct {
	Scripts    []string
	NewVtxos   []vtxo.ExtendedVirtualCoin
	SpentVtxos []vtxo.ExtendedVirtualCoin
}

// IntentFee is the server's fee schedule for registering round inputs and
// outputs.
type IntentFee struct {
	OnchainInput  int64
	OnchainOutput int64
}

// Fees bundles the server's intent and on-chain fee schedules.
type Fees struct {
	IntentFee IntentFee
	TxFeeRate float64
}

// ServerInfo is the getInfo response shape: the parameters a client needs
// to construct valid vtxo scripts and checkpoint transactions against this
// particular Ark server.
type ServerInfo struct {
	SignerPubkey        string
	ForfeitPubkey       string
	BatchExpiry         int64
	UnilateralExitDelay int64
	RoundInterval       int64
	Network             string
	Dust                int64
	ForfeitAddress      string
	CheckpointTapscript []byte
	Fees                Fees
}

// RoundInput is one input offered into the next settlement round, with its
// BIP-322-style signed intent proof over the registration request.
type RoundInput struct {
	Outpoint    vtxo.Outpoint
	IntentProof string
}

// RoundOutput is one output requested for the next settlement round.
type RoundOutput struct {
	Script []byte
	Amount int64
}

// TreeNonces maps a tree node's txid to this signer's public nonce for
// that node, for the MuSig2 tree-signing ceremony.
type TreeNonces map[string][66]byte

// TreeSignatures maps a tree node's txid to this signer's partial
// signature for that node.
type TreeSignatures map[string][64]byte

// TxStatus is the confirmation state of a transaction.
type TxStatus struct {
	Confirmed   bool
	BlockHeight uint32
	BlockHash   string
	BlockTime   int64
}

// OutspendStatus describes whether a given output has been spent.
type OutspendStatus struct {
	Spent bool
	Txid  string
	Vin   uint32
}
