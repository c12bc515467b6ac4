package indexer

import (
	"encoding/hex"
	"fmt"

	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/script"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// wireVtxo is the indexer's JSON shape for one vtxo, decoded into
// vtxo.ExtendedVirtualCoin at the boundary.
type wireVtxo struct {
	Outpoint struct {
		Txid string `json:"txid"`
		Vout uint32 `json:"vout"`
	} `json:"outpoint"`
	Amount         int64    `json:"amount,string"`
	Spent          bool     `json:"spent"`
	Preconfirmed   bool     `json:"isPreconfirmed"`
	Swept          bool     `json:"isSwept"`
	Unrolled       bool     `json:"isUnrolled"`
	SpentBy        string   `json:"spentBy"`
	CommitmentTxid string   `json:"commitmentTxid"`
	ExpiresAt      int64    `json:"expiresAt,string"`
	Tapscripts     []string `json:"tapscripts"`
}

func (w wireVtxo) toVirtualCoin() (vtxo.ExtendedVirtualCoin, error) {
	unit := vtxo.ExpiryUnitTimestamp
	if w.ExpiresAt == 0 {
		unit = vtxo.ExpiryUnitUnset
	}

	// Tapscripts arrive hex-encoded; the leaf bytes are decoded once here
	// and nothing upstream sees the string form again. The collaborative
	// (plain multisig) leaf doubles as the default checkpoint leaf.
	leafScripts := make([][]byte, 0, len(w.Tapscripts))
	var checkpointLeaf []byte
	for _, s := range w.Tapscripts {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return vtxo.ExtendedVirtualCoin{}, fmt.Errorf("indexer: tapscript hex: %w", err)
		}
		leafScripts = append(leafScripts, raw)
		if checkpointLeaf == nil {
			if decoded, err := script.DecodeTapscript(raw); err == nil && decoded.Kind == script.KindMultisig {
				checkpointLeaf = raw
			}
		}
	}

	return vtxo.ExtendedVirtualCoin{
		VirtualCoin: vtxo.VirtualCoin{
			Coin: vtxo.Coin{
				Outpoint: vtxo.Outpoint{Txid: w.Outpoint.Txid, VOut: w.Outpoint.Vout},
				Value:    w.Amount,
			},
			IsPreconfirmed:  w.Preconfirmed,
			IsSwept:         w.Swept,
			IsUnrolled:      w.Unrolled,
			SpentBy:         w.SpentBy,
			BatchExpiry:     w.ExpiresAt,
			BatchExpiryUnit: unit,
			CommitmentTxid:  w.CommitmentTxid,
		},
		Tapscripts:        leafScripts,
		CheckpointTapLeaf: checkpointLeaf,
	}, nil
}

func wireVtxosToCoins(in []wireVtxo) ([]vtxo.ExtendedVirtualCoin, error) {
	out := make([]vtxo.ExtendedVirtualCoin, 0, len(in))
	for _, w := range in {
		v, err := w.toVirtualCoin()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type wireVtxosResponse struct {
	Vtxos []wireVtxo `json:"vtxos"`
	Page  *wirePage  `json:"page"`
}

type wirePage struct {
	Current int `json:"current"`
	Next    int `json:"next"`
	Total   int `json:"total"`
}

func (p *wirePage) toPageResponse() provider.PageResponse {
	if p == nil {
		return provider.PageResponse{Next: -1}
	}
	return provider.PageResponse{Current: p.Current, Next: p.Next, Total: p.Total}
}

type wireTreeTx struct {
	Txid     string            `json:"txid"`
	Children map[string]string `json:"children"`
}

type wireTreeResponse struct {
	VtxoTree []wireTreeTx `json:"vtxoTree"`
	Page     *wirePage    `json:"page"`
}

type wireOutpoint struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

type wireLeavesResponse struct {
	Leaves []wireOutpoint `json:"leaves"`
	Page   *wirePage      `json:"page"`
}

type wireCommitmentTxResponse struct {
	StartedAt         int64 `json:"startedAt,string"`
	EndedAt           int64 `json:"endedAt,string"`
	TotalInputAmount  int64 `json:"totalInputAmount,string"`
	TotalInputVtxos   int   `json:"totalInputVtxos"`
	TotalOutputAmount int64 `json:"totalOutputAmount,string"`
	TotalOutputVtxos  int   `json:"totalOutputVtxos"`
	Batches           map[string]struct {
		TotalOutputAmount int64 `json:"totalOutputAmount,string"`
		TotalOutputVtxos  int   `json:"totalOutputVtxos"`
		ExpiresAt         int64 `json:"expiresAt,string"`
		Swept             bool  `json:"swept"`
	} `json:"batches"`
}

type wireStringsResponse struct {
	Items []string  `json:"items"`
	Page  *wirePage `json:"page"`
}

type wireChainTx struct {
	Txid      string   `json:"txid"`
	Spends    []string `json:"spends"`
	Type      string   `json:"type"`
	ExpiresAt int64    `json:"expiresAt,string"`
}

type wireChainResponse struct {
	Chain []wireChainTx `json:"chain"`
	Page  *wirePage     `json:"page"`
}

type wireHistoryEntry struct {
	Txid      string `json:"txid"`
	Amount    int64  `json:"amount,string"`
	CreatedAt int64  `json:"createdAt,string"`
	Type      string `json:"type"`
	Settled   bool   `json:"settled"`
}

type wireHistoryResponse struct {
	History []wireHistoryEntry `json:"history"`
	Page    *wirePage          `json:"page"`
}

type wireSubscribeResponse struct {
	SubscriptionID string `json:"subscriptionId"`
}

// wireSubscriptionEvent is one NDJSON line pushed by the subscription
// stream.
type wireSubscriptionEvent struct {
	Scripts    []string   `json:"scripts"`
	NewVtxos   []wireVtxo `json:"newVtxos"`
	SpentVtxos []wireVtxo `json:"spentVtxos"`
}
