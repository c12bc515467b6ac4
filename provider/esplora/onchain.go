package esplora

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/chainntnfs"

	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// Client implements provider.OnchainProvider against an Esplora-compatible
// REST API.
type Client struct {
	cfg   *Config
	http  *httpClient
	cache *cache

	confNotifier  *confirmationNotifier
	epochNotifier *epochNotifier

	started bool
}

// New constructs a Client. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:   cfg,
		http:  newHTTPClient(cfg),
		cache: newCache(cfg.CacheTTL),
	}
	c.confNotifier = newConfirmationNotifier(c, cfg.PollInterval)
	c.epochNotifier = newEpochNotifier(c, cfg.PollInterval)
	return c, nil
}

var _ provider.OnchainProvider = (*Client)(nil)

// Start begins polling for confirmation and block-epoch notifications.
func (c *Client) Start() {
	if c.started {
		return
	}
	c.started = true
	c.epochNotifier.start()
}

// Stop halts all background polling, blocking until goroutines exit.
func (c *Client) Stop() {
	if !c.started {
		return
	}
	c.confNotifier.stop()
	c.epochNotifier.stop()
	c.started = false
}

// RegisterConfirmationsNtfn watches txid for numConfs confirmations,
// delivering on the returned event once satisfied.
func (c *Client) RegisterConfirmationsNtfn(ctx context.Context, txid *chainhash.Hash, numConfs uint32) (*chainntnfs.ConfirmationEvent, chan error) {
	return c.confNotifier.register(ctx, txid, numConfs)
}

// RegisterBlockEpochNtfn returns a channel that receives every new chain
// tip height as it is observed.
func (c *Client) RegisterBlockEpochNtfn() chan int32 {
	return c.epochNotifier.subscribe()
}

// GetCoins returns address's confirmed and unconfirmed UTXOs.
func (c *Client) GetCoins(ctx context.Context, address string) ([]vtxo.Coin, error) {
	var resp []utxoResponse
	if err := c.http.getJSON(ctx, "/address/"+address+"/utxo", &resp); err != nil {
		return nil, fmt.Errorf("esplora: GetCoins: %w", err)
	}

	coins := make([]vtxo.Coin, 0, len(resp))
	for _, u := range resp {
		status := vtxo.CoinUnconfirmed
		if u.Status.Confirmed {
			status = vtxo.CoinConfirmed
		}
		coins = append(coins, vtxo.Coin{
			Outpoint: vtxo.Outpoint{
				Txid: u.Txid,
				VOut: u.Vout,
			},
			Value:       u.Value,
			Status:      status,
			BlockHeight: uint32(u.Status.BlockHeight),
			BlockTime:   u.Status.BlockTime,
		})
	}
	return coins, nil
}

// GetFeeRate returns the server's recommended next-block fee rate in
// sat/vB.
func (c *Client) GetFeeRate(ctx context.Context) (float64, error) {
	var estimates map[string]float64
	if err := c.http.getJSON(ctx, "/fee-estimates", &estimates); err != nil {
		return 0, fmt.Errorf("esplora: GetFeeRate: %w", err)
	}
	if rate, ok := estimates["1"]; ok {
		return rate, nil
	}
	// Fall back to the lowest confirmation target present.
	best := -1
	var bestRate float64
	for target, rate := range estimates {
		n, err := strconv.Atoi(target)
		if err != nil {
			continue
		}
		if best == -1 || n < best {
			best, bestRate = n, rate
		}
	}
	if best != -1 {
		return bestRate, nil
	}
	return 1.0, nil
}

// BroadcastTransaction submits one raw tx hex, or a parent+child pair
// forming a 1C1P package, to the network.
func (c *Client) BroadcastTransaction(ctx context.Context, txsHex ...string) (string, error) {
	switch len(txsHex) {
	case 0:
		return "", ErrNoTxsToBroadcast
	case 1:
		body, err := c.http.doRequest(ctx, http.MethodPost, "/tx", []byte(txsHex[0]), "text/plain")
		if err != nil {
			return "", fmt.Errorf("esplora: BroadcastTransaction: %w", err)
		}
		return strings.TrimSpace(string(body)), nil
	case 2:
		packageBody := "[\"" + txsHex[0] + "\",\"" + txsHex[1] + "\"]"
		body, err := c.http.doRequest(ctx, http.MethodPost, "/txs/package", []byte(packageBody), "application/json")
		if err != nil {
			return "", fmt.Errorf("esplora: BroadcastTransaction (1C1P): %w", err)
		}
		return strings.TrimSpace(string(body)), nil
	default:
		return "", ErrTooManyTxs
	}
}

// GetTxOutspends reports whether each output of txid has been spent.
func (c *Client) GetTxOutspends(ctx context.Context, txid string) ([]provider.OutspendStatus, error) {
	var resp []outspendResponse
	if err := c.http.getJSON(ctx, "/tx/"+txid+"/outspends", &resp); err != nil {
		return nil, fmt.Errorf("esplora: GetTxOutspends: %w", err)
	}
	out := make([]provider.OutspendStatus, 0, len(resp))
	for _, o := range resp {
		out = append(out, provider.OutspendStatus{Spent: o.Spent, Txid: o.Txid, Vin: o.Vin})
	}
	return out, nil
}

// GetTransactions returns the txids of transactions touching address, most
// recent first.
func (c *Client) GetTransactions(ctx context.Context, address string) ([]string, error) {
	var resp []txResponse
	if err := c.http.getJSON(ctx, "/address/"+address+"/txs", &resp); err != nil {
		return nil, fmt.Errorf("esplora: GetTransactions: %w", err)
	}
	txids := make([]string, 0, len(resp))
	for _, tx := range resp {
		txids = append(txids, tx.Txid)
	}
	return txids, nil
}

// GetTxStatus returns txid's confirmation status.
func (c *Client) GetTxStatus(ctx context.Context, txid string) (provider.TxStatus, error) {
	var status txStatus
	if err := c.http.getJSON(ctx, "/tx/"+txid+"/status", &status); err != nil {
		return provider.TxStatus{}, fmt.Errorf("esplora: GetTxStatus: %w", err)
	}
	return provider.TxStatus{
		Confirmed:   status.Confirmed,
		BlockHeight: uint32(status.BlockHeight),
		BlockHash:   status.BlockHash,
		BlockTime:   status.BlockTime,
	}, nil
}

// GetChainTip returns the current best block height, serving from cache
// within CacheTTL.
func (c *Client) GetChainTip(ctx context.Context) (uint32, error) {
	if height, ok := c.cache.getHeight(); ok {
		return height, nil
	}

	body, err := c.http.doRequest(ctx, http.MethodGet, "/blocks/tip/height", nil, "")
	if err != nil {
		return 0, fmt.Errorf("esplora: GetChainTip: %w", err)
	}
	height, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("esplora: GetChainTip: parse height: %w", err)
	}

	c.cache.setHeight(uint32(height))
	return uint32(height), nil
}
