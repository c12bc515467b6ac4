package indexer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// Client implements provider.IndexerProvider against an Ark indexer's
// REST/NDJSON API.
type Client struct {
	cfg  *Config
	http *httpClient

	// streamHC carries the long-lived subscription streams; unlike the
	// REST client it has no overall timeout, since a healthy stream stays
	// open indefinitely.
	streamHC *http.Client

	mu   sync.Mutex
	subs map[string]map[string]struct{} // subscription id -> script set
}

// New constructs a Client. A nil cfg uses DefaultConfig, which still needs a
// BaseURL.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:      cfg,
		http:     newHTTPClient(cfg),
		streamHC: &http.Client{},
		subs:     make(map[string]map[string]struct{}),
	}, nil
}

var _ provider.IndexerProvider = (*Client)(nil)

// GetVtxos returns one page of vtxos matching filter.
func (c *Client) GetVtxos(ctx context.Context, filter provider.VtxoQueryFilter) (provider.VtxoPage, error) {
	if err := filter.Validate(); err != nil {
		return provider.VtxoPage{}, err
	}

	query := pageQuery(filter.Page)
	for _, s := range filter.Scripts {
		query.Add("scripts", s)
	}
	for _, op := range filter.Outpoints {
		query.Add("outpoints", op.Txid+":"+strconv.FormatUint(uint64(op.VOut), 10))
	}
	if filter.SpendableOnly {
		query.Set("spendableOnly", "true")
	}
	if filter.SpentOnly {
		query.Set("spentOnly", "true")
	}
	if filter.RecoverableOnly {
		query.Set("recoverableOnly", "true")
	}

	var resp wireVtxosResponse
	if err := c.http.getJSON(ctx, "/vtxos", query, &resp); err != nil {
		return provider.VtxoPage{}, fmt.Errorf("indexer: GetVtxos: %w", err)
	}
	coins, err := wireVtxosToCoins(resp.Vtxos)
	if err != nil {
		return provider.VtxoPage{}, err
	}
	return provider.VtxoPage{Vtxos: coins, Page: resp.Page.toPageResponse()}, nil
}

// GetVtxoTree returns one page of a batch's vtxo tree.
func (c *Client) GetVtxoTree(ctx context.Context, batchOutpoint vtxo.Outpoint, page provider.PageRequest) (provider.VtxoTreePage, error) {
	path := "/batch/" + batchOutpoint.Txid + "/" + strconv.FormatUint(uint64(batchOutpoint.VOut), 10) + "/tree"

	var resp wireTreeResponse
	if err := c.http.getJSON(ctx, path, pageQuery(page), &resp); err != nil {
		return provider.VtxoTreePage{}, fmt.Errorf("indexer: GetVtxoTree: %w", err)
	}

	tree := make([]provider.TreeTx, 0, len(resp.VtxoTree))
	for _, t := range resp.VtxoTree {
		children := make(map[uint32]string, len(t.Children))
		for idx, txid := range t.Children {
			n, err := strconv.ParseUint(idx, 10, 32)
			if err != nil {
				return provider.VtxoTreePage{}, fmt.Errorf("indexer: GetVtxoTree: child index %q: %w", idx, err)
			}
			children[uint32(n)] = txid
		}
		tree = append(tree, provider.TreeTx{Txid: t.Txid, Children: children})
	}
	return provider.VtxoTreePage{Tree: tree, Page: resp.Page.toPageResponse()}, nil
}

// GetVtxoTreeLeaves returns one page of a batch tree's leaf outpoints.
func (c *Client) GetVtxoTreeLeaves(ctx context.Context, batchOutpoint vtxo.Outpoint, page provider.PageRequest) (provider.LeavesPage, error) {
	path := "/batch/" + batchOutpoint.Txid + "/" + strconv.FormatUint(uint64(batchOutpoint.VOut), 10) + "/tree/leaves"
	return c.getLeavesPage(ctx, path, page, "GetVtxoTreeLeaves")
}

// GetCommitmentTx returns the round summary for a commitment transaction.
func (c *Client) GetCommitmentTx(ctx context.Context, txid string) (provider.CommitmentTxInfo, error) {
	var resp wireCommitmentTxResponse
	if err := c.http.getJSON(ctx, "/commitmentTx/"+txid, nil, &resp); err != nil {
		return provider.CommitmentTxInfo{}, fmt.Errorf("indexer: GetCommitmentTx: %w", err)
	}

	batches := make(map[uint32]provider.BatchInfo, len(resp.Batches))
	for idx, b := range resp.Batches {
		n, err := strconv.ParseUint(idx, 10, 32)
		if err != nil {
			return provider.CommitmentTxInfo{}, fmt.Errorf("indexer: GetCommitmentTx: batch index %q: %w", idx, err)
		}
		batches[uint32(n)] = provider.BatchInfo{
			TotalOutputAmount: b.TotalOutputAmount,
			TotalOutputVtxos:  b.TotalOutputVtxos,
			ExpiresAt:         b.ExpiresAt,
			Swept:             b.Swept,
		}
	}

	return provider.CommitmentTxInfo{
		Txid:              txid,
		StartedAt:         resp.StartedAt,
		EndedAt:           resp.EndedAt,
		Batches:           batches,
		TotalInputAmount:  resp.TotalInputAmount,
		TotalInputVtxos:   resp.TotalInputVtxos,
		TotalOutputAmount: resp.TotalOutputAmount,
		TotalOutputVtxos:  resp.TotalOutputVtxos,
	}, nil
}

// GetCommitmentTxConnectors returns one page of a commitment tx's connector
// outpoints.
func (c *Client) GetCommitmentTxConnectors(ctx context.Context, txid string, page provider.PageRequest) (provider.LeavesPage, error) {
	return c.getLeavesPage(ctx, "/commitmentTx/"+txid+"/connectors", page, "GetCommitmentTxConnectors")
}

// GetCommitmentTxForfeitTxs returns one page of a commitment tx's forfeit
// transactions.
func (c *Client) GetCommitmentTxForfeitTxs(ctx context.Context, txid string, page provider.PageRequest) (provider.StringsPage, error) {
	var resp wireStringsResponse
	if err := c.http.getJSON(ctx, "/commitmentTx/"+txid+"/forfeitTxs", pageQuery(page), &resp); err != nil {
		return provider.StringsPage{}, fmt.Errorf("indexer: GetCommitmentTxForfeitTxs: %w", err)
	}
	return provider.StringsPage{Items: resp.Items, Page: resp.Page.toPageResponse()}, nil
}

// GetCommitmentTxLeaves returns one page of a commitment tx's leaf
// outpoints.
func (c *Client) GetCommitmentTxLeaves(ctx context.Context, txid string, page provider.PageRequest) (provider.LeavesPage, error) {
	return c.getLeavesPage(ctx, "/commitmentTx/"+txid+"/leaves", page, "GetCommitmentTxLeaves")
}

// GetBatchSweepTransactions returns the txids the server used to sweep an
// expired batch.
func (c *Client) GetBatchSweepTransactions(ctx context.Context, batchOutpoint vtxo.Outpoint) ([]string, error) {
	path := "/batch/" + batchOutpoint.Txid + "/" + strconv.FormatUint(uint64(batchOutpoint.VOut), 10) + "/sweepTxs"
	var resp wireStringsResponse
	if err := c.http.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("indexer: GetBatchSweepTransactions: %w", err)
	}
	return resp.Items, nil
}

// GetVirtualTxs returns the raw hex of the given virtual transactions.
func (c *Client) GetVirtualTxs(ctx context.Context, txids []string) ([]string, error) {
	query := url.Values{}
	for _, id := range txids {
		query.Add("txids", id)
	}
	var resp struct {
		Txs []string `json:"txs"`
	}
	if err := c.http.getJSON(ctx, "/virtualTx", query, &resp); err != nil {
		return nil, fmt.Errorf("indexer: GetVirtualTxs: %w", err)
	}
	return resp.Txs, nil
}

// GetVtxoChain returns one page of outpoint's ancestry back toward its
// commitment transaction.
func (c *Client) GetVtxoChain(ctx context.Context, outpoint vtxo.Outpoint, page provider.PageRequest) (provider.VtxoChainPage, error) {
	path := "/vtxo/" + outpoint.Txid + "/" + strconv.FormatUint(uint64(outpoint.VOut), 10) + "/chain"

	var resp wireChainResponse
	if err := c.http.getJSON(ctx, path, pageQuery(page), &resp); err != nil {
		return provider.VtxoChainPage{}, fmt.Errorf("indexer: GetVtxoChain: %w", err)
	}

	chain := make([]provider.ChainTx, 0, len(resp.Chain))
	for _, t := range resp.Chain {
		chain = append(chain, provider.ChainTx{
			Txid:      t.Txid,
			Spends:    t.Spends,
			Type:      t.Type,
			ExpiresAt: t.ExpiresAt,
		})
	}
	return provider.VtxoChainPage{Chain: chain, Page: resp.Page.toPageResponse()}, nil
}

// GetTransactionHistory returns one page of address's transaction history.
func (c *Client) GetTransactionHistory(ctx context.Context, address string, opts provider.HistoryOptions) (provider.HistoryPage, error) {
	query := pageQuery(opts.Page)
	if opts.StartTime > 0 {
		query.Set("startTime", strconv.FormatInt(opts.StartTime, 10))
	}
	if opts.EndTime > 0 {
		query.Set("endTime", strconv.FormatInt(opts.EndTime, 10))
	}

	var resp wireHistoryResponse
	if err := c.http.getJSON(ctx, "/history/"+address, query, &resp); err != nil {
		return provider.HistoryPage{}, fmt.Errorf("indexer: GetTransactionHistory: %w", err)
	}

	history := make([]provider.HistoryEntry, 0, len(resp.History))
	for _, e := range resp.History {
		history = append(history, provider.HistoryEntry{
			Txid:      e.Txid,
			Amount:    e.Amount,
			CreatedAt: e.CreatedAt,
			Type:      e.Type,
			Settled:   e.Settled,
		})
	}
	return provider.HistoryPage{History: history, Page: resp.Page.toPageResponse()}, nil
}

func (c *Client) getLeavesPage(ctx context.Context, path string, page provider.PageRequest, op string) (provider.LeavesPage, error) {
	var resp wireLeavesResponse
	if err := c.http.getJSON(ctx, path, pageQuery(page), &resp); err != nil {
		return provider.LeavesPage{}, fmt.Errorf("indexer: %s: %w", op, err)
	}
	leaves := make([]vtxo.Outpoint, 0, len(resp.Leaves))
	for _, l := range resp.Leaves {
		leaves = append(leaves, vtxo.Outpoint{Txid: l.Txid, VOut: l.Vout})
	}
	return provider.LeavesPage{Leaves: leaves, Page: resp.Page.toPageResponse()}, nil
}

// SubscribeForScripts opens a new subscription over scripts, or extends
// existingID with them, returning the subscription id.
func (c *Client) SubscribeForScripts(ctx context.Context, scripts []string, existingID string) (string, error) {
	req := struct {
		Scripts        []string `json:"scripts"`
		SubscriptionID string   `json:"subscriptionId,omitempty"`
	}{Scripts: scripts, SubscriptionID: existingID}

	var resp wireSubscribeResponse
	if err := c.http.postJSON(ctx, "/script/subscribe", req, &resp); err != nil {
		return "", fmt.Errorf("indexer: SubscribeForScripts: %w", err)
	}

	id := resp.SubscriptionID
	if id == "" {
		id = existingID
	}

	c.mu.Lock()
	set, ok := c.subs[id]
	if !ok {
		set = make(map[string]struct{})
		c.subs[id] = set
	}
	for _, s := range scripts {
		set[s] = struct{}{}
	}
	c.mu.Unlock()

	return id, nil
}

// UnsubscribeForScripts drops scripts from a subscription, or the whole
// subscription when scripts is empty.
func (c *Client) UnsubscribeForScripts(ctx context.Context, id string, scripts []string) error {
	req := struct {
		SubscriptionID string   `json:"subscriptionId"`
		Scripts        []string `json:"scripts,omitempty"`
	}{SubscriptionID: id, Scripts: scripts}

	if err := c.http.postJSON(ctx, "/script/unsubscribe", req, nil); err != nil {
		return fmt.Errorf("indexer: UnsubscribeForScripts: %w", err)
	}

	c.mu.Lock()
	if len(scripts) == 0 {
		delete(c.subs, id)
	} else if set, ok := c.subs[id]; ok {
		for _, s := range scripts {
			delete(set, s)
		}
	}
	c.mu.Unlock()
	return nil
}

// GetSubscription opens the NDJSON push stream for subscription id and
// yields its events until ctx is done or cancel fires. Dropped connections
// are reopened after ReconnectDelay against the same subscription id; the
// server gives no replay guarantee across reconnects, so consumers must
// tolerate double delivery.
func (c *Client) GetSubscription(ctx context.Context, id string, cancel <-chan struct{}) (<-chan provider.SubscriptionEvent, <-chan error) {
	events := make(chan provider.SubscriptionEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case <-cancel:
				return
			default:
			}

			if err := c.streamOnce(ctx, id, cancel, events); err != nil {
				select {
				case errs <- err:
				default:
				}
				log.Debugf("indexer: subscription %s stream dropped: %v", id, err)
			}

			select {
			case <-ctx.Done():
				return
			case <-cancel:
				return
			case <-time.After(c.cfg.ReconnectDelay):
			}
		}
	}()

	return events, errs
}

// streamOnce opens one connection to the subscription stream and forwards
// complete lines until the connection drops or the caller cancels. A line
// may arrive bare or wrapped in a {"result": ...} envelope; both forms are
// handled. A partially-transferred final line is still handed to the
// decoder; as incomplete JSON it fails to decode and ends the connection
// with an error, so it is never forwarded as an event.
func (c *Client) streamOnce(ctx context.Context, id string, cancel <-chan struct{}, events chan<- provider.SubscriptionEvent) error {
	streamCtx, stop := context.WithCancel(ctx)
	defer stop()

	go func() {
		select {
		case <-cancel:
			stop()
		case <-streamCtx.Done():
		}
	}()

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.cfg.BaseURL+"/script/subscription/"+id, nil)
	if err != nil {
		return fmt.Errorf("indexer: build subscription request: %w", err)
	}

	resp, err := c.streamHC.Do(req)
	if err != nil {
		return fmt.Errorf("indexer: open subscription stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUnknownSubscription
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("indexer: subscription stream status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, ok, err := decodeStreamLine(line)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		select {
		case events <- event:
		case <-streamCtx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if streamCtx.Err() != nil {
			return nil
		}
		return fmt.Errorf("indexer: subscription stream read: %w", err)
	}
	return ErrStreamClosed
}

func decodeStreamLine(line []byte) (provider.SubscriptionEvent, bool, error) {
	var envelope struct {
		Result *wireSubscriptionEvent `json:"result"`
	}
	wireEvent := &wireSubscriptionEvent{}
	if err := json.Unmarshal(line, &envelope); err == nil && envelope.Result != nil {
		wireEvent = envelope.Result
	} else if err := json.Unmarshal(line, wireEvent); err != nil {
		return provider.SubscriptionEvent{}, false, fmt.Errorf("indexer: decode stream line: %w", err)
	}

	if len(wireEvent.Scripts) == 0 && len(wireEvent.NewVtxos) == 0 && len(wireEvent.SpentVtxos) == 0 {
		// Heartbeat or unrelated keep-alive line.
		return provider.SubscriptionEvent{}, false, nil
	}

	newVtxos, err := wireVtxosToCoins(wireEvent.NewVtxos)
	if err != nil {
		return provider.SubscriptionEvent{}, false, err
	}
	spentVtxos, err := wireVtxosToCoins(wireEvent.SpentVtxos)
	if err != nil {
		return provider.SubscriptionEvent{}, false, err
	}

	return provider.SubscriptionEvent{
		Scripts:    wireEvent.Scripts,
		NewVtxos:   newVtxos,
		SpentVtxos: spentVtxos,
	}, true, nil
}
