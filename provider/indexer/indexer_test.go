package indexer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &Config{
		BaseURL:        srv.URL,
		RateLimit:      1000,
		Timeout:        5 * time.Second,
		RetryAttempts:  0,
		RetryDelay:     time.Millisecond,
		ReconnectDelay: 10 * time.Millisecond,
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func multisigLeafHex(t *testing.T) string {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	leaf, err := txscript.NewScriptBuilder().
		AddData(schnorr.SerializePubKey(priv.PubKey())).
		AddOp(txscript.OP_CHECKSIG).
		AddInt64(1).
		AddOp(txscript.OP_NUMEQUAL).
		Script()
	require.NoError(t, err)
	return hex.EncodeToString(leaf)
}

func TestGetVtxosDecodesTapscriptsAndCheckpointLeaf(t *testing.T) {
	leafHex := multisigLeafHex(t)

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vtxos", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("spendableOnly"))
		fmt.Fprintf(w, `{"vtxos":[{"outpoint":{"txid":"aa","vout":1},"amount":"5000","tapscripts":[%q]}],"page":{"current":0,"next":-1,"total":1}}`, leafHex)
	}))

	page, err := c.GetVtxos(context.Background(), provider.VtxoQueryFilter{
		Scripts:       []string{"5120aa"},
		SpendableOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, page.Vtxos, 1)

	v := page.Vtxos[0]
	require.Equal(t, int64(5000), v.Value)
	require.Equal(t, uint32(1), v.Outpoint.VOut)
	require.Len(t, v.Tapscripts, 1)
	raw, err := hex.DecodeString(leafHex)
	require.NoError(t, err)
	require.Equal(t, raw, v.Tapscripts[0])
	require.Equal(t, raw, v.CheckpointTapLeaf)
}

func TestGetVtxosRejectsMissingFilter(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := c.GetVtxos(context.Background(), provider.VtxoQueryFilter{})
	require.Error(t, err)
}

func TestGetVtxoTreeParsesChildren(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/batch/aa/0/tree", r.URL.Path)
		fmt.Fprint(w, `{"vtxoTree":[{"txid":"root","children":{"0":"left","1":"right"}}]}`)
	}))

	page, err := c.GetVtxoTree(context.Background(), vtxo.Outpoint{Txid: "aa", VOut: 0}, provider.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Tree, 1)
	require.Equal(t, "left", page.Tree[0].Children[0])
	require.Equal(t, "right", page.Tree[0].Children[1])
}

func TestSubscribeForScriptsTracksID(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/script/subscribe", r.URL.Path)
		_ = json.NewEncoder(w).Encode(wireSubscribeResponse{SubscriptionID: "sub-1"})
	}))

	id, err := c.SubscribeForScripts(context.Background(), []string{"5120aa"}, "")
	require.NoError(t, err)
	require.Equal(t, "sub-1", id)
}

func TestGetSubscriptionYieldsEventsInOrder(t *testing.T) {
	leafHex := multisigLeafHex(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/script/subscription/sub-1", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		// One bare line, one grpc-gateway-style result envelope, one
		// heartbeat that must be skipped.
		fmt.Fprintf(w, `{"scripts":["s1"],"newVtxos":[{"outpoint":{"txid":"aa","vout":0},"amount":"1000","tapscripts":[%q]}]}`+"\n", leafHex)
		flusher.Flush()
		fmt.Fprint(w, `{}`+"\n")
		flusher.Flush()
		fmt.Fprintf(w, `{"result":{"scripts":["s2"],"spentVtxos":[{"outpoint":{"txid":"bb","vout":0},"amount":"2000","tapscripts":[%q]}]}}`+"\n", leafHex)
		flusher.Flush()
	})

	c := testClient(t, mux)

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()
	cancel := make(chan struct{})

	events, _ := c.GetSubscription(ctx, "sub-1", cancel)

	first := <-events
	require.Equal(t, []string{"s1"}, first.Scripts)
	require.Len(t, first.NewVtxos, 1)
	require.Equal(t, "aa", first.NewVtxos[0].Outpoint.Txid)

	second := <-events
	require.Equal(t, []string{"s2"}, second.Scripts)
	require.Len(t, second.SpentVtxos, 1)
	require.Equal(t, "bb", second.SpentVtxos[0].Outpoint.Txid)

	close(cancel)
}

func TestGetSubscriptionReportsUnknownID(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()
	cancel := make(chan struct{})
	defer close(cancel)

	_, errs := c.GetSubscription(ctx, "missing", cancel)
	err := <-errs
	require.ErrorIs(t, err, ErrUnknownSubscription)
}
