package esplora

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &Config{
		BaseURL:       srv.URL,
		RateLimit:     1000,
		Timeout:       5 * time.Second,
		RetryAttempts: 0,
		RetryDelay:    time.Millisecond,
		PollInterval:  time.Millisecond,
		CacheTTL:      time.Minute,
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestGetCoinsParsesUTXOs(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/address/bc1qtest/utxo", r.URL.Path)
		resp := []utxoResponse{
			{Txid: "aa", Vout: 0, Value: 1000, Status: txStatus{Confirmed: true, BlockHeight: 100}},
			{Txid: "bb", Vout: 1, Value: 2000, Status: txStatus{Confirmed: false}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	coins, err := c.GetCoins(context.Background(), "bc1qtest")
	require.NoError(t, err)
	require.Len(t, coins, 2)
	require.Equal(t, int64(1000), coins[0].Value)
}

func TestGetChainTipCaches(t *testing.T) {
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("800000"))
	})

	h1, err := c.GetChainTip(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(800000), h1)

	h2, err := c.GetChainTip(context.Background())
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Equal(t, 1, calls)
}

func TestBroadcastTransactionSingle(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tx", r.URL.Path)
		w.Write([]byte("deadbeef\n"))
	})

	txid, err := c.BroadcastTransaction(context.Background(), "0100000000")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", txid)
}

func TestBroadcastTransactionRejectsEmpty(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.BroadcastTransaction(context.Background())
	require.ErrorIs(t, err, ErrNoTxsToBroadcast)
}

func TestBroadcastTransactionRejectsTooMany(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.BroadcastTransaction(context.Background(), "a", "b", "c")
	require.ErrorIs(t, err, ErrTooManyTxs)
}

func TestGetTxStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tx/abc/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(txStatus{Confirmed: true, BlockHeight: 42})
	})

	status, err := c.GetTxStatus(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, status.Confirmed)
	require.Equal(t, uint32(42), status.BlockHeight)
}
