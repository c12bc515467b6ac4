package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/identity"
	"github.com/ark-network/ark-sdk-go/internal/curve"
	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/provider/arkserver"
	"github.com/ark-network/ark-sdk-go/script"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

const testExitDelay = int64(144)
const testDust = int64(1_000)

// testEnv bundles a Wallet wired to in-memory fakes, plus handles to those
// fakes so a test can seed fixtures and assert on what was submitted.
type testEnv struct {
	t       *testing.T
	wallet  *Wallet
	userKey *identity.SingleKey
	indexer *fakeIndexer
	onchain *fakeOnchain
	ark     *arkserver.Fake
	info    provider.ServerInfo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userID, err := identity.GenerateSingleKey()
	require.NoError(t, err)

	serverKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	serverUnrollKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	checkpointScript, err := script.MultisigScript(1, serverUnrollKey.PubKey())
	require.NoError(t, err)

	serverXOnly := curve.XOnly(serverKey.PubKey())

	info := provider.ServerInfo{
		SignerPubkey:        hexEncode(serverXOnly[:]),
		UnilateralExitDelay: testExitDelay,
		Dust:                testDust,
		Network:             chaincfg.RegressionNetParams.Name,
		CheckpointTapscript: checkpointScript,
		Fees: provider.Fees{
			IntentFee: provider.IntentFee{OnchainInput: 100, OnchainOutput: 100},
		},
	}

	ark, err := arkserver.New(arkserver.Config{Info: info})
	require.NoError(t, err)

	indexer := &fakeIndexer{virtualTxs: map[string]string{}}
	onchain := &fakeOnchain{
		coins:    map[string][]vtxo.Coin{},
		feeRate:  1.0,
		statuses: map[string]provider.TxStatus{},
	}

	w, err := New(Config{
		NetParams: &chaincfg.RegressionNetParams,
		Identity:  userID,
		Indexer:   indexer,
		Ark:       ark,
		Onchain:   onchain,
	})
	require.NoError(t, err)

	return &testEnv{
		t:       t,
		wallet:  w,
		userKey: userID,
		indexer: indexer,
		onchain: onchain,
		ark:     ark,
		info:    info,
	}
}

// newOwnedVtxo builds a spendable vtxo fixture under this env's own wallet
// address: a real two-leaf offchain VtxoScript (collaborative + exit),
// with its collaborative leaf recorded as CheckpointTapLeaf the way a
// provider response would.
func (e *testEnv) newOwnedVtxo(seed byte, value int64) vtxo.ExtendedVirtualCoin {
	e.t.Helper()

	vs, err := e.wallet.offchainScript(e.userKey.XOnlyPublicKey())
	require.NoError(e.t, err)

	tapscripts := make([][]byte, len(vs.Leaves))
	for i, l := range vs.Leaves {
		tapscripts[i] = l.Script
	}

	txidBytes := sha256.Sum256([]byte{seed})

	return vtxo.ExtendedVirtualCoin{
		VirtualCoin: vtxo.VirtualCoin{
			Coin: vtxo.Coin{
				Outpoint: vtxo.Outpoint{Txid: hex.EncodeToString(txidBytes[:]), VOut: 0},
				Value:    value,
				Status:   vtxo.CoinConfirmed,
			},
		},
		Tapscripts:        tapscripts,
		CheckpointTapLeaf: vs.Leaves[0].Script,
	}
}
