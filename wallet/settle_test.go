package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/vtxo"
)

func TestSettleSelfSettleDrivesRoundToFinalization(t *testing.T) {
	env := newTestEnv(t)
	env.indexer.vtxos = []vtxo.ExtendedVirtualCoin{
		env.newOwnedVtxo(1, 20_000),
		env.newOwnedVtxo(2, 30_000),
	}

	result, err := env.wallet.Settle(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.CommitmentTxid)
}

func TestSettleWithRecipientSplitsSelfChange(t *testing.T) {
	env := newTestEnv(t)
	env.indexer.vtxos = []vtxo.ExtendedVirtualCoin{env.newOwnedVtxo(1, 50_000)}

	recipient := env.recipientAddress(t)
	result, err := env.wallet.Settle(context.Background(), []Recipient{{Address: recipient, Amount: 10_000}})
	require.NoError(t, err)
	require.NotEmpty(t, result.CommitmentTxid)
}

func TestSettleRejectsOverspend(t *testing.T) {
	env := newTestEnv(t)
	env.indexer.vtxos = []vtxo.ExtendedVirtualCoin{env.newOwnedVtxo(1, 5_000)}

	recipient := env.recipientAddress(t)
	_, err := env.wallet.Settle(context.Background(), []Recipient{{Address: recipient, Amount: 50_000}})
	require.Error(t, err)
}

func TestSettleRejectsNoSpendableCoins(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.wallet.Settle(context.Background(), nil)
	require.Error(t, err)
}
