package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

func coin(value int64) vtxo.ExtendedVirtualCoin {
	return vtxo.ExtendedVirtualCoin{
		VirtualCoin: vtxo.VirtualCoin{Coin: vtxo.Coin{Value: value}},
	}
}

func TestSelectVirtualCoinsPicksLargestFirst(t *testing.T) {
	coins := []vtxo.ExtendedVirtualCoin{coin(10_000), coin(50_000), coin(20_000)}

	sel, err := SelectVirtualCoins(coins, 45_000, 1_000)
	require.NoError(t, err)
	require.Len(t, sel.Inputs, 1)
	require.Equal(t, int64(50_000), sel.Inputs[0].Value)
	require.Equal(t, int64(5_000), sel.ChangeSats)
}

func TestSelectVirtualCoinsFoldsDustChangeIntoFee(t *testing.T) {
	coins := []vtxo.ExtendedVirtualCoin{coin(50_100)}

	sel, err := SelectVirtualCoins(coins, 50_000, 1_000)
	require.NoError(t, err)
	require.Equal(t, int64(0), sel.ChangeSats)
}

func TestSelectVirtualCoinsInsufficientFunds(t *testing.T) {
	coins := []vtxo.ExtendedVirtualCoin{coin(10_000)}

	_, err := SelectVirtualCoins(coins, 50_000, 1_000)
	require.Error(t, err)
	require.True(t, arkerrors.Is(err, arkerrors.Policy))
}

func TestSelectVirtualCoinsRejectsNonPositiveTarget(t *testing.T) {
	_, err := SelectVirtualCoins(nil, 0, 1_000)
	require.Error(t, err)
	require.True(t, arkerrors.Is(err, arkerrors.InvalidInput))
}
