package wallet

import (
	"sort"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// CoinSelection is the outcome of SelectVirtualCoins: the coins chosen to
// fund a spend, and the leftover value (before any outgoing fee) that
// becomes a change output.
type CoinSelection struct {
	Inputs     []vtxo.ExtendedVirtualCoin
	ChangeSats int64
}

// SelectVirtualCoins sorts candidates descending by value and takes coins
// until their sum covers target, returning the excess as change. Dust-valued
// coins are still eligible inputs (spending them is how a wallet clears
// subdust balances) but never become a change output on their own.
func SelectVirtualCoins(coins []vtxo.ExtendedVirtualCoin, target int64, dust int64) (CoinSelection, error) {
	if target <= 0 {
		return CoinSelection{}, arkerrors.New(arkerrors.InvalidInput, "wallet.SelectVirtualCoins", ErrZeroAmount)
	}

	sorted := make([]vtxo.ExtendedVirtualCoin, len(coins))
	copy(sorted, coins)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	var selected []vtxo.ExtendedVirtualCoin
	var sum int64
	for _, c := range sorted {
		if sum >= target {
			break
		}
		selected = append(selected, c)
		sum += c.Value
	}

	if sum < target {
		return CoinSelection{}, arkerrors.New(arkerrors.Policy, "wallet.SelectVirtualCoins", ErrInsufficientFunds)
	}

	change := sum - target
	if change < dust {
		// Dust-valued change is folded into the transaction's implicit
		// fee rather than becoming an uneconomical output.
		change = 0
	}

	return CoinSelection{Inputs: selected, ChangeSats: change}, nil
}
