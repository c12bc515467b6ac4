package vtxo

import "github.com/lightningnetwork/lnd/clock"

// BalanceSummary categorizes a wallet's coins by how they can be spent.
// Subdust is reported on its own; the coarser settle-to-recover view is
// BatchSpendable + Subdust.
type BalanceSummary struct {
	OffchainSpendable int64 // settled + preconfirmed
	BatchSpendable    int64 // swept-but-unspent, confirmed boarding
	OnchainSpendable  int64 // expired batch, requires unilateral exit
	Locked            int64 // unconfirmed boarding only; no vtxo is counted here
	Subdust           int64 // spendable but below the dust threshold
}

// SummarizeBalance classifies vtxos and boardingCoins into a BalanceSummary.
// dust is the provider-reported dust threshold; currentHeight is the chain
// tip used to resolve block-denominated expiries.
func SummarizeBalance(vtxos []VirtualCoin, boardingCoins []Coin, dust int64, clk clock.Clock, currentHeight uint32) BalanceSummary {
	var sum BalanceSummary

	for _, v := range vtxos {
		if !IsSpendable(v) {
			continue
		}
		switch {
		case IsSubdust(v, dust):
			sum.Subdust += v.Value
		case IsRecoverable(v):
			sum.BatchSpendable += v.Value
		case IsExpired(v, clk, currentHeight):
			sum.OnchainSpendable += v.Value
		case Classify(v) == StatePreconfirmed, Classify(v) == StateSettled:
			sum.OffchainSpendable += v.Value
		}
	}

	for _, c := range boardingCoins {
		if c.Status == CoinConfirmed {
			sum.BatchSpendable += c.Value
		} else {
			sum.Locked += c.Value
		}
	}

	return sum
}
