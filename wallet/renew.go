package wallet

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// avgBlockInterval approximates a block's wall-clock weight when a vtxo's
// BatchExpiry is block-denominated, so it can be compared against threshold
// alongside timestamp-denominated expiries.
const avgBlockInterval = 10 * time.Minute

// RenewResult reports what Renew found and, if it acted, the self-settle it
// drove.
type RenewResult struct {
	// NeedsRenewal is true when at least one owned vtxo expires within the
	// requested threshold.
	NeedsRenewal bool
	// ExpiringValue sums the value of vtxos that triggered NeedsRenewal.
	ExpiringValue int64
	// Settled is the outcome of the self-settle round Renew submitted,
	// nil unless autoRenew was true and NeedsRenewal was true.
	Settled *SettleResult
}

// Renew scans this wallet's own spendable vtxos for any whose batch expires
// within threshold of now, and, when autoRenew is set and one does,
// self-settles every spendable vtxo (not only the expiring ones) into a
// fresh batch via Settle with no recipients.
func (w *Wallet) Renew(ctx context.Context, threshold time.Duration, autoRenew bool) (*RenewResult, error) {
	arkAddr, err := w.GetAddress()
	if err != nil {
		return nil, err
	}
	myScript, err := DecodeArkAddress(arkAddr)
	if err != nil {
		return nil, err
	}

	page, err := w.cfg.Indexer.GetVtxos(ctx, provider.VtxoQueryFilter{
		Scripts:       []string{hex.EncodeToString(myScript)},
		SpendableOnly: true,
	})
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Renew", err)
	}

	tip, err := w.cfg.Onchain.GetChainTip(ctx)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Renew", err)
	}

	var expiringValue int64
	for _, v := range page.Vtxos {
		if expiresSoon(v.VirtualCoin, tip, w.clk.Now(), threshold) {
			expiringValue += v.Value
		}
	}

	result := &RenewResult{NeedsRenewal: expiringValue > 0, ExpiringValue: expiringValue}
	if !result.NeedsRenewal || !autoRenew {
		if !result.NeedsRenewal {
			return result, arkerrors.New(arkerrors.Policy, "wallet.Renew", ErrNothingToRenew)
		}
		return result, nil
	}

	log.Infof("renew: %d sat across expiring vtxos, self-settling", expiringValue)
	settled, err := w.Settle(ctx, nil)
	if err != nil {
		log.Errorf("renew: self-settle failed: %v", err)
		return nil, err
	}
	result.Settled = settled
	return result, nil
}

// expiresSoon reports whether v's batch expires within threshold of now,
// resolving block-denominated expiries to an approximate wall-clock
// distance via avgBlockInterval.
func expiresSoon(v vtxo.VirtualCoin, tip uint32, now time.Time, threshold time.Duration) bool {
	if v.BatchExpiry == 0 {
		return false
	}
	switch v.BatchExpiryUnit {
	case vtxo.ExpiryUnitBlock:
		remaining := int64(v.BatchExpiry) - int64(tip)
		if remaining <= 0 {
			return true
		}
		return time.Duration(remaining)*avgBlockInterval <= threshold
	default:
		remaining := v.BatchExpiry - now.Unix()
		if remaining <= 0 {
			return true
		}
		return time.Duration(remaining)*time.Second <= threshold
	}
}
