package vtxo

import (
	"github.com/lightningnetwork/lnd/clock"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// year2025Unix is the sanity-check threshold the legacy isExpired heuristic
// uses when BatchExpiryUnit is unset: values below it are treated as block
// heights, values at or above it as timestamps. Kept only as a documented
// fallback; callers that can supply BatchExpiryUnit should always do so.
const year2025Unix = 1735689600

// IsExpired reports whether v's batch has expired. When BatchExpiryUnit is
// set, it is trusted outright. When unset, it falls back to a
// block-height-vs-timestamp sanity heuristic, an approximation rather than
// a correctness guarantee; providers that know the unit should always set
// BatchExpiryUnit.
func IsExpired(v VirtualCoin, clk clock.Clock, currentHeight uint32) bool {
	if Classify(v) == StateSwept {
		return true
	}
	if v.BatchExpiry == 0 {
		return false
	}

	switch v.BatchExpiryUnit {
	case ExpiryUnitBlock:
		return uint32(v.BatchExpiry) <= currentHeight
	case ExpiryUnitTimestamp:
		return v.BatchExpiry <= clk.Now().Unix()
	default:
		// Legacy heuristic: a value under the 2025 threshold can't be a
		// plausible UNIX timestamp for this protocol's era, so treat it
		// as a block height instead.
		if v.BatchExpiry < year2025Unix {
			return uint32(v.BatchExpiry) <= currentHeight
		}
		return v.BatchExpiry <= clk.Now().Unix()
	}
}

// HasBoardingTxExpired checks a boarding UTXO's timelock expressed in
// seconds: it returns true only when the coin's block time is known and
// block_time + timelockSeconds <= now. It does not detect the timelock's
// unit; only a negative timelockSeconds is rejected, with
// ErrMixedLocktimeUnits. Block-denominated timelocks are compared exactly
// by HasBoardingTxExpiredAtHeight.
func HasBoardingTxExpired(coin Coin, timelockSeconds int64, clk clock.Clock) (bool, error) {
	if coin.BlockTime == 0 {
		return false, nil
	}
	if timelockSeconds < 0 {
		return false, arkerrors.New(arkerrors.Policy, "vtxo.HasBoardingTxExpired", ErrMixedLocktimeUnits)
	}
	return coin.BlockTime+timelockSeconds <= clk.Now().Unix(), nil
}

// HasBoardingTxExpiredAtHeight checks a block-denominated boarding timelock
// exactly, given the chain tip height, avoiding the timestamp
// approximation entirely.
func HasBoardingTxExpiredAtHeight(coin Coin, timelockBlocks uint32, currentHeight uint32) bool {
	if coin.BlockHeight == 0 {
		return false
	}
	return coin.BlockHeight+timelockBlocks <= currentHeight
}
