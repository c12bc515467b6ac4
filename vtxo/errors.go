package vtxo

import "errors"

var (
	// ErrMixedLocktimeUnits is returned by HasBoardingTxExpired when it is
	// given a negative timelock, which it cannot add to a block time.
	ErrMixedLocktimeUnits = errors.New("vtxo: cannot compare block-based and timestamp-based locktimes without a resolved unit")
)
