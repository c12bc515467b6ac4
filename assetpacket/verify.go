package assetpacket

import "github.com/ark-network/ark-sdk-go/arkerrors"

// VerifyConservation checks that transfers (GroupChanged) conserve per
// asset id between a packet's input side and output side. Issued,
// Reissued, and Burned groups deliberately alter total supply and are
// exempt; authorizing them is the registered handler's responsibility (see
// arkcontract.Handler.Validate).
func VerifyConservation(inputs, outputs []Group) error {
	balances := make(map[AssetID]int64)

	for _, g := range inputs {
		if g.Amount == 0 {
			return arkerrors.New(arkerrors.InvalidInput, "assetpacket.VerifyConservation", ErrZeroAmount)
		}
		if g.Kind != GroupChanged {
			continue
		}
		balances[g.AssetID] += int64(g.Amount)
	}
	for _, g := range outputs {
		if g.Amount == 0 {
			return arkerrors.New(arkerrors.InvalidInput, "assetpacket.VerifyConservation", ErrZeroAmount)
		}
		if g.Kind != GroupChanged {
			continue
		}
		balances[g.AssetID] -= int64(g.Amount)
	}

	for _, bal := range balances {
		if bal != 0 {
			return arkerrors.New(arkerrors.ProtocolError, "assetpacket.VerifyConservation", ErrUnbalanced)
		}
	}
	return nil
}
