package wallet

import (
	"encoding/hex"

	"github.com/ark-network/ark-sdk-go/arkerrors"
)

// hexXOnly decodes a 32-byte hex-encoded x-only pubkey, the form every
// provider response carries a pubkey in at the JSON boundary.
func hexXOnly(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, arkerrors.New(arkerrors.InvalidInput, "wallet.hexXOnly", err)
	}
	if len(b) != 32 {
		return out, arkerrors.New(arkerrors.InvalidInput, "wallet.hexXOnly", ErrInvalidPubkeyLength)
	}
	copy(out[:], b)
	return out, nil
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
