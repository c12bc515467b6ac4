package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/ark-network/ark-sdk-go/identity"
)

func TestGetAddressRoundTripsThroughArkEncoding(t *testing.T) {
	env := newTestEnv(t)

	addr, err := env.wallet.GetAddress()
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	pkScript, err := DecodeArkAddress(addr)
	require.NoError(t, err)

	vs, err := env.wallet.offchainScript(env.userKey.XOnlyPublicKey())
	require.NoError(t, err)
	wantScript, err := vs.PkScript()
	require.NoError(t, err)

	require.Equal(t, wantScript, pkScript)
}

func TestGetBoardingAddressIsValidP2TR(t *testing.T) {
	env := newTestEnv(t)

	addr, err := env.wallet.GetBoardingAddress()
	require.NoError(t, err)
	require.NotEmpty(t, addr)
}

func TestGetAddressesDerivesFromHDIndex(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	hd, err := identity.NewHD(identity.DefaultHDConfig(&chaincfg.RegressionNetParams, seed))
	require.NoError(t, err)

	env := newTestEnv(t)
	env.wallet.identity = hd
	env.wallet.cfg.Identity = hd

	addrs0, err := env.wallet.GetAddresses(0)
	require.NoError(t, err)
	addrs1, err := env.wallet.GetAddresses(1)
	require.NoError(t, err)

	require.NotEqual(t, addrs0.Ark, addrs1.Ark)
	require.Equal(t, uint32(0), addrs0.Index)
	require.Equal(t, uint32(1), addrs1.Index)
}
