package wallet

import (
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/identity"
	"github.com/ark-network/ark-sdk-go/internal/curve"
	"github.com/ark-network/ark-sdk-go/script"
)

// arkWitnessVersion is the version byte encoded into an off-chain Ark
// address's bech32m payload, mirroring segwit's witness-version byte even
// though the address never appears on chain.
const arkWitnessVersion = 1

// hrpForNetwork returns the bech32m human-readable prefix Ark off-chain
// addresses use on netParams, following the mainnet/testnet/regtest naming
// convention the rest of the Bitcoin ecosystem uses for its own address
// HRPs ("bc"/"tb"/"bcrt").
func hrpForNetwork(netParams *chaincfg.Params) (string, error) {
	switch netParams.Name {
	case chaincfg.MainNetParams.Name:
		return "ark", nil
	case chaincfg.TestNet3Params.Name:
		return "tark", nil
	case chaincfg.RegressionNetParams.Name:
		return "arkrt", nil
	case chaincfg.SigNetParams.Name:
		return "tark", nil
	default:
		return "", arkerrors.New(arkerrors.InvalidInput, "wallet.hrpForNetwork", ErrUnsupportedNetwork)
	}
}

// EncodeArkAddress bech32m-encodes pkScript under netParams's Ark HRP, the
// off-chain analog of a segwit address.
func EncodeArkAddress(netParams *chaincfg.Params, pkScript []byte) (string, error) {
	hrp, err := hrpForNetwork(netParams)
	if err != nil {
		return "", err
	}
	converted, err := bech32.ConvertBits(pkScript, 8, 5, true)
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "wallet.EncodeArkAddress", err)
	}
	data := append([]byte{arkWitnessVersion}, converted...)
	addr, err := bech32.EncodeM(hrp, data)
	if err != nil {
		return "", arkerrors.New(arkerrors.InvalidInput, "wallet.EncodeArkAddress", err)
	}
	return addr, nil
}

// DecodeArkAddress reverses EncodeArkAddress.
func DecodeArkAddress(addr string) (pkScript []byte, err error) {
	_, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.DecodeArkAddress", err)
	}
	if len(data) == 0 {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.DecodeArkAddress", ErrNoRecipients)
	}
	pkScript, err = bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.DecodeArkAddress", err)
	}
	return pkScript, nil
}

// offchainVtxoScript builds the two-leaf VtxoScript every plain Ark vtxo
// (off-chain or boarding) uses: a collaborative 2-of-2 closure the server
// co-signs during a round, and a unilateral-exit closure the owner alone
// can spend after the exit delay.
func offchainVtxoScript(userXOnly [32]byte, serverXOnly [32]byte, exitDelay int64) (*script.VtxoScript, error) {
	userPub, err := curve.ParseXOnly(userXOnly[:])
	if err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.offchainVtxoScript", err)
	}
	serverPub, err := curve.ParseXOnly(serverXOnly[:])
	if err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.offchainVtxoScript", err)
	}

	collab, err := script.MultisigScript(2, userPub, serverPub)
	if err != nil {
		return nil, err
	}
	exit, err := script.CSVMultisigScript(exitDelay, script.UnitBlocks, 1, userPub)
	if err != nil {
		return nil, err
	}

	return script.NewVtxoScript(unspendableInternalKey(), [][]byte{collab, exit})
}

// unspendableInternalKey is the NUMS (nothing-up-my-sleeve) point every
// Ark vtxo's taproot tree is rooted under, so the output is spendable only
// via one of its declared script-path leaves, never a key-path spend.
//
// With h = taggedHash("ArkNUMSH") over an empty message, the key is lift_x
// of the first taggedHash("ArkNUMS", h || i), for i = 0, 1, ..., that is a
// valid x coordinate. This is this SDK's own NUMS derivation, since
// the domain has no standardized constant the way BIP-341's "nothing up my
// sleeve" point does for single-leaf taproot commitments in general.
func unspendableInternalKey() *btcec.PublicKey {
	h := curve.TaggedHash("ArkNUMSH")
	for i := uint8(0); ; i++ {
		candidate := append(append([]byte{}, h[:]...), i)
		sum := curve.TaggedHash("ArkNUMS", candidate)
		if pub, err := curve.ParseXOnly(sum[:]); err == nil {
			return pub
		}
	}
}

// GetAddress returns the wallet's Ark off-chain address: the bech32m
// encoding of its offchain VtxoScript's pkScript.
func (w *Wallet) GetAddress() (string, error) {
	vs, err := w.offchainScript(w.identity.XOnlyPublicKey())
	if err != nil {
		return "", err
	}
	pkScript, err := vs.PkScript()
	if err != nil {
		return "", arkerrors.New(arkerrors.ProtocolError, "wallet.GetAddress", err)
	}
	return EncodeArkAddress(w.cfg.NetParams, pkScript)
}

// GetBoardingAddress returns the wallet's on-chain boarding address: a
// plain P2TR address over the same two-leaf (collaborative + unilateral
// exit) tapscript tree used off-chain, since boarding funds must be
// visible to the Bitcoin network before any round has run.
func (w *Wallet) GetBoardingAddress() (string, error) {
	vs, err := w.offchainScript(w.identity.XOnlyPublicKey())
	if err != nil {
		return "", err
	}
	return vtxoScriptP2TRAddress(vs, w.cfg.NetParams)
}

// vtxoScriptP2TRAddress renders vs's tweaked output key as a standard P2TR
// address, the on-chain form a boarding output must take to be visible to
// the Bitcoin network before any Ark round has run.
func vtxoScriptP2TRAddress(vs *script.VtxoScript, netParams *chaincfg.Params) (string, error) {
	xOnly := schnorr.SerializePubKey(vs.TweakedKey)
	addr, err := btcutil.NewAddressTaproot(xOnly, netParams)
	if err != nil {
		return "", arkerrors.New(arkerrors.ProtocolError, "wallet.vtxoScriptP2TRAddress", err)
	}
	return addr.EncodeAddress(), nil
}

// Addresses bundles the off-chain/on-chain address pair for one HD index,
// plus the descriptor position it was derived from.
type Addresses struct {
	Ark        string
	Boarding   string
	Descriptor string
	Index      uint32
}

// GetAddresses derives the Ark/boarding address pair at a specific HD
// index. It only applies to identity.HD-backed wallets; any other identity
// variant returns an error since there is no derivation path to walk.
func (w *Wallet) GetAddresses(index uint32) (Addresses, error) {
	hd, ok := w.identity.(*identity.HD)
	if !ok {
		return Addresses{}, arkerrors.New(arkerrors.InvalidInput, "wallet.GetAddresses", ErrNotCosigner)
	}
	priv, err := hd.KeyAt(index)
	if err != nil {
		return Addresses{}, err
	}
	xOnly := curve.XOnly(priv.PubKey())

	vs, err := w.offchainScript(xOnly)
	if err != nil {
		return Addresses{}, err
	}
	pkScript, err := vs.PkScript()
	if err != nil {
		return Addresses{}, arkerrors.New(arkerrors.ProtocolError, "wallet.GetAddresses", err)
	}
	arkAddr, err := EncodeArkAddress(w.cfg.NetParams, pkScript)
	if err != nil {
		return Addresses{}, err
	}
	boardingAddr, err := vtxoScriptP2TRAddress(vs, w.cfg.NetParams)
	if err != nil {
		return Addresses{}, err
	}

	return Addresses{
		Ark:        arkAddr,
		Boarding:   boardingAddr,
		Descriptor: ArkDescriptor(identity.ArkPurpose, identity.DefaultCoinType, index),
		Index:      index,
	}, nil
}

// ArkDescriptor renders the BIP-86-style derivation path this address was
// derived from, for display/export purposes only.
func ArkDescriptor(purpose, coinType uint32, index uint32) string {
	p := strconv.FormatUint(uint64(purpose), 10)
	c := strconv.FormatUint(uint64(coinType), 10)
	i := strconv.FormatUint(uint64(index), 10)
	return "m/" + p + "'/" + c + "'/0'/0/" + i
}
