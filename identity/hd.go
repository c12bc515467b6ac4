package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
)

// ArkPurpose is the BIP-43 purpose field reserved for Ark descriptor
// derivation, following BIP-86's single-purpose-per-protocol convention.
const ArkPurpose = 350

// DefaultCoinType mirrors BIP-44's "Bitcoin mainnet" coin type; HD wallets
// on other networks may override it.
const DefaultCoinType = 0

// HDConfig configures an HD-derived identity.
type HDConfig struct {
	NetParams *chaincfg.Params
	Seed      []byte
	Purpose   uint32
	CoinType  uint32
}

// DefaultHDConfig returns sensible defaults given a network and seed.
func DefaultHDConfig(netParams *chaincfg.Params, seed []byte) HDConfig {
	return HDConfig{
		NetParams: netParams,
		Seed:      seed,
		Purpose:   ArkPurpose,
		CoinType:  DefaultCoinType,
	}
}

func (c HDConfig) Validate() error {
	if c.NetParams == nil {
		return fmt.Errorf("net params required")
	}
	if len(c.Seed) < hdkeychain.MinSeedBytes || len(c.Seed) > hdkeychain.MaxSeedBytes {
		return fmt.Errorf("seed length %d out of range [%d, %d]",
			len(c.Seed), hdkeychain.MinSeedBytes, hdkeychain.MaxSeedBytes)
	}
	return nil
}

// HD is a BIP-86-style descriptor-derived Identity: every address is one
// more non-hardened index under a fixed account path, all sharing the same
// underlying master key.
type HD struct {
	cfg    HDConfig
	master *hdkeychain.ExtendedKey

	mu      sync.Mutex
	derived map[uint32]*btcec.PrivateKey
}

// NewHD derives the account-level extended key from cfg.Seed and returns an
// HD identity whose active signing key is index 0 of that account.
func NewHD(cfg HDConfig) (*HD, error) {
	if err := cfg.Validate(); err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "identity.NewHD", err)
	}

	master, err := hdkeychain.NewMaster(cfg.Seed, cfg.NetParams)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "identity.NewHD", err)
	}

	return &HD{
		cfg:     cfg,
		master:  master,
		derived: make(map[uint32]*btcec.PrivateKey),
	}, nil
}

// deriveKeyAtIndex walks purpose'/coin_type'/0'/0/index, caching results so
// repeated lookups at the same index avoid re-deriving the key.
func (h *HD) deriveKeyAtIndex(index uint32) (*btcec.PrivateKey, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if priv, ok := h.derived[index]; ok {
		return priv, nil
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + h.cfg.Purpose,
		hdkeychain.HardenedKeyStart + h.cfg.CoinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		index,
	}

	key := h.master
	for _, step := range path {
		var err error
		key, err = key.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("deriving path step %d: %w", step, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("extracting private key: %w", err)
	}

	h.derived[index] = priv
	return priv, nil
}

// activeKey returns the signing key at index 0, the identity's default
// address.
func (h *HD) activeKey() *btcec.PrivateKey {
	priv, err := h.deriveKeyAtIndex(0)
	if err != nil {
		// The master key and path are fixed at construction time and
		// validated in NewHD; a failure here means corrupted internal
		// state, which callers cannot recover from via error return
		// given the interface's pubkey accessors don't return error.
		panic(fmt.Sprintf("identity: HD key derivation invariant violated: %v", err))
	}
	return priv
}

// KeyAt returns the private key for a specific address index, deriving and
// caching it if needed.
func (h *HD) KeyAt(index uint32) (*btcec.PrivateKey, error) {
	priv, err := h.deriveKeyAtIndex(index)
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "identity.HD.KeyAt", err)
	}
	return priv, nil
}

func (h *HD) XOnlyPublicKey() [32]byte {
	return curve.XOnly(h.activeKey().PubKey())
}

func (h *HD) CompressedPublicKey() [33]byte {
	return curve.Compressed(h.activeKey().PubKey())
}

func (h *HD) Sign(_ context.Context, packet *psbt.Packet, inputIndexes []int) (*psbt.Packet, error) {
	if _, err := signTaprootInputs(packet, inputIndexes, h.activeKey()); err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "identity.HD.Sign", err)
	}
	return packet, nil
}

func (h *HD) SignMessage(_ context.Context, msg [32]byte, kind SigKind) ([]byte, error) {
	priv := h.activeKey()
	switch kind {
	case SigSchnorr:
		sig, err := curve.SignSchnorr(priv, msg[:])
		if err != nil {
			return nil, arkerrors.New(arkerrors.CryptoError, "identity.HD.SignMessage", err)
		}
		return sig, nil
	case SigECDSA:
		// Drop the compact form's leading recovery byte, leaving r || s.
		sig := curve.SignECDSACompact(priv, msg[:], true)
		return sig[1:], nil
	default:
		return nil, arkerrors.New(arkerrors.InvalidInput, "identity.HD.SignMessage", ErrUnsupportedScript)
	}
}

func (h *HD) SignerSession() SignerSession {
	return newMusigSession(h.activeKey())
}

func (h *HD) ToReadonly() ReadonlyIdentity {
	return readonly{xOnly: h.XOnlyPublicKey(), compressed: h.CompressedPublicKey()}
}

var _ Identity = (*HD)(nil)
