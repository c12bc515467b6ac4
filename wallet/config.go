package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/clock"

	"github.com/ark-network/ark-sdk-go/arkcontract"
	"github.com/ark-network/ark-sdk-go/identity"
	"github.com/ark-network/ark-sdk-go/provider"
)

// Config wires the collaborators a Wallet coordinates: the signing
// capability, the three provider contracts, and the network parameters
// its addresses are encoded for.
type Config struct {
	NetParams *chaincfg.Params

	Identity identity.Identity

	Indexer provider.IndexerProvider
	Ark     provider.ArkProvider
	Onchain provider.OnchainProvider

	// Contracts is an optional registry of non-standard VTXO contract
	// types (e.g. arknotes) this wallet should recognize among its
	// owned vtxos. A nil registry means the wallet only tracks its own
	// plain offchain/boarding scripts.
	Contracts *arkcontract.Registry

	// Repo persists identity-addressed wallet state (derived addresses,
	// reconciled chain tip, cached subscription id). A nil Repo makes the
	// wallet fully ephemeral.
	Repo Repository

	// Clock allows deterministic tests to control "now"; defaults to
	// the real wall clock.
	Clock clock.Clock

	// FeeBumper builds the CPFP child spending an unrolled transaction's
	// P2A anchor. A nil FeeBumper makes Unroll return transaction hex
	// for the caller to broadcast instead of broadcasting itself.
	FeeBumper FeeBumper
}

// Validate reports whether cfg carries everything New requires.
func (cfg *Config) Validate() error {
	if cfg.NetParams == nil {
		return ErrMissingNetParams
	}
	if cfg.Identity == nil {
		return ErrMissingIdentity
	}
	if cfg.Indexer == nil {
		return ErrMissingIndexerProvider
	}
	if cfg.Ark == nil {
		return ErrMissingArkProvider
	}
	if cfg.Onchain == nil {
		return ErrMissingOnchainProvider
	}
	return nil
}
