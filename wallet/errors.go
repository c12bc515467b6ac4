package wallet

import "errors"

var (
	ErrMissingIdentity        = errors.New("wallet: Identity is required")
	ErrMissingIndexerProvider = errors.New("wallet: IndexerProvider is required")
	ErrMissingArkProvider     = errors.New("wallet: ArkProvider is required")
	ErrMissingOnchainProvider = errors.New("wallet: OnchainProvider is required")
	ErrMissingNetParams       = errors.New("wallet: NetParams is required")
	ErrUnsupportedNetwork     = errors.New("wallet: unsupported network for Ark address HRP")

	ErrInsufficientFunds = errors.New("wallet: insufficient spendable balance for amount plus fees")
	ErrNoRecipients      = errors.New("wallet: at least one recipient output is required")
	ErrZeroAmount        = errors.New("wallet: recipient amount must be positive")

	ErrSettleFailed    = errors.New("wallet: settlement round failed")
	ErrSettleCancelled = errors.New("wallet: settlement round cancelled")
	ErrNotCosigner     = errors.New("wallet: this signer was not assigned a tree-signing role in the round")

	ErrNothingToRenew = errors.New("wallet: no vtxo is within the renewal threshold")
	ErrUnrollNoChain  = errors.New("wallet: no vtxo chain found for outpoint")

	ErrInvalidPubkeyLength = errors.New("wallet: expected a 32-byte x-only pubkey")
	ErrLeafNotFound        = errors.New("wallet: vtxo's own tree does not contain its checkpoint tapleaf")
)
