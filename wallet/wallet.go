// Package wallet is the Ark SDK's composition root: it wires an
// identity.Identity signer and the three provider contracts
// (provider.IndexerProvider, provider.ArkProvider, provider.OnchainProvider)
// into address derivation, coin selection, and the Send/Settle/Unroll/Renew
// orchestrations.
package wallet

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/clock"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/identity"
	"github.com/ark-network/ark-sdk-go/internal/buildlog"
	"github.com/ark-network/ark-sdk-go/provider"
	"github.com/ark-network/ark-sdk-go/script"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

var log = buildlog.NewSubLogger("WLLT")

// Wallet coordinates script construction, coin selection, and the
// Send/Settle/Unroll/Renew task orchestrations over its configured
// providers and signing identity.
type Wallet struct {
	cfg      Config
	identity identity.Identity
	clk      clock.Clock

	mu         sync.Mutex
	serverInfo *provider.ServerInfo
}

// New validates cfg and returns a ready-to-use Wallet. It does not contact
// any provider; ServerInfo is fetched lazily and cached on first use.
func New(cfg Config) (*Wallet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.New", err)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Wallet{cfg: cfg, identity: cfg.Identity, clk: clk}, nil
}

// serverInfoCached fetches and caches provider.ServerInfo, the parameters
// (server signer key, dust, exit delay, checkpoint tapscript) every script
// and fee computation in this package depends on.
func (w *Wallet) serverInfoCached(ctx context.Context) (provider.ServerInfo, error) {
	w.mu.Lock()
	cached := w.serverInfo
	w.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	info, err := w.cfg.Ark.GetInfo(ctx)
	if err != nil {
		return provider.ServerInfo{}, arkerrors.New(arkerrors.ProviderError, "wallet.serverInfoCached", err)
	}

	w.mu.Lock()
	w.serverInfo = &info
	w.mu.Unlock()
	return info, nil
}

// offchainScript builds the two-leaf VtxoScript (collaborative + exit) for
// a given owner key, using the cached server signer pubkey and exit delay.
// It fetches ServerInfo synchronously the first time it is called from a
// context-free call site, since address derivation has no natural deadline
// of its own.
func (w *Wallet) offchainScript(ownerXOnly [32]byte) (*script.VtxoScript, error) {
	info, err := w.serverInfoCached(context.Background())
	if err != nil {
		return nil, err
	}
	serverXOnly, err := hexXOnly(info.SignerPubkey)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.offchainScript", err)
	}
	return offchainVtxoScript(ownerXOnly, serverXOnly, info.UnilateralExitDelay)
}

// Balance fetches this wallet's off-chain and boarding coins and
// classifies them into a vtxo.BalanceSummary.
func (w *Wallet) Balance(ctx context.Context) (vtxo.BalanceSummary, error) {
	info, err := w.serverInfoCached(ctx)
	if err != nil {
		return vtxo.BalanceSummary{}, err
	}

	arkAddr, err := w.GetAddress()
	if err != nil {
		return vtxo.BalanceSummary{}, err
	}
	pkScript, err := DecodeArkAddress(arkAddr)
	if err != nil {
		return vtxo.BalanceSummary{}, err
	}

	page, err := w.cfg.Indexer.GetVtxos(ctx, provider.VtxoQueryFilter{
		Scripts: []string{hexEncode(pkScript)},
	})
	if err != nil {
		return vtxo.BalanceSummary{}, arkerrors.New(arkerrors.ProviderError, "wallet.Balance", err)
	}

	boardingAddr, err := w.GetBoardingAddress()
	if err != nil {
		return vtxo.BalanceSummary{}, err
	}
	boardingCoins, err := w.cfg.Onchain.GetCoins(ctx, boardingAddr)
	if err != nil {
		return vtxo.BalanceSummary{}, arkerrors.New(arkerrors.ProviderError, "wallet.Balance", err)
	}

	tip, err := w.cfg.Onchain.GetChainTip(ctx)
	if err != nil {
		return vtxo.BalanceSummary{}, arkerrors.New(arkerrors.ProviderError, "wallet.Balance", err)
	}
	if w.cfg.Repo != nil {
		if err := w.cfg.Repo.SaveChainTip(ctx, tip); err != nil {
			log.Warnf("balance: persisting chain tip: %v", err)
		}
	}

	coins := make([]vtxo.VirtualCoin, len(page.Vtxos))
	for i, v := range page.Vtxos {
		coins[i] = v.VirtualCoin
	}

	return vtxo.SummarizeBalance(coins, boardingCoins, info.Dust, w.clk, tip), nil
}

// History returns one page of this wallet's own transaction history from
// the indexer.
func (w *Wallet) History(ctx context.Context, opts provider.HistoryOptions) (provider.HistoryPage, error) {
	arkAddr, err := w.GetAddress()
	if err != nil {
		return provider.HistoryPage{}, err
	}
	page, err := w.cfg.Indexer.GetTransactionHistory(ctx, arkAddr, opts)
	if err != nil {
		return provider.HistoryPage{}, arkerrors.New(arkerrors.ProviderError, "wallet.History", err)
	}
	return page, nil
}
