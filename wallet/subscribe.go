package wallet

import (
	"context"
	"encoding/hex"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/provider"
)

// WatchIncomingFunds opens a script subscription over this wallet's own
// offchain script and yields every vtxo created or spent against it until
// ctx is done. When a Repository is configured, the subscription id is
// cached and reused across restarts, so the server keeps extending the same
// subscription instead of accumulating stale ones. Delivery is in server
// order but carries no replay guarantee across reconnects; consumers must
// be idempotent against double delivery.
func (w *Wallet) WatchIncomingFunds(ctx context.Context) (<-chan provider.SubscriptionEvent, <-chan error, error) {
	arkAddr, err := w.GetAddress()
	if err != nil {
		return nil, nil, err
	}
	myScript, err := DecodeArkAddress(arkAddr)
	if err != nil {
		return nil, nil, err
	}
	scripts := []string{hex.EncodeToString(myScript)}

	var existingID string
	if w.cfg.Repo != nil {
		existingID, err = w.cfg.Repo.LoadSubscriptionID(ctx)
		if err != nil {
			return nil, nil, arkerrors.New(arkerrors.ProviderError, "wallet.WatchIncomingFunds", err)
		}
	}

	id, err := w.cfg.Indexer.SubscribeForScripts(ctx, scripts, existingID)
	if err != nil {
		return nil, nil, arkerrors.New(arkerrors.ProviderError, "wallet.WatchIncomingFunds", err)
	}
	if w.cfg.Repo != nil && id != existingID {
		if err := w.cfg.Repo.SaveSubscriptionID(ctx, id); err != nil {
			return nil, nil, arkerrors.New(arkerrors.ProviderError, "wallet.WatchIncomingFunds", err)
		}
	}
	log.Debugf("watch: subscription %s over %d script(s)", id, len(scripts))

	cancel := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(cancel)
	}()

	events, errs := w.cfg.Indexer.GetSubscription(ctx, id, cancel)
	return events, errs, nil
}
