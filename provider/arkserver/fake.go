// Package arkserver provides an in-memory fake of provider.ArkProvider. The
// stub drives a real, if simplified, settlement round end to end: a single
// cosigner's tree nonces and signatures are accepted as-is rather than
// MuSig2-aggregated across multiple participants, and every round is
// forfeit-free, so a wallet's Settle orchestration can be exercised without
// a network.
package arkserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/provider"
)

// newTxid derives a synthetic but well-formed 32-byte txid in display-order
// hex, so callers that parse it with chainhash.NewHashFromStr succeed.
func newTxid() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return hex.EncodeToString(sum[:])
}

// Config configures Fake.
type Config struct {
	// Info is the ServerInfo every GetInfo call returns.
	Info provider.ServerInfo
}

// Validate reports whether cfg is usable.
func (cfg *Config) Validate() error {
	if cfg.Info.SignerPubkey == "" {
		return ErrMissingServerInfo
	}
	return nil
}

// Fake is an in-memory provider.ArkProvider: it accepts round registration,
// walks a simplified single-cosigner tree-signing ceremony, and finalizes
// immediately once forfeit transactions (always none, in this fake) are
// submitted.
var _ provider.ArkProvider = (*Fake)(nil)

type Fake struct {
	cfg Config

	mu                 sync.Mutex
	rounds             map[string]*roundState
	lastFinalizationID string
	events             []provider.SettleEvent
	subs               map[int]func(provider.SettleEvent)
	nextSubID          int
}

type roundState struct {
	id              string
	cosignerPubkeys []string
	nodeTxid        string
	inputs          []provider.RoundInput
	outputs         []provider.RoundOutput
}

// New validates cfg and returns a ready-to-use Fake.
func New(cfg Config) (*Fake, error) {
	if err := cfg.Validate(); err != nil {
		return nil, arkerrors.New(arkerrors.InvalidInput, "arkserver.New", err)
	}
	return &Fake{
		cfg:    cfg,
		rounds: make(map[string]*roundState),
		subs:   make(map[int]func(provider.SettleEvent)),
	}, nil
}

// GetInfo returns the configured ServerInfo unchanged.
func (f *Fake) GetInfo(ctx context.Context) (provider.ServerInfo, error) {
	return f.cfg.Info, nil
}

// RegisterInputsForNextRound opens a new round and returns its payment id.
func (f *Fake) RegisterInputsForNextRound(ctx context.Context, inputs []provider.RoundInput, cosignerPubkey string) (string, error) {
	id := uuid.NewString()
	f.mu.Lock()
	f.rounds[id] = &roundState{
		id:              id,
		cosignerPubkeys: []string{cosignerPubkey},
		nodeTxid:        newTxid(),
		inputs:          inputs,
	}
	f.mu.Unlock()
	return id, nil
}

// RegisterOutputsForNextRound attaches outputs to an open round and opens
// the tree-signing ceremony by publishing a RoundSigningEvent.
func (f *Fake) RegisterOutputsForNextRound(ctx context.Context, paymentID string, outputs []provider.RoundOutput) error {
	round, err := f.round(paymentID)
	if err != nil {
		return err
	}
	round.outputs = outputs

	f.publish(provider.RoundSigningEvent{
		ID:              round.id,
		CosignerPubkeys: round.cosignerPubkeys,
		UnsignedTree:    []provider.TreeNode{{Txid: round.nodeTxid}},
	})
	return nil
}

// SubmitTreeNonces echoes the single cosigner's nonces back as the round's
// aggregated nonces, since this fake never drives more than one signer
// through a ceremony, and opens the signature-submission step.
func (f *Fake) SubmitTreeNonces(ctx context.Context, roundID, cosignerPubkey string, nonces provider.TreeNonces) error {
	round, err := f.round(roundID)
	if err != nil {
		return err
	}
	combined := make(provider.TreeNonces, len(nonces))
	for txid, n := range nonces {
		combined[txid] = n
	}
	f.publish(provider.RoundSigningNoncesEvent{ID: round.id, TreeNonces: combined})
	return nil
}

// SubmitTreeSignatures accepts the round's tree signatures and moves to
// finalization. This fake never asks for forfeit transactions, so
// UnsignedForfeitTxs is always empty.
func (f *Fake) SubmitTreeSignatures(ctx context.Context, roundID, cosignerPubkey string, sigs provider.TreeSignatures) error {
	round, err := f.round(roundID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.lastFinalizationID = round.id
	f.mu.Unlock()

	f.publish(provider.RoundFinalizationEvent{
		ID:                 round.id,
		CommitmentTx:       newTxid(),
		UnsignedForfeitTxs: nil,
	})
	return nil
}

// SubmitSignedForfeitTxs finalizes the most recently opened finalization,
// publishing a RoundFinalizedEvent.
func (f *Fake) SubmitSignedForfeitTxs(ctx context.Context, signedForfeitTxs []string) error {
	f.mu.Lock()
	id := f.lastFinalizationID
	f.mu.Unlock()
	if id == "" {
		return arkerrors.New(arkerrors.StateError, "arkserver.SubmitSignedForfeitTxs", ErrNoActiveRound)
	}
	f.publish(provider.RoundFinalizedEvent{ID: id, Txid: newTxid()})
	return nil
}

// SubmitVirtualTx accepts a direct off-chain send and returns a synthetic
// txid; this fake does not track the resulting vtxo.
func (f *Fake) SubmitVirtualTx(ctx context.Context, arkTxPSBTBase64 string, checkpointPSBTsBase64 []string) (string, error) {
	return newTxid(), nil
}

// SubscribeToEvents replays every event published so far to cb, then
// forwards future events until the returned func is called. Replaying past
// events lets a subscriber that attaches after RegisterOutputsForNextRound
// still observe the round's opening RoundSigningEvent.
func (f *Fake) SubscribeToEvents(ctx context.Context, cb func(provider.SettleEvent)) (func(), error) {
	f.mu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.subs[id] = cb
	history := make([]provider.SettleEvent, len(f.events))
	copy(history, f.events)
	f.mu.Unlock()

	for _, e := range history {
		cb(e)
	}

	unsubscribe := func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
	return unsubscribe, nil
}

// Ping reports whether paymentID names a round this fake knows about.
func (f *Fake) Ping(ctx context.Context, paymentID string) error {
	_, err := f.round(paymentID)
	return err
}

func (f *Fake) round(id string) (*roundState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	round, ok := f.rounds[id]
	if !ok {
		return nil, arkerrors.New(arkerrors.StateError, "arkserver.round", ErrUnknownRound)
	}
	return round, nil
}

func (f *Fake) publish(e provider.SettleEvent) {
	f.mu.Lock()
	f.events = append(f.events, e)
	cbs := make([]func(provider.SettleEvent), 0, len(f.subs))
	for _, cb := range f.subs {
		cbs = append(cbs, cb)
	}
	f.mu.Unlock()

	for _, cb := range cbs {
		cb(e)
	}
}
