package wallet

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/bip322"
	"github.com/ark-network/ark-sdk-go/identity"
	"github.com/ark-network/ark-sdk-go/musig2"
	"github.com/ark-network/ark-sdk-go/provider"
)

// SettleResult reports the outcome of a completed batch round.
type SettleResult struct {
	CommitmentTxid string
}

// Settle runs a batch-round orchestration: register this wallet's spendable
// inputs and requested outputs for the next round, drive the MuSig2
// tree-signing ceremony as events arrive, sign the forfeit transactions the
// server returns at finalization, and wait for the round to either land or
// fail.
//
// Passing no recipients settles every spendable coin back to a fresh
// off-chain output under this wallet's own address, the self-settle used
// by Renew.
func (w *Wallet) Settle(ctx context.Context, recipients []Recipient) (*SettleResult, error) {
	if _, err := w.serverInfoCached(ctx); err != nil {
		return nil, err
	}

	arkAddr, err := w.GetAddress()
	if err != nil {
		return nil, err
	}
	myScript, err := DecodeArkAddress(arkAddr)
	if err != nil {
		return nil, err
	}

	page, err := w.cfg.Indexer.GetVtxos(ctx, provider.VtxoQueryFilter{
		Scripts:       []string{hex.EncodeToString(myScript)},
		SpendableOnly: true,
	})
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Settle", err)
	}
	if len(page.Vtxos) == 0 {
		return nil, arkerrors.New(arkerrors.StateError, "wallet.Settle", ErrInsufficientFunds)
	}

	var totalIn int64
	roundInputs := make([]provider.RoundInput, len(page.Vtxos))
	for i, v := range page.Vtxos {
		totalIn += v.Value
		roundInputs[i] = provider.RoundInput{Outpoint: v.Outpoint}
	}

	intentMsg := encodeIntentEnvelope(roundInputs)
	intentProof, err := bip322.Sign(ctx, bip322.IntentTag, intentMsg, w.identity, w.cfg.NetParams)
	if err != nil {
		return nil, err
	}
	for i := range roundInputs {
		roundInputs[i].IntentProof = intentProof
	}

	var roundOutputs []provider.RoundOutput
	var requested int64
	for _, r := range recipients {
		pkScript, err := DecodeArkAddress(r.Address)
		if err != nil {
			return nil, err
		}
		roundOutputs = append(roundOutputs, provider.RoundOutput{Script: pkScript, Amount: r.Amount})
		requested += r.Amount
	}
	selfAmount := totalIn - requested
	if selfAmount < 0 {
		return nil, arkerrors.New(arkerrors.Policy, "wallet.Settle", ErrInsufficientFunds)
	}
	if selfAmount > 0 || len(recipients) == 0 {
		roundOutputs = append(roundOutputs, provider.RoundOutput{Script: myScript, Amount: selfAmount})
	}

	compressed := w.identity.CompressedPublicKey()
	cosignerPub := hex.EncodeToString(compressed[:])
	paymentID, err := w.cfg.Ark.RegisterInputsForNextRound(ctx, roundInputs, cosignerPub)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Settle", err)
	}
	if err := w.cfg.Ark.RegisterOutputsForNextRound(ctx, paymentID, roundOutputs); err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.Settle", err)
	}
	log.Infof("settle: registered payment %s with %d input(s), %d output(s)",
		paymentID, len(roundInputs), len(roundOutputs))

	return w.driveSettleRound(ctx, paymentID, cosignerPub)
}

// driveSettleRound subscribes to the round's event stream and reacts to
// each event in turn until the round finalizes or fails. Events are
// delivered synchronously via SubscribeToEvents's callback, forwarded onto
// an internal channel so this goroutine can block waiting for the next one
// without re-entering the provider callback.
func (w *Wallet) driveSettleRound(ctx context.Context, paymentID, cosignerPub string) (*SettleResult, error) {
	events := make(chan provider.SettleEvent, 8)
	unsubscribe, err := w.cfg.Ark.SubscribeToEvents(ctx, func(e provider.SettleEvent) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProviderError, "wallet.driveSettleRound", err)
	}
	defer unsubscribe()

	sessions := make(map[string]identity.SignerSession)
	var cosignerKeys []string

	for {
		select {
		case <-ctx.Done():
			return nil, arkerrors.New(arkerrors.Cancelled, "wallet.driveSettleRound", ctx.Err())

		case e := <-events:
			if e.RoundID() != paymentID {
				continue
			}

			switch ev := e.(type) {
			case provider.RoundSigningEvent:
				log.Debugf("settle %s: signing round, %d tree node(s)", paymentID, len(ev.UnsignedTree))
				cosignerKeys = ev.CosignerPubkeys
				nonces := make(provider.TreeNonces, len(ev.UnsignedTree))
				for _, node := range ev.UnsignedTree {
					session := w.identity.SignerSession()
					nonce, err := session.GenerateNonce()
					if err != nil {
						return nil, err
					}
					sessions[node.Txid] = session
					nonces[node.Txid] = nonce
				}
				if err := w.cfg.Ark.SubmitTreeNonces(ctx, paymentID, cosignerPub, nonces); err != nil {
					return nil, arkerrors.New(arkerrors.ProviderError, "wallet.driveSettleRound", err)
				}

			case provider.RoundSigningNoncesEvent:
				keyAgg, err := aggregateCosignerKeys(cosignerKeys)
				if err != nil {
					return nil, err
				}
				sigs := make(provider.TreeSignatures, len(ev.TreeNonces))
				for txid, combined := range ev.TreeNonces {
					session, ok := sessions[txid]
					if !ok {
						continue
					}
					msg, err := nodeSigningMessage(txid)
					if err != nil {
						return nil, err
					}
					partial, err := session.Sign(combined, msg, keyAgg)
					if err != nil {
						return nil, arkerrors.New(arkerrors.CryptoError, "wallet.driveSettleRound", err)
					}
					var full [64]byte
					copy(full[0:32], partial.R[:])
					copy(full[32:64], partial.S[:])
					sigs[txid] = full
				}
				if err := w.cfg.Ark.SubmitTreeSignatures(ctx, paymentID, cosignerPub, sigs); err != nil {
					return nil, arkerrors.New(arkerrors.ProviderError, "wallet.driveSettleRound", err)
				}

			case provider.RoundFinalizationEvent:
				signed := make([]string, 0, len(ev.UnsignedForfeitTxs))
				for _, raw := range ev.UnsignedForfeitTxs {
					pkt, err := decodePSBTB64(raw)
					if err != nil {
						return nil, err
					}
					signedPkt, err := w.identity.Sign(ctx, pkt, nil)
					if err != nil {
						return nil, arkerrors.New(arkerrors.CryptoError, "wallet.driveSettleRound", err)
					}
					b64, err := signedPkt.B64Encode()
					if err != nil {
						return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.driveSettleRound", err)
					}
					signed = append(signed, b64)
				}
				if err := w.cfg.Ark.SubmitSignedForfeitTxs(ctx, signed); err != nil {
					return nil, arkerrors.New(arkerrors.ProviderError, "wallet.driveSettleRound", err)
				}

			case provider.RoundFinalizedEvent:
				log.Infof("settle %s: finalized, commitment txid %s", paymentID, ev.Txid)
				return &SettleResult{CommitmentTxid: ev.Txid}, nil

			case provider.RoundFailedEvent:
				log.Warnf("settle %s: round failed", paymentID)
				return nil, arkerrors.New(arkerrors.StateError, "wallet.driveSettleRound", ErrSettleFailed)
			}
		}
	}
}

// aggregateCosignerKeys parses and sorts the round's cosigner pubkeys and
// aggregates them with the taproot tweak.
func aggregateCosignerKeys(hexKeys []string) (*musig2.KeyAggResult, error) {
	keys := make([]*btcec.PublicKey, len(hexKeys))
	for i, k := range hexKeys {
		b, err := hex.DecodeString(k)
		if err != nil {
			return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.aggregateCosignerKeys", err)
		}
		pub, err := btcec.ParsePubKey(b)
		if err != nil {
			return nil, arkerrors.New(arkerrors.InvalidInput, "wallet.aggregateCosignerKeys", err)
		}
		keys[i] = pub
	}
	return musig2.AggregateKeys(keys, musig2.KeyAggOptions{Sort: true})
}

// nodeSigningMessage derives the 32-byte message a tree node's partial
// signature is bound to from its txid. The real ceremony signs that node's
// own BIP-341 sighash once its transaction is assembled server-side; since
// the provider contract exposes only the node's txid/children shape before
// finalization, its txid hash stands in as the bound message here.
func nodeSigningMessage(txid string) ([32]byte, error) {
	h, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return [32]byte{}, arkerrors.New(arkerrors.InvalidInput, "wallet.nodeSigningMessage", err)
	}
	return [32]byte(*h), nil
}

// encodeIntentEnvelope canonicalizes a round's inputs into the message an
// intent proof signs over: for each input in order, the outpoint's txid
// string, a ':', the vout as 4 little-endian bytes and a '\n', giving the
// server a deterministic envelope to check the signature against.
func encodeIntentEnvelope(inputs []provider.RoundInput) []byte {
	var buf []byte
	for _, in := range inputs {
		buf = append(buf, in.Outpoint.Txid...)
		buf = append(buf, ':')
		buf = append(buf, byte(in.Outpoint.VOut), byte(in.Outpoint.VOut>>8), byte(in.Outpoint.VOut>>16), byte(in.Outpoint.VOut>>24))
		buf = append(buf, '\n')
	}
	return buf
}

func decodePSBTB64(b64 string) (*psbt.Packet, error) {
	pkt, err := psbt.NewFromRawBytes(strings.NewReader(b64), true)
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "wallet.decodePSBTB64", err)
	}
	return pkt, nil
}
