package arkcontract

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/internal/curve"
	"github.com/ark-network/ark-sdk-go/script"
)

// ConditionMultisigType is the registered type name of the built-in
// condition-multisig contract handler.
const ConditionMultisigType = "condition-multisig"

// Condition-multisig contract params, all hex/decimal strings since params
// arrive from the arkcontract= URI codec:
//
//	condition  raw condition script, hex
//	threshold  n in "n-of-k", decimal
//	pubkeys    comma-separated 32-byte x-only pubkeys, hex
const (
	ParamCondition = "condition"
	ParamThreshold = "threshold"
	ParamPubkeys   = "pubkeys"
)

// ConditionMultisigHandler derives single-leaf VTXO scripts whose closure
// is a condition-gated multisig: <condition> OP_VERIFY <multisig>.
type ConditionMultisigHandler struct {
	// InternalKey roots the single-leaf taproot tree; typically the
	// wallet's NUMS point so the output is script-path-only.
	InternalKey *btcec.PublicKey
	NetParams   *chaincfg.Params
}

var _ Handler = (*ConditionMultisigHandler)(nil)

func (h *ConditionMultisigHandler) Type() string { return ConditionMultisigType }

// Validate checks that params parse into a well-formed condition and key
// set without deriving anything.
func (h *ConditionMultisigHandler) Validate(params map[string]string) error {
	_, _, _, err := h.parseParams(params)
	return err
}

// DeriveScript builds the single-leaf VtxoScript for params and returns its
// P2TR pkScript, the unique index a stored Contract is keyed under.
func (h *ConditionMultisigHandler) DeriveScript(params map[string]string) ([]byte, error) {
	vs, err := h.vtxoScript(params)
	if err != nil {
		return nil, err
	}
	pkScript, err := vs.PkScript()
	if err != nil {
		return nil, arkerrors.New(arkerrors.ProtocolError, "arkcontract.ConditionMultisigHandler.DeriveScript", err)
	}
	return pkScript, nil
}

// DeriveAddress renders params' tweaked output key as a P2TR address.
func (h *ConditionMultisigHandler) DeriveAddress(params map[string]string, _ []byte) (string, error) {
	vs, err := h.vtxoScript(params)
	if err != nil {
		return "", err
	}
	addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(vs.TweakedKey), h.NetParams)
	if err != nil {
		return "", arkerrors.New(arkerrors.ProtocolError, "arkcontract.ConditionMultisigHandler.DeriveAddress", err)
	}
	return addr.EncodeAddress(), nil
}

func (h *ConditionMultisigHandler) vtxoScript(params map[string]string) (*script.VtxoScript, error) {
	condition, threshold, pubkeys, err := h.parseParams(params)
	if err != nil {
		return nil, err
	}
	leaf, err := script.ConditionMultisigScript(condition, threshold, pubkeys...)
	if err != nil {
		return nil, err
	}
	return script.NewVtxoScript(h.InternalKey, [][]byte{leaf})
}

func (h *ConditionMultisigHandler) parseParams(params map[string]string) ([]byte, int, []*btcec.PublicKey, error) {
	fail := func(err error) ([]byte, int, []*btcec.PublicKey, error) {
		return nil, 0, nil, arkerrors.New(arkerrors.InvalidInput, "arkcontract.ConditionMultisigHandler", err)
	}

	condition, err := hex.DecodeString(params[ParamCondition])
	if err != nil {
		return fail(fmt.Errorf("condition: %w", err))
	}
	if len(condition) == 0 {
		return fail(fmt.Errorf("condition is required"))
	}

	threshold, err := strconv.Atoi(params[ParamThreshold])
	if err != nil {
		return fail(fmt.Errorf("threshold: %w", err))
	}

	var pubkeys []*btcec.PublicKey
	for _, part := range strings.Split(params[ParamPubkeys], ",") {
		raw, err := hex.DecodeString(part)
		if err != nil {
			return fail(fmt.Errorf("pubkey %q: %w", part, err))
		}
		pub, err := curve.ParseXOnly(raw)
		if err != nil {
			return fail(fmt.Errorf("pubkey %q: %w", part, err))
		}
		pubkeys = append(pubkeys, pub)
	}
	if threshold < 1 || threshold > len(pubkeys) {
		return fail(fmt.Errorf("threshold %d out of range for %d keys", threshold, len(pubkeys)))
	}

	return condition, threshold, pubkeys, nil
}
