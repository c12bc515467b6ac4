// Package arkcontract models Ark "contracts": named, parameterized
// closures layered on top of a raw VTXO script, such as the arknote
// hashlock or future custom closures, plus the process-wide registry of
// handlers that validate params and derive pkScripts for each registered
// type, and the arkcontract=<type>&k=v URI codec used to share them
// out-of-band.
package arkcontract

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/vtxo"
)

// State is whether a contract is actively tracked by the wallet.
type State int

const (
	StateActive State = iota
	StateInactive
)

// Contract is a registered, parameterized closure: its pkScript is a
// unique index, validated against its type's handler at construction time.
type Contract struct {
	ID        string
	Type      string
	Params    map[string]string
	Script    []byte
	Address   string
	State     State
	CreatedAt time.Time
	Data      []byte
}

// ContractVtxo is an ExtendedVirtualCoin tagged with the id of the contract
// that owns its script.
type ContractVtxo struct {
	vtxo.ExtendedVirtualCoin
	ContractID string
}

// Handler validates params for one contract type and derives the pkScript
// and bech32 address those params commit to.
type Handler interface {
	Type() string
	Validate(params map[string]string) error
	DeriveScript(params map[string]string) ([]byte, error)
	DeriveAddress(params map[string]string, script []byte) (string, error)
}

// Registry is a process-wide, append-only set of handlers: registered at
// init, looked up by type, never mutated after the wallet starts.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds handler under its own Type(). Calling Register twice for
// the same type is a caller bug.
func (r *Registry) Register(handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[handler.Type()]; exists {
		return arkerrors.New(arkerrors.InvalidInput, "arkcontract.Registry.Register", ErrAlreadyRegistered)
	}
	r.handlers[handler.Type()] = handler
	return nil
}

func (r *Registry) lookup(contractType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[contractType]
	return h, ok
}

// Build validates params against contractType's handler and constructs a
// Contract whose Script/Address are derived, never caller-supplied.
func (r *Registry) Build(id, contractType string, params map[string]string, data []byte, now time.Time) (Contract, error) {
	handler, ok := r.lookup(contractType)
	if !ok {
		return Contract{}, arkerrors.New(arkerrors.InvalidInput, "arkcontract.Registry.Build", ErrUnregisteredType)
	}
	if err := handler.Validate(params); err != nil {
		return Contract{}, arkerrors.New(arkerrors.InvalidInput, "arkcontract.Registry.Build", err)
	}
	script, err := handler.DeriveScript(params)
	if err != nil {
		return Contract{}, arkerrors.New(arkerrors.ProtocolError, "arkcontract.Registry.Build", err)
	}
	address, err := handler.DeriveAddress(params, script)
	if err != nil {
		return Contract{}, arkerrors.New(arkerrors.ProtocolError, "arkcontract.Registry.Build", err)
	}

	return Contract{
		ID:        id,
		Type:      contractType,
		Params:    params,
		Script:    script,
		Address:   address,
		State:     StateActive,
		CreatedAt: now,
		Data:      data,
	}, nil
}

// VerifyScript re-derives c's pkScript from its params via the registered
// handler and confirms it matches c.Script, the invariant the data model
// requires of every stored contract.
func (r *Registry) VerifyScript(c Contract) error {
	handler, ok := r.lookup(c.Type)
	if !ok {
		return arkerrors.New(arkerrors.InvalidInput, "arkcontract.Registry.VerifyScript", ErrUnregisteredType)
	}
	derived, err := handler.DeriveScript(c.Params)
	if err != nil {
		return arkerrors.New(arkerrors.ProtocolError, "arkcontract.Registry.VerifyScript", err)
	}
	if string(derived) != string(c.Script) {
		return arkerrors.New(arkerrors.ProtocolError, "arkcontract.Registry.VerifyScript", ErrScriptMismatch)
	}
	return nil
}

// EncodeURI renders (type, params) as arkcontract=<type>&k1=v1&k2=v2…
func EncodeURI(contractType string, params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	encoded := v.Encode()
	if encoded == "" {
		return "arkcontract=" + contractType
	}
	return "arkcontract=" + contractType + "&" + encoded
}

// ParseURI parses a string produced by EncodeURI. Parsing is strict: the
// first token must be "arkcontract=<type>".
func ParseURI(uri string) (contractType string, params map[string]string, err error) {
	parts := strings.SplitN(uri, "&", 2)
	first := parts[0]

	if !strings.HasPrefix(first, "arkcontract=") {
		return "", nil, arkerrors.New(arkerrors.InvalidInput, "arkcontract.ParseURI", ErrMalformedURI)
	}
	contractType = strings.TrimPrefix(first, "arkcontract=")
	if contractType == "" {
		return "", nil, arkerrors.New(arkerrors.InvalidInput, "arkcontract.ParseURI", ErrMalformedURI)
	}

	params = make(map[string]string)
	if len(parts) == 2 {
		values, err := url.ParseQuery(parts[1])
		if err != nil {
			return "", nil, arkerrors.New(arkerrors.InvalidInput, "arkcontract.ParseURI", err)
		}
		for k := range values {
			params[k] = values.Get(k)
		}
	}

	return contractType, params, nil
}

// ParseRegisteredURI parses uri like ParseURI, additionally rejecting any
// type not registered with r, the full strictness the URI format
// requires for out-of-band contract sharing.
func (r *Registry) ParseRegisteredURI(uri string) (contractType string, params map[string]string, err error) {
	contractType, params, err = ParseURI(uri)
	if err != nil {
		return "", nil, err
	}
	if _, ok := r.lookup(contractType); !ok {
		return "", nil, arkerrors.New(arkerrors.InvalidInput, "arkcontract.ParseRegisteredURI", ErrUnregisteredType)
	}
	return contractType, params, nil
}
