package arkcontract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedHandler struct {
	typ     string
	script  []byte
	address string
	wantKey string
}

func (h fixedHandler) Type() string { return h.typ }

func (h fixedHandler) Validate(params map[string]string) error {
	if _, ok := params[h.wantKey]; !ok {
		return ErrUnregisteredType
	}
	return nil
}

func (h fixedHandler) DeriveScript(params map[string]string) ([]byte, error) {
	return append([]byte(nil), h.script...), nil
}

func (h fixedHandler) DeriveAddress(params map[string]string, script []byte) (string, error) {
	return h.address, nil
}

func testRegistry() (*Registry, fixedHandler) {
	r := NewRegistry()
	h := fixedHandler{
		typ:     "hashlock",
		script:  []byte{0xa8, 0x20},
		address: "ark1qtest",
		wantKey: "hash",
	}
	_ = r.Register(h)
	return r, h
}

func TestRegistryBuildDerivesScriptAndAddress(t *testing.T) {
	r, h := testRegistry()

	c, err := r.Build("c1", h.typ, map[string]string{"hash": "deadbeef"}, nil, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Equal(t, h.script, c.Script)
	require.Equal(t, h.address, c.Address)
	require.Equal(t, StateActive, c.State)
}

func TestRegistryBuildRejectsUnregisteredType(t *testing.T) {
	r, _ := testRegistry()
	_, err := r.Build("c1", "unknown-type", nil, nil, time.Now())
	require.Error(t, err)
}

func TestRegistryBuildRejectsInvalidParams(t *testing.T) {
	r, h := testRegistry()
	_, err := r.Build("c1", h.typ, map[string]string{}, nil, time.Now())
	require.Error(t, err)
}

func TestRegisterTwiceFails(t *testing.T) {
	r, h := testRegistry()
	err := r.Register(h)
	require.Error(t, err)
}

func TestVerifyScriptAcceptsMatchingScript(t *testing.T) {
	r, h := testRegistry()
	c, err := r.Build("c1", h.typ, map[string]string{"hash": "deadbeef"}, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, r.VerifyScript(c))
}

func TestVerifyScriptRejectsTamperedScript(t *testing.T) {
	r, h := testRegistry()
	c, err := r.Build("c1", h.typ, map[string]string{"hash": "deadbeef"}, nil, time.Now())
	require.NoError(t, err)

	c.Script = []byte{0xff, 0xff}
	require.Error(t, r.VerifyScript(c))
}

func TestEncodeParseURIRoundTrip(t *testing.T) {
	params := map[string]string{"hash": "deadbeef", "amount": "1000"}
	uri := EncodeURI("hashlock", params)

	contractType, got, err := ParseURI(uri)
	require.NoError(t, err)
	require.Equal(t, "hashlock", contractType)
	require.Equal(t, params, got)
}

func TestParseURIRejectsMalformed(t *testing.T) {
	_, _, err := ParseURI("not-a-contract-uri")
	require.Error(t, err)
}

func TestParseURIRejectsEmptyType(t *testing.T) {
	_, _, err := ParseURI("arkcontract=")
	require.Error(t, err)
}

func TestParseRegisteredURIRejectsUnknownType(t *testing.T) {
	r, _ := testRegistry()
	uri := EncodeURI("not-registered", map[string]string{"k": "v"})
	_, _, err := r.ParseRegisteredURI(uri)
	require.Error(t, err)
}

func TestParseRegisteredURIAcceptsKnownType(t *testing.T) {
	r, h := testRegistry()
	uri := EncodeURI(h.typ, map[string]string{"hash": "deadbeef"})
	contractType, params, err := r.ParseRegisteredURI(uri)
	require.NoError(t, err)
	require.Equal(t, h.typ, contractType)
	require.Equal(t, "deadbeef", params["hash"])
}
