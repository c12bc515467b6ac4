package identity

// readonly is the concrete ReadonlyIdentity returned by ToReadonly on every
// signing-capable variant, and constructible directly for pubkey-only or
// descriptor-only wallets.
type readonly struct {
	xOnly      [32]byte
	compressed [33]byte
}

// NewReadonly builds a ReadonlyIdentity from a known public key, for
// watch-only wallets that never hold a private key.
func NewReadonly(xOnly [32]byte, compressed [33]byte) ReadonlyIdentity {
	return readonly{xOnly: xOnly, compressed: compressed}
}

func (r readonly) XOnlyPublicKey() [32]byte      { return r.xOnly }
func (r readonly) CompressedPublicKey() [33]byte { return r.compressed }

var _ ReadonlyIdentity = readonly{}
