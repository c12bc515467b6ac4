package provider

// SettleEvent is the sum type pushed by ArkProvider.SubscribeToEvents
// during a settlement round. Concrete variants are RoundSigningEvent,
// RoundSigningNoncesEvent, RoundFinalizationEvent, RoundFinalizedEvent and
// RoundFailedEvent; callers type-switch on the concrete type.
type SettleEvent interface {
	RoundID() string
	isSettleEvent()
}

// TreeNode describes one unsigned node of the vtxo batch tree presented
// during RoundSigningEvent, in the order signers must generate nonces for.
type TreeNode struct {
	Txid     string
	Children map[uint32]string
}

// RoundSigningEvent opens the tree-signing ceremony: cosigners and the
// unsigned tree this signer must generate per-node nonces for.
type RoundSigningEvent struct {
	ID              string
	CosignerPubkeys []string
	UnsignedTree    []TreeNode
}

func (e RoundSigningEvent) RoundID() string { return e.ID }
func (RoundSigningEvent) isSettleEvent()    {}

// RoundSigningNoncesEvent carries the server's aggregated nonce for each
// tree node, once every cosigner has submitted its own.
type RoundSigningNoncesEvent struct {
	ID         string
	TreeNonces TreeNonces
}

func (e RoundSigningNoncesEvent) RoundID() string { return e.ID }
func (RoundSigningNoncesEvent) isSettleEvent()    {}

// RoundFinalizationEvent carries the fully tree-signed round's commitment
// tx, connectors, and the forfeit transactions this signer must sign.
type RoundFinalizationEvent struct {
	ID                 string
	CommitmentTx       string
	Connectors         []string
	UnsignedForfeitTxs []string
}

func (e RoundFinalizationEvent) RoundID() string { return e.ID }
func (RoundFinalizationEvent) isSettleEvent()    {}

// RoundFinalizedEvent reports a round's commitment tx has confirmed.
type RoundFinalizedEvent struct {
	ID   string
	Txid string
}

func (e RoundFinalizedEvent) RoundID() string { return e.ID }
func (RoundFinalizedEvent) isSettleEvent()    {}

// RoundFailedEvent reports a round aborted; participants' inputs revert to
// their pre-round state.
type RoundFailedEvent struct {
	ID     string
	Reason string
}

func (e RoundFailedEvent) RoundID() string { return e.ID }
func (RoundFailedEvent) isSettleEvent()    {}
