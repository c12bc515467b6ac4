// Package vtxo models the lifecycle of a virtual UTXO: its on-chain/Ark
// coordinates, its classification into the lifecycle state machine, and the
// spendability/recoverability/expiry predicates the wallet core uses to
// build balances and select coins.
package vtxo

// Outpoint identifies a transaction output, matching wire.OutPoint's
// (txid, index) shape without importing wire directly, since provider
// responses decode outpoints from JSON before any wire.MsgTx exists.
type Outpoint struct {
	Txid string
	VOut uint32
}

// Coin is a plain on-chain UTXO as reported by an OnchainProvider.
type Coin struct {
	Outpoint    Outpoint
	Value       int64
	Status      CoinStatus
	BlockHeight uint32
	BlockTime   int64 // unix seconds; 0 if unconfirmed
}

// CoinStatus is the confirmation state of a plain on-chain coin.
type CoinStatus int

const (
	CoinUnconfirmed CoinStatus = iota
	CoinConfirmed
)

// State is a VTXO's lifecycle stage.
type State int

const (
	StatePreconfirmed State = iota
	StateSettled
	StateSwept
	StateSpent
	StateUnrolled
)

func (s State) String() string {
	switch s {
	case StatePreconfirmed:
		return "preconfirmed"
	case StateSettled:
		return "settled"
	case StateSwept:
		return "swept"
	case StateSpent:
		return "spent"
	case StateUnrolled:
		return "unrolled"
	default:
		return "unknown"
	}
}

// ExpiryUnit resolves the ambiguity the heuristic isExpired check otherwise
// has to guess at: whether a VTXO's batchExpiry value is a block height or
// a UNIX timestamp.
type ExpiryUnit int

const (
	ExpiryUnitUnset ExpiryUnit = iota
	ExpiryUnitBlock
	ExpiryUnitTimestamp
)

// VirtualCoin is a VTXO as reported by an IndexerProvider: a Coin plus Ark
// round state flags, its batch expiry and that expiry's unit, its
// commitment txid, and the spentBy txid once consumed.
type VirtualCoin struct {
	Coin

	IsPreconfirmed bool
	IsSwept        bool
	IsUnrolled     bool
	SpentBy        string // txid, empty if unspent

	BatchExpiry     int64
	BatchExpiryUnit ExpiryUnit

	CommitmentTxid string
}

// ExtendedVirtualCoin adds the tapscript tree metadata a wallet needs to
// build a spend: the VTXO's own taproot tree and the collaborative-closure
// leaf it will sign under.
type ExtendedVirtualCoin struct {
	VirtualCoin

	Tapscripts        [][]byte // encoded leaf scripts of this VTXO's own tree
	CheckpointTapLeaf []byte   // the collaborative-closure leaf to re-wrap in a checkpoint
}

// Classify derives a VTXO's lifecycle State from provider-reported flags,
// per the transition rules: preconfirmed/swept/settled from provider
// signals, spent overriding all of them once observed.
func Classify(v VirtualCoin) State {
	if v.SpentBy != "" {
		return StateSpent
	}
	if v.IsUnrolled {
		return StateUnrolled
	}
	if v.IsPreconfirmed {
		return StatePreconfirmed
	}
	if v.IsSwept {
		return StateSwept
	}
	return StateSettled
}

// IsSpendable reports whether v has not yet been spent.
func IsSpendable(v VirtualCoin) bool {
	return Classify(v) != StateSpent
}

// IsRecoverable reports whether v is a swept-but-unspent output eligible
// for unilateral recovery.
func IsRecoverable(v VirtualCoin) bool {
	return Classify(v) == StateSwept && IsSpendable(v)
}

// IsSubdust reports whether v's value is below the dust threshold.
func IsSubdust(v VirtualCoin, dust int64) bool {
	return v.Value < dust
}
