package script

import "errors"

var (
	// ErrEmptyLeaves is returned when a VtxoScript is built with no
	// tapscript leaves.
	ErrEmptyLeaves = errors.New("vtxo script requires at least one leaf")

	// ErrAmbiguousScript is returned by the leaf encoders when their
	// arguments cannot form a valid Ark leaf. DecodeTapscript reports an
	// unrecognised script with its own wrapped errors instead.
	ErrAmbiguousScript = errors.New("script does not match a known tapscript kind")

	// ErrMixedLocktimeUnits describes CLTV leaves across the inputs of a
	// transaction that disagree on block-vs-second units. No function in
	// this package returns it; txbuilder reports that case with its own
	// txbuilder.ErrMixedLocktimeUnits.
	ErrMixedLocktimeUnits = errors.New("cannot mix seconds and blocks locktime")
)
