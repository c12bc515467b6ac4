package txbuilder

import "errors"

var (
	ErrNoInputs           = errors.New("txbuilder: at least one input is required")
	ErrMixedLocktimeUnits = errors.New("txbuilder: cannot mix seconds and blocks locktime")
	ErrMissingLeafScript  = errors.New("txbuilder: input carries no collaborative tapscript leaf")
	ErrDecodeLeaf         = errors.New("txbuilder: failed to decode collaborative closure tapscript")
)
