package txvalidate

import "errors"

var (
	ErrMissingWitnessUtxo  = errors.New("txvalidate: missing witness utxo on an input")
	ErrMissingTapScriptSig = errors.New("txvalidate: input carries no tapscript signatures")
	ErrUnallowedSighash    = errors.New("txvalidate: signature uses a sighash type outside the allowlist")
	ErrLeafHashMismatch    = errors.New("txvalidate: signature's leaf hash matches no known tapLeafScript")
	ErrInvalidSignature    = errors.New("txvalidate: schnorr signature failed verification")
	ErrMissingSigners      = errors.New("txvalidate: required signer did not produce a valid signature")
)
