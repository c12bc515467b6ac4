package assetpacket

import "errors"

var (
	ErrEmptyPacket   = errors.New("assetpacket: packet has no groups")
	ErrTruncated     = errors.New("assetpacket: encoded payload is truncated")
	ErrTrailingBytes = errors.New("assetpacket: encoded payload has trailing bytes")
	ErrNotOpReturn   = errors.New("assetpacket: output is not an OP_RETURN packet output")
	ErrNonZeroValue  = errors.New("assetpacket: packet output must carry zero value")
	ErrUnbalanced    = errors.New("assetpacket: changed groups do not conserve per asset id")
	ErrZeroAmount    = errors.New("assetpacket: group amount must be nonzero")
)
