package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrMalformedYear = errors.New("malformed prize year")
	ErrUnknownMode   = errors.New("unknown pairing mode")
)
