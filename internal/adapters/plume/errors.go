package plume

import "errors"

// Sentinel kinds for upstream errors.
var (
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrMalformedBody  = errors.New("malformed upstream body")
	ErrPriceDisabled  = errors.New("price lookup disabled")
	ErrProbeFailed    = errors.New("tail probe failed")
)
