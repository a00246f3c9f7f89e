package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrItemNotFound)
var (
	ErrStepOutOfRange = errors.New("srs: step out of range")
	ErrItemNotFound   = errors.New("srs: item not in collection")
	ErrInvalidOutcome = errors.New("srs: invalid outcome")
	ErrInvalidTable   = errors.New("srs: table parameters out of bounds")
)
