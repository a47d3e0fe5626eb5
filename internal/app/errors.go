package service

import "errors"

// Sentinel kinds for tick processing errors.
var (
	// ErrValidation covers requests rejected before touching session
	// state: empty sample lists and out-of-range runner levels.
	ErrValidation = errors.New("invalid tick request")
)
