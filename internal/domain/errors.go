package domain

import "errors"

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNoOp              = errors.New("no_op")
	ErrGuardFailed       = errors.New("guard_failed")
	ErrStoreUnavailable  = errors.New("store_unavailable")
	ErrPartialFailure    = errors.New("partial_failure")
	ErrValidation        = errors.New("validation error")
)
