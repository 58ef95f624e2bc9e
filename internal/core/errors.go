package core

import "errors"

// Report and ledger failures surfaced to callers. Handlers map these to
// response codes with errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidRange     = errors.New("start date is after end date")
	ErrCategoryNotFound = errors.New("category not found")
	ErrStoreUnavailable = errors.New("ledger store unavailable")
	ErrNotFound         = errors.New("not found")
)
