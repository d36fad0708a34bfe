package listing

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrNotOwner            = errors.New("listing does not belong to this user")
	ErrInvalidListingState = errors.New("operation not valid in the listing's current state")
	ErrListingNotPublic    = errors.New("only public listings can be published")
	ErrInvalidAmount       = errors.New("requested amount must be positive")
	ErrInvalidInstrument   = errors.New("accepted instruments contain an unknown instrument")
	ErrMissingField        = errors.New("required listing field is missing")
)
