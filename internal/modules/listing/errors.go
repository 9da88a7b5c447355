package listing

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotOwner        = errors.New("you do not own this listing")
	ErrNotVisible      = errors.New("listing is not available")
	ErrQueryRequired   = errors.New("search query is required")
	ErrUnknownView     = errors.New("unknown listing view")
	ErrTooManyFiles    = errors.New("too many files")
)
