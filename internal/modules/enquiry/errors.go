package enquiry

import "errors"

var (
	ErrEnquiryNotFound = errors.New("enquiry not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidStatus   = errors.New("status must be one of: pending, contacted, resolved, closed")
	ErrInvalidSource   = errors.New("source must be one of: home, property_detail, other")
	ErrNothingToUpdate = errors.New("status or adminNotes is required")
)
