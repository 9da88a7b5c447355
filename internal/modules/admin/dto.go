package admin

import (
	"propzy/internal/domain"
	"propzy/internal/pkg/response"
)

// BulkCategorizeRequest carries the target ids next to the categorization fields:
// {"listingIds":[1,2],"isFeatured":true,"priority":3}
type BulkCategorizeRequest struct {
	ListingIDs []int64 `json:"listingIds"`
	domain.Categorization
}

type BulkCategorizeResponse struct {
	Matched int64  `json:"matched"`
	Message string `json:"message"`
}

// ListFilter is the admin listing query. All fields are optional.
type ListFilter struct {
	Status       string
	PropertyType string
	Purpose      string
	City         string
	Search       string
	Category     string
}

type ListingPage struct {
	Listings []domain.Listing `json:"listings"`
	response.Page
}
