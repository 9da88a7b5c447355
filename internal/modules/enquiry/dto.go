package enquiry

import (
	"strings"

	"propzy/internal/domain"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/validator"
)

type SubmitRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"required,max=30"`
	Message string `json:"message"`

	// home form
	EnquiryType string `json:"enquiryType"`
	Location    string `json:"location" validate:"max=200"`

	// listing detail form
	UserType  string `json:"userType"`
	Reason    string `json:"reason"`
	ListingID *int64 `json:"listingId"`
}

func (r *SubmitRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	r.EnquiryType = strings.ToLower(strings.TrimSpace(r.EnquiryType))
	r.Location = strings.TrimSpace(r.Location)
	r.UserType = strings.TrimSpace(r.UserType)
	r.Reason = strings.TrimSpace(r.Reason)
}

// Validate normalizes the request and returns per-field problems.
func (r *SubmitRequest) Validate() validator.FieldErrors {
	r.normalize()

	errs := validator.Validate(r)
	if errs == nil {
		errs = validator.FieldErrors{}
	}
	if !domain.ValidEnquiryType(r.EnquiryType) {
		errs["enquiryType"] = "must be one of: buy, sell, rent"
	}
	if !domain.ValidUserType(r.UserType) {
		errs["userType"] = "must be one of: Individual, Dealer"
	}
	if !domain.ValidReason(r.Reason) {
		errs["reason"] = "must be one of: Investment, Self Use"
	}
	if r.ListingID != nil && *r.ListingID <= 0 {
		errs["listingId"] = "must be a positive id"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type UpdateStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

type ListFilter struct {
	Status string
	Source string
	Search string
}

type EnquiryPage struct {
	Enquiries []domain.Enquiry `json:"enquiries"`
	response.Page
}

type Stats struct {
	Total           int64            `json:"total"`
	ByStatus        map[string]int64 `json:"byStatus"`
	BySource        map[string]int64 `json:"bySource"`
	RecentEnquiries int64            `json:"recentEnquiries"`
}
