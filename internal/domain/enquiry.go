package domain

import "time"

type EnquiryStatus string

const (
	EnquiryPending   EnquiryStatus = "pending"
	EnquiryContacted EnquiryStatus = "contacted"
	EnquiryResolved  EnquiryStatus = "resolved"
	EnquiryClosed    EnquiryStatus = "closed"
)

var EnquiryStatuses = []EnquiryStatus{EnquiryPending, EnquiryContacted, EnquiryResolved, EnquiryClosed}

func (s EnquiryStatus) Valid() bool {
	for _, v := range EnquiryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type EnquirySource string

const (
	SourceHome           EnquirySource = "home"
	SourcePropertyDetail EnquirySource = "property_detail"
	SourceOther          EnquirySource = "other"
)

var EnquirySources = []EnquirySource{SourceHome, SourcePropertyDetail, SourceOther}

func (s EnquirySource) Valid() bool {
	return s == SourceHome || s == SourcePropertyDetail || s == SourceOther
}

// Home-form and listing-form context values.
const (
	EnquiryBuy  = "buy"
	EnquirySell = "sell"
	EnquiryRent = "rent"

	UserTypeIndividual = "Individual"
	UserTypeDealer     = "Dealer"

	ReasonInvestment = "Investment"
	ReasonSelfUse    = "Self Use"
)

func ValidEnquiryType(s string) bool {
	return s == "" || s == EnquiryBuy || s == EnquirySell || s == EnquiryRent
}

func ValidUserType(s string) bool {
	return s == "" || s == UserTypeIndividual || s == UserTypeDealer
}

func ValidReason(s string) bool {
	return s == "" || s == ReasonInvestment || s == ReasonSelfUse
}

// EnquiryListing is the listing summary joined onto enquiry reads.
type EnquiryListing struct {
	ID              int64        `json:"id"`
	City            string       `json:"city"`
	Locality        string       `json:"locality"`
	Purpose         Purpose      `json:"purpose"`
	PropertyType    PropertyType `json:"propertyType"`
	PropertySubType string       `json:"propertySubType"`
	ExpectedPrice   string       `json:"expectedPrice"`
}

func (EnquiryListing) TableName() string { return "listings" }

type Enquiry struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:150;not null"`
	Email   string `json:"email" gorm:"size:255;not null;index"`
	Phone   string `json:"phone" gorm:"size:30;not null"`
	Message string `json:"message,omitempty" gorm:"type:text"`

	EnquiryType string `json:"enquiryType,omitempty" gorm:"size:10"`
	Location    string `json:"location,omitempty" gorm:"size:200"`

	UserType  string          `json:"userType,omitempty" gorm:"size:20"`
	Reason    string          `json:"reason,omitempty" gorm:"size:20"`
	ListingID *int64          `json:"listingId" gorm:"index"`
	Listing   *EnquiryListing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`

	Source      EnquirySource `json:"source" gorm:"size:20;not null;index"`
	Status      EnquiryStatus `json:"status" gorm:"size:20;not null;index"`
	AdminNotes  string        `json:"adminNotes,omitempty" gorm:"type:text"`
	ContactedAt *time.Time    `json:"contactedAt"`
	ResolvedAt  *time.Time    `json:"resolvedAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InferSource derives the submission origin from the contextual fields.
func InferSource(listingID *int64, enquiryType string) EnquirySource {
	switch {
	case listingID != nil:
		return SourcePropertyDetail
	case enquiryType != "":
		return SourceHome
	default:
		return SourceOther
	}
}

// ApplyStatus sets the status and stamps contactedAt / resolvedAt the first
// time the matching status is reached. Stamps are never overwritten.
func (e *Enquiry) ApplyStatus(status EnquiryStatus, now time.Time) {
	e.Status = status
	switch status {
	case EnquiryContacted:
		if e.ContactedAt == nil {
			t := now
			e.ContactedAt = &t
		}
	case EnquiryResolved:
		if e.ResolvedAt == nil {
			t := now
			e.ResolvedAt = &t
		}
	}
}
