package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingPending, ListingApproved, ListingRejected:
		return true
	}
	return false
}

type Purpose string

const (
	PurposeSell Purpose = "Sell"
	PurposeRent Purpose = "Rent / Lease"
	PurposePG   Purpose = "PG"
)

func (p Purpose) Valid() bool {
	return p == PurposeSell || p == PurposeRent || p == PurposePG
}

type PropertyType string

const (
	PropertyResidential PropertyType = "Residential"
	PropertyCommercial  PropertyType = "Commercial"
)

func (t PropertyType) Valid() bool {
	return t == PropertyResidential || t == PropertyCommercial
}

const (
	AvailabilityReady             = "Ready to move"
	AvailabilityUnderConstruction = "Under construction"
)

var powerBackupValues = map[string]bool{"None": true, "Partial": true, "Full": true}

func ValidAvailability(s string) bool {
	return s == "" || s == AvailabilityReady || s == AvailabilityUnderConstruction
}

func ValidPowerBackup(s string) bool {
	return s == "" || powerBackupValues[s]
}

const DefaultAreaUnit = "sq.ft."

// OtherFeatures is the boolean feature bundle stored as one JSON column.
type OtherFeatures struct {
	GatedSociety       bool `json:"gatedSociety"`
	CornerProperty     bool `json:"cornerProperty"`
	PetFriendly        bool `json:"petFriendly"`
	WheelchairFriendly bool `json:"wheelchairFriendly"`
}

// ListingOwner is the owner summary joined onto listing reads.
type ListingOwner struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

func (ListingOwner) TableName() string { return "users" }

type Listing struct {
	ID     int64         `json:"id" gorm:"primaryKey"`
	UserID int64         `json:"userId" gorm:"not null;index"`
	Owner  *ListingOwner `json:"owner,omitempty" gorm:"foreignKey:UserID"`

	Purpose         Purpose      `json:"purpose" gorm:"size:20;not null;index"`
	PropertyType    PropertyType `json:"propertyType" gorm:"size:20;not null;index"`
	PropertySubType string       `json:"propertySubType" gorm:"size:100;not null"`

	City        string `json:"city" gorm:"size:100;not null;index"`
	Locality    string `json:"locality" gorm:"size:150;not null"`
	SubLocality string `json:"subLocality" gorm:"size:150"`
	Apartment   string `json:"apartment" gorm:"size:200"`

	Bedrooms           string `json:"bedrooms" gorm:"size:20"`
	Bathrooms          string `json:"bathrooms" gorm:"size:20"`
	Balconies          string `json:"balconies" gorm:"size:20"`
	PlotArea           string `json:"plotArea" gorm:"size:50"`
	AreaUnit           string `json:"areaUnit" gorm:"size:20"`
	CarpetArea         string `json:"carpetArea" gorm:"size:50"`
	BuiltUpArea        string `json:"builtUpArea" gorm:"size:50"`
	TotalFloors        string `json:"totalFloors" gorm:"size:20"`
	AvailabilityStatus string `json:"availabilityStatus" gorm:"size:30"`
	PropertyAge        string `json:"propertyAge" gorm:"size:30"`
	Ownership          string `json:"ownership" gorm:"size:50"`
	ExpectedPrice      string `json:"expectedPrice" gorm:"size:50"`
	PricePerSqFt       string `json:"pricePerSqFt" gorm:"size:50"`
	AllInclusivePrice  bool   `json:"allInclusivePrice"`
	TaxExcluded        bool   `json:"taxExcluded"`
	PriceNegotiable    bool   `json:"priceNegotiable"`

	PropertyDescription string `json:"propertyDescription" gorm:"type:text"`

	Photos datatypes.JSONSlice[string] `json:"photos"`
	Video  string                      `json:"video" gorm:"size:500"`

	OtherRooms         datatypes.JSONSlice[string] `json:"otherRooms"`
	Furnishing         string                      `json:"furnishing" gorm:"size:30"`
	CoveredParking     int                         `json:"coveredParking"`
	OpenParking        int                         `json:"openParking"`
	Amenities          datatypes.JSONSlice[string] `json:"amenities"`
	PropertyFeatures   datatypes.JSONSlice[string] `json:"propertyFeatures"`
	SocietyFeatures    datatypes.JSONSlice[string] `json:"societyFeatures"`
	AdditionalFeatures datatypes.JSONSlice[string] `json:"additionalFeatures"`
	WaterSource        datatypes.JSONSlice[string] `json:"waterSource"`
	Overlooking        datatypes.JSONSlice[string] `json:"overlooking"`
	LocationAdvantages datatypes.JSONSlice[string] `json:"locationAdvantages"`

	OtherFeatures  datatypes.JSONType[OtherFeatures] `json:"otherFeatures"`
	PowerBackup    string                            `json:"powerBackup" gorm:"size:20"`
	PropertyFacing string                            `json:"propertyFacing" gorm:"size:30"`
	FlooringType   string                            `json:"flooringType" gorm:"size:50"`

	Status   ListingStatus `json:"status" gorm:"size:20;not null;index"`
	IsActive bool          `json:"isActive" gorm:"not null;default:true;index"`

	IsFeatured           bool                        `json:"isFeatured" gorm:"not null;default:false;index"`
	IsTopPick            bool                        `json:"isTopPick" gorm:"not null;default:false;index"`
	IsHighlighted        bool                        `json:"isHighlighted" gorm:"not null;default:false;index"`
	IsInvestmentProperty bool                        `json:"isInvestmentProperty" gorm:"not null;default:false;index"`
	IsRecentlyAdded      bool                        `json:"isRecentlyAdded" gorm:"not null;default:false;index"`
	Priority             int                         `json:"priority" gorm:"not null;default:0;index"`
	FeaturedUntil        *time.Time                  `json:"featuredUntil"`
	Tags                 datatypes.JSONSlice[string] `json:"tags"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InitialStatus decides the moderation status of a newly submitted listing.
func InitialStatus(actor UserRole) ListingStatus {
	if actor == RoleAdmin {
		return ListingApproved
	}
	return ListingPending
}

// VisibleTo reports whether a single-item fetch may return the listing.
// viewerID is 0 for anonymous callers.
func (l *Listing) VisibleTo(viewerID int64) bool {
	if l.Status == ListingApproved {
		return true
	}
	return viewerID != 0 && l.UserID == viewerID
}

func (l *Listing) OwnedBy(userID int64) bool {
	return userID != 0 && l.UserID == userID
}

// Normalize fills defaults and replaces nil sets with empty ones so the
// JSON columns never hold null.
func (l *Listing) Normalize() {
	if l.Purpose == "" {
		l.Purpose = PurposeSell
	}
	if l.PropertyType == "" {
		l.PropertyType = PropertyResidential
	}
	if l.AreaUnit == "" {
		l.AreaUnit = DefaultAreaUnit
	}
	for _, set := range []*datatypes.JSONSlice[string]{
		&l.Photos, &l.OtherRooms, &l.Amenities, &l.PropertyFeatures, &l.SocietyFeatures,
		&l.AdditionalFeatures, &l.WaterSource, &l.Overlooking, &l.LocationAdvantages, &l.Tags,
	} {
		if *set == nil {
			*set = datatypes.JSONSlice[string]{}
		}
	}
}

// Category is the admin list filter naming exactly one categorization flag.
type Category string

const (
	CategoryFeatured    Category = "featured"
	CategoryTopPick     Category = "topPick"
	CategoryHighlighted Category = "highlighted"
	CategoryInvestment  Category = "investment"
	CategoryRecent      Category = "recent"
)

var categoryColumns = map[Category]string{
	CategoryFeatured:    "is_featured",
	CategoryTopPick:     "is_top_pick",
	CategoryHighlighted: "is_highlighted",
	CategoryInvestment:  "is_investment_property",
	CategoryRecent:      "is_recently_added",
}

// Column returns the flag column the category filters on.
func (c Category) Column() (string, bool) {
	col, ok := categoryColumns[c]
	return col, ok
}

// View is a public retrieval view.
type View string

const (
	ViewAll         View = "all"
	ViewFeatured    View = "featured"
	ViewTopPicks    View = "top-picks"
	ViewHighlighted View = "highlighted"
	ViewInvestment  View = "investment"
	ViewRecent      View = "recent"
)

var viewColumns = map[View]string{
	ViewAll:         "",
	ViewFeatured:    "is_featured",
	ViewTopPicks:    "is_top_pick",
	ViewHighlighted: "is_highlighted",
	ViewInvestment:  "is_investment_property",
	ViewRecent:      "",
}

// Column returns the flag column for the view ("" means no flag filter).
func (v View) Column() (string, bool) {
	col, ok := viewColumns[v]
	return col, ok
}

// RanksByPriority is false only for the recently added view, which is newest-first.
func (v View) RanksByPriority() bool {
	return v != ViewRecent
}
