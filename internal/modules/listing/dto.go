package listing

import (
	"bytes"
	"encoding/json"
	"strings"

	"propzy/internal/domain"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"
	"propzy/internal/pkg/validator"

	"gorm.io/datatypes"
)

const (
	MaxPhotos = 20
	MaxVideos = 1
)

// OtherFeaturesInput accepts the feature bundle as an object or as a string
// holding a JSON object (multipart forms send it that way).
type OtherFeaturesInput struct {
	GatedSociety       *utils.FlexBool `json:"gatedSociety"`
	CornerProperty     *utils.FlexBool `json:"cornerProperty"`
	PetFriendly        *utils.FlexBool `json:"petFriendly"`
	WheelchairFriendly *utils.FlexBool `json:"wheelchairFriendly"`
}

func (o *OtherFeaturesInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		b = []byte(s)
	}
	type plain OtherFeaturesInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = OtherFeaturesInput(p)
	return nil
}

// ListingInput is the owner-editable part of a listing. Nil fields are left
// untouched on update. Moderation status and categorization are not part of
// it, so neither create nor owner update can set them.
type ListingInput struct {
	Purpose         *utils.FlexString `json:"purpose"`
	PropertyType    *utils.FlexString `json:"propertyType"`
	PropertySubType *utils.FlexString `json:"propertySubType"`

	City        *utils.FlexString `json:"city"`
	Locality    *utils.FlexString `json:"locality"`
	SubLocality *utils.FlexString `json:"subLocality"`
	Apartment   *utils.FlexString `json:"apartment"`

	Bedrooms           *utils.FlexString `json:"bedrooms"`
	Bathrooms          *utils.FlexString `json:"bathrooms"`
	Balconies          *utils.FlexString `json:"balconies"`
	PlotArea           *utils.FlexString `json:"plotArea"`
	AreaUnit           *utils.FlexString `json:"areaUnit"`
	CarpetArea         *utils.FlexString `json:"carpetArea"`
	BuiltUpArea        *utils.FlexString `json:"builtUpArea"`
	TotalFloors        *utils.FlexString `json:"totalFloors"`
	AvailabilityStatus *utils.FlexString `json:"availabilityStatus"`
	PropertyAge        *utils.FlexString `json:"propertyAge"`
	Ownership          *utils.FlexString `json:"ownership"`
	ExpectedPrice      *utils.FlexString `json:"expectedPrice"`
	PricePerSqFt       *utils.FlexString `json:"pricePerSqFt"`
	AllInclusivePrice  *utils.FlexBool   `json:"allInclusivePrice"`
	TaxExcluded        *utils.FlexBool   `json:"taxExcluded"`
	PriceNegotiable    *utils.FlexBool   `json:"priceNegotiable"`

	PropertyDescription *utils.FlexString `json:"propertyDescription"`

	Photos *utils.StringList `json:"photos"`
	Video  *utils.FlexString `json:"video"`

	OtherRooms         *utils.StringList `json:"otherRooms"`
	Furnishing         *utils.FlexString `json:"furnishing"`
	CoveredParking     *utils.FlexInt    `json:"coveredParking"`
	OpenParking        *utils.FlexInt    `json:"openParking"`
	Amenities          *utils.StringList `json:"amenities"`
	PropertyFeatures   *utils.StringList `json:"propertyFeatures"`
	SocietyFeatures    *utils.StringList `json:"societyFeatures"`
	AdditionalFeatures *utils.StringList `json:"additionalFeatures"`
	WaterSource        *utils.StringList `json:"waterSource"`
	Overlooking        *utils.StringList `json:"overlooking"`
	LocationAdvantages *utils.StringList `json:"locationAdvantages"`

	OtherFeatures  *OtherFeaturesInput `json:"otherFeatures"`
	PowerBackup    *utils.FlexString   `json:"powerBackup"`
	PropertyFacing *utils.FlexString   `json:"propertyFacing"`
	FlooringType   *utils.FlexString   `json:"flooringType"`

	IsActive *utils.FlexBool `json:"isActive"`
}

// DecodeForm builds an input from multipart form values by re-encoding them
// as JSON strings, so the same lenient decoders apply to both content types.
func DecodeForm(values map[string][]string) (ListingInput, error) {
	flat := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		if len(v) > 1 {
			// repeated keys (amenities=a&amenities=b) become one list
			raw, err := json.Marshal(v)
			if err != nil {
				return ListingInput{}, err
			}
			flat[k] = string(raw)
			continue
		}
		flat[k] = v[0]
	}
	raw, err := json.Marshal(flat)
	if err != nil {
		return ListingInput{}, err
	}
	var in ListingInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ListingInput{}, err
	}
	return in, nil
}

// Validate checks required location fields and enum values. On create the
// required fields must be present; on update they may be absent but not blank.
func (in ListingInput) Validate(creating bool) validator.FieldErrors {
	errs := validator.FieldErrors{}

	required := map[string]*utils.FlexString{
		"propertySubType": in.PropertySubType,
		"city":            in.City,
		"locality":        in.Locality,
	}
	for name, v := range required {
		if v == nil {
			if creating {
				errs[name] = "is required"
			}
			continue
		}
		if strings.TrimSpace(string(*v)) == "" {
			errs[name] = "is required"
		}
	}

	if in.Purpose != nil && !domain.Purpose(*in.Purpose).Valid() {
		errs["purpose"] = "must be one of: Sell, Rent / Lease, PG"
	}
	if in.PropertyType != nil && !domain.PropertyType(*in.PropertyType).Valid() {
		errs["propertyType"] = "must be one of: Residential, Commercial"
	}
	if in.AvailabilityStatus != nil && !domain.ValidAvailability(string(*in.AvailabilityStatus)) {
		errs["availabilityStatus"] = "must be one of: Ready to move, Under construction"
	}
	if in.PowerBackup != nil && !domain.ValidPowerBackup(string(*in.PowerBackup)) {
		errs["powerBackup"] = "must be one of: None, Partial, Full"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ApplyTo copies every provided field onto l.
func (in ListingInput) ApplyTo(l *domain.Listing) {
	setString := func(dst *string, v *utils.FlexString) {
		if v != nil {
			*dst = strings.TrimSpace(string(*v))
		}
	}
	setBool := func(dst *bool, v *utils.FlexBool) {
		if v != nil {
			*dst = bool(*v)
		}
	}
	setList := func(dst *datatypes.JSONSlice[string], v *utils.StringList) {
		if v != nil {
			*dst = datatypes.JSONSlice[string](append([]string{}, (*v)...))
		}
	}

	if in.Purpose != nil {
		l.Purpose = domain.Purpose(*in.Purpose)
	}
	if in.PropertyType != nil {
		l.PropertyType = domain.PropertyType(*in.PropertyType)
	}
	setString(&l.PropertySubType, in.PropertySubType)

	setString(&l.City, in.City)
	setString(&l.Locality, in.Locality)
	setString(&l.SubLocality, in.SubLocality)
	setString(&l.Apartment, in.Apartment)

	setString(&l.Bedrooms, in.Bedrooms)
	setString(&l.Bathrooms, in.Bathrooms)
	setString(&l.Balconies, in.Balconies)
	setString(&l.PlotArea, in.PlotArea)
	setString(&l.AreaUnit, in.AreaUnit)
	setString(&l.CarpetArea, in.CarpetArea)
	setString(&l.BuiltUpArea, in.BuiltUpArea)
	setString(&l.TotalFloors, in.TotalFloors)
	setString(&l.AvailabilityStatus, in.AvailabilityStatus)
	setString(&l.PropertyAge, in.PropertyAge)
	setString(&l.Ownership, in.Ownership)
	setString(&l.ExpectedPrice, in.ExpectedPrice)
	setString(&l.PricePerSqFt, in.PricePerSqFt)
	setBool(&l.AllInclusivePrice, in.AllInclusivePrice)
	setBool(&l.TaxExcluded, in.TaxExcluded)
	setBool(&l.PriceNegotiable, in.PriceNegotiable)

	setString(&l.PropertyDescription, in.PropertyDescription)

	setList(&l.Photos, in.Photos)
	setString(&l.Video, in.Video)

	setList(&l.OtherRooms, in.OtherRooms)
	setString(&l.Furnishing, in.Furnishing)
	if in.CoveredParking != nil {
		l.CoveredParking = int(*in.CoveredParking)
	}
	if in.OpenParking != nil {
		l.OpenParking = int(*in.OpenParking)
	}
	setList(&l.Amenities, in.Amenities)
	setList(&l.PropertyFeatures, in.PropertyFeatures)
	setList(&l.SocietyFeatures, in.SocietyFeatures)
	setList(&l.AdditionalFeatures, in.AdditionalFeatures)
	setList(&l.WaterSource, in.WaterSource)
	setList(&l.Overlooking, in.Overlooking)
	setList(&l.LocationAdvantages, in.LocationAdvantages)

	if in.OtherFeatures != nil {
		f := l.OtherFeatures.Data()
		setBool(&f.GatedSociety, in.OtherFeatures.GatedSociety)
		setBool(&f.CornerProperty, in.OtherFeatures.CornerProperty)
		setBool(&f.PetFriendly, in.OtherFeatures.PetFriendly)
		setBool(&f.WheelchairFriendly, in.OtherFeatures.WheelchairFriendly)
		l.OtherFeatures = datatypes.NewJSONType(f)
	}
	setString(&l.PowerBackup, in.PowerBackup)
	setString(&l.PropertyFacing, in.PropertyFacing)
	setString(&l.FlooringType, in.FlooringType)

	setBool(&l.IsActive, in.IsActive)
}

// BrowseFilter holds the public browse query parameters.
type BrowseFilter struct {
	Purpose      string
	PropertyType string
	City         string
	Locality     string
	Bedrooms     string
}

// ListingPage is one page of listings with pagination metadata inlined.
type ListingPage struct {
	Listings []domain.Listing `json:"listings"`
	response.Page
}
