package listing

import (
	"encoding/json"
	"testing"

	"propzy/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeForm_LenientValues(t *testing.T) {
	in, err := DecodeForm(map[string][]string{
		"propertySubType":  {"Villa"},
		"city":             {"Goa"},
		"locality":         {"Anjuna"},
		"coveredParking":   {"2"},
		"priceNegotiable":  {"true"},
		"amenities":        {`["Gym","Pool"]`},
		"waterSource":      {"Municipal, Borewell"},
		"societyFeatures":  {"Lift", "Park"},
		"otherFeatures":    {`{"petFriendly":true}`},
		"unknownFormField": {"ignored"},
	})
	require.NoError(t, err)

	var l domain.Listing
	in.ApplyTo(&l)
	assert.Equal(t, "Villa", l.PropertySubType)
	assert.Equal(t, 2, l.CoveredParking)
	assert.True(t, l.PriceNegotiable)
	assert.Equal(t, []string{"Gym", "Pool"}, []string(l.Amenities))
	assert.Equal(t, []string{"Municipal", "Borewell"}, []string(l.WaterSource))
	assert.Equal(t, []string{"Lift", "Park"}, []string(l.SocietyFeatures))
	assert.True(t, l.OtherFeatures.Data().PetFriendly)
	assert.False(t, l.OtherFeatures.Data().GatedSociety)
}

func TestListingInput_JSONAcceptsNumbers(t *testing.T) {
	var in ListingInput
	require.NoError(t, json.Unmarshal([]byte(`{"bedrooms":3,"expectedPrice":4500000,"openParking":"1"}`), &in))

	var l domain.Listing
	in.ApplyTo(&l)
	assert.Equal(t, "3", l.Bedrooms)
	assert.Equal(t, "4500000", l.ExpectedPrice)
	assert.Equal(t, 1, l.OpenParking)
}

func TestListingInput_Validate(t *testing.T) {
	errs := ListingInput{}.Validate(true)
	assert.Contains(t, errs, "propertySubType")
	assert.Contains(t, errs, "city")
	assert.Contains(t, errs, "locality")

	assert.Nil(t, ListingInput{}.Validate(false))

	in := validInput()
	in.Purpose = str("Lease")
	in.PowerBackup = str("Half")
	errs = in.Validate(true)
	assert.Contains(t, errs, "purpose")
	assert.Contains(t, errs, "powerBackup")
	assert.NotContains(t, errs, "city")

	in = validInput()
	in.Purpose = str("Rent / Lease")
	assert.Nil(t, in.Validate(true))
}
