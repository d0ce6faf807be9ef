// Package pair classifies one owner/housing address pair into a geodesic
// distance and a 1..7 relative-location class.
package pair

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// AddressKind distinguishes the two sides of a pair in the address store.
type AddressKind string

const (
	KindOwner   AddressKind = "Owner"
	KindHousing AddressKind = "Housing"
)

// Address is one ban_addresses row. Pointer fields map nullable columns;
// any subset may be absent.
type Address struct {
	RefID      uuid.UUID
	Kind       AddressKind
	PostalCode *string
	Label      *string // free-form address text
	Latitude   *float64
	Longitude  *float64
	GeoCode    *string // INSEE commune code
}

// Point returns the address coordinates when both are present.
func (a *Address) Point() (orb.Point, bool) {
	if a == nil || a.Latitude == nil || a.Longitude == nil {
		return orb.Point{}, false
	}
	return orb.Point{*a.Longitude, *a.Latitude}, true
}

// Text returns the trimmed address label, "" when absent.
func (a *Address) Text() string {
	if a == nil || a.Label == nil {
		return ""
	}
	return strings.TrimSpace(*a.Label)
}

// Relative-location classes. The scale encodes the administrative
// relationship between the owner's domicile and the housing.
const (
	ClassSameCommune    = 1 // identical postal or commune code
	ClassSameDepartment = 2 // same department, different commune
	ClassSameRegion     = 3 // same region, different department
	ClassMetropolitan   = 4 // different regions, owner in metropolitan France
	ClassOverseas       = 5 // different regions, owner overseas
	ClassForeign        = 6 // at least one side classified foreign
	ClassUnknown        = 7 // not determinable
)

// Result is the outcome of classifying one pair.
type Result struct {
	DistanceMeters *int
	Class          int

	// Tallied by the processor statistics.
	MissingOwner   bool
	MissingHousing bool
	OwnerForeign   bool
	HousingForeign bool
	GeoRuleApplied bool
}
