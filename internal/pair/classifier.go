package pair

import (
	"strings"

	"github.com/zlv-data/geolink/internal/address"
	"github.com/zlv-data/geolink/internal/distance"
	"github.com/zlv-data/geolink/internal/geoadmin"
)

// Classifier combines the address classifier, the geo-admin resolver and the
// distance kernel into the per-pair decision procedure.
type Classifier struct {
	resolver     *geoadmin.Resolver
	classifyText func(string) string
}

// New creates a Classifier over the given resolver.
func New(resolver *geoadmin.Resolver) *Classifier {
	return &Classifier{
		resolver:     resolver,
		classifyText: address.Classify,
	}
}

// Classify computes distance and relative-location class for one pair.
// Either address may be nil (not found). ownerKnownForeign carries the
// pre-pass verdict so the text classifier is not re-invoked per pair.
//
// Distance and class are orthogonal: distance is computed whenever both
// endpoints carry valid coordinates, whatever class comes out.
func (c *Classifier) Classify(owner, housing *Address, ownerKnownForeign bool) Result {
	var res Result
	res.MissingOwner = owner == nil
	res.MissingHousing = housing == nil
	if owner == nil && housing == nil {
		res.Class = ClassUnknown
		return res
	}

	if op, ok := owner.Point(); ok {
		if hp, ok := housing.Point(); ok {
			if m, ok := distance.Meters(op, hp); ok {
				res.DistanceMeters = &m
			}
		}
	}

	res.OwnerForeign = ownerKnownForeign || c.sideForeign(owner)
	res.HousingForeign = c.sideForeign(housing)

	// Foreign needs both sides present: a missing side is indeterminate, not
	// foreign.
	if owner != nil && housing != nil && (res.OwnerForeign || res.HousingForeign) {
		res.Class = ClassForeign
		return res
	}

	ownerCode, housingCode, ok := pickCodes(owner, housing)
	if !ok {
		res.Class = ClassUnknown
		return res
	}

	res.GeoRuleApplied = true
	res.Class = c.relate(ownerCode, housingCode)
	return res
}

// sideForeign applies the coordinate-presence bypass: a geocoded address is
// French by construction (the BAN geocoder refuses foreign addresses), and
// only ungeocoded text goes through the rule engine.
func (c *Classifier) sideForeign(a *Address) bool {
	if a == nil {
		return false
	}
	if _, ok := a.Point(); ok {
		return false
	}
	text := a.Text()
	if text == "" {
		return false
	}
	return c.classifyText(text) == address.Foreign
}

// pickCodes selects the administrative codes for the geographic rules:
// postal codes when both sides carry one, else commune codes when both
// sides carry one. The two kinds are never mixed within a pair.
func pickCodes(owner, housing *Address) (string, string, bool) {
	if o, h := postalOf(owner), postalOf(housing); o != "" && h != "" {
		return o, h, true
	}
	if o, h := communeOf(owner), communeOf(housing); o != "" && h != "" {
		return o, h, true
	}
	return "", "", false
}

func postalOf(a *Address) string {
	if a == nil || a.PostalCode == nil {
		return ""
	}
	return strings.TrimSpace(*a.PostalCode)
}

func communeOf(a *Address) string {
	if a == nil || a.GeoCode == nil {
		return ""
	}
	return strings.TrimSpace(*a.GeoCode)
}

// relate walks the code hierarchy: commune, department, region, then the
// metropolitan/overseas split on the owner side.
func (c *Classifier) relate(ownerCode, housingCode string) int {
	r := c.resolver
	switch {
	case ownerCode == housingCode:
		return ClassSameCommune
	case r.DepartmentOf(ownerCode) != "" &&
		r.DepartmentOf(ownerCode) == r.DepartmentOf(housingCode):
		return ClassSameDepartment
	case r.SameRegion(ownerCode, housingCode):
		return ClassSameRegion
	case r.IsMetropolitan(ownerCode):
		return ClassMetropolitan
	case r.IsOverseas(ownerCode):
		return ClassOverseas
	default:
		return ClassUnknown
	}
}
