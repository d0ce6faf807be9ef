// Package geoadmin resolves French postal and commune codes to the
// administrative hierarchy (department, region) and classifies regions as
// metropolitan or overseas.
package geoadmin

import "strings"

// Resolver answers department/region questions from the static reference
// tables. It is read-only after Load and safe for concurrent use.
type Resolver struct {
	deptRegion   map[string]string
	metropolitan map[string]struct{}
	overseas     map[string]struct{}
}

// Load builds a Resolver from the compiled-in reference data. Called once
// per run.
func Load() *Resolver {
	return &Resolver{
		deptRegion:   departmentRegion,
		metropolitan: metropolitanRegions,
		overseas:     overseasRegions,
	}
}

// DepartmentOf extracts the department from a postal or commune code:
// three characters for the overseas 97x/98x prefixes, two otherwise
// (including Corsica's 2A/2B). Returns "" when the code is too short.
func (r *Resolver) DepartmentOf(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case len(code) >= 3 && (strings.HasPrefix(code, "97") || strings.HasPrefix(code, "98")):
		return code[:3]
	case len(code) >= 2:
		return code[:2]
	default:
		return ""
	}
}

// RegionOf resolves the region of a postal or commune code. Returns "" for
// unknown codes.
func (r *Resolver) RegionOf(code string) string {
	dept := r.DepartmentOf(code)
	if dept == "" {
		return ""
	}
	return r.deptRegion[dept]
}

// SameRegion reports whether both codes resolve and land in the same region.
// Either side failing to resolve yields false.
func (r *Resolver) SameRegion(a, b string) bool {
	ra := r.RegionOf(a)
	rb := r.RegionOf(b)
	return ra != "" && ra == rb
}

// IsMetropolitan reports whether the code's region is a metropolitan one.
// Unknown codes yield false.
func (r *Resolver) IsMetropolitan(code string) bool {
	_, ok := r.metropolitan[r.RegionOf(code)]
	return ok
}

// IsOverseas reports whether the code's region is an overseas one. Unknown
// codes yield false.
func (r *Resolver) IsOverseas(code string) bool {
	_, ok := r.overseas[r.RegionOf(code)]
	return ok
}
