package geoadmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepartmentOf(t *testing.T) {
	r := Load()
	tests := []struct {
		code string
		want string
	}{
		{"75001", "75"},
		{"69001", "69"},
		{"97110", "971"},
		{"97400", "974"},
		{"98800", "988"},
		{"2A004", "2A"},
		{"2b033", "2B"},
		{"20000", "20"},
		{" 33000 ", "33"},
		{"7", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, r.DepartmentOf(tt.code))
		})
	}
}

func TestRegionOf(t *testing.T) {
	r := Load()
	tests := []struct {
		code string
		want string
	}{
		{"75001", "11"}, // Île-de-France
		{"69001", "84"}, // Auvergne-Rhône-Alpes
		{"06000", "93"}, // PACA
		{"97110", "01"}, // Guadeloupe
		{"97200", "02"}, // Martinique
		{"2A004", "94"}, // Corse
		{"20167", "94"}, // Corsican postal prefix
		{"98800", ""},   // Nouvelle-Calédonie: not in the table
		{"xx", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, r.RegionOf(tt.code))
		})
	}
}

func TestSameRegion(t *testing.T) {
	r := Load()
	assert.True(t, r.SameRegion("75001", "77100"))  // both Île-de-France
	assert.True(t, r.SameRegion("2A004", "20000"))  // both Corse
	assert.False(t, r.SameRegion("75001", "69001")) // IDF vs ARA
	assert.False(t, r.SameRegion("75001", ""))      // unresolved side
	assert.False(t, r.SameRegion("", ""))           // both unresolved never match
	assert.False(t, r.SameRegion("98800", "98800")) // unknown both sides
}

func TestRegionClasses(t *testing.T) {
	r := Load()

	assert.True(t, r.IsMetropolitan("75001"))
	assert.True(t, r.IsMetropolitan("2A004"))
	assert.False(t, r.IsMetropolitan("97110"))
	assert.False(t, r.IsMetropolitan("garbage"))

	assert.True(t, r.IsOverseas("97110"))
	assert.True(t, r.IsOverseas("97400"))
	assert.False(t, r.IsOverseas("75001"))
	assert.False(t, r.IsOverseas(""))
}

func TestRegionSetsDisjoint(t *testing.T) {
	for region := range metropolitanRegions {
		_, both := overseasRegions[region]
		assert.False(t, both, "region %s tagged both metropolitan and overseas", region)
	}
}
