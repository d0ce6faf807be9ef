package locprop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zlv-data/geolink/internal/pair"
)

func TestStats_Record(t *testing.T) {
	s := NewStats()

	d := 1200
	s.Record(pair.Result{Class: pair.ClassSameCommune, DistanceMeters: &d, GeoRuleApplied: true}, "75")
	s.Record(pair.Result{Class: pair.ClassForeign, OwnerForeign: true}, "")
	s.Record(pair.Result{Class: pair.ClassUnknown, MissingOwner: true, MissingHousing: true}, "")
	s.Record(pair.Result{Class: pair.ClassUnknown, MissingHousing: true}, "75")

	snap := s.Snapshot()
	assert.Equal(t, 4, snap.Processed)
	assert.Equal(t, 1, snap.DistancesComputed)
	assert.Equal(t, 1, snap.GeoRules)
	assert.Equal(t, 1, snap.ForeignDetected)
	assert.Equal(t, 1, snap.MissingBoth)
	assert.Equal(t, 1, snap.MissingHousing)
	assert.Zero(t, snap.MissingOwner)
	assert.Equal(t, 1, snap.PerClass[pair.ClassSameCommune])
	assert.Equal(t, 2, snap.PerClass[pair.ClassUnknown])
	assert.Equal(t, 2, snap.PerDepartment["75"])
}

func TestStats_ConcurrentUpdates(t *testing.T) {
	s := NewStats()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Record(pair.Result{Class: pair.ClassSameRegion}, "33")
				s.AddWritten(1)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, 800, snap.Processed)
	assert.Equal(t, 800, snap.PerClass[pair.ClassSameRegion])
	assert.Equal(t, int64(800), snap.RowsWritten)
}

func TestStats_SnapshotIsCopy(t *testing.T) {
	s := NewStats()
	s.Record(pair.Result{Class: pair.ClassSameCommune}, "75")

	snap := s.Snapshot()
	snap.PerDepartment["75"] = 99

	assert.Equal(t, 1, s.Snapshot().PerDepartment["75"])
}
