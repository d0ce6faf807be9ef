package locprop

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlv-data/geolink/internal/geoadmin"
	"github.com/zlv-data/geolink/internal/pair"
)

type fakeSource struct {
	pairs []Pair
}

func (f *fakeSource) StreamPairs(_ context.Context, opts SourceOpts, fn func(Pair) error) error {
	for i, p := range f.pairs {
		if opts.Limit > 0 && i >= opts.Limit {
			return nil
		}
		if !opts.Force && p.Complete() {
			continue
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

type ungeolocatedOwner struct {
	id    uuid.UUID
	label string
}

type fakeAddresses struct {
	owners        map[uuid.UUID]*pair.Address
	housings      map[uuid.UUID]*pair.Address
	ungeolocated  []ungeolocatedOwner
	ownerLookups  int
	housingCalled int
}

func (f *fakeAddresses) LookupOwners(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error) {
	f.ownerLookups++
	return pick(f.owners, ids), nil
}

func (f *fakeAddresses) LookupHousings(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error) {
	f.housingCalled++
	return pick(f.housings, ids), nil
}

func (f *fakeAddresses) StreamUngeolocatedOwners(ctx context.Context, fn func(uuid.UUID, string) error) error {
	for _, o := range f.ungeolocated {
		if err := fn(o.id, o.label); err != nil {
			return err
		}
	}
	return nil
}

func pick(m map[uuid.UUID]*pair.Address, ids []uuid.UUID) map[uuid.UUID]*pair.Address {
	out := make(map[uuid.UUID]*pair.Address, len(ids))
	for _, id := range ids {
		if a, ok := m[id]; ok {
			out[id] = a
		}
	}
	return out
}

func geoAddr(kind pair.AddressKind, postal string, lat, lon float64) *pair.Address {
	return &pair.Address{
		Kind:       kind,
		PostalCode: &postal,
		Latitude:   &lat,
		Longitude:  &lon,
	}
}

func textAddr(kind pair.AddressKind, label string) *pair.Address {
	return &pair.Address{Kind: kind, Label: &label}
}

type fixture struct {
	source    *fakeSource
	addresses *fakeAddresses
	sink      *fakeSink
	proc      *Processor
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		source: &fakeSource{},
		addresses: &fakeAddresses{
			owners:   make(map[uuid.UUID]*pair.Address),
			housings: make(map[uuid.UUID]*pair.Address),
		},
		sink: &fakeSink{},
	}
	f.proc = New(f.source, f.addresses, f.sink, geoadmin.Load(), opts)
	return f
}

func (f *fixture) addPair(owner, housing *pair.Address) (uuid.UUID, uuid.UUID) {
	ownerID, housingID := uuid.New(), uuid.New()
	if owner != nil {
		a := *owner
		a.RefID = ownerID
		f.addresses.owners[ownerID] = &a
	}
	if housing != nil {
		a := *housing
		a.RefID = housingID
		f.addresses.housings[housingID] = &a
	}
	f.source.pairs = append(f.source.pairs, Pair{OwnerID: ownerID, HousingID: housingID})
	return ownerID, housingID
}

func (f *fixture) updates() []PairUpdate {
	var out []PairUpdate
	for _, b := range f.sink.batches {
		out = append(out, b...)
	}
	return out
}

func TestRun_SameCommunePair(t *testing.T) {
	f := newFixture(Options{})
	ownerID, housingID := f.addPair(
		geoAddr(pair.KindOwner, "75001", 48.8606, 2.3376),
		geoAddr(pair.KindHousing, "75001", 48.8610, 2.3380),
	)

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)

	ups := f.updates()
	require.Len(t, ups, 1)
	assert.Equal(t, ownerID, ups[0].OwnerID)
	assert.Equal(t, housingID, ups[0].HousingID)
	assert.Equal(t, pair.ClassSameCommune, ups[0].ClassCode)
	require.NotNil(t, ups[0].DistanceMeters)
	assert.Less(t, *ups[0].DistanceMeters, 200)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 1, snap.DistancesComputed)
	assert.Equal(t, 1, snap.PerClass[pair.ClassSameCommune])
	assert.Equal(t, 1, snap.PerDepartment["75"])
	assert.Equal(t, int64(1), snap.RowsWritten)
}

func TestRun_DepartmentAndRegionClasses(t *testing.T) {
	f := newFixture(Options{})
	// Paris 1er vs Paris 15e: same department.
	f.addPair(
		geoAddr(pair.KindOwner, "75001", 48.8606, 2.3376),
		geoAddr(pair.KindHousing, "75015", 48.8417, 2.3003),
	)
	// Versailles (78) vs Paris (75): same region, different department.
	f.addPair(
		geoAddr(pair.KindOwner, "78000", 48.8049, 2.1204),
		geoAddr(pair.KindHousing, "75001", 48.8606, 2.3376),
	)
	// Bordeaux (33) vs Paris (75): metropolitan, different region.
	f.addPair(
		geoAddr(pair.KindOwner, "33000", 44.8378, -0.5792),
		geoAddr(pair.KindHousing, "75001", 48.8606, 2.3376),
	)

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.PerClass[pair.ClassSameDepartment])
	assert.Equal(t, 1, snap.PerClass[pair.ClassSameRegion])
	assert.Equal(t, 1, snap.PerClass[pair.ClassMetropolitan])
	assert.Equal(t, 3, snap.DistancesComputed)
}

func TestRun_OverseasOwner(t *testing.T) {
	f := newFixture(Options{})
	f.addPair(
		geoAddr(pair.KindOwner, "97110", 16.2411, -61.5331),
		geoAddr(pair.KindHousing, "75001", 48.8606, 2.3376),
	)

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Snapshot().PerClass[pair.ClassOverseas])
}

func TestRun_ForeignOwnerPrePass(t *testing.T) {
	f := newFixture(Options{})
	owner := textAddr(pair.KindOwner, "Via del Corso 18, Roma, Italia")
	ownerID, _ := f.addPair(owner, geoAddr(pair.KindHousing, "75001", 48.8606, 2.3376))
	f.addresses.ungeolocated = []ungeolocatedOwner{{id: ownerID, label: *owner.Label}}

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)

	ups := f.updates()
	require.Len(t, ups, 1)
	assert.Equal(t, pair.ClassForeign, ups[0].ClassCode)
	assert.Nil(t, ups[0].DistanceMeters)
	assert.Equal(t, 1, stats.Snapshot().ForeignDetected)
}

func TestRun_MissingAddressesAreUnknown(t *testing.T) {
	f := newFixture(Options{})
	// Neither side has an address row at all.
	f.source.pairs = append(f.source.pairs, Pair{OwnerID: uuid.New(), HousingID: uuid.New()})

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)

	ups := f.updates()
	require.Len(t, ups, 1)
	assert.Equal(t, pair.ClassUnknown, ups[0].ClassCode)
	assert.Nil(t, ups[0].DistanceMeters)
	assert.Equal(t, 1, stats.Snapshot().MissingBoth)
}

func TestRun_SkipsCompletePairs(t *testing.T) {
	f := newFixture(Options{})
	f.source.pairs = append(f.source.pairs, Pair{
		OwnerID:        uuid.New(),
		HousingID:      uuid.New(),
		DistanceMeters: intPtr(300),
		ClassCode:      intPtr(1),
	})

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.updates())
	assert.Zero(t, stats.Snapshot().Processed)
}

func TestRun_ForceRecomputesCompletePairs(t *testing.T) {
	f := newFixture(Options{Force: true})
	ownerID, housingID := f.addPair(
		geoAddr(pair.KindOwner, "75001", 48.8606, 2.3376),
		geoAddr(pair.KindHousing, "75001", 48.8610, 2.3380),
	)
	// Mark the pair as already resolved, with a stale class.
	f.source.pairs[0] = Pair{
		OwnerID:        ownerID,
		HousingID:      housingID,
		DistanceMeters: intPtr(999999),
		ClassCode:      intPtr(7),
	}

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)

	ups := f.updates()
	require.Len(t, ups, 1)
	assert.Equal(t, pair.ClassSameCommune, ups[0].ClassCode)
	assert.Equal(t, 1, stats.Snapshot().Processed)
}

func TestRun_ResumeShortcutSkipsCompleteBatch(t *testing.T) {
	f := newFixture(Options{})
	for i := 0; i < 10; i++ {
		f.source.pairs = append(f.source.pairs, Pair{
			OwnerID:        uuid.New(),
			HousingID:      uuid.New(),
			DistanceMeters: intPtr(100),
			ClassCode:      intPtr(1),
		})
	}
	// The source filter normally hides complete rows; force-feed them to
	// exercise the batch-level sample.
	f.proc.opts.Force = false
	f.source.pairs = f.source.pairs[:10]
	err := f.proc.processBatch(context.Background(), f.source.pairs, nil,
		NewWriter(f.sink, 10, 1, f.proc.stats))
	require.NoError(t, err)

	assert.Zero(t, f.addresses.ownerLookups)
	assert.Equal(t, 1, f.proc.stats.Snapshot().SkippedBatches)
	assert.Empty(t, f.updates())
}

func TestRun_LimitCapsPairs(t *testing.T) {
	f := newFixture(Options{Limit: 2})
	for i := 0; i < 5; i++ {
		f.addPair(
			geoAddr(pair.KindOwner, "75001", 48.8606, 2.3376),
			geoAddr(pair.KindHousing, "75001", 48.8610, 2.3380),
		)
	}

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Snapshot().Processed)
	assert.Len(t, f.updates(), 2)
}

func TestRun_CanceledContext(t *testing.T) {
	f := newFixture(Options{})
	f.addresses.ungeolocated = []ungeolocatedOwner{{id: uuid.New(), label: "x"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.proc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SmallBatchesFlushInOrder(t *testing.T) {
	f := newFixture(Options{PairBatchSize: 2, UpdateBatchSize: 2, Workers: 1})
	for i := 0; i < 5; i++ {
		f.addPair(
			geoAddr(pair.KindOwner, "75001", 48.8606, 2.3376),
			geoAddr(pair.KindHousing, "75001", 48.8610, 2.3380),
		)
	}

	stats, err := f.proc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Snapshot().Processed)
	assert.Equal(t, int64(5), stats.Snapshot().RowsWritten)
	// 3 pair-batches (2+2+1), each flushed on its own.
	assert.GreaterOrEqual(t, f.addresses.ownerLookups, 3)
}
