package locprop

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zlv-data/geolink/internal/address"
	"github.com/zlv-data/geolink/internal/geoadmin"
	"github.com/zlv-data/geolink/internal/pair"
)

// Defaults for the batch processor.
const (
	defaultPairBatchSize   = 50000
	defaultUpdateBatchSize = 10000
	defaultWorkers         = 6

	// Resume shortcut: sample size per pair-batch and the completion ratio
	// above which the whole batch is skipped.
	resumeSampleSize    = 100
	resumeSkipThreshold = 0.8
)

// Options configures a processing run.
type Options struct {
	Force           bool
	Limit           int
	PairBatchSize   int
	UpdateBatchSize int
	Workers         int
}

func (o Options) withDefaults() Options {
	if o.PairBatchSize <= 0 {
		o.PairBatchSize = defaultPairBatchSize
	}
	if o.UpdateBatchSize <= 0 {
		o.UpdateBatchSize = defaultUpdateBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	return o
}

// Processor drives the two-pass pipeline: foreign-owner discovery, then
// batched classification with parallel write-back. Memory stays bounded by
// the pair-batch size plus that batch's distinct addresses.
type Processor struct {
	source     PairSource
	addresses  AddressStore
	sink       PairSink
	classifier *pair.Classifier
	resolver   *geoadmin.Resolver
	opts       Options
	stats      *Stats

	classifyText func(string) string
}

// New creates a Processor. The three store roles usually share one
// PostgresStore.
func New(source PairSource, addresses AddressStore, sink PairSink, resolver *geoadmin.Resolver, opts Options) *Processor {
	return &Processor{
		source:       source,
		addresses:    addresses,
		sink:         sink,
		classifier:   pair.New(resolver),
		resolver:     resolver,
		opts:         opts.withDefaults(),
		stats:        NewStats(),
		classifyText: address.Classify,
	}
}

// Run executes the full pipeline. The returned Stats are valid even when an
// error (including cancellation) cut the run short; a run is always safe to
// restart because writes are idempotent and unfinished pairs reappear in the
// input selection.
func (p *Processor) Run(ctx context.Context) (*Stats, error) {
	log := zap.L().With(zap.String("component", "locprop"))
	defer p.stats.LogSummary()

	foreign, err := p.discoverForeignOwners(ctx)
	if err != nil {
		return p.stats, err
	}
	log.Info("foreign-owner pre-pass complete", zap.Int("foreign_owners", len(foreign)))

	writer := NewWriter(p.sink, p.opts.UpdateBatchSize, p.opts.Workers, p.stats)

	batch := make([]Pair, 0, p.opts.PairBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := p.processBatch(ctx, batch, foreign, writer)
		batch = batch[:0]
		return err
	}

	err = p.source.StreamPairs(ctx, SourceOpts{Force: p.opts.Force, Limit: p.opts.Limit}, func(pr Pair) error {
		batch = append(batch, pr)
		if len(batch) >= p.opts.PairBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return p.stats, err
	}
	if err := flush(); err != nil {
		return p.stats, err
	}

	return p.stats, ctx.Err()
}

// discoverForeignOwners streams every owner address lacking coordinates and
// classifies its text once. Owners appear in many pairs; the set makes the
// main pass a O(1) membership test per pair.
func (p *Processor) discoverForeignOwners(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	foreign := make(map[uuid.UUID]struct{})
	err := p.addresses.StreamUngeolocatedOwners(ctx, func(id uuid.UUID, label string) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.classifyText(label) == address.Foreign {
			foreign[id] = struct{}{}
		}
		return nil
	})
	return foreign, err
}

// processBatch classifies one pair-batch and hands the results to the write
// fan-out. The address cache lives only for the duration of the batch.
func (p *Processor) processBatch(ctx context.Context, pairs []Pair, foreign map[uuid.UUID]struct{}, writer *Writer) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if !p.opts.Force && p.sampleComplete(pairs) {
		p.stats.RecordSkippedBatch()
		return nil
	}

	ownerIDs, housingIDs := distinctIDs(pairs)
	owners, err := p.addresses.LookupOwners(ctx, ownerIDs)
	if err != nil {
		return err
	}
	housings, err := p.addresses.LookupHousings(ctx, housingIDs)
	if err != nil {
		return err
	}

	updates := make([]PairUpdate, 0, len(pairs))
	for _, pr := range pairs {
		if !p.opts.Force && pr.Complete() {
			p.stats.RecordSkip()
			continue
		}

		res, ok := p.classifyOne(owners[pr.OwnerID], housings[pr.HousingID], foreign, pr.OwnerID)
		if !ok {
			continue // outputs stay unchanged, error already tallied
		}

		p.stats.Record(res, ownerDepartment(p.resolver, owners[pr.OwnerID]))
		updates = append(updates, PairUpdate{
			OwnerID:        pr.OwnerID,
			HousingID:      pr.HousingID,
			DistanceMeters: res.DistanceMeters,
			ClassCode:      res.Class,
		})
	}

	writer.Flush(ctx, updates)
	return nil
}

// classifyOne isolates per-pair panics: a single malformed pair must not
// take the batch down.
func (p *Processor) classifyOne(owner, housing *pair.Address, foreign map[uuid.UUID]struct{}, ownerID uuid.UUID) (res pair.Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("locprop: pair classification failed",
				zap.String("owner_id", ownerID.String()),
				zap.Any("cause", r),
			)
			p.stats.RecordError()
			ok = false
		}
	}()

	_, known := foreign[ownerID]
	return p.classifier.Classify(owner, housing, known), true
}

// sampleComplete applies the resume shortcut: a random sample of the batch
// with at least 80% of pairs already resolved means the batch is leftovers
// from a finished run. Correctness does not depend on it; the per-row
// completeness check still runs.
func (p *Processor) sampleComplete(pairs []Pair) bool {
	if len(pairs) == 0 {
		return false
	}
	n := resumeSampleSize
	if n > len(pairs) {
		n = len(pairs)
	}
	complete := 0
	for i := 0; i < n; i++ {
		if pairs[rand.IntN(len(pairs))].Complete() {
			complete++
		}
	}
	return float64(complete)/float64(n) >= resumeSkipThreshold
}

func distinctIDs(pairs []Pair) (owners, housings []uuid.UUID) {
	ownerSeen := make(map[uuid.UUID]struct{}, len(pairs))
	housingSeen := make(map[uuid.UUID]struct{}, len(pairs))
	for _, p := range pairs {
		if _, ok := ownerSeen[p.OwnerID]; !ok {
			ownerSeen[p.OwnerID] = struct{}{}
			owners = append(owners, p.OwnerID)
		}
		if _, ok := housingSeen[p.HousingID]; !ok {
			housingSeen[p.HousingID] = struct{}{}
			housings = append(housings, p.HousingID)
		}
	}
	return owners, housings
}

// ownerDepartment resolves the owner-side department for the per-department
// tally, preferring the postal code.
func ownerDepartment(r *geoadmin.Resolver, a *pair.Address) string {
	if a == nil {
		return ""
	}
	if a.PostalCode != nil {
		if d := r.DepartmentOf(*a.PostalCode); d != "" {
			return d
		}
	}
	if a.GeoCode != nil {
		return r.DepartmentOf(*a.GeoCode)
	}
	return ""
}
