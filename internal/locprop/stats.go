package locprop

import (
	"sync"

	"go.uber.org/zap"

	"github.com/zlv-data/geolink/internal/pair"
)

// Stats tallies pipeline counters. Safe for concurrent use: the classifier
// loop and the write fan-out workers update it from different goroutines.
type Stats struct {
	mu sync.Mutex

	Processed         int
	Skipped           int
	SkippedBatches    int
	DistancesComputed int
	GeoRules          int
	ForeignDetected   int
	MissingOwner      int
	MissingHousing    int
	MissingBoth       int
	Errors            int

	RowsWritten int64
	RowsFailed  int64

	PerClass      [8]int // index 1..7
	PerDepartment map[string]int
}

// NewStats creates an empty tally.
func NewStats() *Stats {
	return &Stats{PerDepartment: make(map[string]int)}
}

// Record tallies one classification result. dept is the owner department,
// "" when unresolved.
func (s *Stats) Record(res pair.Result, dept string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Processed++
	if res.Class >= 1 && res.Class <= 7 {
		s.PerClass[res.Class]++
	}
	if res.DistanceMeters != nil {
		s.DistancesComputed++
	}
	if res.GeoRuleApplied {
		s.GeoRules++
	}
	if res.OwnerForeign || res.HousingForeign {
		s.ForeignDetected++
	}
	switch {
	case res.MissingOwner && res.MissingHousing:
		s.MissingBoth++
	case res.MissingOwner:
		s.MissingOwner++
	case res.MissingHousing:
		s.MissingHousing++
	}
	if dept != "" {
		s.PerDepartment[dept]++
	}
}

// RecordSkip tallies a pair left untouched because both outputs were set.
func (s *Stats) RecordSkip() {
	s.mu.Lock()
	s.Skipped++
	s.mu.Unlock()
}

// RecordSkippedBatch tallies a whole batch bypassed by the resume shortcut.
func (s *Stats) RecordSkippedBatch() {
	s.mu.Lock()
	s.SkippedBatches++
	s.mu.Unlock()
}

// RecordError tallies a per-pair classification failure.
func (s *Stats) RecordError() {
	s.mu.Lock()
	s.Errors++
	s.mu.Unlock()
}

// AddWritten tallies rows committed by a fan-out worker.
func (s *Stats) AddWritten(n int64) {
	s.mu.Lock()
	s.RowsWritten += n
	s.mu.Unlock()
}

// AddFailed tallies rows whose update batch exhausted its retries.
func (s *Stats) AddFailed(n int64) {
	s.mu.Lock()
	s.RowsFailed += n
	s.mu.Unlock()
}

// Snapshot returns a copy safe to read without holding the lock.
func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Stats{
		Processed:         s.Processed,
		Skipped:           s.Skipped,
		SkippedBatches:    s.SkippedBatches,
		DistancesComputed: s.DistancesComputed,
		GeoRules:          s.GeoRules,
		ForeignDetected:   s.ForeignDetected,
		MissingOwner:      s.MissingOwner,
		MissingHousing:    s.MissingHousing,
		MissingBoth:       s.MissingBoth,
		Errors:            s.Errors,
		RowsWritten:       s.RowsWritten,
		RowsFailed:        s.RowsFailed,
		PerClass:          s.PerClass,
		PerDepartment:     make(map[string]int, len(s.PerDepartment)),
	}
	for k, v := range s.PerDepartment {
		out.PerDepartment[k] = v
	}
	return out
}

// LogSummary emits the end-of-run summary on the global logger.
func (s *Stats) LogSummary() {
	snap := s.Snapshot()
	zap.L().Info("locprop run summary",
		zap.Int("processed", snap.Processed),
		zap.Int("skipped", snap.Skipped),
		zap.Int("skipped_batches", snap.SkippedBatches),
		zap.Int("distances_computed", snap.DistancesComputed),
		zap.Int("geo_rules", snap.GeoRules),
		zap.Int("foreign_detected", snap.ForeignDetected),
		zap.Int("missing_owner", snap.MissingOwner),
		zap.Int("missing_housing", snap.MissingHousing),
		zap.Int("missing_both", snap.MissingBoth),
		zap.Int("errors", snap.Errors),
		zap.Int64("rows_written", snap.RowsWritten),
		zap.Int64("rows_failed", snap.RowsFailed),
		zap.Ints("per_class", snap.PerClass[1:]),
	)
}
