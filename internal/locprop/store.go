// Package locprop drives the owner-housing relative-location pipeline:
// a foreign-owner discovery pre-pass, then batched classification of every
// unresolved pair with parallel write-back.
package locprop

import (
	"context"

	"github.com/google/uuid"

	"github.com/zlv-data/geolink/internal/pair"
)

// Pair is one owners_housing row as read from the pair source.
type Pair struct {
	OwnerID        uuid.UUID
	HousingID      uuid.UUID
	DistanceMeters *int
	ClassCode      *int
}

// Complete reports whether both outputs are already set.
func (p Pair) Complete() bool {
	return p.DistanceMeters != nil && p.ClassCode != nil
}

// PairUpdate is one computed output row handed to the sink.
type PairUpdate struct {
	OwnerID        uuid.UUID
	HousingID      uuid.UUID
	DistanceMeters *int
	ClassCode      int
}

// SourceOpts filters the pair stream.
type SourceOpts struct {
	// Force selects every pair instead of only unresolved ones.
	Force bool
	// Limit caps the number of pairs; when set, the source samples randomly.
	Limit int
}

// PairSource streams owners_housing rows.
type PairSource interface {
	StreamPairs(ctx context.Context, opts SourceOpts, fn func(Pair) error) error
}

// AddressStore batch-resolves addresses by side. Unknown ids are simply
// absent from the result.
type AddressStore interface {
	LookupOwners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error)
	LookupHousings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error)

	// StreamUngeolocatedOwners yields owner addresses lacking coordinates,
	// for the foreign-discovery pre-pass.
	StreamUngeolocatedOwners(ctx context.Context, fn func(id uuid.UUID, label string) error) error
}

// PairSink persists computed outputs. Each call is one independent
// transaction: it commits fully or leaves every row untouched.
type PairSink interface {
	UpdateBatch(ctx context.Context, updates []PairUpdate) (int64, error)
}
