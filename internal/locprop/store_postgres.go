package locprop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/zlv-data/geolink/internal/db"
	"github.com/zlv-data/geolink/internal/pair"
)

// PostgresStore implements PairSource, AddressStore and PairSink on one
// Postgres instance.
type PostgresStore struct {
	pool             db.Pool
	statementTimeout time.Duration
}

// StoreOption configures a PostgresStore.
type StoreOption func(*PostgresStore)

// WithStatementTimeout overrides the per-transaction statement timeout used
// by the sink.
func WithStatementTimeout(d time.Duration) StoreOption {
	return func(s *PostgresStore) {
		s.statementTimeout = d
	}
}

// NewPostgresStore creates a store over the given pool.
func NewPostgresStore(pool db.Pool, opts ...StoreOption) *PostgresStore {
	s := &PostgresStore{
		pool:             pool,
		statementTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StreamPairs implements PairSource. Rows stream through fn one at a time;
// the whole result set is never held in memory.
func (s *PostgresStore) StreamPairs(ctx context.Context, opts SourceOpts, fn func(Pair) error) error {
	sql := `
		SELECT owner_id, housing_id, distance_meters, class_code
		FROM owners_housing`
	if !opts.Force {
		sql += `
		WHERE distance_meters IS NULL OR class_code IS NULL`
	}

	var args []any
	if opts.Limit > 0 {
		sql += `
		ORDER BY random() LIMIT $1`
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return eris.Wrap(err, "locprop: stream pairs query")
	}
	defer rows.Close()

	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.OwnerID, &p.HousingID, &p.DistanceMeters, &p.ClassCode); err != nil {
			return eris.Wrap(err, "locprop: scan pair row")
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return eris.Wrap(rows.Err(), "locprop: iterate pair rows")
}

// LookupOwners implements AddressStore.
func (s *PostgresStore) LookupOwners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error) {
	return s.lookup(ctx, pair.KindOwner, ids)
}

// LookupHousings implements AddressStore.
func (s *PostgresStore) LookupHousings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error) {
	return s.lookup(ctx, pair.KindHousing, ids)
}

func (s *PostgresStore) lookup(ctx context.Context, kind pair.AddressKind, ids []uuid.UUID) (map[uuid.UUID]*pair.Address, error) {
	out := make(map[uuid.UUID]*pair.Address, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	textIDs := make([]string, len(ids))
	for i, id := range ids {
		textIDs[i] = id.String()
	}

	sql := `
		SELECT ref_id, postal_code, address, latitude, longitude, geo_code
		FROM ban_addresses
		WHERE address_kind = $1 AND ref_id = ANY($2::uuid[])`

	rows, err := s.pool.Query(ctx, sql, string(kind), textIDs)
	if err != nil {
		return nil, eris.Wrapf(err, "locprop: lookup %s addresses", kind)
	}
	defer rows.Close()

	for rows.Next() {
		a := &pair.Address{Kind: kind}
		if err := rows.Scan(&a.RefID, &a.PostalCode, &a.Label, &a.Latitude, &a.Longitude, &a.GeoCode); err != nil {
			return nil, eris.Wrapf(err, "locprop: scan %s address", kind)
		}
		out[a.RefID] = a
	}
	return out, eris.Wrapf(rows.Err(), "locprop: iterate %s addresses", kind)
}

// StreamUngeolocatedOwners implements AddressStore.
func (s *PostgresStore) StreamUngeolocatedOwners(ctx context.Context, fn func(id uuid.UUID, label string) error) error {
	sql := `
		SELECT ref_id, COALESCE(address, '')
		FROM ban_addresses
		WHERE address_kind = 'Owner' AND (latitude IS NULL OR longitude IS NULL)`

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return eris.Wrap(err, "locprop: stream ungeolocated owners")
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return eris.Wrap(err, "locprop: scan ungeolocated owner")
		}
		if err := fn(id, label); err != nil {
			return err
		}
	}
	return eris.Wrap(rows.Err(), "locprop: iterate ungeolocated owners")
}

// UpdateBatch implements PairSink. One call is one transaction with
// asynchronous commit: a crash mid-batch leaves every row untouched, a
// commit lands the whole batch.
func (s *PostgresStore) UpdateBatch(ctx context.Context, updates []PairUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "locprop: begin update batch")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Throughput over durability window: the run is resumable, so losing the
	// last async commits on a server crash only means recomputing them.
	if _, err := tx.Exec(ctx, "SET LOCAL synchronous_commit = 'off'"); err != nil {
		return 0, eris.Wrap(err, "locprop: set synchronous_commit")
	}
	timeout := fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", s.statementTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, timeout); err != nil {
		return 0, eris.Wrap(err, "locprop: set statement_timeout")
	}

	rows := make([][]any, len(updates))
	for i, u := range updates {
		rows[i] = []any{u.OwnerID.String(), u.HousingID.String(), u.DistanceMeters, u.ClassCode}
	}

	n, err := db.BulkUpdate(ctx, tx, db.UpdateConfig{
		Table:   "owners_housing",
		KeyCols: []string{"owner_id", "housing_id"},
		SetCols: []string{"distance_meters", "class_code"},
		Types:   []string{"uuid", "uuid", "int4", "int4"},
	}, rows)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "locprop: commit update batch")
	}
	return n, nil
}
