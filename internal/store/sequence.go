package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event types. Each event type lives in its own table, so per-table
// auto-increment IDs can't establish cross-type ordering (did the answer
// come before the session ended?). A single-row counter assigns one
// increasing sequence to every event regardless of type.
//
// The mutex serializes within the process; UPDATE ... RETURNING makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	s  *Store
}

// newSequenceCounter seeds the counter row if it is missing.
func newSequenceCounter(ctx context.Context, s *Store) (*sequenceCounter, error) {
	seed := s.sql().Insert(GlobalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if err := exec(ctx, s.db, seed); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{s: s}, nil
}

// Next atomically returns the next sequence number and increments the
// counter. q may be a transaction so the event and its number commit together.
func (sc *sequenceCounter) Next(ctx context.Context, q querier) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	upd := sc.s.sql().Update(GlobalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Returning("next_val")

	var next int64
	if err := queryRow(ctx, q, upd).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
