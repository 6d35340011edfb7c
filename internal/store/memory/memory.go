// Package memory is a process-local catalogue store used for development
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/giftlist/internal/store"
)

// Store keeps records in a map guarded by a mutex.
type Store struct {
	mu      sync.Mutex
	records map[string]store.Record
}

// NewStore creates an empty memory store, optionally seeded.
func NewStore(seed ...store.Record) *Store {
	s := &Store{records: make(map[string]store.Record, len(seed))}
	for _, rec := range seed {
		if rec.ID == "" {
			rec.ID = ulid.Make().String()
		}
		s.records[rec.ID] = rec
	}
	return s
}

// FetchAll returns all records ordered by name.
func (s *Store) FetchAll(ctx context.Context) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// InsertOne stores rec under a new ULID.
func (s *Store) InsertOne(ctx context.Context, rec store.Record) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = ulid.Make().String()
	s.records[rec.ID] = rec
	return rec, nil
}

// InsertMany stores all records atomically.
func (s *Store) InsertMany(ctx context.Context, recs []store.Record) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.Record, 0, len(recs))
	for _, rec := range recs {
		rec.ID = ulid.Make().String()
		s.records[rec.ID] = rec
		out = append(out, rec)
	}
	return out, nil
}

// UpdateByID applies u, honoring its status precondition.
func (s *Store) UpdateByID(ctx context.Context, id string, u store.Update) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	if u.ExpectStatus != "" && rec.Status != u.ExpectStatus {
		return store.Record{}, store.ErrPreconditionFailed
	}

	rec = u.Apply(rec)
	s.records[id] = rec
	return rec, nil
}

// DeleteByID removes a record.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
