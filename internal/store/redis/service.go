package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/giftlist/internal/store"
)

// maxTxRetries bounds optimistic-lock retries on a contended gift key.
const maxTxRetries = 5

// Store handles Redis operations for the gift catalogue
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// FetchAll retrieves all gifts from Redis ordered by name
func (s *Store) FetchAll(ctx context.Context) ([]store.Record, error) {
	ids, err := s.client.SMembers(ctx, AllGiftsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get gift IDs: %w", err)
	}

	if len(ids) == 0 {
		return []store.Record{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, GiftKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get gifts: %w", err)
	}

	records := make([]store.Record, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// Set member without a record: skip it
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get gift: %w", err)
		}

		var rec store.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal gift: %w", err)
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}

// InsertOne stores a new gift under a generated UUID
func (s *Store) InsertOne(ctx context.Context, rec store.Record) (store.Record, error) {
	out, err := s.InsertMany(ctx, []store.Record{rec})
	if err != nil {
		return store.Record{}, err
	}
	return out[0], nil
}

// InsertMany stores multiple gifts in a single MULTI/EXEC round trip
func (s *Store) InsertMany(ctx context.Context, recs []store.Record) ([]store.Record, error) {
	out := make([]store.Record, 0, len(recs))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range recs {
			rec.ID = uuid.NewString()

			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal gift %q: %w", rec.Name, err)
			}

			pipe.Set(ctx, GiftKey(rec.ID), data, 0)
			pipe.SAdd(ctx, AllGiftsKey(), rec.ID)
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save gifts: %w", err)
	}

	return out, nil
}

// UpdateByID applies a partial update under WATCH so a status
// precondition is checked and written atomically
func (s *Store) UpdateByID(ctx context.Context, id string, u store.Update) (store.Record, error) {
	key := GiftKey(id)
	var updated store.Record

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return store.ErrNotFound
			}
			return err
		}

		var rec store.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal gift: %w", err)
		}
		if u.ExpectStatus != "" && rec.Status != u.ExpectStatus {
			return store.ErrPreconditionFailed
		}

		rec = u.Apply(rec)
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal gift: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err == nil {
			updated = rec
		}
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Key changed between WATCH and EXEC: re-read and retry
			continue
		}
		return store.Record{}, fmt.Errorf("failed to update gift %s: %w", id, err)
	}

	return store.Record{}, fmt.Errorf("failed to update gift %s after %d attempts: %w", id, maxTxRetries, redis.TxFailedErr)
}

// DeleteByID removes a gift from Redis
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	var del *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, GiftKey(id))
		pipe.SRem(ctx, AllGiftsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete gift: %w", err)
	}

	if del.Val() == 0 {
		return fmt.Errorf("failed to delete gift %s: %w", id, store.ErrNotFound)
	}
	return nil
}
