// Package postgres persists the gift catalogue in a PostgreSQL "gifts" table.
//
// Schema management is not handled here; the table is expected to exist:
//
//	id          text primary key default gen_random_uuid()::text
//	name        text not null
//	image_url   text not null default ''
//	status      text not null default 'available'
//	guest_name  text
//	guest_phone text
//	category    text
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/giftlist/internal/store"
)

const columns = `id, name, image_url, status, guest_name, guest_phone, category`

var ErrInvalidInput = errors.New("invalid input")

// Store persists gifts in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// StoreOption configures Store.
type StoreOption func(*Store) error

// WithSchema sets the DB schema used by the store (default: "public").
func WithSchema(schema string) StoreOption {
	return func(s *Store) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return ErrInvalidInput
		}
		s.schema = schema
		return nil
	}
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool, opts ...StoreOption) (*Store, error) {
	st := &Store{pool: pool, schema: "public"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, ErrInvalidInput
	}
	return st, nil
}

// Ping checks that a connection can be acquired.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FetchAll returns every gift ordered by name.
func (s *Store) FetchAll(ctx context.Context) ([]store.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+columns+`
		   FROM `+s.table()+`
		  ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.Record, 0, 64)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertOne inserts a gift and returns it with the database-generated id.
func (s *Store) InsertOne(ctx context.Context, rec store.Record) (store.Record, error) {
	return scanRecord(s.pool.QueryRow(ctx, s.insertSQL(), insertArgs(rec)...))
}

// InsertMany inserts all gifts in one transaction sent as a single batch.
func (s *Store) InsertMany(ctx context.Context, recs []store.Record) ([]store.Record, error) {
	if len(recs) == 0 {
		return []store.Record{}, nil
	}

	batch := &pgx.Batch{}
	q := s.insertSQL()
	for _, rec := range recs {
		batch.Queue(q, insertArgs(rec)...)
	}

	out := make([]store.Record, 0, len(recs))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for range recs {
			rec, err := scanRecord(br.QueryRow())
			if err != nil {
				_ = br.Close()
				return err
			}
			out = append(out, rec)
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByID writes status and guest columns, optionally guarded by the
// current status.
func (s *Store) UpdateByID(ctx context.Context, id string, u store.Update) (store.Record, error) {
	if strings.TrimSpace(id) == "" {
		return store.Record{}, ErrInvalidInput
	}

	q := `UPDATE ` + s.table() + `
	         SET status = $2,
	             guest_name = $3,
	             guest_phone = $4
	       WHERE id = $1`
	args := []any{id, u.Status, u.GuestName, u.GuestPhone}
	if u.ExpectStatus != "" {
		q += ` AND status = $5`
		args = append(args, u.ExpectStatus)
	}
	q += ` RETURNING ` + columns

	rec, err := scanRecord(s.pool.QueryRow(ctx, q, args...))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return store.Record{}, err
	}

	// Distinguish not-found vs precondition failure.
	exists, selErr := s.exists(ctx, id)
	if selErr != nil {
		return store.Record{}, selErr
	}
	if !exists {
		return store.Record{}, store.ErrNotFound
	}
	return store.Record{}, store.ErrPreconditionFailed
}

// DeleteByID removes a gift.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+s.table()+` WHERE id = $1)`, id,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check gift %s: %w", id, err)
	}
	return ok, nil
}

func (s *Store) insertSQL() string {
	return `INSERT INTO ` + s.table() + ` (name, image_url, status, guest_name, guest_phone, category)
	        VALUES ($1, $2, $3, $4, $5, $6)
	        RETURNING ` + columns
}

func (s *Store) table() string {
	return pgx.Identifier{s.schema, store.Table}.Sanitize()
}

func insertArgs(rec store.Record) []any {
	return []any{rec.Name, rec.ImageURL, rec.Status, rec.GuestName, rec.GuestPhone, rec.Category}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (store.Record, error) {
	var rec store.Record
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.ImageURL,
		&rec.Status,
		&rec.GuestName,
		&rec.GuestPhone,
		&rec.Category,
	)
	return rec, err
}
