// Package store defines the catalogue store boundary.
//
// Every backend speaks the store's own row shape (Record, snake_case columns,
// status "available"|"selected"). Translation to domain.Gift happens in
// mapper.go on every read and write.
package store

import (
	"context"
	"errors"
)

// Wire status values as persisted in the gifts table.
const (
	StatusAvailable = "available"
	StatusSelected  = "selected"
)

// Table is the name of the catalogue table/keyspace.
const Table = "gifts"

var (
	ErrNotFound           = errors.New("record not found")
	ErrPreconditionFailed = errors.New("record status precondition failed")
	ErrUnconfigured       = errors.New("catalogue store not configured")
)

// Record is one row of the gifts table.
type Record struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"image_url"`
	Status     string  `json:"status"`
	GuestName  *string `json:"guest_name"`
	GuestPhone *string `json:"guest_phone"`
	Category   *string `json:"category"`
}

// Update is the partial field set written by UpdateByID.
// A nil guest field clears the column.
type Update struct {
	Status     string
	GuestName  *string
	GuestPhone *string

	// ExpectStatus, when set, makes the update conditional on the
	// record's current status.
	ExpectStatus string
}

// Apply returns rec with u written over it.
func (u Update) Apply(rec Record) Record {
	rec.Status = u.Status
	rec.GuestName = u.GuestName
	rec.GuestPhone = u.GuestPhone
	return rec
}

// Repository is the persistence boundary for the catalogue.
type Repository interface {
	// FetchAll returns every record ordered by name.
	FetchAll(ctx context.Context) ([]Record, error)
	// InsertOne stores rec and returns it with its store-assigned ID.
	InsertOne(ctx context.Context, rec Record) (Record, error)
	// InsertMany stores all records in one batch request.
	InsertMany(ctx context.Context, recs []Record) ([]Record, error)
	// UpdateByID writes u to the record identified by id.
	UpdateByID(ctx context.Context, id string, u Update) (Record, error)
	// DeleteByID removes the record identified by id.
	DeleteByID(ctx context.Context, id string) error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
