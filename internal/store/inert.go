package store

import "context"

// Inert answers every call with ErrUnconfigured.
// It stands in when the store settings are missing so the service can
// still start and render in a non-functional state.
type Inert struct {
	Reason error
}

func (s Inert) err() error {
	if s.Reason != nil {
		return &unconfiguredError{reason: s.Reason}
	}
	return ErrUnconfigured
}

func (s Inert) FetchAll(context.Context) ([]Record, error) {
	return nil, s.err()
}

func (s Inert) InsertOne(context.Context, Record) (Record, error) {
	return Record{}, s.err()
}

func (s Inert) InsertMany(context.Context, []Record) ([]Record, error) {
	return nil, s.err()
}

func (s Inert) UpdateByID(context.Context, string, Update) (Record, error) {
	return Record{}, s.err()
}

func (s Inert) DeleteByID(context.Context, string) error {
	return s.err()
}

func (s Inert) Ping(context.Context) error {
	return s.err()
}

type unconfiguredError struct {
	reason error
}

func (e *unconfiguredError) Error() string {
	return ErrUnconfigured.Error() + ": " + e.reason.Error()
}

func (e *unconfiguredError) Is(target error) bool { return target == ErrUnconfigured }

func (e *unconfiguredError) Unwrap() error { return e.reason }
