package repository

import (
	"context"
	"errors"

	"islamic-app-api/internal/model"
)

// ErrDuplicateNumber is returned when a create or update would violate
// the unique constraint on the surah number.
var ErrDuplicateNumber = errors.New("surah number already exists")

// SurahRepository defines surah data access methods.
// Lookups return (nil, nil) when no record matches; callers decide
// whether absence is an error.
type SurahRepository interface {
	// Create persists a new surah, assigning its ID and timestamps.
	Create(ctx context.Context, surah *model.Surah) (*model.Surah, error)

	// FindAll returns every surah, in insertion order.
	FindAll(ctx context.Context) ([]model.Surah, error)

	// FindByID looks up a surah by its internal ID.
	FindByID(ctx context.Context, id string) (*model.Surah, error)

	// FindByNumber looks up a surah by its chapter number.
	FindByNumber(ctx context.Context, number int) (*model.Surah, error)

	// UpdatePartial applies the provided fields to an existing surah
	// and returns the updated record, or (nil, nil) if the ID is unknown.
	UpdatePartial(ctx context.Context, id string, update *model.SurahUpdate) (*model.Surah, error)

	// DeleteByID removes a surah. Returns false if no record was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// SearchByName matches the query case-insensitively as a substring
	// of the Arabic, Urdu, or English name.
	SearchByName(ctx context.Context, query string) ([]model.Surah, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}
