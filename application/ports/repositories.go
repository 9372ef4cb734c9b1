package ports

import (
	"context"

	"pessoas-backend/domain/core/entities"
	"pessoas-backend/domain/core/valueobjects"
)

// PersonRepository defines the interface for the durable person store.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type PersonRepository interface {
	// Insert persists a new person record. Returns a conflict-coded store
	// error if the backstop uniqueness constraint rejects the row.
	Insert(ctx context.Context, person *entities.Person) error

	// GetByID retrieves a person by identifier. Returns a not-found error
	// when no record exists.
	GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error)

	// Search returns up to 50 persons whose search text contains the
	// lowercased term, in store-defined order.
	Search(ctx context.Context, term string) ([]*entities.Person, error)

	// Count returns the total number of person records.
	Count(ctx context.Context) (int64, error)
}

// ReservationStore atomically claims nicknames. It is the sole gate against
// duplicate nicknames: two concurrent reservations for the same nickname
// must resolve so that exactly one succeeds.
type ReservationStore interface {
	// Reserve attempts to claim the nickname. True means the nickname was
	// newly added; false means it was already in use. An error means the
	// backend was unreachable and uniqueness could not be determined.
	Reserve(ctx context.Context, nickname string) (bool, error)

	// Release frees a previously claimed nickname. Used by the optional
	// compensation path when the durable write fails after a reservation.
	Release(ctx context.Context, nickname string) error
}

// PersonCache holds serialized person records keyed by identifier. All
// implementations are best-effort: callers must treat every failure as a
// miss and fall back to the durable store.
type PersonCache interface {
	// Put stores the serialized record with no expiry.
	Put(ctx context.Context, id string, data []byte) error

	// Get returns the cached bytes, or ok=false on a miss.
	Get(ctx context.Context, id string) (data []byte, ok bool, err error)
}
