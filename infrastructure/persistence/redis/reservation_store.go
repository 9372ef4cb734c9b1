package redis

import (
	"context"

	"pessoas-backend/application/ports"
	apperrors "pessoas-backend/pkg/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultReservationKey is the shared set holding every nickname in use.
const DefaultReservationKey = "apelidos"

// ReservationStore claims nicknames through a Redis set. SADD is atomic, so
// two concurrent reservations for the same nickname resolve with exactly one
// winner and no check-then-act window.
type ReservationStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewReservationStore creates a Redis-backed reservation store. key names
// the set of used nicknames; pass DefaultReservationKey unless tests need
// isolation.
func NewReservationStore(client *redis.Client, key string, logger *zap.Logger) *ReservationStore {
	return &ReservationStore{
		client: client,
		key:    key,
		logger: logger,
	}
}

var _ ports.ReservationStore = (*ReservationStore)(nil)

// Reserve attempts to add the nickname to the used set. A backend failure is
// fatal for the request: the service cannot proceed without knowing the
// uniqueness status.
func (s *ReservationStore) Reserve(ctx context.Context, nickname string) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key, nickname).Result()
	if err != nil {
		return false, apperrors.NewReservationUnavailableError(err)
	}
	return added == 1, nil
}

// Release removes the nickname from the used set, freeing it for reuse.
func (s *ReservationStore) Release(ctx context.Context, nickname string) error {
	if err := s.client.SRem(ctx, s.key, nickname).Err(); err != nil {
		return apperrors.NewReservationUnavailableError(err)
	}
	s.logger.Debug("released nickname reservation", zap.String("nickname", nickname))
	return nil
}
