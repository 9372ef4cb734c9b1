package redis

import (
	"context"
	"errors"
	"time"

	"pessoas-backend/application/ports"
	apperrors "pessoas-backend/pkg/errors"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// PersonCache stores serialized person records in Redis keyed by identifier,
// with no expiry: records are immutable and never need invalidation. Every
// call runs through a circuit breaker so a dead Redis degrades to store
// reads instead of a timeout per request.
type PersonCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	prefix  string
	logger  *zap.Logger
}

// NewPersonCache creates a Redis-backed person cache
func NewPersonCache(client *redis.Client, prefix string, logger *zap.Logger) *PersonCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "person-cache",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &PersonCache{
		client:  client,
		breaker: breaker,
		prefix:  prefix,
		logger:  logger,
	}
}

var _ ports.PersonCache = (*PersonCache)(nil)

// Put stores the serialized record with no expiry
func (c *PersonCache) Put(ctx context.Context, id string, data []byte) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.prefix+id, data, 0).Err()
	})
	if err != nil {
		return apperrors.NewCacheError("put person", err)
	}
	return nil
}

// Get returns the cached bytes, or ok=false when the key is absent
func (c *PersonCache) Get(ctx context.Context, id string) ([]byte, bool, error) {
	v, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, c.prefix+id).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is a successful call, not a breaker failure.
			return []byte(nil), nil
		}
		return data, err
	})
	if err != nil {
		return nil, false, apperrors.NewCacheError("get person", err)
	}
	data := v.([]byte)
	if data == nil {
		return nil, false, nil
	}
	return data, true, nil
}
