package di

import (
	"context"

	"pessoas-backend/application/ports"
	"pessoas-backend/application/services"
	"pessoas-backend/infrastructure/config"
	"pessoas-backend/infrastructure/persistence/memory"
	"pessoas-backend/infrastructure/persistence/postgres"
	redisadapter "pessoas-backend/infrastructure/persistence/redis"
	"pessoas-backend/pkg/observability"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cacheKeyPrefix namespaces cached person records in Redis.
const cacheKeyPrefix = "pessoa:"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvidePgxPool creates the Postgres connection pool
func ProvidePgxPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// ProvideRedisClient creates a Redis client, or nil when no address is
// configured and the service runs in single-process mode.
func ProvideRedisClient(cfg *config.Config) *goredis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
	})
}

// ProvidePersonRepository creates the durable person store
func ProvidePersonRepository(pool *pgxpool.Pool, logger *zap.Logger) ports.PersonRepository {
	return postgres.NewPersonRepository(pool, logger)
}

// ProvideReservationStore creates the nickname reservation store, falling
// back to the in-process set when Redis is not configured.
func ProvideReservationStore(client *goredis.Client, logger *zap.Logger) ports.ReservationStore {
	if client == nil {
		logger.Warn("no Redis configured, using in-process nickname reservations")
		return memory.NewReservationSet()
	}
	return redisadapter.NewReservationStore(client, redisadapter.DefaultReservationKey, logger)
}

// ProvidePersonCache creates the read-through person cache. Returns nil when
// the cache is disabled or no Redis is configured; the service degrades to
// store-only reads.
func ProvidePersonCache(client *goredis.Client, cfg *config.Config, logger *zap.Logger) ports.PersonCache {
	if client == nil || !cfg.CacheEnabled {
		return nil
	}
	return redisadapter.NewPersonCache(client, cacheKeyPrefix, logger)
}

// ProvideCollector creates the metrics collector, or nil when metrics are
// disabled.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("pessoas")
}

// ProvidePersonService creates the person service
func ProvidePersonService(
	repo ports.PersonRepository,
	reservations ports.ReservationStore,
	cache ports.PersonCache,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *services.PersonService {
	return services.NewPersonService(repo, reservations, cache, logger, services.Options{
		ReleaseOnFailure: cfg.ReleaseOnPersistFailure,
		BackendTimeout:   cfg.BackendTimeout,
		Metrics:          collector,
	})
}
