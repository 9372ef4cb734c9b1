package di

import (
	"pessoas-backend/application/services"
	"pessoas-backend/infrastructure/config"
	"pessoas-backend/pkg/observability"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Pool          *pgxpool.Pool
	Redis         *goredis.Client
	PersonService *services.PersonService
	Collector     *observability.Collector
}

// Close releases the container's backend connections
func (c *Container) Close() error {
	c.Pool.Close()
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
