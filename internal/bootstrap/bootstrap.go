// Package bootstrap wires configuration, clients, repositories and usecases
// shared by the cmd programs.
package bootstrap

import (
	"context"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/redis"
)

// Bootstrap holds the process wide dependencies.
type Bootstrap struct {
	Config     *config.Config
	Logger     logger.Interface
	Repository Repository
	Usecase    Usecase

	QuestDB *questdb.Pool
	// Redis is nil unless WithRedis was requested.
	Redis redis.Client
}

// BootstrapConfig selects the optional dependencies to connect.
type BootstrapConfig struct {
	WithRedis bool
}

// NewLogger builds the process logger from the app configuration.
func NewLogger(cfg config.AppConfig) (*logger.Logger, error) {
	opts := []logger.Options{logger.WithLoggingLevel(logger.Level(cfg.LogLevel))}
	if cfg.Environment == "development" {
		opts = append(opts, logger.WithDevelopment())
	}
	return logger.NewLogger(opts...)
}

// Init connects the clients and registers repositories and usecases.
func Init(ctx context.Context, cfg *config.Config, log logger.Interface, bootstrapConfig BootstrapConfig) (*Bootstrap, error) {
	b := &Bootstrap{
		Config: cfg,
		Logger: log,
	}

	pool, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		log.ErrorContext(ctx, err, logger.NewField("action", "init_questdb"))
		return nil, err
	}
	b.QuestDB = pool
	log.InfoContext(ctx, "questdb connected", logger.NewField("target", pool.Config().String()))

	if bootstrapConfig.WithRedis {
		rclient := redis.NewClient(log, &cfg.Redis)
		if err := rclient.Connect(ctx); err != nil {
			log.ErrorContext(ctx, err, logger.NewField("action", "connect_redis"))
			b.Close(ctx)
			return nil, err
		}
		b.Redis = rclient
	}

	b.registerRepository()
	if err := b.registerUsecase(); err != nil {
		b.Close(ctx)
		return nil, err
	}

	return b, nil
}

// Close releases the clients.
func (b *Bootstrap) Close(ctx context.Context) {
	if b.Redis != nil {
		if err := b.Redis.Disconnect(ctx); err != nil {
			b.Logger.ErrorContext(ctx, err, logger.NewField("action", "close_redis_client"))
		}
	}
	if b.QuestDB != nil {
		b.QuestDB.Close()
	}
}
