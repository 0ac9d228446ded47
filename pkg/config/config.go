// Package config loads the process configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/redis"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	QuestDB    questdb.Config   `envPrefix:"QUESTDB_"`
	Redis      redis.Config     `envPrefix:"REDIS_"`
	TradeKafka TradeKafkaConfig `envPrefix:"TRADE_KAFKA_"`
	Aggregator AggregatorConfig `envPrefix:"AGGREGATOR_"`
	Seed       SeedConfig       `envPrefix:"SEED_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name            string        `env:"NAME" envDefault:"ohlcv-engine"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HealthPort      int           `env:"HEALTH_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// TradeKafkaConfig is the trade topic the live aggregator consumes and the
// producer writes to.
type TradeKafkaConfig struct {
	Brokers       []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic         string        `env:"TOPIC" envDefault:"trades"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"ohlcv-engine"`
	MinBytes      int           `env:"MIN_BYTES" envDefault:"1"`
	MaxBytes      int           `env:"MAX_BYTES" envDefault:"10000000"`
	MaxWait       time.Duration `env:"MAX_WAIT" envDefault:"500ms"`
	StartOffset   string        `env:"START_OFFSET" envDefault:"first"`
}

// AggregatorConfig tunes candle aggregation.
type AggregatorConfig struct {
	resolution.Config

	FlushBatchSize     int           `env:"FLUSH_BATCH_SIZE" envDefault:"1000"`
	WorkerQueueSize    int           `env:"WORKER_QUEUE_SIZE" envDefault:"1024"`
	FlushInterval      time.Duration `env:"FLUSH_INTERVAL" envDefault:"1m"`
	SaveMaxRetries     uint64        `env:"SAVE_MAX_RETRIES" envDefault:"5"`
	SaveInitialBackoff time.Duration `env:"SAVE_INITIAL_BACKOFF" envDefault:"100ms"`
	SaveMaxBackoff     time.Duration `env:"SAVE_MAX_BACKOFF" envDefault:"5s"`
}

// SeedConfig drives the synthetic trade generator.
type SeedConfig struct {
	Pairs            []string      `env:"PAIRS" envSeparator:"," envDefault:"BTC-USDT"`
	StartPrice       float64       `env:"START_PRICE" envDefault:"15"`
	MaxChangePercent float64       `env:"MAX_CHANGE_PERCENT" envDefault:"1"`
	Step             time.Duration `env:"STEP" envDefault:"3s"`
	Lookback         time.Duration `env:"LOOKBACK" envDefault:"25920h"`
	BatchSize        int           `env:"BATCH_SIZE" envDefault:"1000"`
	RandomSeed       int64         `env:"RANDOM_SEED" envDefault:"0"`
}

// Load loads the configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.NewTracer("failed to parse config").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := c.Aggregator.Resolutions(); err != nil {
		return err
	}
	if c.Aggregator.FlushBatchSize < 0 {
		return errors.New(errors.ConfigError, "flush batch size must not be negative", "AGGREGATOR_FLUSH_BATCH_SIZE")
	}
	if c.Seed.Step <= 0 {
		return errors.New(errors.ConfigError, "seed step must be positive", "SEED_STEP")
	}
	if c.Seed.StartPrice < 1 {
		return errors.New(errors.ConfigError, "seed start price must be at least 1", "SEED_START_PRICE")
	}
	if c.Seed.MaxChangePercent <= 0 || c.Seed.MaxChangePercent >= 100 {
		return errors.New(errors.ConfigError, "seed max change percent must be in (0, 100)", "SEED_MAX_CHANGE_PERCENT")
	}
	return nil
}
