package bootstrap

import (
	candleUc "github.com/muhammadchandra19/ohlcv-engine/internal/usecase/candle"
	"github.com/muhammadchandra19/ohlcv-engine/internal/usecase/seed"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/shopspring/decimal"
)

// Usecase holds the usecases.
type Usecase struct {
	CandleUsecase *candleUc.Usecase
	Seeder        *seed.Seeder
}

// registerUsecase registers the usecase.
func (b *Bootstrap) registerUsecase() error {
	resolutions, err := b.Config.Aggregator.Resolutions()
	if err != nil {
		return err
	}

	opts := []candleUc.Option{candleUc.WithRetry(RetryConfig(b.Config.Aggregator))}
	if b.Repository.CandlePublisher != nil {
		opts = append(opts, candleUc.WithPublisher(b.Repository.CandlePublisher))
	}

	b.Usecase.CandleUsecase, err = candleUc.NewUsecase(b.Repository.CandleRepository, b.Logger, resolutions, opts...)
	if err != nil {
		return err
	}

	b.Usecase.Seeder = seed.NewSeeder(
		b.Repository.TradeRepository,
		b.Usecase.CandleUsecase,
		b.Logger,
		SeedOptions(b.Config.Seed, b.Config.Aggregator),
	)
	return nil
}

// RetryConfig maps the aggregator save retry settings.
func RetryConfig(cfg config.AggregatorConfig) candleUc.RetryConfig {
	return candleUc.RetryConfig{
		MaxRetries:      cfg.SaveMaxRetries,
		InitialInterval: cfg.SaveInitialBackoff,
		MaxInterval:     cfg.SaveMaxBackoff,
	}
}

// SeedOptions maps the seed settings. Backfill saves candles at the
// aggregator flush cadence.
func SeedOptions(cfg config.SeedConfig, aggregator config.AggregatorConfig) seed.Options {
	return seed.Options{
		BatchSize:      cfg.BatchSize,
		FlushBatchSize: aggregator.FlushBatchSize,
		Lookback:       cfg.Lookback,
		Generator:      GeneratorOptions(cfg),
	}
}

// GeneratorOptions maps the random walk settings.
func GeneratorOptions(cfg config.SeedConfig) seed.GeneratorOptions {
	return seed.GeneratorOptions{
		StartPrice:       decimal.NewFromFloat(cfg.StartPrice),
		MaxChangePercent: cfg.MaxChangePercent,
		Step:             cfg.Step,
		Seed:             cfg.RandomSeed,
	}
}
