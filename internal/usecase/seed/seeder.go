package seed

import (
	"context"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/util"
)

// Options configures a Seeder.
type Options struct {
	// BatchSize is the number of trades generated, folded and stored at once.
	BatchSize int
	// FlushBatchSize is how many folded trades pass between two candle saves
	// inside a batch. Zero saves only sealed candles per batch and the open
	// ones once at the end of the run.
	FlushBatchSize int
	// Lookback is how far back an empty pair starts.
	Lookback  time.Duration
	Generator GeneratorOptions
}

// DefaultOptions seeds 1080 days of history in batches of 1000.
func DefaultOptions() Options {
	return Options{
		BatchSize:      1000,
		FlushBatchSize: 1000,
		Lookback:       1080 * 24 * time.Hour,
		Generator:      DefaultGeneratorOptions(),
	}
}

// Stats summarises a seeding run.
type Stats struct {
	Trades  int
	Batches int
	Sealed  int
	From    int64
	Until   int64
}

// Seeder writes synthetic trades and their candles for a pair.
type Seeder struct {
	trades  candle.TradeStore
	usecase candle.Usecase
	logger  logger.Interface
	options Options
	now     func() time.Time
}

// NewSeeder creates a new Seeder.
func NewSeeder(trades candle.TradeStore, usecase candle.Usecase, log logger.Interface, options Options) *Seeder {
	if options.BatchSize <= 0 {
		options.BatchSize = DefaultOptions().BatchSize
	}
	if options.FlushBatchSize < 0 {
		options.FlushBatchSize = 0
	}
	if options.Lookback <= 0 {
		options.Lookback = DefaultOptions().Lookback
	}
	return &Seeder{
		trades:  trades,
		usecase: usecase,
		logger:  log,
		options: options,
		now:     time.Now,
	}
}

// Run generates trades for pairID from where the stored history ends up to until.
// A batch of trades is stored only once its candles are saved, so a run that
// fails is resumed from the first batch it could not fold.
func (s *Seeder) Run(ctx context.Context, pairID string, until time.Time) (Stats, error) {
	ctx = util.WithPairID(ctx, pairID)

	generator, err := s.generator(ctx, pairID)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{From: generator.NextTimestamp(), Until: until.UnixMilli()}

	if err := s.usecase.Load(ctx, pairID); err != nil {
		return stats, errors.TracerFromError(err)
	}

	s.logger.InfoContext(ctx, "seeding trades",
		logger.NewField("action", "seed"),
		logger.NewField("pair", pairID),
		logger.NewField("from", util.MillisToTime(stats.From)),
		logger.NewField("until", until.UTC()),
	)

	for {
		if err := ctx.Err(); err != nil {
			return stats, errors.TracerFromError(err)
		}

		batch := generator.Batch(stats.Until, s.options.BatchSize)
		if len(batch) == 0 {
			break
		}

		folded, err := s.usecase.Backfill(ctx, pairID, batch, s.options.FlushBatchSize)
		if err != nil {
			return stats, err
		}

		if err := s.trades.StoreTrades(ctx, batch); err != nil {
			return stats, errors.TracerFromError(err)
		}

		stats.Trades += len(batch)
		stats.Batches++
		stats.Sealed += folded.Sealed

		s.logger.DebugContext(ctx, "seed batch stored",
			logger.NewField("action", "seed"),
			logger.NewField("pair", pairID),
			logger.NewField("batch", stats.Batches),
			logger.NewField("lastTimestamp", batch[len(batch)-1].Timestamp),
		)
	}

	if s.options.FlushBatchSize == 0 && stats.Batches > 0 {
		if err := s.usecase.Flush(ctx, pairID); err != nil {
			return stats, err
		}
	}

	s.logger.InfoContext(ctx, "seeding finished",
		logger.NewField("action", "seed"),
		logger.NewField("pair", pairID),
		logger.NewField("trades", stats.Trades),
		logger.NewField("batches", stats.Batches),
		logger.NewField("sealed", stats.Sealed),
	)
	return stats, nil
}

func (s *Seeder) generator(ctx context.Context, pairID string) (*Generator, error) {
	latest, err := s.trades.GetLatestTrade(ctx, pairID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	options := s.options.Generator
	if latest == nil {
		from := s.now().Add(-s.options.Lookback).UnixMilli()
		return NewGenerator(pairID, from, options), nil
	}

	step := options.Step
	if step <= 0 {
		step = DefaultGeneratorOptions().Step
	}
	generator := NewGenerator(pairID, latest.Timestamp+step.Milliseconds(), options)
	generator.Resume(latest.Price)
	return generator, nil
}
