package candle

import (
	"context"

	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// Storage persists candles. SaveCandle must upsert on (pair, resolution, bucket start).
type Storage interface {
	SaveCandle(ctx context.Context, candle *v1.Candle) error
	SaveCandles(ctx context.Context, candles []*v1.Candle) error
	GetLatestCandle(ctx context.Context, pairID string, r resolution.Resolution) (*v1.Candle, error)
}

// Publisher notifies subscribers about candle changes.
type Publisher interface {
	PublishCandle(ctx context.Context, candle *v1.Candle, sealed bool) error
}

// TradeStore persists raw trades for backfill resume.
type TradeStore interface {
	StoreTrades(ctx context.Context, trades []v1.Trade) error
	GetLatestTrade(ctx context.Context, pairID string) (*v1.Trade, error)
}

// Usecase is the orchestration surface used by the engine, the consumer and the seeder.
type Usecase interface {
	Load(ctx context.Context, pairID string) error
	ProcessTrade(ctx context.Context, trade v1.Trade) (Result, error)
	Backfill(ctx context.Context, pairID string, trades []v1.Trade, batchSize int) (BackfillStats, error)
	Flush(ctx context.Context, pairID string) error
	Current(pairID string, r resolution.Resolution) (*v1.Candle, bool)
}

// Result describes what one trade did to every tracked resolution.
type Result struct {
	Updated []*v1.Candle
	Sealed  []*v1.Candle
}

// BackfillStats summarises a backfill run.
type BackfillStats struct {
	Folded  int
	Skipped int
	Sealed  int
	Flushes int
}
