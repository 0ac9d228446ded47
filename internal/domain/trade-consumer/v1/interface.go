package v1

import (
	"context"

	candlev1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	// FetchMessage returns the next message without committing it.
	FetchMessage(ctx context.Context) (kafka.Message, error)
	// CommitMessages commits the messages once their trades are queued.
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TradeSink accepts decoded trades.
type TradeSink interface {
	Submit(ctx context.Context, trade candlev1.Trade) error
}

// TradeConsumer is the consumer for the trade topic.
type TradeConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
