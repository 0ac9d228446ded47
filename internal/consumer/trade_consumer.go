// Package consumer feeds trades from Kafka into the candle engine.
package consumer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	candlev1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/trade-consumer/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/util"
	"github.com/segmentio/kafka-go"
)

// NewKafkaReader creates a consumer-group reader for the trade topic.
func NewKafkaReader(cfg config.TradeKafkaConfig) *kafka.Reader {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == "last" {
		startOffset = kafka.LastOffset
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
}

// TradeConsumer reads trades and submits them to a sink. A message is
// committed once its trade is queued; malformed messages are committed and
// skipped so they never block the partition.
type TradeConsumer struct {
	reader v1.MessageReader
	sink   v1.TradeSink
	logger logger.Interface
}

var _ v1.TradeConsumer = (*TradeConsumer)(nil)

// NewTradeConsumer creates a new TradeConsumer.
func NewTradeConsumer(reader v1.MessageReader, sink v1.TradeSink, log logger.Interface) *TradeConsumer {
	return &TradeConsumer{
		reader: reader,
		sink:   sink,
		logger: log,
	}
}

// Run consumes until ctx is done, the reader is closed or the sink stops.
func (c *TradeConsumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "starting trade consumer", logger.NewField("action", "trade_consumer_start"))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
				c.logger.InfoContext(ctx, "trade consumer stopped", logger.NewField("action", "trade_consumer_stop"))
				return nil
			}
			return errors.NewTracer("fetch trade message").Wrap(err)
		}

		trade, err := DecodeTrade(msg)
		if err != nil {
			c.logger.ErrorContext(ctx, err,
				logger.NewField("action", "decode_trade"),
				logger.NewField("partition", msg.Partition),
				logger.NewField("offset", msg.Offset),
			)
			c.commit(ctx, msg)
			continue
		}

		if err := c.sink.Submit(util.WithPairID(ctx, trade.PairID), trade); err != nil {
			if ctx.Err() != nil || errors.IsCode(err, errors.EngineStopped) {
				c.logger.InfoContext(ctx, "trade consumer stopped", logger.NewField("action", "trade_consumer_stop"))
				return nil
			}
			return errors.NewTracer("submit trade").Wrap(err)
		}

		c.commit(ctx, msg)
	}
}

// Close closes the underlying reader.
func (c *TradeConsumer) Close() error {
	return c.reader.Close()
}

func (c *TradeConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, err,
			logger.NewField("action", "commit_message"),
			logger.NewField("offset", msg.Offset),
		)
	}
}

// DecodeTrade decodes a trade message. A message without a trade id gets one
// derived from its partition and offset so redelivery stays idempotent.
func DecodeTrade(msg kafka.Message) (candlev1.Trade, error) {
	var trade candlev1.Trade
	if err := json.Unmarshal(msg.Value, &trade); err != nil {
		return candlev1.Trade{}, malformed(fmt.Sprintf("invalid trade payload: %v", err), "value")
	}

	if trade.PairID == "" {
		trade.PairID = string(msg.Key)
	}
	switch {
	case trade.PairID == "":
		return candlev1.Trade{}, malformed("trade has no pair id", "pairId")
	case trade.Timestamp <= 0:
		return candlev1.Trade{}, malformed("trade has no timestamp", "timestamp")
	case trade.Side != "" && trade.Side != candlev1.SideBuy && trade.Side != candlev1.SideSell:
		return candlev1.Trade{}, malformed(fmt.Sprintf("unknown trade side %q", trade.Side), "side")
	}

	if trade.ID == "" {
		trade.ID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}
	return trade, nil
}

func malformed(message, field string) error {
	return errors.New(errors.MalformedMessage, message, field)
}
