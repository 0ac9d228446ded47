package main

import (
	"context"
	"encoding/json"
	"flag"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/internal/bootstrap"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/internal/usecase/seed"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

func main() {
	var (
		pairs = flag.String("pairs", "", "Comma-separated pairs to produce (defaults to SEED_PAIRS)")
		delay = flag.Duration("delay", 100*time.Millisecond, "Delay between trades of a pair")
		count = flag.Int("count", 0, "Trades per pair (0 = until interrupted)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if *pairs != "" {
		cfg.Seed.Pairs = strings.Split(*pairs, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.TradeKafka.Brokers...),
		Topic:        cfg.TradeKafka.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	generators := make([]*seed.Generator, 0, len(cfg.Seed.Pairs))
	for _, pair := range cfg.Seed.Pairs {
		options := bootstrap.GeneratorOptions(cfg.Seed)
		generators = append(generators, seed.NewGenerator(strings.TrimSpace(pair), time.Now().UnixMilli(), options))
	}

	log.Info("producing trades",
		logger.NewField("brokers", cfg.TradeKafka.Brokers),
		logger.NewField("topic", cfg.TradeKafka.Topic),
		logger.NewField("pairs", cfg.Seed.Pairs),
		logger.NewField("delay", delay.String()),
	)

	ticker := time.NewTicker(*delay)
	defer ticker.Stop()

	sent := 0
	for *count == 0 || sent < *count*len(generators) {
		select {
		case <-ctx.Done():
			log.Info("trade producer stopped", logger.NewField("sent", sent))
			return
		case <-ticker.C:
		}

		msgs := make([]kafka.Message, 0, len(generators))
		for _, g := range generators {
			msg, err := message(g.Next())
			if err != nil {
				log.Error(err, logger.NewField("action", "marshal_trade"))
				continue
			}
			msgs = append(msgs, msg)
		}

		if err := writer.WriteMessages(ctx, msgs...); err != nil {
			log.Error(err, logger.NewField("action", "write_trades"))
			continue
		}
		sent += len(msgs)

		if sent%1000 < len(msgs) {
			log.Info("trades sent", logger.NewField("sent", sent))
		}
	}

	log.Info("trade producer finished", logger.NewField("sent", sent))
}

// message stamps trade with the wall clock so live cursors see current buckets.
func message(trade v1.Trade) (kafka.Message, error) {
	now := time.Now()
	trade.Timestamp = now.UnixMilli()

	value, err := json.Marshal(trade)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(trade.PairID),
		Value: value,
		Time:  now,
	}, nil
}
