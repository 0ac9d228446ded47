package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/ohlcv-engine/internal/app/engine"
	"github.com/muhammadchandra19/ohlcv-engine/internal/bootstrap"
	"github.com/muhammadchandra19/ohlcv-engine/internal/consumer"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Error(err, logger.NewField("action", "run_aggregator"))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := bootstrap.Init(ctx, cfg, log, bootstrap.BootstrapConfig{WithRedis: true})
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	engine := app.NewEngine(b.Usecase.CandleUsecase, log, &app.Options{
		QueueSize:       cfg.Aggregator.WorkerQueueSize,
		FlushInterval:   cfg.Aggregator.FlushInterval,
		LoadMaxInterval: 30 * time.Second,
	})
	// workers outlive the signal; Stop bounds them with the shutdown timeout
	if err := engine.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	tradeConsumer := consumer.NewTradeConsumer(consumer.NewKafkaReader(cfg.TradeKafka), engine, log)

	health := healthcheck.New(2*time.Second, map[string]healthcheck.Checker{
		"questdb": b.QuestDB,
		"redis":   healthcheck.CheckerFunc(b.Redis.Ping),
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler:           health.Handler(http.NotFoundHandler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("candle aggregator started",
		logger.NewField("topic", cfg.TradeKafka.Topic),
		logger.NewField("resolutions", cfg.Aggregator.EnabledResolutions),
		logger.NewField("healthPort", cfg.App.HealthPort),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tradeConsumer.Run(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down candle aggregator")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		if err := tradeConsumer.Close(); err != nil {
			log.Error(err, logger.NewField("action", "close_trade_consumer"))
		}
		if err := engine.Stop(shutdownCtx); err != nil {
			log.Error(err, logger.NewField("action", "stop_engine"))
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error(err, logger.NewField("action", "stop_health_server"))
		}

		stats := engine.Stats()
		log.Info("candle aggregator stopped",
			logger.NewField("pairs", stats.Pairs),
			logger.NewField("processed", stats.Processed),
			logger.NewField("rejected", stats.Rejected),
			logger.NewField("failed", stats.Failed),
			logger.NewField("dropped", stats.Dropped),
		)
		return nil
	})

	return g.Wait()
}
