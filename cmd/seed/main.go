package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/internal/bootstrap"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		pairs = flag.String("pairs", "", "Comma-separated pairs to seed (defaults to SEED_PAIRS)")
		until = flag.String("until", "", "RFC3339 end of the generated history (defaults to now)")
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

	end := time.Now()
	if *until != "" {
		end, err = time.Parse(time.RFC3339, *until)
		if err != nil {
			log.Error(err, logger.NewField("action", "parse_until"))
			os.Exit(1)
		}
	}
	if *pairs != "" {
		cfg.Seed.Pairs = strings.Split(*pairs, ",")
	}

	if err := run(cfg, log, end); err != nil {
		log.Error(err, logger.NewField("action", "seed"))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, until time.Time) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := bootstrap.Init(ctx, cfg, log, bootstrap.BootstrapConfig{})
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	g, gctx := errgroup.WithContext(ctx)
	for _, pair := range cfg.Seed.Pairs {
		pair := strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		g.Go(func() error {
			_, err := b.Usecase.Seeder.Run(gctx, pair, until)
			return err
		})
	}
	return g.Wait()
}
