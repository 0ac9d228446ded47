package main

import (
	"context"
	"flag"
	"log"

	"github.com/muhammadchandra19/ohlcv-engine/internal/bootstrap"
	"github.com/muhammadchandra19/ohlcv-engine/internal/infrastructure/questdb/migrations"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/config"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/migration"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb"
)

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of steps to migrate (0 = all for up)")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	questdbClient, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		zlog.Error(err, logger.NewField("action", "init_questdb"))
		return
	}
	defer questdbClient.Close()

	runner := migration.NewRunner(questdbClient, zlog, migrations.FS, ".")

	switch *direction {
	case "up":
		err = runner.MigrateUp(ctx, *steps)
	case "down":
		err = runner.MigrateDown(ctx, *steps)
	default:
		zlog.Warn("invalid direction, use 'up' or 'down'", logger.NewField("direction", *direction))
		return
	}
	if err != nil {
		zlog.Error(err, logger.NewField("action", "migrate_"+*direction))
		return
	}

	zlog.Info("migration completed", logger.NewField("direction", *direction))
}
