//go:build integration

package candle

import (
	"context"
	"testing"
	"time"

	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/internal/infrastructure/questdb/migrations"
	tradeInfra "github.com/muhammadchandra19/ohlcv-engine/internal/infrastructure/questdb/trade"
	candleUc "github.com/muhammadchandra19/ohlcv-engine/internal/usecase/candle"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/migration"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// WAL tables apply writes asynchronously.
const walTimeout = 30 * time.Second

type RepositoryTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *questdb.TestContainer
	repo      *Repository
	trades    *tradeInfra.Repository
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := questdb.NewTestContainer(s.ctx, nil)
	require.NoError(s.T(), err)
	s.container = container

	runner := migration.NewRunner(container.Client, logger.NewNop(), migrations.FS, ".")
	require.NoError(s.T(), runner.MigrateUp(s.ctx, 0))

	s.repo = NewRepository(container.Client)
	s.trades = tradeInfra.NewRepository(container.Client)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.container != nil {
		require.NoError(s.T(), s.container.Close(s.ctx))
	}
}

func (s *RepositoryTestSuite) eventuallyLatest(pair string, r resolution.Resolution, match func(c *v1.Candle) bool) *v1.Candle {
	var latest *v1.Candle
	s.Require().Eventually(func() bool {
		c, err := s.repo.GetLatestCandle(s.ctx, pair, r)
		if err != nil || c == nil || !match(c) {
			return false
		}
		latest = c
		return true
	}, walTimeout, 200*time.Millisecond)
	return latest
}

func (s *RepositoryTestSuite) TestUpsertKeepsOneRowPerBucket() {
	pair := "UPSERT-USDT"
	c := &v1.Candle{
		PairID:      pair,
		Resolution:  resolution.Minute,
		BucketStart: 1_717_200_000_000,
		BucketEnd:   1_717_200_060_000,
		Open:        decimal.RequireFromString("10"),
		High:        decimal.RequireFromString("12"),
		Low:         decimal.RequireFromString("9"),
		Close:       decimal.RequireFromString("11"),
		Volume:      decimal.RequireFromString("4"),
		TradeCount:  4,
	}
	s.Require().NoError(s.repo.SaveCandle(s.ctx, c))

	updated := c.Clone()
	updated.Close = decimal.RequireFromString("11.5")
	updated.Volume = decimal.RequireFromString("5")
	updated.TradeCount = 5
	s.Require().NoError(s.repo.SaveCandle(s.ctx, updated))

	latest := s.eventuallyLatest(pair, resolution.Minute, func(c *v1.Candle) bool {
		return c.TradeCount == 5
	})
	s.True(decimal.RequireFromString("11.5").Equal(latest.Close))

	var rows int64
	err := s.container.Client.QueryRow(s.ctx,
		"SELECT count() FROM candles WHERE pair_id = $1 AND resolution = $2", pair, "1m").Scan(&rows)
	s.Require().NoError(err)
	s.Equal(int64(1), rows)
}

func (s *RepositoryTestSuite) TestBackfillThenResume() {
	pair := "SEED-USDT"
	resolutions := []resolution.Resolution{resolution.Minute, resolution.Hour}

	uc, err := candleUc.NewUsecase(s.repo, logger.NewNop(), resolutions)
	s.Require().NoError(err)

	base := int64(1_717_200_000_000)
	trades := []v1.Trade{
		{ID: "1", PairID: pair, Side: v1.SideBuy, Price: decimal.RequireFromString("10"), Volume: decimal.NewFromInt(1), Timestamp: base},
		{ID: "2", PairID: pair, Side: v1.SideSell, Price: decimal.RequireFromString("12"), Volume: decimal.NewFromInt(1), Timestamp: base + 10_000},
		{ID: "3", PairID: pair, Side: v1.SideBuy, Price: decimal.RequireFromString("15"), Volume: decimal.NewFromInt(2), Timestamp: base + 70_000},
	}
	s.Require().NoError(s.trades.StoreTrades(s.ctx, trades))

	_, err = uc.Backfill(s.ctx, pair, trades, len(trades))
	s.Require().NoError(err)

	s.eventuallyLatest(pair, resolution.Minute, func(c *v1.Candle) bool {
		return c.BucketStart == base+60_000
	})
	s.Require().Eventually(func() bool {
		latest, err := s.trades.GetLatestTrade(s.ctx, pair)
		return err == nil && latest != nil && latest.ID == "3"
	}, walTimeout, 200*time.Millisecond)

	resumed, err := candleUc.NewUsecase(s.repo, logger.NewNop(), resolutions)
	s.Require().NoError(err)
	s.Require().NoError(resumed.Load(s.ctx, pair))

	hour, ok := resumed.Current(pair, resolution.Hour)
	s.Require().True(ok)
	s.Equal(int64(3), hour.TradeCount)
	s.True(decimal.RequireFromString("15").Equal(hour.High))
	s.True(decimal.RequireFromString("10").Equal(hour.Open))
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
