package aggregator

import (
	"testing"

	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pair = "BTC-USDT"

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func trade(ts int64, price, volume string) v1.Trade {
	return v1.Trade{
		PairID:    pair,
		Side:      v1.SideBuy,
		Price:     d(price),
		Volume:    d(volume),
		Timestamp: ts,
	}
}

func assertCandle(t *testing.T, c *v1.Candle, open, high, low, close, volume string, count int64) {
	t.Helper()
	require.NotNil(t, c)
	assert.True(t, d(open).Equal(c.Open), "open %s", c.Open)
	assert.True(t, d(high).Equal(c.High), "high %s", c.High)
	assert.True(t, d(low).Equal(c.Low), "low %s", c.Low)
	assert.True(t, d(close).Equal(c.Close), "close %s", c.Close)
	assert.True(t, d(volume).Equal(c.Volume), "volume %s", c.Volume)
	assert.Equal(t, count, c.TradeCount)
	assert.NoError(t, c.Validate())
}

func TestFold_FirstTrade(t *testing.T) {
	updated, sealed, err := Fold(nil, trade(30_000, "10", "2"), resolution.Minute)
	require.NoError(t, err)
	assert.Nil(t, sealed)

	assertCandle(t, updated, "10", "10", "10", "10", "2", 1)
	assert.Equal(t, pair, updated.PairID)
	assert.Equal(t, resolution.Minute, updated.Resolution)
	assert.Equal(t, int64(0), updated.BucketStart)
	assert.Equal(t, int64(60_000), updated.BucketEnd)
}

func TestFold_SameBucketScenario(t *testing.T) {
	trades := []v1.Trade{
		trade(1_000, "10", "1.5"),
		trade(15_000, "12", "2"),
		trade(30_000, "9", "0.25"),
		trade(59_999, "11", "3"),
	}

	var current *v1.Candle
	for _, tr := range trades {
		var sealed *v1.Candle
		var err error
		current, sealed, err = Fold(current, tr, resolution.Minute)
		require.NoError(t, err)
		assert.Nil(t, sealed)
	}

	assertCandle(t, current, "10", "12", "9", "11", "6.75", 4)
	assert.Equal(t, int64(0), current.BucketStart)
	assert.Equal(t, int64(60_000), current.BucketEnd)

	previous := current.Clone()
	updated, sealed, err := Fold(current, trade(70_000, "15", "1"), resolution.Minute)
	require.NoError(t, err)

	require.NotNil(t, sealed)
	assert.Same(t, current, sealed)
	assert.Equal(t, previous, sealed)
	assertCandle(t, sealed, "10", "12", "9", "11", "6.75", 4)

	assertCandle(t, updated, "15", "15", "15", "15", "1", 1)
	assert.Equal(t, int64(60_000), updated.BucketStart)
	assert.Equal(t, int64(120_000), updated.BucketEnd)
}

func TestFold_MutatesInPlace(t *testing.T) {
	current, _, err := Fold(nil, trade(0, "10", "1"), resolution.Hour)
	require.NoError(t, err)

	updated, sealed, err := Fold(current, trade(1_000, "11", "1"), resolution.Hour)
	require.NoError(t, err)
	assert.Nil(t, sealed)
	assert.Same(t, current, updated)
}

func TestFold_RolloverAcrossGap(t *testing.T) {
	current, _, err := Fold(nil, trade(10_000, "10", "1"), resolution.Minute)
	require.NoError(t, err)
	snapshot := current.Clone()

	// five empty minutes in between
	updated, sealed, err := Fold(current, trade(6*60_000+5, "8", "4"), resolution.Minute)
	require.NoError(t, err)

	assert.Equal(t, snapshot, sealed)
	assertCandle(t, updated, "8", "8", "8", "8", "4", 1)
	assert.Equal(t, int64(6*60_000), updated.BucketStart)
	assert.Equal(t, int64(7*60_000), updated.BucketEnd)
}

func TestFold_BoundaryTradeRollsOver(t *testing.T) {
	current, _, err := Fold(nil, trade(0, "10", "1"), resolution.Minute)
	require.NoError(t, err)

	updated, sealed, err := Fold(current, trade(60_000, "10", "1"), resolution.Minute)
	require.NoError(t, err)
	require.NotNil(t, sealed)
	assert.Equal(t, int64(60_000), updated.BucketStart)
}

func TestFold_Errors(t *testing.T) {
	base := func() *v1.Candle {
		c, _, err := Fold(nil, trade(120_000, "10", "1"), resolution.Minute)
		require.NoError(t, err)
		return c
	}

	testCases := []struct {
		name       string
		trade      v1.Trade
		resolution resolution.Resolution
		code       errors.ErrorCode
	}{
		{
			name:       "out of order",
			trade:      trade(119_999, "10", "1"),
			resolution: resolution.Minute,
			code:       errors.OutOfOrderTrade,
		},
		{
			name:       "far out of order",
			trade:      trade(0, "10", "1"),
			resolution: resolution.Minute,
			code:       errors.OutOfOrderTrade,
		},
		{
			name:       "invalid resolution",
			trade:      trade(130_000, "10", "1"),
			resolution: resolution.Resolution(42),
			code:       errors.InvalidResolution,
		},
		{
			name:       "other pair",
			trade:      v1.Trade{PairID: "ETH-USDT", Price: d("1"), Volume: d("1"), Timestamp: 130_000},
			resolution: resolution.Minute,
			code:       errors.InvalidTrade,
		},
		{
			name:       "resolution mismatch",
			trade:      trade(130_000, "10", "1"),
			resolution: resolution.Hour,
			code:       errors.InvalidTrade,
		},
		{
			name:       "zero price",
			trade:      trade(130_000, "0", "1"),
			resolution: resolution.Minute,
			code:       errors.InvalidTrade,
		},
		{
			name:       "negative volume",
			trade:      trade(130_000, "10", "-1"),
			resolution: resolution.Minute,
			code:       errors.InvalidTrade,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			current := base()
			before := current.Clone()

			updated, sealed, err := Fold(current, tc.trade, tc.resolution)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
			assert.Nil(t, sealed)
			assert.Same(t, current, updated)
			assert.Equal(t, before, current)
		})
	}
}

func TestFold_ZeroVolumeTradeCounts(t *testing.T) {
	current, _, err := Fold(nil, trade(0, "10", "0"), resolution.Minute)
	require.NoError(t, err)
	current, _, err = Fold(current, trade(1, "10.5", "0"), resolution.Minute)
	require.NoError(t, err)

	assertCandle(t, current, "10", "10.5", "10", "10.5", "0", 2)
}

func TestFold_ResolutionsAreIndependent(t *testing.T) {
	// 14:59:30 and 15:00:10 on the same day
	first := trade(14*3_600_000+59*60_000+30_000, "10", "1")
	second := trade(15*3_600_000+10_000, "11", "1")

	cursors := map[resolution.Resolution]*v1.Candle{}
	for _, r := range resolution.All() {
		c, _, err := Fold(nil, first, r)
		require.NoError(t, err)
		cursors[r] = c
	}

	rolled := map[resolution.Resolution]bool{}
	for _, r := range resolution.All() {
		updated, sealed, err := Fold(cursors[r], second, r)
		require.NoError(t, err)
		cursors[r] = updated
		rolled[r] = sealed != nil
	}

	assert.True(t, rolled[resolution.Minute])
	assert.True(t, rolled[resolution.FifteenMinutes])
	assert.True(t, rolled[resolution.Hour])
	assert.False(t, rolled[resolution.FourHours])
	assert.False(t, rolled[resolution.Day])
	assert.False(t, rolled[resolution.Week])
}

func TestCheck(t *testing.T) {
	current, _, err := Fold(nil, trade(120_000, "10", "1"), resolution.Minute)
	require.NoError(t, err)
	before := current.Clone()

	assert.NoError(t, Check(nil, trade(0, "10", "1"), resolution.Minute))
	assert.NoError(t, Check(current, trade(130_000, "11", "1"), resolution.Minute))
	assert.NoError(t, Check(current, trade(500_000, "11", "1"), resolution.Minute))
	assert.True(t, errors.IsCode(Check(current, trade(1, "11", "1"), resolution.Minute), errors.OutOfOrderTrade))
	assert.Equal(t, before, current)
}
