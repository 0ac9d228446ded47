package seed

import (
	"testing"
	"time"

	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedOptions(seed int64) GeneratorOptions {
	options := DefaultGeneratorOptions()
	options.Seed = seed
	return options
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator("BTC-USDT", 0, fixedOptions(42))
	b := NewGenerator("BTC-USDT", 0, fixedOptions(42))
	c := NewGenerator("BTC-USDT", 0, fixedOptions(43))

	batchA := a.Batch(300_000, 100)
	batchB := b.Batch(300_000, 100)
	batchC := c.Batch(300_000, 100)

	require.Len(t, batchA, 100)
	for i := range batchA {
		assert.Equal(t, batchA[i].ID, batchB[i].ID)
		assert.True(t, batchA[i].Price.Equal(batchB[i].Price))
		assert.Equal(t, batchA[i].Side, batchB[i].Side)
	}
	assert.NotEqual(t, batchA[0].ID, batchC[0].ID)
}

func TestGenerator_Walk(t *testing.T) {
	g := NewGenerator("BTC-USDT", 1_000, fixedOptions(7))
	start := decimal.NewFromInt(15)

	prev := start
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		trade := g.Next()

		assert.Equal(t, "BTC-USDT", trade.PairID)
		assert.Equal(t, int64(1_000+i*3_000), trade.Timestamp)
		assert.Contains(t, []v1.Side{v1.SideBuy, v1.SideSell}, trade.Side)
		assert.False(t, seen[trade.ID])
		seen[trade.ID] = true

		assert.True(t, trade.Volume.GreaterThanOrEqual(decimal.NewFromInt(1)))
		assert.True(t, trade.Volume.LessThanOrEqual(decimal.NewFromInt(10)))
		assert.True(t, trade.Volume.Equal(trade.Volume.Truncate(0)))

		assert.True(t, trade.Price.GreaterThanOrEqual(decimal.NewFromInt(1)))
		assert.True(t, trade.Price.Equal(trade.Price.Round(4)))

		// a move of at most 1% plus rounding
		bound := prev.Mul(decimal.RequireFromString("0.0101"))
		if !trade.Price.Equal(start) {
			assert.True(t, trade.Price.Sub(prev).Abs().LessThanOrEqual(bound), "trade %d moved %s -> %s", i, prev, trade.Price)
		}
		prev = trade.Price
	}
}

func TestGenerator_ResetsBelowOne(t *testing.T) {
	options := fixedOptions(1)
	options.MaxChangePercent = 50
	g := NewGenerator("BTC-USDT", 0, options)
	g.Resume(decimal.RequireFromString("1.0001"))

	for i := 0; i < 200; i++ {
		trade := g.Next()
		assert.True(t, trade.Price.GreaterThanOrEqual(decimal.NewFromInt(1)))
	}
}

func TestGenerator_Batch(t *testing.T) {
	options := fixedOptions(3)
	options.Step = time.Second
	g := NewGenerator("ETH-USDT", 0, options)

	first := g.Batch(10_000, 4)
	require.Len(t, first, 4)
	assert.Equal(t, int64(3_000), first[3].Timestamp)

	rest := g.Batch(10_000, 100)
	require.Len(t, rest, 6)
	assert.Equal(t, int64(9_000), rest[5].Timestamp)

	assert.Empty(t, g.Batch(10_000, 100))
	assert.Equal(t, int64(10_000), g.NextTimestamp())
}

func TestGenerator_Resume(t *testing.T) {
	g := NewGenerator("BTC-USDT", 0, fixedOptions(9))

	g.Resume(decimal.NewFromInt(200))
	trade := g.Next()
	assert.True(t, trade.Price.Sub(decimal.NewFromInt(200)).Abs().LessThanOrEqual(decimal.RequireFromString("2.01")))

	g.Resume(decimal.RequireFromString("0.5"))
	assert.True(t, g.price.Equal(decimal.NewFromInt(15)))
}
