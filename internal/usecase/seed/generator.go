// Package seed generates synthetic trade history and folds it into candles.
package seed

import (
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/shopspring/decimal"
)

// GeneratorOptions shapes the random walk.
type GeneratorOptions struct {
	StartPrice       decimal.Decimal
	MaxChangePercent float64
	Step             time.Duration
	// Seed makes the walk reproducible. Zero picks a time based seed.
	Seed int64
}

// DefaultGeneratorOptions returns a walk starting at 15 with 1% moves every 3s.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		StartPrice:       decimal.NewFromInt(15),
		MaxChangePercent: 1,
		Step:             3 * time.Second,
	}
}

var (
	minPrice = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
)

// Generator produces trades for one pair with strictly increasing timestamps.
// It is not safe for concurrent use.
type Generator struct {
	pairID  string
	options GeneratorOptions

	source *rand.ChaCha8
	rng    *rand.Rand

	price decimal.Decimal
	next  int64
}

// NewGenerator creates a generator whose first trade is at from (epoch ms).
func NewGenerator(pairID string, from int64, options GeneratorOptions) *Generator {
	defaults := DefaultGeneratorOptions()
	if options.StartPrice.LessThan(minPrice) {
		options.StartPrice = defaults.StartPrice
	}
	if options.MaxChangePercent <= 0 {
		options.MaxChangePercent = defaults.MaxChangePercent
	}
	if options.Step <= 0 {
		options.Step = defaults.Step
	}
	if options.Seed == 0 {
		options.Seed = time.Now().UnixNano()
	}

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], uint64(options.Seed))
	source := rand.NewChaCha8(key)

	return &Generator{
		pairID:  pairID,
		options: options,
		source:  source,
		rng:     rand.New(source),
		price:   options.StartPrice,
		next:    from,
	}
}

// Resume continues the walk from the price of a stored trade.
func (g *Generator) Resume(price decimal.Decimal) {
	if price.LessThan(minPrice) {
		g.price = g.options.StartPrice
		return
	}
	g.price = price
}

// Next returns the next trade of the walk.
func (g *Generator) Next() v1.Trade {
	change := (g.rng.Float64()*2 - 1) * g.options.MaxChangePercent
	price := g.price.Mul(hundred.Add(decimal.NewFromFloat(change))).Div(hundred).Round(4)
	if price.LessThan(minPrice) {
		price = g.options.StartPrice
	}
	g.price = price

	side := v1.SideBuy
	if g.rng.IntN(2) == 1 {
		side = v1.SideSell
	}

	trade := v1.Trade{
		ID:        g.newID(),
		PairID:    g.pairID,
		Side:      side,
		Price:     price,
		Volume:    decimal.NewFromInt(int64(g.rng.IntN(10) + 1)),
		Timestamp: g.next,
	}
	g.next += g.options.Step.Milliseconds()
	return trade
}

// Batch returns up to size trades stamped before until. An empty batch means
// the walk has reached until.
func (g *Generator) Batch(until int64, size int) []v1.Trade {
	trades := make([]v1.Trade, 0, size)
	for len(trades) < size && g.next < until {
		trades = append(trades, g.Next())
	}
	return trades
}

// NextTimestamp is the timestamp the next trade will carry.
func (g *Generator) NextTimestamp() int64 {
	return g.next
}

func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.source)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
