package v1

import (
	"fmt"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"github.com/shopspring/decimal"
)

// Side is the taker side of a trade.
type Side string

const (
	// SideBuy is a trade where the taker bought the base asset.
	SideBuy Side = "buy"
	// SideSell is a trade where the taker sold the base asset.
	SideSell Side = "sell"
)

// Trade is an executed trade. It is produced outside the engine and never mutated by it.
type Trade struct {
	ID        string          `json:"id"`
	PairID    string          `json:"pairId"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
}

// Time returns the trade timestamp as a UTC time.
func (t Trade) Time() time.Time {
	return time.UnixMilli(t.Timestamp).UTC()
}

// Candle is the OHLCV state of one bucket of one (pair, resolution).
type Candle struct {
	PairID      string                `json:"pairId"`
	Resolution  resolution.Resolution `json:"resolution"`
	BucketStart int64                 `json:"bucketStart"`
	BucketEnd   int64                 `json:"bucketEnd"`
	Open        decimal.Decimal       `json:"open"`
	High        decimal.Decimal       `json:"high"`
	Low         decimal.Decimal       `json:"low"`
	Close       decimal.Decimal       `json:"close"`
	Volume      decimal.Decimal       `json:"volume"`
	TradeCount  int64                 `json:"tradeCount"`
}

// Contains reports whether timestamp falls inside [BucketStart, BucketEnd).
func (c *Candle) Contains(timestamp int64) bool {
	return c.BucketStart <= timestamp && timestamp < c.BucketEnd
}

// Clone returns a copy that shares no state with c.
func (c *Candle) Clone() *Candle {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Key identifies the cursor the candle belongs to.
func (c *Candle) Key() string {
	return CursorKey(c.PairID, c.Resolution)
}

// StartTime returns the bucket start as a UTC time.
func (c *Candle) StartTime() time.Time {
	return time.UnixMilli(c.BucketStart).UTC()
}

// EndTime returns the exclusive bucket end as a UTC time.
func (c *Candle) EndTime() time.Time {
	return time.UnixMilli(c.BucketEnd).UTC()
}

// Validate checks the OHLCV invariants.
func (c *Candle) Validate() error {
	if c.BucketEnd-c.BucketStart != c.Resolution.Width() {
		return fmt.Errorf("bucket [%d, %d) does not match resolution %s", c.BucketStart, c.BucketEnd, c.Resolution)
	}
	if c.Low.GreaterThan(c.Open) || c.Low.GreaterThan(c.Close) {
		return fmt.Errorf("low %s above open %s or close %s", c.Low, c.Open, c.Close)
	}
	if c.High.LessThan(c.Open) || c.High.LessThan(c.Close) {
		return fmt.Errorf("high %s below open %s or close %s", c.High, c.Open, c.Close)
	}
	if c.Volume.IsNegative() {
		return fmt.Errorf("negative volume %s", c.Volume)
	}
	return nil
}

// CursorKey builds the identifier of a (pair, resolution) cursor.
func CursorKey(pairID string, r resolution.Resolution) string {
	return pairID + ":" + r.Name()
}
