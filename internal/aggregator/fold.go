// Package aggregator folds trades into candles, one resolution at a time.
package aggregator

import (
	"fmt"

	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
)

// Fold folds trade into current for resolution r.
//
// The returned updated candle is the one the caller keeps as its cursor. When
// the trade starts a later bucket, the previous candle is returned untouched as
// sealed and must be persisted by the caller. Buckets without trades between the
// sealed candle and the new one are not materialized.
//
// current is mutated in place when the trade lands in its bucket. On error
// nothing is mutated.
func Fold(current *v1.Candle, trade v1.Trade, r resolution.Resolution) (updated *v1.Candle, sealed *v1.Candle, err error) {
	if err := Check(current, trade, r); err != nil {
		return current, nil, err
	}

	start, end, _ := resolution.BucketFor(trade.Timestamp, r)

	switch {
	case current == nil:
		return open(trade, r, start, end), nil, nil
	case current.Contains(trade.Timestamp):
		extend(current, trade)
		return current, nil, nil
	default:
		return open(trade, r, start, end), current, nil
	}
}

// Check returns the error Fold would return for trade without touching current.
func Check(current *v1.Candle, trade v1.Trade, r resolution.Resolution) error {
	if _, _, err := resolution.BucketFor(trade.Timestamp, r); err != nil {
		return err
	}

	if err := validateTrade(trade); err != nil {
		return err
	}

	if current == nil {
		return nil
	}

	if current.PairID != trade.PairID {
		return errors.New(errors.InvalidTrade,
			fmt.Sprintf("trade for pair %q folded into cursor of pair %q", trade.PairID, current.PairID), "pairId")
	}
	if current.Resolution != r {
		return errors.New(errors.InvalidTrade,
			fmt.Sprintf("cursor holds a %s candle, asked to fold %s", current.Resolution, r), "resolution")
	}
	if trade.Timestamp < current.BucketStart {
		return errors.NewErrorDetailsWithObject(
			fmt.Sprintf("trade at %d is before open %s bucket starting at %d", trade.Timestamp, r, current.BucketStart),
			errors.OutOfOrderTrade.String(), "timestamp", trade)
	}
	return nil
}

func open(trade v1.Trade, r resolution.Resolution, start, end int64) *v1.Candle {
	return &v1.Candle{
		PairID:      trade.PairID,
		Resolution:  r,
		BucketStart: start,
		BucketEnd:   end,
		Open:        trade.Price,
		High:        trade.Price,
		Low:         trade.Price,
		Close:       trade.Price,
		Volume:      trade.Volume,
		TradeCount:  1,
	}
}

func extend(c *v1.Candle, trade v1.Trade) {
	if trade.Price.GreaterThan(c.High) {
		c.High = trade.Price
	}
	if trade.Price.LessThan(c.Low) {
		c.Low = trade.Price
	}
	c.Close = trade.Price
	c.Volume = c.Volume.Add(trade.Volume)
	c.TradeCount++
}

func validateTrade(trade v1.Trade) error {
	if !trade.Price.IsPositive() {
		return errors.New(errors.InvalidTrade, fmt.Sprintf("trade price must be positive, got %s", trade.Price), "price")
	}
	if trade.Volume.IsNegative() {
		return errors.New(errors.InvalidTrade, fmt.Sprintf("trade volume must not be negative, got %s", trade.Volume), "volume")
	}
	return nil
}
