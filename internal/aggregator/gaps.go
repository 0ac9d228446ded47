package aggregator

import (
	"sort"

	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"github.com/shopspring/decimal"
)

// FillGaps returns a dense series for one (pair, resolution): every empty bucket
// between two candles becomes a flat candle at the previous close with zero
// volume. Input order does not matter; candles of another resolution are dropped.
func FillGaps(candles []*v1.Candle, r resolution.Resolution) []*v1.Candle {
	series := make([]*v1.Candle, 0, len(candles))
	for _, c := range candles {
		if c != nil && c.Resolution == r {
			series = append(series, c)
		}
	}
	if len(series) < 2 {
		return series
	}

	sort.Slice(series, func(i, j int) bool { return series[i].BucketStart < series[j].BucketStart })

	width := r.Width()
	dense := make([]*v1.Candle, 0, len(series))
	dense = append(dense, series[0])

	for _, next := range series[1:] {
		prev := dense[len(dense)-1]
		for start := prev.BucketEnd; start < next.BucketStart; start += width {
			dense = append(dense, flat(prev, start, width))
		}
		dense = append(dense, next)
	}

	return dense
}

func flat(prev *v1.Candle, start, width int64) *v1.Candle {
	return &v1.Candle{
		PairID:      prev.PairID,
		Resolution:  prev.Resolution,
		BucketStart: start,
		BucketEnd:   start + width,
		Open:        prev.Close,
		High:        prev.Close,
		Low:         prev.Close,
		Close:       prev.Close,
		Volume:      decimal.Zero,
	}
}
