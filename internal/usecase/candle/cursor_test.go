package candle

import (
	"testing"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	c := NewCursor(pair, resolution.Minute)
	assert.Nil(t, c.Snapshot())
	assert.Equal(t, resolution.Minute, c.Resolution())

	updated, sealed, err := c.Fold(trade("t1", "10", "1", 1000))
	require.NoError(t, err)
	assert.Nil(t, sealed)

	updated.Close = decimal.NewFromInt(99)
	assert.Equal(t, "10", c.Snapshot().Close.String(), "returned candle must not alias the cursor")

	_, sealed, err = c.Fold(trade("t2", "11", "1", 61000))
	require.NoError(t, err)
	require.NotNil(t, sealed)
	assert.Equal(t, int64(0), sealed.BucketStart)

	err = c.Check(trade("t3", "12", "1", 59999))
	assert.True(t, errors.IsCode(err, errors.OutOfOrderTrade))

	c.Reset(nil)
	assert.Nil(t, c.Snapshot())
	assert.NoError(t, c.Check(trade("t3", "12", "1", 59999)))
}

func TestCursorSet_Order(t *testing.T) {
	set := newCursorSet(pair, []resolution.Resolution{resolution.Day, resolution.Minute, resolution.Hour})

	got := make([]resolution.Resolution, 0, len(set.cursors))
	for _, c := range set.cursors {
		got = append(got, c.Resolution())
	}
	assert.Equal(t, []resolution.Resolution{resolution.Minute, resolution.Hour, resolution.Day}, got)

	_, ok := set.cursor(resolution.Week)
	assert.False(t, ok)

	updated, sealed, err := set.fold(trade("t1", "10", "1", 1000))
	require.NoError(t, err)
	assert.Len(t, updated, 3)
	assert.Empty(t, sealed)
	assert.Len(t, set.snapshots(), 3)
}
