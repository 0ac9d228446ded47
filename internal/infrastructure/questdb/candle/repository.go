// Package candle stores candles in QuestDB.
package candle

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"github.com/shopspring/decimal"
)

const (
	insertColumns = "bucket_start, pair_id, resolution, bucket_end, open, high, low, close, volume, trade_count, updated_at"
	columnsPerRow = 10

	// batchRows bounds the number of rows per INSERT statement.
	batchRows = 200

	selectLatestQuery = `SELECT bucket_start, bucket_end, open, high, low, close, volume, trade_count
FROM candles
WHERE pair_id = $1 AND resolution = $2
ORDER BY bucket_start DESC
LIMIT 1`
)

var _ candle.Storage = (*Repository)(nil)

// Repository persists candles. The table deduplicates on
// (bucket_start, pair_id, resolution) so every save is an upsert.
type Repository struct {
	client questdb.Client
}

// NewRepository creates a new candle repository.
func NewRepository(client questdb.Client) *Repository {
	return &Repository{client: client}
}

// SaveCandle upserts one candle.
func (r *Repository) SaveCandle(ctx context.Context, c *v1.Candle) error {
	if err := validate(c); err != nil {
		return err
	}

	query, args := insertQuery([]*v1.Candle{c})
	if err := r.client.Exec(ctx, query, args...); err != nil {
		return errors.NewTracer(fmt.Sprintf("store candle %s/%s@%d", c.PairID, c.Resolution, c.BucketStart)).Wrap(err)
	}
	return nil
}

// SaveCandles upserts candles in one transaction, batchRows rows per statement.
func (r *Repository) SaveCandles(ctx context.Context, candles []*v1.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	for _, c := range candles {
		if err := validate(c); err != nil {
			return err
		}
	}

	return questdb.WithTx(ctx, r.client, func(ctx context.Context) error {
		for from := 0; from < len(candles); from += batchRows {
			to := min(from+batchRows, len(candles))
			query, args := insertQuery(candles[from:to])
			if err := r.client.Exec(ctx, query, args...); err != nil {
				return errors.NewTracer(fmt.Sprintf("store %d candles", to-from)).Wrap(err)
			}
		}
		return nil
	})
}

func validate(c *v1.Candle) error {
	if err := c.Validate(); err != nil {
		return errors.NewErrorDetailsWithObject(err.Error(), errors.InvalidCandle.String(), "candle", c)
	}
	return nil
}

// GetLatestCandle returns the candle with the greatest bucket start for
// (pairID, res), or nil when none is stored.
func (r *Repository) GetLatestCandle(ctx context.Context, pairID string, res resolution.Resolution) (*v1.Candle, error) {
	var row candleRow
	err := r.client.QueryRow(ctx, selectLatestQuery, pairID, res.Name()).Scan(
		&row.BucketStart, &row.BucketEnd,
		&row.Open, &row.High, &row.Low, &row.Close, &row.Volume,
		&row.TradeCount,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.NewTracer(fmt.Sprintf("get latest %s candle of %s", res, pairID)).Wrap(err)
	}

	return row.toCandle(pairID, res)
}

func insertQuery(candles []*v1.Candle) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO candles (")
	sb.WriteString(insertColumns)
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(candles)*columnsPerRow)
	for i, c := range candles {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 1; j <= columnsPerRow; j++ {
			fmt.Fprintf(&sb, "$%d, ", i*columnsPerRow+j)
		}
		sb.WriteString("now())")

		args = append(args,
			time.UnixMilli(c.BucketStart).UTC(),
			c.PairID,
			c.Resolution.Name(),
			time.UnixMilli(c.BucketEnd).UTC(),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			c.Volume.String(),
			c.TradeCount,
		)
	}
	return sb.String(), args
}

// candleRow mirrors a candles row. Prices are stored as text so they
// round-trip without loss.
type candleRow struct {
	BucketStart time.Time
	BucketEnd   time.Time
	Open        string
	High        string
	Low         string
	Close       string
	Volume      string
	TradeCount  int64
}

func (row candleRow) toCandle(pairID string, res resolution.Resolution) (*v1.Candle, error) {
	values := make([]decimal.Decimal, 5)
	for i, s := range []string{row.Open, row.High, row.Low, row.Close, row.Volume} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, errors.NewTracer(fmt.Sprintf("decode stored %s candle of %s", res, pairID)).Wrap(err)
		}
		values[i] = d
	}

	return &v1.Candle{
		PairID:      pairID,
		Resolution:  res,
		BucketStart: row.BucketStart.UnixMilli(),
		BucketEnd:   row.BucketEnd.UnixMilli(),
		Open:        values[0],
		High:        values[1],
		Low:         values[2],
		Close:       values[3],
		Volume:      values[4],
		TradeCount:  row.TradeCount,
	}, nil
}
