// Package trade stores raw trades in QuestDB.
package trade

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
	"github.com/shopspring/decimal"
)

const (
	insertColumns = "ts, pair_id, trade_id, side, price, volume"
	columnsPerRow = 6
	batchRows     = 500

	selectLatestQuery = `SELECT ts, trade_id, side, price, volume
FROM trades
WHERE pair_id = $1
ORDER BY ts DESC
LIMIT 1`
)

var _ candle.TradeStore = (*Repository)(nil)

// Repository persists trades for backfill resume.
type Repository struct {
	client questdb.Client
}

// NewRepository creates a new trade repository.
func NewRepository(client questdb.Client) *Repository {
	return &Repository{client: client}
}

// StoreTrades inserts trades in one transaction.
func (r *Repository) StoreTrades(ctx context.Context, trades []v1.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	return questdb.WithTx(ctx, r.client, func(ctx context.Context) error {
		for from := 0; from < len(trades); from += batchRows {
			to := min(from+batchRows, len(trades))
			query, args := insertQuery(trades[from:to])
			if err := r.client.Exec(ctx, query, args...); err != nil {
				return errors.NewTracer(fmt.Sprintf("store %d trades", to-from)).Wrap(err)
			}
		}
		return nil
	})
}

// GetLatestTrade returns the most recent stored trade of pairID, or nil.
func (r *Repository) GetLatestTrade(ctx context.Context, pairID string) (*v1.Trade, error) {
	var (
		ts            time.Time
		id, side      string
		price, volume string
	)
	err := r.client.QueryRow(ctx, selectLatestQuery, pairID).Scan(&ts, &id, &side, &price, &volume)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.NewTracer(fmt.Sprintf("get latest trade of %s", pairID)).Wrap(err)
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, errors.NewTracer("decode stored trade price").Wrap(err)
	}
	v, err := decimal.NewFromString(volume)
	if err != nil {
		return nil, errors.NewTracer("decode stored trade volume").Wrap(err)
	}

	return &v1.Trade{
		ID:        id,
		PairID:    pairID,
		Side:      v1.Side(side),
		Price:     p,
		Volume:    v,
		Timestamp: ts.UnixMilli(),
	}, nil
}

func insertQuery(trades []v1.Trade) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO trades (")
	sb.WriteString(insertColumns)
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(trades)*columnsPerRow)
	for i, t := range trades {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * columnsPerRow
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)

		args = append(args,
			t.Time(),
			t.PairID,
			t.ID,
			string(t.Side),
			t.Price.String(),
			t.Volume.String(),
		)
	}
	return sb.String(), args
}
