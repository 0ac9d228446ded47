package trade

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeTx struct {
	pgx.Tx
	committed bool
}

func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { return nil }

func TestRepository_StoreTrades(t *testing.T) {
	trades := []v1.Trade{
		{ID: "a", PairID: "BTC-USDT", Side: v1.SideBuy, Price: decimal.RequireFromString("15.0001"), Volume: decimal.NewFromInt(3), Timestamp: 3000},
		{ID: "b", PairID: "BTC-USDT", Side: v1.SideSell, Price: decimal.RequireFromString("15.1"), Volume: decimal.NewFromInt(7), Timestamp: 6000},
	}

	testCases := []struct {
		name     string
		testData []v1.Trade
		mockFn   func(tx *fakeTx, client *mock.MockClient)
		assertFn func(t *testing.T, tx *fakeTx, err error)
	}{
		{
			name:     "success",
			testData: trades,
			mockFn: func(tx *fakeTx, client *mock.MockClient) {
				client.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				client.EXPECT().Exec(
					gomock.Any(),
					"INSERT INTO trades ("+insertColumns+") VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)",
					time.UnixMilli(3000).UTC(), "BTC-USDT", "a", "buy", "15.0001", "3",
					time.UnixMilli(6000).UTC(), "BTC-USDT", "b", "sell", "15.1", "7",
				).Return(nil)
			},
			assertFn: func(t *testing.T, tx *fakeTx, err error) {
				require.NoError(t, err)
				assert.True(t, tx.committed)
			},
		},
		{
			name:     "empty",
			mockFn:   func(tx *fakeTx, client *mock.MockClient) {},
			assertFn: func(t *testing.T, tx *fakeTx, err error) { assert.NoError(t, err) },
		},
		{
			name:     "exec fails",
			testData: trades,
			mockFn: func(tx *fakeTx, client *mock.MockClient) {
				client.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				client.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(stderrors.New("exec failed"))
			},
			assertFn: func(t *testing.T, tx *fakeTx, err error) {
				assert.ErrorContains(t, err, "exec failed")
				assert.False(t, tx.committed)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock.NewMockClient(ctrl)
			tx := &fakeTx{}
			tc.mockFn(tx, client)

			repo := NewRepository(client)
			tc.assertFn(t, tx, repo.StoreTrades(context.Background(), tc.testData))
		})
	}
}

func TestRepository_GetLatestTrade(t *testing.T) {
	testCases := []struct {
		name     string
		scanFn   func(dest ...any) error
		assertFn func(t *testing.T, tr *v1.Trade, err error)
	}{
		{
			name: "success",
			scanFn: func(dest ...any) error {
				*dest[0].(*time.Time) = time.UnixMilli(6000).UTC()
				*dest[1].(*string) = "b"
				*dest[2].(*string) = "sell"
				*dest[3].(*string) = "15.1"
				*dest[4].(*string) = "7"
				return nil
			},
			assertFn: func(t *testing.T, tr *v1.Trade, err error) {
				require.NoError(t, err)
				require.NotNil(t, tr)
				assert.Equal(t, int64(6000), tr.Timestamp)
				assert.Equal(t, v1.SideSell, tr.Side)
				assert.Equal(t, "15.1", tr.Price.String())
				assert.Equal(t, "BTC-USDT", tr.PairID)
			},
		},
		{
			name:   "no rows",
			scanFn: func(dest ...any) error { return pgx.ErrNoRows },
			assertFn: func(t *testing.T, tr *v1.Trade, err error) {
				assert.NoError(t, err)
				assert.Nil(t, tr)
			},
		},
		{
			name:   "scan error",
			scanFn: func(dest ...any) error { return stderrors.New("closed") },
			assertFn: func(t *testing.T, tr *v1.Trade, err error) {
				assert.ErrorContains(t, err, "closed")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock.NewMockClient(ctrl)
			row := mock.NewMockRow(ctrl)
			row.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(tc.scanFn)
			client.EXPECT().QueryRow(gomock.Any(), selectLatestQuery, "BTC-USDT").Return(row)

			repo := NewRepository(client)
			tr, err := repo.GetLatestTrade(context.Background(), "BTC-USDT")
			tc.assertFn(t, tr, err)
		})
	}
}
