package consumer

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	candlev1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/internal/domain/trade-consumer/v1/mock"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	loggerMock "github.com/muhammadchandra19/ohlcv-engine/pkg/logger/mock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testFixture struct {
	reader   *mock.MockMessageReader
	sink     *mock.MockTradeSink
	consumer *TradeConsumer
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)
	reader := mock.NewMockMessageReader(ctrl)
	sink := mock.NewMockTradeSink(ctrl)

	return &testFixture{
		reader:   reader,
		sink:     sink,
		consumer: NewTradeConsumer(reader, sink, logger.NewNop()),
	}
}

func tradeMessage(offset int64, value string) kafka.Message {
	return kafka.Message{Topic: "trades", Partition: 0, Offset: offset, Value: []byte(value)}
}

const validTrade = `{"id":"t-1","pairId":"BTC-USDT","side":"buy","price":"70000.5","volume":"0.25","timestamp":1717200000000}`

func TestDecodeTrade(t *testing.T) {
	testCases := []struct {
		name     string
		msg      kafka.Message
		assertFn func(t *testing.T, trade candlev1.Trade, err error)
	}{
		{
			name: "valid",
			msg:  tradeMessage(1, validTrade),
			assertFn: func(t *testing.T, trade candlev1.Trade, err error) {
				require.NoError(t, err)
				assert.Equal(t, "t-1", trade.ID)
				assert.Equal(t, "BTC-USDT", trade.PairID)
				assert.Equal(t, candlev1.SideBuy, trade.Side)
				assert.True(t, decimal.RequireFromString("70000.5").Equal(trade.Price))
				assert.True(t, decimal.RequireFromString("0.25").Equal(trade.Volume))
				assert.Equal(t, int64(1717200000000), trade.Timestamp)
			},
		},
		{
			name: "numeric price and key as pair",
			msg: kafka.Message{
				Topic:     "trades",
				Partition: 2,
				Offset:    7,
				Key:       []byte("ETH-USDT"),
				Value:     []byte(`{"price":3500,"volume":1,"timestamp":1717200000000}`),
			},
			assertFn: func(t *testing.T, trade candlev1.Trade, err error) {
				require.NoError(t, err)
				assert.Equal(t, "ETH-USDT", trade.PairID)
				assert.Equal(t, "trades-2-7", trade.ID)
				assert.True(t, decimal.NewFromInt(3500).Equal(trade.Price))
			},
		},
		{
			name: "not json",
			msg:  tradeMessage(1, "{"),
			assertFn: func(t *testing.T, _ candlev1.Trade, err error) {
				assert.True(t, errors.IsCode(err, errors.MalformedMessage))
			},
		},
		{
			name: "missing pair",
			msg:  tradeMessage(1, `{"price":"1","volume":"1","timestamp":1}`),
			assertFn: func(t *testing.T, _ candlev1.Trade, err error) {
				assert.True(t, errors.IsCode(err, errors.MalformedMessage))
			},
		},
		{
			name: "missing timestamp",
			msg:  tradeMessage(1, `{"pairId":"BTC-USDT","price":"1","volume":"1"}`),
			assertFn: func(t *testing.T, _ candlev1.Trade, err error) {
				assert.True(t, errors.IsCode(err, errors.MalformedMessage))
			},
		},
		{
			name: "unknown side",
			msg:  tradeMessage(1, `{"pairId":"BTC-USDT","side":"hold","price":"1","volume":"1","timestamp":1}`),
			assertFn: func(t *testing.T, _ candlev1.Trade, err error) {
				assert.True(t, errors.IsCode(err, errors.MalformedMessage))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade, err := DecodeTrade(tc.msg)
			tc.assertFn(t, trade, err)
		})
	}
}

func TestTradeConsumer_Run(t *testing.T) {
	good := tradeMessage(1, validTrade)
	bad := tradeMessage(2, "not-json")

	testCases := []struct {
		name     string
		mockFn   func(f *testFixture)
		assertFn func(t *testing.T, err error)
	}{
		{
			name: "submits then commits",
			mockFn: func(f *testFixture) {
				gomock.InOrder(
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(good, nil),
					f.sink.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
						func(_ context.Context, trade candlev1.Trade) error {
							assert.Equal(t, "t-1", trade.ID)
							return nil
						}),
					f.reader.EXPECT().CommitMessages(gomock.Any(), good).Return(nil),
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "malformed message is committed and skipped",
			mockFn: func(f *testFixture) {
				gomock.InOrder(
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(bad, nil),
					f.reader.EXPECT().CommitMessages(gomock.Any(), bad).Return(nil),
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(good, nil),
					f.sink.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil),
					f.reader.EXPECT().CommitMessages(gomock.Any(), good).Return(nil),
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "commit failure is logged",
			mockFn: func(f *testFixture) {
				gomock.InOrder(
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(good, nil),
					f.sink.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil),
					f.reader.EXPECT().CommitMessages(gomock.Any(), good).Return(stderrors.New("coordinator moved")),
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "stopped engine ends the run without commit",
			mockFn: func(f *testFixture) {
				gomock.InOrder(
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(good, nil),
					f.sink.EXPECT().Submit(gomock.Any(), gomock.Any()).
						Return(errors.New(errors.EngineStopped, "engine is not running", "engine")),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "sink failure is returned",
			mockFn: func(f *testFixture) {
				gomock.InOrder(
					f.reader.EXPECT().FetchMessage(gomock.Any()).Return(good, nil),
					f.sink.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(stderrors.New("boom")),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "boom")
			},
		},
		{
			name: "fetch failure is returned",
			mockFn: func(f *testFixture) {
				f.reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, stderrors.New("broker down"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "broker down")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tc.mockFn(f)
			tc.assertFn(t, f.consumer.Run(context.Background()))
		})
	}
}

func TestTradeConsumer_RunCanceled(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.reader.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
		cancel()
		return kafka.Message{}, ctx.Err()
	})

	assert.NoError(t, f.consumer.Run(ctx))
}

func TestTradeConsumer_Close(t *testing.T) {
	f := setupTestFixture(t)
	f.reader.EXPECT().Close().Return(nil)

	assert.NoError(t, f.consumer.Close())
}

func TestTradeConsumer_LogsMalformedMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mock.NewMockMessageReader(ctrl)
	sink := mock.NewMockTradeSink(ctrl)
	log := loggerMock.NewMockInterface(ctrl)

	bad := tradeMessage(9, `{"pairId":""}`)
	gomock.InOrder(
		reader.EXPECT().FetchMessage(gomock.Any()).Return(bad, nil),
		reader.EXPECT().CommitMessages(gomock.Any(), bad).Return(nil),
		reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, io.EOF),
	)
	log.EXPECT().InfoContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().ErrorContext(gomock.Any(), gomock.Cond(func(x any) bool {
		err, ok := x.(error)
		return ok && errors.IsCode(err, errors.MalformedMessage)
	}), gomock.Any()).Times(1)

	assert.NoError(t, NewTradeConsumer(reader, sink, log).Run(context.Background()))
}
