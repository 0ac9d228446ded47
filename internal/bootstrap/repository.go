package bootstrap

import (
	candleInfra "github.com/muhammadchandra19/ohlcv-engine/internal/infrastructure/questdb/candle"
	tradeInfra "github.com/muhammadchandra19/ohlcv-engine/internal/infrastructure/questdb/trade"
	candlePublisher "github.com/muhammadchandra19/ohlcv-engine/internal/infrastructure/redis/candle"
)

// Repository holds the storage and notification adapters.
type Repository struct {
	CandleRepository *candleInfra.Repository
	TradeRepository  *tradeInfra.Repository
	// CandlePublisher is nil without Redis.
	CandlePublisher *candlePublisher.Publisher
}

// registerRepository registers the repository.
func (b *Bootstrap) registerRepository() {
	b.Repository.CandleRepository = candleInfra.NewRepository(b.QuestDB)
	b.Repository.TradeRepository = tradeInfra.NewRepository(b.QuestDB)
	if b.Redis != nil {
		b.Repository.CandlePublisher = candlePublisher.NewPublisher(b.Redis)
	}
}
