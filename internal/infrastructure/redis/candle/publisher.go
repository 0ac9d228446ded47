// Package candle publishes candle updates over Redis pub/sub.
package candle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/redis"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
)

var _ candle.Publisher = (*Publisher)(nil)

// Message is the payload sent on a candle channel.
type Message struct {
	v1.Candle
	Sealed bool `json:"sealed"`
}

// Channel returns the pub/sub channel of (pairID, r).
func Channel(pairID string, r resolution.Resolution) string {
	return fmt.Sprintf("candles:%s:%s", pairID, r.Name())
}

// CurrentKey returns the key holding the still-forming candle of (pairID, r).
func CurrentKey(pairID string, r resolution.Resolution) string {
	return fmt.Sprintf("candle:current:%s:%s", pairID, r.Name())
}

// Publisher publishes every candle change and keeps the open candle readable
// under CurrentKey.
type Publisher struct {
	client redis.Client
}

// NewPublisher creates a Redis candle publisher.
func NewPublisher(client redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishCandle publishes c. Open candles are also stored under CurrentKey
// and expire after two bucket widths without updates.
func (p *Publisher) PublishCandle(ctx context.Context, c *v1.Candle, sealed bool) error {
	payload, err := json.Marshal(Message{Candle: *c, Sealed: sealed})
	if err != nil {
		return errors.NewTracer("candle_marshal_error").Wrap(err)
	}

	channel := Channel(c.PairID, c.Resolution)
	if sealed {
		if _, err := p.client.Publish(ctx, channel, payload); err != nil {
			return errors.TracerFromError(err)
		}
		return nil
	}

	ttl := 2 * c.Resolution.Duration()
	if err := p.client.SetAndPublish(ctx, CurrentKey(c.PairID, c.Resolution), ttl, channel, payload); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}
