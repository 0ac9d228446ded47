package candle

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
)

// RetryConfig is the exponential backoff applied to candle saves.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (r RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.InitialInterval
	exp.MaxInterval = r.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, r.MaxRetries), ctx)
}

// persist saves candles, retrying with backoff. The candles are immutable
// copies so retries always write the same values.
func (u *Usecase) persist(ctx context.Context, candles []*v1.Candle) error {
	op := func() error {
		var err error
		if len(candles) == 1 {
			err = u.storage.SaveCandle(ctx, candles[0])
		} else {
			err = u.storage.SaveCandles(ctx, candles)
		}
		if errors.IsCode(err, errors.InvalidCandle) {
			return backoff.Permanent(err)
		}
		return err
	}

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		u.logger.WarnContext(ctx, "candle save failed, retrying",
			logger.NewField("action", "save candle"),
			logger.NewField("pair", candles[0].PairID),
			logger.NewField("candles", len(candles)),
			logger.NewField("attempt", attempt),
			logger.NewField("wait", wait.String()),
			logger.NewField("error", err.Error()),
		)
	}

	if err := backoff.RetryNotify(op, u.retry.backOff(ctx), notify); err != nil {
		if errors.IsCode(err, errors.InvalidCandle) {
			u.logger.ErrorContext(ctx, err,
				logger.NewField("action", "save candle"),
				logger.NewField("pair", candles[0].PairID),
				logger.NewField("candles", len(candles)),
			)
			return errors.TracerFromError(err)
		}
		first := candles[0]
		details := errors.NewErrorDetailsWithObject(
			fmt.Sprintf("saving %d candle(s) of %s from %s bucket %d: %v",
				len(candles), first.PairID, first.Resolution, first.BucketStart, err),
			errors.PersistenceFailure.String(), "candle", candles)
		u.logger.ErrorContext(ctx, details,
			logger.NewField("action", "save candle"),
			logger.NewField("pair", first.PairID),
			logger.NewField("candles", len(candles)),
		)
		return errors.TracerFromError(details)
	}
	return nil
}

// save persists the candles left unsaved by earlier failures together with
// sealed and open. On failure the sealed candles are kept on set for the next
// save; open snapshots are not, the cursor still holds them. A batch storage
// refuses as invalid is dropped. set.mu must be held.
func (u *Usecase) save(ctx context.Context, set *cursorSet, sealed, open []*v1.Candle) error {
	retained := u.valid(ctx, append(append([]*v1.Candle(nil), set.unsaved...), sealed...))
	batch := append(append([]*v1.Candle(nil), retained...), u.valid(ctx, open)...)
	if len(batch) == 0 {
		set.unsaved = nil
		return nil
	}

	if err := u.persist(ctx, batch); err != nil {
		set.unsaved = retained
		if errors.IsCode(err, errors.InvalidCandle) {
			set.unsaved = nil
		}
		return err
	}
	set.unsaved = nil
	return nil
}

// valid drops candles storage would refuse, so one bad candle cannot hold
// back the rest of a batch forever.
func (u *Usecase) valid(ctx context.Context, candles []*v1.Candle) []*v1.Candle {
	kept := candles[:0]
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			u.logger.ErrorContext(ctx, errors.NewErrorDetailsWithObject(err.Error(), errors.InvalidCandle.String(), "candle", c),
				logger.NewField("action", "save candle"),
				logger.NewField("pair", c.PairID),
				logger.NewField("resolution", c.Resolution.Name()),
				logger.NewField("bucketStart", c.BucketStart),
			)
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
