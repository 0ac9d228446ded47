// Package candle orchestrates per-pair cursors across every enabled resolution.
package candle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
)

var _ candle.Usecase = (*Usecase)(nil)

// Usecase folds trades into candles for every enabled resolution of every pair.
type Usecase struct {
	storage     candle.Storage
	publisher   candle.Publisher
	logger      logger.Interface
	resolutions []resolution.Resolution
	retry       RetryConfig

	mu    sync.RWMutex
	pairs map[string]*cursorSet
}

// Option configures a Usecase.
type Option func(*Usecase)

// WithPublisher sets the publisher notified about updated and sealed candles.
func WithPublisher(publisher candle.Publisher) Option {
	return func(u *Usecase) {
		u.publisher = publisher
	}
}

// WithRetry overrides the persistence retry policy.
func WithRetry(retry RetryConfig) Option {
	return func(u *Usecase) {
		u.retry = retry
	}
}

// NewUsecase creates a candle usecase. resolutions must not be empty.
func NewUsecase(storage candle.Storage, log logger.Interface, resolutions []resolution.Resolution, opts ...Option) (*Usecase, error) {
	if len(resolutions) == 0 {
		return nil, errors.New(errors.InvalidResolution, "no resolution enabled", "resolutions")
	}
	for _, r := range resolutions {
		if !r.IsValid() {
			return nil, errors.New(errors.InvalidResolution, fmt.Sprintf("unknown resolution %d", int(r)), "resolutions")
		}
	}

	u := &Usecase{
		storage:     storage,
		logger:      log,
		resolutions: append([]resolution.Resolution(nil), resolutions...),
		retry:       DefaultRetryConfig(),
		pairs:       make(map[string]*cursorSet),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Resolutions returns the enabled resolutions.
func (u *Usecase) Resolutions() []resolution.Resolution {
	return append([]resolution.Resolution(nil), u.resolutions...)
}

// Pairs returns every pair that has a cursor set, sorted.
func (u *Usecase) Pairs() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()

	pairs := make([]string, 0, len(u.pairs))
	for p := range u.pairs {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	return pairs
}

func (u *Usecase) cursorSet(pairID string) *cursorSet {
	u.mu.RLock()
	set, ok := u.pairs[pairID]
	u.mu.RUnlock()
	if ok {
		return set
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if set, ok := u.pairs[pairID]; ok {
		return set
	}
	set = newCursorSet(pairID, u.resolutions)
	u.pairs[pairID] = set
	return set
}

func (u *Usecase) existing(pairID string) (*cursorSet, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	set, ok := u.pairs[pairID]
	return set, ok
}

// Load reloads every cursor of pairID from the latest stored candle. A
// resolution without a stored candle starts empty. Candles a failed save left
// behind are discarded; storage is the state Load restores.
func (u *Usecase) Load(ctx context.Context, pairID string) error {
	set := u.cursorSet(pairID)
	set.mu.Lock()
	defer set.mu.Unlock()

	set.unsaved = nil

	for _, c := range set.cursors {
		latest, err := u.storage.GetLatestCandle(ctx, pairID, c.resolution)
		if err != nil {
			u.logger.ErrorContext(ctx, err,
				logger.NewField("action", "load cursor"),
				logger.NewField("pair", pairID),
				logger.NewField("resolution", c.resolution.Name()),
			)
			return errors.TracerFromError(err)
		}
		c.Reset(latest)

		if latest != nil {
			u.logger.DebugContext(ctx, "cursor restored",
				logger.NewField("pair", pairID),
				logger.NewField("resolution", c.resolution.Name()),
				logger.NewField("bucketStart", latest.BucketStart),
			)
		}
	}
	return nil
}

// ProcessTrade folds trade through every enabled resolution of its pair. Sealed
// candles are persisted before the updated and sealed candles are published.
//
// A trade rejected by any cursor is rejected by all of them. A persistence
// failure is returned after the fold has been applied; cursors are never
// rolled back. Sealed candles that could not be saved are retried with the
// next save of the pair.
func (u *Usecase) ProcessTrade(ctx context.Context, trade v1.Trade) (candle.Result, error) {
	set := u.cursorSet(trade.PairID)
	set.mu.Lock()
	defer set.mu.Unlock()

	if err := set.check(trade); err != nil {
		u.logger.WarnContext(ctx, "trade rejected",
			logger.NewField("action", "process trade"),
			logger.NewField("pair", trade.PairID),
			logger.NewField("tradeId", trade.ID),
			logger.NewField("timestamp", trade.Timestamp),
			logger.NewField("error", err.Error()),
		)
		return candle.Result{}, err
	}

	updated, sealed, err := set.fold(trade)
	if err != nil {
		return candle.Result{}, errors.TracerFromError(err)
	}
	result := candle.Result{Updated: updated, Sealed: sealed}

	var saveErr error
	if len(sealed) > 0 {
		saveErr = u.save(ctx, set, sealed, nil)
	}

	for _, s := range sealed {
		u.publish(ctx, s, true)
	}
	for _, c := range updated {
		u.publish(ctx, c, false)
	}

	return result, saveErr
}

// Backfill folds trades of pairID in order. Rejected trades are skipped and
// counted. Every batchSize folded trades, and once at the end, the sealed
// candles and every open cursor are saved together. With batchSize <= 0 only
// the sealed candles are saved, at the end. Sealed candles not saved when
// Backfill returns stay with the pair for its next save.
func (u *Usecase) Backfill(ctx context.Context, pairID string, trades []v1.Trade, batchSize int) (candle.BackfillStats, error) {
	var stats candle.BackfillStats

	set := u.cursorSet(pairID)
	set.mu.Lock()
	defer set.mu.Unlock()

	var pending []*v1.Candle
	defer func() {
		set.unsaved = append(set.unsaved, pending...)
	}()
	flush := func(withOpen bool) error {
		var open []*v1.Candle
		if withOpen {
			open = set.snapshots()
		}
		if len(pending) == 0 && len(open) == 0 && len(set.unsaved) == 0 {
			return nil
		}
		sealed := pending
		pending = nil
		if err := u.save(ctx, set, sealed, open); err != nil {
			return err
		}
		stats.Flushes++
		return nil
	}

	sinceFlush := 0
	for _, trade := range trades {
		if trade.PairID != pairID {
			stats.Skipped++
			u.logger.WarnContext(ctx, "trade of another pair skipped",
				logger.NewField("action", "backfill"),
				logger.NewField("pair", pairID),
				logger.NewField("tradePair", trade.PairID),
				logger.NewField("tradeId", trade.ID),
			)
			continue
		}
		if err := set.check(trade); err != nil {
			stats.Skipped++
			u.logger.WarnContext(ctx, "trade skipped",
				logger.NewField("action", "backfill"),
				logger.NewField("pair", pairID),
				logger.NewField("tradeId", trade.ID),
				logger.NewField("timestamp", trade.Timestamp),
				logger.NewField("error", err.Error()),
			)
			continue
		}

		_, sealed, err := set.fold(trade)
		if err != nil {
			return stats, errors.TracerFromError(err)
		}
		stats.Folded++
		stats.Sealed += len(sealed)
		pending = append(pending, sealed...)

		sinceFlush++
		if batchSize > 0 && sinceFlush >= batchSize {
			if err := ctx.Err(); err != nil {
				return stats, errors.TracerFromError(err)
			}
			if err := flush(true); err != nil {
				return stats, err
			}
			sinceFlush = 0
		}
	}

	if err := flush(batchSize > 0 && sinceFlush > 0); err != nil {
		return stats, err
	}

	u.logger.InfoContext(ctx, "backfill batch folded",
		logger.NewField("action", "backfill"),
		logger.NewField("pair", pairID),
		logger.NewField("folded", stats.Folded),
		logger.NewField("skipped", stats.Skipped),
		logger.NewField("sealed", stats.Sealed),
		logger.NewField("flushes", stats.Flushes),
	)
	return stats, nil
}

// Flush saves every open cursor of pairID along with any sealed candle a
// previous save failed to store. Unknown pairs are a no-op.
func (u *Usecase) Flush(ctx context.Context, pairID string) error {
	set, ok := u.existing(pairID)
	if !ok {
		return nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()

	open := set.snapshots()
	if len(open) == 0 && len(set.unsaved) == 0 {
		return nil
	}
	return u.save(ctx, set, nil, open)
}

// Current returns a copy of the still-forming candle of (pairID, r).
func (u *Usecase) Current(pairID string, r resolution.Resolution) (*v1.Candle, bool) {
	set, ok := u.existing(pairID)
	if !ok {
		return nil, false
	}
	c, ok := set.cursor(r)
	if !ok {
		return nil, false
	}
	snap := c.Snapshot()
	return snap, snap != nil
}

func (u *Usecase) publish(ctx context.Context, c *v1.Candle, sealed bool) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.PublishCandle(ctx, c, sealed); err != nil {
		u.logger.ErrorContext(ctx, err,
			logger.NewField("action", "publish candle"),
			logger.NewField("pair", c.PairID),
			logger.NewField("resolution", c.Resolution.Name()),
			logger.NewField("bucketStart", c.BucketStart),
			logger.NewField("sealed", sealed),
		)
	}
}
