// Package engine routes trades to one worker goroutine per pair.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/util"
)

// Options tunes the engine.
type Options struct {
	// QueueSize is the buffer of each pair worker.
	QueueSize int
	// FlushInterval saves open cursors periodically. Zero disables it.
	FlushInterval time.Duration
	// LoadMaxInterval caps the wait between two attempts to load the cursors
	// of a pair. Loading is retried until it succeeds or the engine stops.
	LoadMaxInterval time.Duration
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() *Options {
	return &Options{
		QueueSize:       1024,
		FlushInterval:   time.Minute,
		LoadMaxInterval: 30 * time.Second,
	}
}

// Stats counts trades handled since start.
type Stats struct {
	Pairs     int
	Processed int64
	Rejected  int64
	Failed    int64
	// Dropped counts trades discarded because their pair never loaded.
	Dropped int64
}

// Engine owns one worker per pair. A worker is created on the first trade of
// its pair and loads the pair's cursors before folding anything. A stopped
// engine cannot be started again.
type Engine struct {
	usecase candle.Usecase
	logger  logger.Interface
	options *Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers map[string]chan v1.Trade

	// sendMu orders Submit against channel close in Stop.
	sendMu  sync.RWMutex
	running bool
	stopped bool

	processed atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewEngine creates an engine. A nil options value uses DefaultOptions.
func NewEngine(usecase candle.Usecase, log logger.Interface, options *Options) *Engine {
	if options == nil {
		options = DefaultOptions()
	}
	if options.QueueSize <= 0 {
		options.QueueSize = DefaultOptions().QueueSize
	}
	return &Engine{
		usecase: usecase,
		logger:  log,
		options: options,
		workers: make(map[string]chan v1.Trade),
	}
}

// Start makes the engine accept trades.
func (e *Engine) Start(ctx context.Context) error {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	if e.running {
		return errors.New(errors.GeneralInternalServerError, "engine already started", "engine")
	}
	if e.stopped {
		return errors.New(errors.EngineStopped, "engine cannot be restarted", "engine")
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running = true

	e.logger.Info("candle engine started",
		logger.NewField("queueSize", e.options.QueueSize),
		logger.NewField("flushInterval", e.options.FlushInterval.String()),
	)
	return nil
}

// Submit queues trade on its pair worker. It blocks while the queue is full.
func (e *Engine) Submit(ctx context.Context, trade v1.Trade) error {
	e.sendMu.RLock()
	defer e.sendMu.RUnlock()

	if !e.running {
		return errors.New(errors.EngineStopped, "engine is not running", "engine")
	}

	queue := e.worker(trade.PairID)
	select {
	case queue <- trade:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops accepting trades, lets every worker drain its queue and flush its
// open cursors, then waits for them or for ctx.
func (e *Engine) Stop(ctx context.Context) error {
	e.sendMu.Lock()
	if !e.running {
		e.sendMu.Unlock()
		return nil
	}
	e.running = false
	e.stopped = true

	e.mu.Lock()
	for _, queue := range e.workers {
		close(queue)
	}
	e.mu.Unlock()
	e.sendMu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		stats := e.Stats()
		e.logger.Info("candle engine stopped",
			logger.NewField("pairs", stats.Pairs),
			logger.NewField("processed", stats.Processed),
			logger.NewField("rejected", stats.Rejected),
			logger.NewField("failed", stats.Failed),
			logger.NewField("dropped", stats.Dropped),
		)
		return nil
	case <-ctx.Done():
		e.cancel()
		e.logger.Warn("candle engine stop timeout exceeded")
		return ctx.Err()
	}
}

// Stats returns the counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	pairs := len(e.workers)
	e.mu.Unlock()

	return Stats{
		Pairs:     pairs,
		Processed: e.processed.Load(),
		Rejected:  e.rejected.Load(),
		Failed:    e.failed.Load(),
		Dropped:   e.dropped.Load(),
	}
}

func (e *Engine) worker(pairID string) chan v1.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	if queue, ok := e.workers[pairID]; ok {
		return queue
	}

	queue := make(chan v1.Trade, e.options.QueueSize)
	e.workers[pairID] = queue

	e.wg.Add(1)
	go e.run(pairID, queue)
	return queue
}

func (e *Engine) run(pairID string, queue <-chan v1.Trade) {
	defer e.wg.Done()

	// Saves must outlive the cancellation so that queued trades are persisted.
	ctx := util.WithPairID(context.WithoutCancel(e.ctx), pairID)
	log := e.logger.With(logger.NewField("pair", pairID))

	if err := e.load(ctx, pairID); err != nil {
		// empty cursors would overwrite the stored candles of this pair
		dropped := e.discard(queue)
		log.ErrorContext(ctx, err,
			logger.NewField("action", "load cursors"),
			logger.NewField("dropped", dropped),
		)
		return
	}

	var tick <-chan time.Time
	if e.options.FlushInterval > 0 {
		ticker := time.NewTicker(e.options.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case trade, ok := <-queue:
			if !ok {
				if err := e.usecase.Flush(ctx, pairID); err != nil {
					log.ErrorContext(ctx, err, logger.NewField("action", "final flush"))
				}
				log.Info("pair worker stopped")
				return
			}
			e.process(util.ContextWithRequestID(ctx, trade.ID), trade)
		case <-tick:
			if err := e.usecase.Flush(ctx, pairID); err != nil {
				log.ErrorContext(ctx, err, logger.NewField("action", "periodic flush"))
			}
		}
	}
}

// load retries until the cursors are restored or the engine is cancelled.
func (e *Engine) load(ctx context.Context, pairID string) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0
	if limit := e.options.LoadMaxInterval; limit > 0 {
		policy.MaxInterval = limit
		policy.InitialInterval = min(policy.InitialInterval, limit)
	}
	policy.Reset()

	return backoff.RetryNotify(func() error {
		return e.usecase.Load(ctx, pairID)
	}, backoff.WithContext(policy, e.ctx), func(err error, wait time.Duration) {
		e.logger.WarnContext(ctx, "cursor load failed, retrying",
			logger.NewField("action", "load cursors"),
			logger.NewField("wait", wait.String()),
			logger.NewField("error", err.Error()),
		)
	})
}

// discard empties queue until Stop closes it.
func (e *Engine) discard(queue <-chan v1.Trade) int64 {
	var n int64
	for range queue {
		n++
	}
	e.dropped.Add(n)
	return n
}

func (e *Engine) process(ctx context.Context, trade v1.Trade) {
	_, err := e.usecase.ProcessTrade(ctx, trade)
	switch {
	case err == nil:
		e.processed.Add(1)
	case errors.IsCode(err, errors.OutOfOrderTrade), errors.IsCode(err, errors.InvalidTrade):
		e.rejected.Add(1)
	default:
		// the fold was applied; only persistence failed
		e.processed.Add(1)
		e.failed.Add(1)
		e.logger.ErrorContext(ctx, err,
			logger.NewField("action", "process trade"),
			logger.NewField("tradeId", trade.ID),
		)
	}
}
