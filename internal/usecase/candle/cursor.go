package candle

import (
	"sort"
	"sync"

	"github.com/muhammadchandra19/ohlcv-engine/internal/aggregator"
	v1 "github.com/muhammadchandra19/ohlcv-engine/internal/domain/candle/v1"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/resolution"
	"golang.org/x/sync/errgroup"
)

// Cursor holds the still-forming candle of one (pair, resolution).
type Cursor struct {
	mu         sync.Mutex
	pairID     string
	resolution resolution.Resolution
	current    *v1.Candle
}

// NewCursor creates an empty cursor.
func NewCursor(pairID string, r resolution.Resolution) *Cursor {
	return &Cursor{pairID: pairID, resolution: r}
}

// Resolution returns the resolution the cursor aggregates.
func (c *Cursor) Resolution() resolution.Resolution {
	return c.resolution
}

// Check reports whether trade would be accepted by Fold.
func (c *Cursor) Check(trade v1.Trade) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return aggregator.Check(c.current, trade, c.resolution)
}

// Fold folds trade into the cursor and returns a copy of the updated candle and
// the sealed candle, if any. The sealed candle is no longer referenced by the cursor.
func (c *Cursor) Fold(trade v1.Trade) (*v1.Candle, *v1.Candle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, sealed, err := aggregator.Fold(c.current, trade, c.resolution)
	if err != nil {
		return nil, nil, err
	}
	c.current = updated
	return updated.Clone(), sealed, nil
}

// Reset replaces the open candle, typically with one reloaded from storage.
func (c *Cursor) Reset(candle *v1.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = candle.Clone()
}

// Snapshot returns a copy of the open candle or nil when the cursor is empty.
func (c *Cursor) Snapshot() *v1.Candle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// cursorSet is every cursor of one pair. mu serializes trades of the pair so
// that all resolutions see the same sequence.
type cursorSet struct {
	mu      sync.Mutex
	pairID  string
	cursors []*Cursor

	// sealed candles whose save failed; prepended to the next save
	unsaved []*v1.Candle
}

func newCursorSet(pairID string, resolutions []resolution.Resolution) *cursorSet {
	sorted := append([]resolution.Resolution(nil), resolutions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	cursors := make([]*Cursor, 0, len(sorted))
	for _, r := range sorted {
		cursors = append(cursors, NewCursor(pairID, r))
	}
	return &cursorSet{pairID: pairID, cursors: cursors}
}

func (s *cursorSet) cursor(r resolution.Resolution) (*Cursor, bool) {
	for _, c := range s.cursors {
		if c.resolution == r {
			return c, true
		}
	}
	return nil, false
}

// check validates trade against every cursor before any of them is mutated.
func (s *cursorSet) check(trade v1.Trade) error {
	for _, c := range s.cursors {
		if err := c.Check(trade); err != nil {
			return err
		}
	}
	return nil
}

// fold folds an already checked trade through every cursor concurrently.
// Results are ordered by resolution.
func (s *cursorSet) fold(trade v1.Trade) (updated []*v1.Candle, sealed []*v1.Candle, err error) {
	updates := make([]*v1.Candle, len(s.cursors))
	seals := make([]*v1.Candle, len(s.cursors))

	var g errgroup.Group
	for i, c := range s.cursors {
		g.Go(func() error {
			u, sc, err := c.Fold(trade)
			if err != nil {
				return err
			}
			updates[i], seals[i] = u, sc
			return nil
		})
	}
	err = g.Wait()

	for i := range s.cursors {
		if updates[i] != nil {
			updated = append(updated, updates[i])
		}
		if seals[i] != nil {
			sealed = append(sealed, seals[i])
		}
	}
	return updated, sealed, err
}

// snapshots returns copies of every open candle of the pair.
func (s *cursorSet) snapshots() []*v1.Candle {
	out := make([]*v1.Candle, 0, len(s.cursors))
	for _, c := range s.cursors {
		if snap := c.Snapshot(); snap != nil {
			out = append(out, snap)
		}
	}
	return out
}
