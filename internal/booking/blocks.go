package booking

import (
	"context"
	"time"

	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

// BlockSource is the storage surface the block registry needs.
type BlockSource interface {
	ListBlocksForElements(ctx context.Context, elementIDs []int64, date time.Time) ([]models.BlockTable, error)
}

// BlockRegistry decides whether tables are administratively blocked during a
// requested interval.
type BlockRegistry struct {
	store BlockSource
}

// NewBlockRegistry creates a block registry.
func NewBlockRegistry(store BlockSource) *BlockRegistry {
	return &BlockRegistry{store: store}
}

// FindBlocked returns the first of the given tables that is blocked on the
// date for an interval overlapping w. For a combination, pass every member's
// table id: any blocked member blocks the whole combination.
func (r *BlockRegistry) FindBlocked(ctx context.Context, elementIDs []int64, date time.Time, w timewindow.Window) (*models.BlockTable, error) {
	blocks, err := r.store.ListBlocksForElements(ctx, elementIDs, date)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		b := &blocks[i]
		if b.CoversDate(date) && timewindow.Overlaps(b.Window(), w) {
			return b, nil
		}
	}
	return nil, nil
}

// IsBlocked reports whether one table is blocked on the date for an interval
// overlapping w.
func (r *BlockRegistry) IsBlocked(ctx context.Context, elementID int64, date time.Time, w timewindow.Window) (bool, error) {
	block, err := r.FindBlocked(ctx, []int64{elementID}, date, w)
	if err != nil {
		return false, err
	}
	return block != nil, nil
}
