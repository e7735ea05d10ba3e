package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"seatwise/internal/models"
)

// CreateBlock inserts an administrative block on a table.
func (db *DB) CreateBlock(ctx context.Context, b *models.BlockTable) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO block_tables (element_id, start_date, end_date, start_time, end_time, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ElementID, models.DateOnly(b.StartDate), models.DateOnly(b.EndDate),
		int(b.StartTime), int(b.EndTime), b.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert block: %w", err)
	}
	return result.LastInsertId()
}

// DeleteBlock removes a block by id.
func (db *DB) DeleteBlock(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM block_tables WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBlocksForElements returns the blocks covering any of the given tables
// on the given day.
func (db *DB) ListBlocksForElements(ctx context.Context, elementIDs []int64, date time.Time) ([]models.BlockTable, error) {
	if len(elementIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, element_id, start_date, end_date, start_time, end_time, notes, created_at
		FROM block_tables
		WHERE element_id IN (%s)
		AND date(start_date) <= date(?) AND date(end_date) >= date(?)`,
		placeholders(len(elementIDs)))
	args := append(int64Args(elementIDs), models.DateOnly(date), models.DateOnly(date))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.BlockTable
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// ListBlocks returns every block for one table.
func (db *DB) ListBlocks(ctx context.Context, elementID int64) ([]models.BlockTable, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, element_id, start_date, end_date, start_time, end_time, notes, created_at
		FROM block_tables WHERE element_id = ?
		ORDER BY start_date, start_time`, elementID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.BlockTable
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

func scanBlock(rows *sql.Rows) (*models.BlockTable, error) {
	var b models.BlockTable
	var start, end int
	var notes sql.NullString
	if err := rows.Scan(&b.ID, &b.ElementID, &b.StartDate, &b.EndDate, &start, &end, &notes, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan block: %w", err)
	}
	b.StartTime, b.EndTime = clock(start), clock(end)
	b.Notes = notes.String
	return &b, nil
}
