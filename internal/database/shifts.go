package database

import (
	"context"
	"database/sql"
	"fmt"

	"seatwise/internal/models"
)

// CreateShift inserts a shift for a restaurant.
func (db *DB) CreateShift(ctx context.Context, s *models.Shift) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO shifts (restaurant_id, name, start_time, end_time, sort_order)
		VALUES (?, ?, ?, ?, ?)`,
		s.RestaurantID, s.Name, int(s.StartTime), int(s.EndTime), s.SortOrder,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateShift
		}
		return 0, fmt.Errorf("insert shift: %w", err)
	}
	return result.LastInsertId()
}

// GetShift returns a shift by id.
func (db *DB) GetShift(ctx context.Context, id int64) (*models.Shift, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, name, start_time, end_time, sort_order, created_at
		FROM shifts WHERE id = ?`, id)
	return scanShift(row)
}

// GetShiftByName returns a restaurant's shift by name.
func (db *DB) GetShiftByName(ctx context.Context, restaurantID int64, name string) (*models.Shift, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, name, start_time, end_time, sort_order, created_at
		FROM shifts WHERE restaurant_id = ? AND name = ?`, restaurantID, name)
	return scanShift(row)
}

// ListShifts returns a restaurant's shifts in declaration order.
func (db *DB) ListShifts(ctx context.Context, restaurantID int64) ([]models.Shift, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, restaurant_id, name, start_time, end_time, sort_order, created_at
		FROM shifts WHERE restaurant_id = ?
		ORDER BY sort_order, id`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []models.Shift
	for rows.Next() {
		s, err := scanShiftRows(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *s)
	}
	return shifts, rows.Err()
}

func scanShift(row *sql.Row) (*models.Shift, error) {
	var s models.Shift
	var start, end int
	err := row.Scan(&s.ID, &s.RestaurantID, &s.Name, &start, &end, &s.SortOrder, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan shift: %w", err)
	}
	s.StartTime, s.EndTime = clock(start), clock(end)
	return &s, nil
}

func scanShiftRows(rows *sql.Rows) (*models.Shift, error) {
	var s models.Shift
	var start, end int
	if err := rows.Scan(&s.ID, &s.RestaurantID, &s.Name, &start, &end, &s.SortOrder, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan shift: %w", err)
	}
	s.StartTime, s.EndTime = clock(start), clock(end)
	return &s, nil
}
