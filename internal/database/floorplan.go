package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"seatwise/internal/models"
)

// CreateElement inserts a floorplan element.
func (db *DB) CreateElement(ctx context.Context, e *models.FloorplanElement) (int64, error) {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO floorplan_elements (floorplan_id, name, min_capacity, max_capacity, purpose, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.FloorplanID, e.Name, e.MinCapacity, e.MaxCapacity, string(e.Purpose), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert element: %w", err)
	}
	return result.LastInsertId()
}

// GetElement returns a floorplan element by id.
func (db *DB) GetElement(ctx context.Context, id int64) (*models.FloorplanElement, error) {
	var e models.FloorplanElement
	var purpose string
	err := db.QueryRowContext(ctx, `
		SELECT id, floorplan_id, name, min_capacity, max_capacity, purpose, created_at, updated_at
		FROM floorplan_elements WHERE id = ?`, id,
	).Scan(&e.ID, &e.FloorplanID, &e.Name, &e.MinCapacity, &e.MaxCapacity, &purpose, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan element: %w", err)
	}
	e.Purpose = models.ElementPurpose(purpose)
	return &e, nil
}

// ListElements returns every element of a floorplan.
func (db *DB) ListElements(ctx context.Context, floorplanID int64) ([]models.FloorplanElement, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, floorplan_id, name, min_capacity, max_capacity, purpose, created_at, updated_at
		FROM floorplan_elements WHERE floorplan_id = ?
		ORDER BY id`, floorplanID)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()

	var elements []models.FloorplanElement
	for rows.Next() {
		var e models.FloorplanElement
		var purpose string
		if err := rows.Scan(&e.ID, &e.FloorplanID, &e.Name, &e.MinCapacity, &e.MaxCapacity, &purpose, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		e.Purpose = models.ElementPurpose(purpose)
		elements = append(elements, e)
	}
	return elements, rows.Err()
}

// UpdateElement updates a floorplan element's editable fields.
func (db *DB) UpdateElement(ctx context.Context, e *models.FloorplanElement) error {
	result, err := db.ExecContext(ctx, `
		UPDATE floorplan_elements
		SET name = ?, min_capacity = ?, max_capacity = ?, purpose = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.MinCapacity, e.MaxCapacity, string(e.Purpose), time.Now(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update element: %w", err)
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

// DeleteElement removes a floorplan element together with everything that
// points at it: reservation assignments (direct and via combination
// membership), its membership rows and its blocks. One transaction, so a
// half-deleted table can never be observed.
func (db *DB) DeleteElement(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM floorplan_elements WHERE id = ?", id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("check element: %w", err)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE reservations SET reserved_element_id = NULL, modified_at = ?
		WHERE reserved_element_id = ?`, now, id); err != nil {
		return fmt.Errorf("clear direct assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE reservations SET combined_member_id = NULL, modified_at = ?
		WHERE combined_member_id IN (SELECT id FROM combined_table_members WHERE element_id = ?)`, now, id); err != nil {
		return fmt.Errorf("clear member assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM combined_table_members WHERE element_id = ?", id); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM block_tables WHERE element_id = ?", id); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM floorplan_elements WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete element: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	db.logger.Info().Int64("element_id", id).Msg("floorplan element deleted")
	return nil
}
