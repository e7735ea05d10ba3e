package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"seatwise/internal/models"
)

// CreateCombinedTable inserts a combination and its member rows in one
// transaction. The UNIQUE(element_id) index rejects a table that already
// belongs to another combination.
func (db *DB) CreateCombinedTable(ctx context.Context, ct *models.CombinedTable, elementIDs []int64) (int64, error) {
	if len(elementIDs) == 0 {
		return 0, fmt.Errorf("combined table needs at least one member")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO combined_tables (floorplan_id, name, min_capacity, max_capacity)
		VALUES (?, ?, ?, ?)`,
		ct.FloorplanID, ct.Name, ct.MinCapacity, ct.MaxCapacity,
	)
	if err != nil {
		return 0, fmt.Errorf("insert combined table: %w", err)
	}
	combinedID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last id: %w", err)
	}

	for _, elementID := range elementIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO combined_table_members (combined_table_id, element_id)
			VALUES (?, ?)`, combinedID, elementID); err != nil {
			if isUniqueViolation(err) {
				return 0, ErrAlreadyMember
			}
			return 0, fmt.Errorf("insert member for element %d: %w", elementID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return combinedID, nil
}

// GetCombinedTable returns a combination by id.
func (db *DB) GetCombinedTable(ctx context.Context, id int64) (*models.CombinedTable, error) {
	var ct models.CombinedTable
	err := db.QueryRowContext(ctx, `
		SELECT id, floorplan_id, name, min_capacity, max_capacity, created_at
		FROM combined_tables WHERE id = ?`, id,
	).Scan(&ct.ID, &ct.FloorplanID, &ct.Name, &ct.MinCapacity, &ct.MaxCapacity, &ct.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan combined table: %w", err)
	}
	return &ct, nil
}

// GetMember returns one combination member row by id.
func (db *DB) GetMember(ctx context.Context, memberID int64) (*models.CombinedTableMember, error) {
	var m models.CombinedTableMember
	err := db.QueryRowContext(ctx, `
		SELECT id, combined_table_id, element_id
		FROM combined_table_members WHERE id = ?`, memberID,
	).Scan(&m.ID, &m.CombinedTableID, &m.ElementID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}

// GetMemberByElement returns the membership row of a physical table, or
// ErrNotFound when the table belongs to no combination. A table has at most
// one membership.
func (db *DB) GetMemberByElement(ctx context.Context, elementID int64) (*models.CombinedTableMember, error) {
	var m models.CombinedTableMember
	err := db.QueryRowContext(ctx, `
		SELECT id, combined_table_id, element_id
		FROM combined_table_members WHERE element_id = ?`, elementID,
	).Scan(&m.ID, &m.CombinedTableID, &m.ElementID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}

// ListMembers returns all member rows of a combination.
func (db *DB) ListMembers(ctx context.Context, combinedTableID int64) ([]models.CombinedTableMember, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, combined_table_id, element_id
		FROM combined_table_members WHERE combined_table_id = ?
		ORDER BY id`, combinedTableID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []models.CombinedTableMember
	for rows.Next() {
		var m models.CombinedTableMember
		if err := rows.Scan(&m.ID, &m.CombinedTableID, &m.ElementID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListCombinedTables returns every combination on a floorplan.
func (db *DB) ListCombinedTables(ctx context.Context, floorplanID int64) ([]models.CombinedTable, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, floorplan_id, name, min_capacity, max_capacity, created_at
		FROM combined_tables WHERE floorplan_id = ?
		ORDER BY id`, floorplanID)
	if err != nil {
		return nil, fmt.Errorf("list combined tables: %w", err)
	}
	defer rows.Close()

	var tables []models.CombinedTable
	for rows.Next() {
		var ct models.CombinedTable
		if err := rows.Scan(&ct.ID, &ct.FloorplanID, &ct.Name, &ct.MinCapacity, &ct.MaxCapacity, &ct.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan combined table: %w", err)
		}
		tables = append(tables, ct)
	}
	return tables, rows.Err()
}

// DeleteCombinedTable removes a combination, clearing any reservation that
// references one of its member rows first.
func (db *DB) DeleteCombinedTable(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM combined_tables WHERE id = ?", id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("check combined table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE reservations SET combined_member_id = NULL, modified_at = ?
		WHERE combined_member_id IN (SELECT id FROM combined_table_members WHERE combined_table_id = ?)`,
		time.Now(), id); err != nil {
		return fmt.Errorf("clear member assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM combined_table_members WHERE combined_table_id = ?", id); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM combined_tables WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete combined table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
