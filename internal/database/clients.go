package database

import (
	"context"
	"database/sql"
	"fmt"

	"seatwise/internal/models"
)

// CreateClient inserts a guest record.
func (db *DB) CreateClient(ctx context.Context, c *models.Client) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO clients (first_name, last_name, phone, email)
		VALUES (?, ?, ?, ?)`,
		c.FirstName, c.LastName, c.Phone, c.Email,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateClient
		}
		return 0, fmt.Errorf("insert client: %w", err)
	}
	return result.LastInsertId()
}

// GetClient returns a guest by id.
func (db *DB) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var c models.Client
	var lastName, email sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, phone, email, created_at
		FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.FirstName, &lastName, &c.Phone, &email, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	c.LastName = lastName.String
	c.Email = email.String
	return &c, nil
}

// UpdateClient updates a guest's contact fields.
func (db *DB) UpdateClient(ctx context.Context, c *models.Client) error {
	result, err := db.ExecContext(ctx, `
		UPDATE clients SET first_name = ?, last_name = ?, phone = ?, email = ?
		WHERE id = ?`,
		c.FirstName, c.LastName, c.Phone, c.Email, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
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
