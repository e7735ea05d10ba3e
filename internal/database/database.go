// Package database implements sqlite-backed storage for the seating domain.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the sql connection pool.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyMember   = errors.New("table already belongs to a combination")
	ErrDuplicateShift  = errors.New("shift already exists")
	ErrDuplicateClient = errors.New("client already exists")
)

// NewDB opens (and if needed creates) the database at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and a busy timeout keep concurrent request handlers from
	// tripping over sqlite's writer lock.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS shifts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			restaurant_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(restaurant_id, name),
			CHECK(start_time < end_time)
		)`,

		`CREATE TABLE IF NOT EXISTS floorplan_elements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			floorplan_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			min_capacity INTEGER NOT NULL DEFAULT 1,
			max_capacity INTEGER NOT NULL DEFAULT 1,
			purpose TEXT NOT NULL DEFAULT 'reservable',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK(min_capacity <= max_capacity)
		)`,

		`CREATE TABLE IF NOT EXISTS combined_tables (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			floorplan_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			min_capacity INTEGER NOT NULL,
			max_capacity INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK(min_capacity <= max_capacity)
		)`,

		// A physical table belongs to at most one combination at a time.
		`CREATE TABLE IF NOT EXISTS combined_table_members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			combined_table_id INTEGER NOT NULL,
			element_id INTEGER NOT NULL UNIQUE,
			FOREIGN KEY(combined_table_id) REFERENCES combined_tables(id),
			FOREIGN KEY(element_id) REFERENCES floorplan_elements(id)
		)`,

		`CREATE TABLE IF NOT EXISTS block_tables (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			element_id INTEGER NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(element_id) REFERENCES floorplan_elements(id)
		)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT,
			phone TEXT NOT NULL,
			email TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(phone)
		)`,

		// A reservation holds a single table XOR a combination member, never
		// both. Status is stored explicitly; NULL is read back as waitlist
		// for rows written before the explicit value existed.
		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			confirmation_code TEXT NOT NULL UNIQUE,
			restaurant_id INTEGER NOT NULL,
			client_id INTEGER,
			shift_id INTEGER NOT NULL,
			date DATETIME NOT NULL,
			time INTEGER NOT NULL,
			duration_minutes INTEGER,
			party_size INTEGER NOT NULL,
			status TEXT,
			type TEXT NOT NULL DEFAULT 'on_call',
			reserved_element_id INTEGER,
			combined_member_id INTEGER,
			tags TEXT,
			notes TEXT,
			reminder_sent BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			modified_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(shift_id) REFERENCES shifts(id),
			FOREIGN KEY(client_id) REFERENCES clients(id),
			CHECK(reserved_element_id IS NULL OR combined_member_id IS NULL)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_element ON reservations(reserved_element_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_member ON reservations(combined_member_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_reminder ON reservations(reminder_sent, date)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_element ON block_tables(element_id, start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_members_combined ON combined_table_members(combined_table_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_restaurant ON shifts(restaurant_id, sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_floorplan ON floorplan_elements(floorplan_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
