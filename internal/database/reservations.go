package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"seatwise/internal/models"
)

const reservationColumns = `
	id, confirmation_code, restaurant_id, client_id, shift_id, date, time,
	duration_minutes, party_size, status, type, reserved_element_id,
	combined_member_id, tags, notes, reminder_sent, created_at, modified_at`

// CreateReservation inserts a reservation and returns its id.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) (int64, error) {
	tableID, memberID := r.Assignment.Columns()
	var duration any
	if r.DurationMinutes != nil {
		duration = *r.DurationMinutes
	}
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO reservations (
			confirmation_code, restaurant_id, client_id, shift_id, date, time,
			duration_minutes, party_size, status, type, reserved_element_id,
			combined_member_id, tags, notes, created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ConfirmationCode, r.RestaurantID, ptrArg(r.ClientID), r.ShiftID,
		models.DateOnly(r.Date), int(r.Time), duration, r.PartySize,
		string(r.Status), string(r.Type), ptrArg(tableID), ptrArg(memberID),
		r.Tags, r.Notes, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert reservation: %w", err)
	}
	return result.LastInsertId()
}

// GetReservation returns a reservation by id.
func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx,
		"SELECT"+reservationColumns+" FROM reservations WHERE id = ?", id)
	r, err := scanReservationRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

// UpdateReservationFields persists the editable reservation fields (not the
// assignment, not the status).
func (db *DB) UpdateReservationFields(ctx context.Context, r *models.Reservation) error {
	var duration any
	if r.DurationMinutes != nil {
		duration = *r.DurationMinutes
	}
	result, err := db.ExecContext(ctx, `
		UPDATE reservations
		SET client_id = ?, shift_id = ?, date = ?, time = ?, duration_minutes = ?,
		    party_size = ?, tags = ?, notes = ?, modified_at = ?
		WHERE id = ?`,
		ptrArg(r.ClientID), r.ShiftID, models.DateOnly(r.Date), int(r.Time),
		duration, r.PartySize, r.Tags, r.Notes, time.Now(), r.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return requireAffected(result)
}

// UpdateAssignment writes the table-assignment union and stamps modified_at.
// Writing both columns from the union keeps single/combined mutually
// exclusive on every path.
func (db *DB) UpdateAssignment(ctx context.Context, id int64, a models.TableAssignment, status models.ReservationStatus) error {
	tableID, memberID := a.Columns()
	result, err := db.ExecContext(ctx, `
		UPDATE reservations
		SET reserved_element_id = ?, combined_member_id = ?, status = ?, modified_at = ?
		WHERE id = ?`,
		ptrArg(tableID), ptrArg(memberID), string(status), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireAffected(result)
}

// UpdateStatus writes a reservation's status.
func (db *DB) UpdateStatus(ctx context.Context, id int64, status models.ReservationStatus) error {
	result, err := db.ExecContext(ctx, `
		UPDATE reservations SET status = ?, modified_at = ? WHERE id = ?`,
		string(status), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireAffected(result)
}

// ListActiveForElement returns active (upcoming/seated) reservations holding
// the table directly on the given day.
func (db *DB) ListActiveForElement(ctx context.Context, elementID int64, date time.Time) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE reserved_element_id = ? AND combined_member_id IS NULL
		AND date(date) = date(?)
		AND status IN ('upcoming', 'seated')`,
		elementID, models.DateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("list active for element: %w", err)
	}
	return collectReservations(rows)
}

// ListActiveForElements returns active reservations holding any of the given
// tables directly on the given day.
func (db *DB) ListActiveForElements(ctx context.Context, elementIDs []int64, date time.Time) ([]models.Reservation, error) {
	if len(elementIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT%s
		FROM reservations
		WHERE reserved_element_id IN (%s) AND combined_member_id IS NULL
		AND date(date) = date(?)
		AND status IN ('upcoming', 'seated')`,
		reservationColumns, placeholders(len(elementIDs)))
	rows, err := db.QueryContext(ctx, query, append(int64Args(elementIDs), models.DateOnly(date))...)
	if err != nil {
		return nil, fmt.Errorf("list active for elements: %w", err)
	}
	return collectReservations(rows)
}

// ListActiveForMembers returns active reservations holding any of the given
// combination member rows on the given day.
func (db *DB) ListActiveForMembers(ctx context.Context, memberIDs []int64, date time.Time) ([]models.Reservation, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT%s
		FROM reservations
		WHERE combined_member_id IN (%s)
		AND date(date) = date(?)
		AND status IN ('upcoming', 'seated')`,
		reservationColumns, placeholders(len(memberIDs)))
	rows, err := db.QueryContext(ctx, query, append(int64Args(memberIDs), models.DateOnly(date))...)
	if err != nil {
		return nil, fmt.Errorf("list active for members: %w", err)
	}
	return collectReservations(rows)
}

// ListByDate returns a restaurant's reservations for a day, ordered by time.
func (db *DB) ListByDate(ctx context.Context, restaurantID int64, date time.Time) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE restaurant_id = ? AND date(date) = date(?)
		ORDER BY time, id`,
		restaurantID, models.DateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}
	return collectReservations(rows)
}

// ListByDateRange returns a restaurant's reservations between two days inclusive.
func (db *DB) ListByDateRange(ctx context.Context, restaurantID int64, from, to time.Time) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE restaurant_id = ? AND date(date) >= date(?) AND date(date) <= date(?)
		ORDER BY date, time, id`,
		restaurantID, models.DateOnly(from), models.DateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("list by date range: %w", err)
	}
	return collectReservations(rows)
}

// ListDueReminders returns today's upcoming reservations starting inside
// (fromMinute, toMinute] that have not been reminded yet.
func (db *DB) ListDueReminders(ctx context.Context, restaurantID int64, date time.Time, fromMinute, toMinute int) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE restaurant_id = ?
		AND date(date) = date(?)
		AND time > ? AND time <= ?
		AND status = 'upcoming'
		AND reminder_sent = 0`,
		restaurantID, models.DateOnly(date), fromMinute, toMinute)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return collectReservations(rows)
}

// MarkReminderSent flags a reservation as reminded.
func (db *DB) MarkReminderSent(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE reservations SET reminder_sent = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservationRow(row rowScanner) (*models.Reservation, error) {
	var r models.Reservation
	var clientID, tableID, memberID sql.NullInt64
	var duration sql.NullInt64
	var status, resType, tags, notes sql.NullString
	var minute int

	err := row.Scan(
		&r.ID, &r.ConfirmationCode, &r.RestaurantID, &clientID, &r.ShiftID,
		&r.Date, &minute, &duration, &r.PartySize, &status, &resType,
		&tableID, &memberID, &tags, &notes, &r.ReminderSent, &r.CreatedAt, &r.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Time = clock(minute)
	if clientID.Valid {
		id := clientID.Int64
		r.ClientID = &id
	}
	if duration.Valid {
		d := int(duration.Int64)
		r.DurationMinutes = &d
	}
	parsed, err := models.ParseStatus(status.String)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
	}
	r.Status = parsed
	r.Type = models.ReservationType(resType.String)
	r.Tags = tags.String
	r.Notes = notes.String

	var tPtr, mPtr *int64
	if tableID.Valid {
		tPtr = &tableID.Int64
	}
	if memberID.Valid {
		mPtr = &memberID.Int64
	}
	assignment, err := models.AssignmentFromColumns(tPtr, mPtr)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
	}
	r.Assignment = assignment
	return &r, nil
}

func collectReservations(rows *sql.Rows) ([]models.Reservation, error) {
	defer rows.Close()
	var reservations []models.Reservation
	for rows.Next() {
		r, err := scanReservationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}

func ptrArg(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
