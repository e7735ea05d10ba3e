// Package models defines the seating domain entities shared by storage,
// the booking core and the HTTP surface.
package models

import (
	"time"

	"seatwise/internal/timewindow"
)

// ReservationType distinguishes how a reservation entered the system.
type ReservationType string

const (
	TypeOnCall ReservationType = "on_call"
	TypeWalkIn ReservationType = "walk_in"
)

// ElementPurpose marks a floorplan element as reservable or decorative.
type ElementPurpose string

const (
	PurposeReservable ElementPurpose = "reservable"
	PurposeDecorative ElementPurpose = "decorative"
)

// Shift is a restaurant-scoped named service window, e.g. Dinner 17:00-23:00.
// StartTime < EndTime always; shifts never cross midnight.
type Shift struct {
	ID           int64            `json:"id"`
	RestaurantID int64            `json:"restaurant_id"`
	Name         string           `json:"name"`
	StartTime    timewindow.Clock `json:"start_time"`
	EndTime      timewindow.Clock `json:"end_time"`
	SortOrder    int              `json:"sort_order"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Window returns the shift's service window.
func (s *Shift) Window() timewindow.Window {
	return timewindow.Between(s.StartTime, s.EndTime)
}

// FloorplanElement is one placed table or decoration on a floorplan.
// Only reservable elements participate in assignment.
type FloorplanElement struct {
	ID          int64          `json:"id"`
	FloorplanID int64          `json:"floorplan_id"`
	Name        string         `json:"name"`
	MinCapacity int            `json:"min_capacity"`
	MaxCapacity int            `json:"max_capacity"`
	Purpose     ElementPurpose `json:"purpose"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsReservable reports whether the element can be bound to a reservation.
func (e *FloorplanElement) IsReservable() bool {
	return e.Purpose == PurposeReservable
}

// CombinedTable is a named group of tables reservable as one unit. Its
// capacity bounds are stored on the group itself (sum of members or an
// explicit override) and are not re-derived per check.
type CombinedTable struct {
	ID          int64     `json:"id"`
	FloorplanID int64     `json:"floorplan_id"`
	Name        string    `json:"name"`
	MinCapacity int       `json:"min_capacity"`
	MaxCapacity int       `json:"max_capacity"`
	CreatedAt   time.Time `json:"created_at"`
}

// CombinedTableMember is one physical table's membership in one combination.
type CombinedTableMember struct {
	ID              int64 `json:"id"`
	CombinedTableID int64 `json:"combined_table_id"`
	ElementID       int64 `json:"element_id"`
}

// BlockTable is an administrative exclusion of one table for a date range
// crossed with a daily time range (maintenance, VIP hold).
type BlockTable struct {
	ID        int64            `json:"id"`
	ElementID int64            `json:"element_id"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	StartTime timewindow.Clock `json:"start_time"`
	EndTime   timewindow.Clock `json:"end_time"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Window returns the block's daily time range.
func (b *BlockTable) Window() timewindow.Window {
	return timewindow.Between(b.StartTime, b.EndTime)
}

// CoversDate reports whether the block is in force on the given day
// (StartDate <= date <= EndDate, compared by calendar day).
func (b *BlockTable) CoversDate(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

// Client is a restaurant guest. Reservations without a client are walk-ins.
type Client struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins the client's first and last names, skipping empty parts.
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Reservation is the central entity: a claim on a table (or a combined-table
// member, or nothing yet) for a bounded interval of one service day.
type Reservation struct {
	ID               int64             `json:"id"`
	ConfirmationCode string            `json:"confirmation_code"`
	RestaurantID     int64             `json:"restaurant_id"`
	ClientID         *int64            `json:"client_id,omitempty"`
	ShiftID          int64             `json:"shift_id"`
	Date             time.Time         `json:"date"`
	Time             timewindow.Clock  `json:"time"`
	DurationMinutes  *int              `json:"duration_minutes,omitempty"`
	PartySize        int               `json:"party_size"`
	Status           ReservationStatus `json:"status"`
	Type             ReservationType   `json:"type"`
	Assignment       TableAssignment   `json:"assignment"`
	Tags             string            `json:"tags,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	ReminderSent     bool              `json:"reminder_sent"`
	CreatedAt        time.Time         `json:"created_at"`
	ModifiedAt       time.Time         `json:"modified_at"`
}

// EffectiveDuration returns the reservation's duration in minutes, falling
// back to the system default when none was set yet.
func (r *Reservation) EffectiveDuration() int {
	if r.DurationMinutes != nil && *r.DurationMinutes > 0 {
		return *r.DurationMinutes
	}
	return timewindow.DefaultDurationMinutes
}

// Window returns the reservation's claimed interval [Time, Time+Duration).
func (r *Reservation) Window() timewindow.Window {
	return timewindow.New(r.Time, r.EffectiveDuration())
}

// OverlapsWindow reports whether the reservation's interval intersects w.
func (r *Reservation) OverlapsWindow(w timewindow.Window) bool {
	return timewindow.Overlaps(r.Window(), w)
}

// SameDay reports whether the reservation is on the given calendar day.
func (r *Reservation) SameDay(date time.Time) bool {
	return DateOnly(r.Date).Equal(DateOnly(date))
}

// DateOnly truncates a timestamp to its calendar day in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
