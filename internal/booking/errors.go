package booking

import (
	"fmt"

	"seatwise/internal/timewindow"
)

// Reason is a machine-readable rejection code carried by the typed errors.
// Callers branch on these instead of matching message strings.
type Reason string

const (
	ReasonStatusLocked    Reason = "status_locked"
	ReasonOutsideShift    Reason = "outside_shift"
	ReasonNoActiveShift   Reason = "no_active_shift"
	ReasonAmbiguousTarget Reason = "ambiguous_target"
	ReasonNoTarget        Reason = "no_target"
	ReasonNotReservable   Reason = "not_reservable"
	ReasonCapacity        Reason = "capacity"
	ReasonPastDate        Reason = "past_date"
	ReasonBlocked         Reason = "blocked"
	ReasonOverlap         Reason = "overlap"
)

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string // "reservation", "shift", "table", "client", "combined table member"
	ID     int64
	Name   string // set instead of ID for by-name lookups
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Name)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidRequestError reports a structurally or semantically malformed
// request: bad target shape, time outside shift, capacity mismatch,
// ineligible status, past date.
type InvalidRequestError struct {
	Reason Reason
	Detail string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request (%s): %s", e.Reason, e.Detail)
}

// ConflictError reports a well-formed request that cannot be satisfied right
// now: a blocked table or an overlapping active reservation.
type ConflictError struct {
	Reason  Reason
	TableID int64 // offending physical table
	Window  timewindow.Window
	Detail  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict (%s) on table %d during %s: %s", e.Reason, e.TableID, e.Window, e.Detail)
}

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func invalid(reason Reason, format string, args ...any) error {
	return &InvalidRequestError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func conflict(reason Reason, tableID int64, w timewindow.Window, format string, args ...any) error {
	return &ConflictError{Reason: reason, TableID: tableID, Window: w, Detail: fmt.Sprintf(format, args...)}
}
