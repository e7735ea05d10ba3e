package models

import "fmt"

// ReservationStatus is the lifecycle state of a reservation. Waitlist is an
// explicit member; legacy rows with a NULL status column scan as Waitlist.
type ReservationStatus string

const (
	StatusWaitlist  ReservationStatus = "waitlist"
	StatusUpcoming  ReservationStatus = "upcoming"
	StatusSeated    ReservationStatus = "seated"
	StatusCompleted ReservationStatus = "completed"
	StatusNoShow    ReservationStatus = "no_show"
	StatusCancelled ReservationStatus = "cancelled"
	StatusRejected  ReservationStatus = "rejected"
)

// ParseStatus converts a stored status string into a ReservationStatus.
// An empty string maps to Waitlist.
func ParseStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case "", StatusWaitlist:
		return StatusWaitlist, nil
	case StatusUpcoming, StatusSeated, StatusCompleted, StatusNoShow, StatusCancelled, StatusRejected:
		return ReservationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown reservation status: %q", s)
	}
}

// IsActive reports whether the reservation counts for conflict detection.
// Only upcoming and seated reservations block a table.
func (s ReservationStatus) IsActive() bool {
	return s == StatusUpcoming || s == StatusSeated
}

// AllowsAssignment reports whether a table may be assigned or reassigned
// while the reservation is in this status. Completed, no-show, cancelled and
// rejected are terminal with respect to table assignment.
func (s ReservationStatus) AllowsAssignment() bool {
	switch s {
	case StatusWaitlist, StatusUpcoming, StatusSeated:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status permits no further assignment changes.
func (s ReservationStatus) IsTerminal() bool {
	return !s.AllowsAssignment()
}

func (s ReservationStatus) String() string {
	return string(s)
}
