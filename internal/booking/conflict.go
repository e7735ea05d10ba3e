package booking

import (
	"context"
	"errors"
	"time"

	"seatwise/internal/database"
	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

// ReservationSource is the storage surface the conflict detector needs.
// The queries pre-filter by date and active status (upcoming/seated); the
// detector applies interval overlap and self-exclusion.
type ReservationSource interface {
	ListActiveForElement(ctx context.Context, elementID int64, date time.Time) ([]models.Reservation, error)
	ListActiveForElements(ctx context.Context, elementIDs []int64, date time.Time) ([]models.Reservation, error)
	ListActiveForMembers(ctx context.Context, memberIDs []int64, date time.Time) ([]models.Reservation, error)
}

// MemberSource resolves combination membership of physical tables.
type MemberSource interface {
	GetMember(ctx context.Context, memberID int64) (*models.CombinedTableMember, error)
	GetMemberByElement(ctx context.Context, elementID int64) (*models.CombinedTableMember, error)
	ListMembers(ctx context.Context, combinedTableID int64) ([]models.CombinedTableMember, error)
}

// ConflictDetector determines whether a candidate table, or every table in a
// combination, has an overlapping active reservation.
type ConflictDetector struct {
	reservations ReservationSource
	members      MemberSource
}

// NewConflictDetector creates a conflict detector.
func NewConflictDetector(reservations ReservationSource, members MemberSource) *ConflictDetector {
	return &ConflictDetector{reservations: reservations, members: members}
}

// FindTableConflict returns an active reservation that makes the single
// table unavailable during w on the date, or nil. excludeID is the
// reservation being (re)assigned, so it never conflicts with itself.
//
// Two sources can claim the table: other single-table reservations on it,
// and combined-table reservations on any member of a combination the table
// belongs to (a combined booking claims every member's physical table).
func (d *ConflictDetector) FindTableConflict(ctx context.Context, tableID int64, date time.Time, w timewindow.Window, excludeID int64) (*models.Reservation, error) {
	direct, err := d.reservations.ListActiveForElement(ctx, tableID, date)
	if err != nil {
		return nil, err
	}
	if r := firstOverlap(direct, w, excludeID); r != nil {
		return r, nil
	}

	membership, err := d.members.GetMemberByElement(ctx, tableID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	siblings, err := d.members.ListMembers(ctx, membership.CombinedTableID)
	if err != nil {
		return nil, err
	}
	viaCombination, err := d.reservations.ListActiveForMembers(ctx, memberIDs(siblings), date)
	if err != nil {
		return nil, err
	}
	return firstOverlap(viaCombination, w, excludeID), nil
}

// FindCombinedConflict returns an active reservation that makes the
// combination owning memberID unavailable during w, or nil. An active
// reservation on ANY member blocks every other member, and so does a
// single-table reservation holding any of the combination's physical tables.
func (d *ConflictDetector) FindCombinedConflict(ctx context.Context, memberID int64, date time.Time, w timewindow.Window, excludeID int64) (*models.Reservation, error) {
	member, err := d.members.GetMember(ctx, memberID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("combined table member", memberID)
	}
	if err != nil {
		return nil, err
	}
	siblings, err := d.members.ListMembers(ctx, member.CombinedTableID)
	if err != nil {
		return nil, err
	}

	viaMembers, err := d.reservations.ListActiveForMembers(ctx, memberIDs(siblings), date)
	if err != nil {
		return nil, err
	}
	if r := firstOverlap(viaMembers, w, excludeID); r != nil {
		return r, nil
	}

	viaElements, err := d.reservations.ListActiveForElements(ctx, elementIDs(siblings), date)
	if err != nil {
		return nil, err
	}
	return firstOverlap(viaElements, w, excludeID), nil
}

func firstOverlap(reservations []models.Reservation, w timewindow.Window, excludeID int64) *models.Reservation {
	for i := range reservations {
		r := &reservations[i]
		if r.ID == excludeID {
			continue
		}
		if !r.Status.IsActive() {
			continue
		}
		if r.OverlapsWindow(w) {
			return r
		}
	}
	return nil
}

func memberIDs(members []models.CombinedTableMember) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func elementIDs(members []models.CombinedTableMember) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ElementID
	}
	return ids
}
