package booking

import (
	"context"
	"errors"

	"seatwise/internal/database"
	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

// ShiftSource is the storage surface the shift validator needs.
type ShiftSource interface {
	GetShift(ctx context.Context, id int64) (*models.Shift, error)
	GetShiftByName(ctx context.Context, restaurantID int64, name string) (*models.Shift, error)
	ListShifts(ctx context.Context, restaurantID int64) ([]models.Shift, error)
}

// ShiftValidator confirms that a restaurant offers a shift and that a
// requested time lies inside its window.
type ShiftValidator struct {
	store ShiftSource
}

// NewShiftValidator creates a shift validator.
func NewShiftValidator(store ShiftSource) *ShiftValidator {
	return &ShiftValidator{store: store}
}

// Validate resolves a restaurant's shift by name.
func (v *ShiftValidator) Validate(ctx context.Context, restaurantID int64, shiftName string) (*models.Shift, error) {
	shift, err := v.store.GetShiftByName(ctx, restaurantID, shiftName)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{Entity: "shift", Name: shiftName}
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// ValidateID resolves a shift by id.
func (v *ShiftValidator) ValidateID(ctx context.Context, shiftID int64) (*models.Shift, error) {
	shift, err := v.store.GetShift(ctx, shiftID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("shift", shiftID)
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// CheckTimeInShift reports whether t lies inside the shift window, inclusive
// on both ends.
func CheckTimeInShift(t timewindow.Clock, shift *models.Shift) bool {
	return t >= shift.StartTime && t <= shift.EndTime
}

// PickWalkInShift selects the shift for a walk-in arriving at now: the first
// shift whose window contains now, else the first shift whose start is still
// ahead. Shifts are considered in declaration order.
func (v *ShiftValidator) PickWalkInShift(ctx context.Context, restaurantID int64, now timewindow.Clock) (*models.Shift, error) {
	shifts, err := v.store.ListShifts(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	for i := range shifts {
		if CheckTimeInShift(now, &shifts[i]) {
			return &shifts[i], nil
		}
	}
	for i := range shifts {
		if shifts[i].StartTime > now {
			return &shifts[i], nil
		}
	}
	return nil, invalid(ReasonNoActiveShift, "no shift is open or upcoming at %s", now)
}
