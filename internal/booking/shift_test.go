package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatwise/internal/database"
	"seatwise/internal/models"
	"seatwise/internal/timewindow"
)

type stubShiftSource struct {
	shifts []models.Shift
}

func (s *stubShiftSource) GetShift(_ context.Context, id int64) (*models.Shift, error) {
	for i := range s.shifts {
		if s.shifts[i].ID == id {
			return &s.shifts[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *stubShiftSource) GetShiftByName(_ context.Context, restaurantID int64, name string) (*models.Shift, error) {
	for i := range s.shifts {
		if s.shifts[i].RestaurantID == restaurantID && s.shifts[i].Name == name {
			return &s.shifts[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *stubShiftSource) ListShifts(_ context.Context, restaurantID int64) ([]models.Shift, error) {
	var out []models.Shift
	for _, shift := range s.shifts {
		if shift.RestaurantID == restaurantID {
			out = append(out, shift)
		}
	}
	return out, nil
}

func clockAt(h, m int) timewindow.Clock {
	return timewindow.Clock(h*60 + m)
}

func testShifts() *stubShiftSource {
	return &stubShiftSource{shifts: []models.Shift{
		{ID: 1, RestaurantID: 1, Name: "lunch", StartTime: clockAt(12, 0), EndTime: clockAt(16, 0)},
		{ID: 2, RestaurantID: 1, Name: "dinner", StartTime: clockAt(18, 0), EndTime: clockAt(23, 0)},
	}}
}

func TestCheckTimeInShift(t *testing.T) {
	shift := &models.Shift{StartTime: clockAt(18, 0), EndTime: clockAt(23, 0)}

	tests := []struct {
		name string
		at   timewindow.Clock
		want bool
	}{
		{"inside", clockAt(19, 30), true},
		{"at start", clockAt(18, 0), true},
		{"at end", clockAt(23, 0), true},
		{"before", clockAt(17, 59), false},
		{"after", clockAt(23, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckTimeInShift(tt.at, shift))
		})
	}
}

func TestValidateByName(t *testing.T) {
	v := NewShiftValidator(testShifts())
	ctx := context.Background()

	shift, err := v.Validate(ctx, 1, "dinner")
	require.NoError(t, err)
	assert.Equal(t, int64(2), shift.ID)

	_, err = v.Validate(ctx, 1, "brunch")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "shift", nf.Entity)
}

func TestValidateID(t *testing.T) {
	v := NewShiftValidator(testShifts())
	ctx := context.Background()

	shift, err := v.ValidateID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "lunch", shift.Name)

	_, err = v.ValidateID(ctx, 99)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestPickWalkInShift(t *testing.T) {
	v := NewShiftValidator(testShifts())
	ctx := context.Background()

	tests := []struct {
		name     string
		now      timewindow.Clock
		wantName string
		wantErr  bool
	}{
		{"during lunch", clockAt(13, 0), "lunch", false},
		{"between shifts picks next", clockAt(17, 0), "dinner", false},
		{"during dinner", clockAt(20, 0), "dinner", false},
		{"before opening picks first", clockAt(9, 0), "lunch", false},
		{"after close", clockAt(23, 30), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, err := v.PickWalkInShift(ctx, 1, tt.now)
			if tt.wantErr {
				var inv *InvalidRequestError
				require.ErrorAs(t, err, &inv)
				assert.Equal(t, ReasonNoActiveShift, inv.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, shift.Name)
		})
	}
}

func TestCheckCapacity(t *testing.T) {
	tests := []struct {
		party, min, max int
		want            bool
	}{
		{4, 2, 6, true},
		{2, 2, 6, true},
		{6, 2, 6, true},
		{1, 2, 6, false},
		{7, 2, 6, false},
	}
	for _, tt := range tests {
		if got := CheckCapacity(tt.party, tt.min, tt.max); got != tt.want {
			t.Errorf("CheckCapacity(%d, %d, %d) = %v, want %v", tt.party, tt.min, tt.max, got, tt.want)
		}
	}
}
