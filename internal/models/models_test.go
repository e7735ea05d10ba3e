package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatwise/internal/timewindow"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    ReservationStatus
		wantErr bool
	}{
		{"", StatusWaitlist, false},
		{"waitlist", StatusWaitlist, false},
		{"upcoming", StatusUpcoming, false},
		{"seated", StatusSeated, false},
		{"completed", StatusCompleted, false},
		{"no_show", StatusNoShow, false},
		{"cancelled", StatusCancelled, false},
		{"rejected", StatusRejected, false},
		{"confirmed", "", true},
		{"SEATED", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestStatusGates(t *testing.T) {
	active := []ReservationStatus{StatusUpcoming, StatusSeated}
	inactive := []ReservationStatus{StatusWaitlist, StatusCompleted, StatusNoShow, StatusCancelled, StatusRejected}

	for _, s := range active {
		assert.True(t, s.IsActive(), "%s should be active", s)
		assert.True(t, s.AllowsAssignment(), "%s should allow assignment", s)
	}
	for _, s := range inactive {
		assert.False(t, s.IsActive(), "%s should not be active", s)
	}

	// Waitlist allows assignment but does not hold a table.
	assert.True(t, StatusWaitlist.AllowsAssignment())

	for _, s := range []ReservationStatus{StatusCompleted, StatusNoShow, StatusCancelled, StatusRejected} {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.False(t, s.AllowsAssignment(), "%s should not allow assignment", s)
	}
}

func TestAssignmentUnion(t *testing.T) {
	tableID := int64(7)
	memberID := int64(3)

	t.Run("from columns", func(t *testing.T) {
		a, err := AssignmentFromColumns(&tableID, nil)
		require.NoError(t, err)
		assert.Equal(t, AssignTable(7), a)

		a, err = AssignmentFromColumns(nil, &memberID)
		require.NoError(t, err)
		assert.Equal(t, AssignCombinedMember(3), a)

		a, err = AssignmentFromColumns(nil, nil)
		require.NoError(t, err)
		assert.False(t, a.IsAssigned())

		_, err = AssignmentFromColumns(&tableID, &memberID)
		assert.Error(t, err, "both columns set must be rejected")
	})

	t.Run("round trip", func(t *testing.T) {
		for _, a := range []TableAssignment{NoAssignment(), AssignTable(7), AssignCombinedMember(3)} {
			tid, mid := a.Columns()
			back, err := AssignmentFromColumns(tid, mid)
			require.NoError(t, err)
			assert.Equal(t, a, back)
		}
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "unassigned", NoAssignment().String())
		assert.Equal(t, "table:7", AssignTable(7).String())
		assert.Equal(t, "member:3", AssignCombinedMember(3).String())
	})
}

func TestReservationWindow(t *testing.T) {
	duration := 90
	r := Reservation{
		Time:            19 * 60,
		DurationMinutes: &duration,
	}
	w := r.Window()
	assert.Equal(t, timewindow.Clock(19*60), w.Start)
	assert.Equal(t, timewindow.Clock(20*60+30), w.End())

	r.DurationMinutes = nil
	assert.Equal(t, timewindow.DefaultDurationMinutes, r.EffectiveDuration())

	zero := 0
	r.DurationMinutes = &zero
	assert.Equal(t, timewindow.DefaultDurationMinutes, r.EffectiveDuration())
}

func TestBlockCoversDate(t *testing.T) {
	block := BlockTable{
		StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, block.CoversDate(time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)))
	assert.True(t, block.CoversDate(time.Date(2026, 9, 12, 23, 59, 0, 0, time.UTC)))
	assert.False(t, block.CoversDate(time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, block.CoversDate(time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)))
}

func TestClientFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Client{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&Client{FirstName: "Ada"}).FullName())
	assert.Equal(t, "", (&Client{}).FullName())
}
