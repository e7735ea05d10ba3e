package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{"19:00", 19 * 60, false},
		{"9:30", 9*60 + 30, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{" 12:15 ", 12*60 + 15, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"12", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestClockString(t *testing.T) {
	if got := Clock(19*60 + 30).String(); got != "19:30" {
		t.Errorf("expected 19:30, got %s", got)
	}
	if got := Clock(0).String(); got != "00:00" {
		t.Errorf("expected 00:00, got %s", got)
	}
}

func TestClockOf(t *testing.T) {
	moment := time.Date(2026, 3, 14, 18, 45, 59, 0, time.UTC)
	assert.Equal(t, Clock(18*60+45), ClockOf(moment))
}

func TestWindowEndWrapsPastMidnight(t *testing.T) {
	w := New(23*60, 120) // 23:00 for 2h
	assert.Equal(t, Clock(60), w.End())
	assert.Equal(t, "23:00-01:00", w.String())
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"identical", New(19*60, 120), New(19*60, 120), true},
		{"partial", New(19*60, 120), New(19*60+30, 120), true},
		{"contained", New(18*60, 240), New(19*60, 60), true},
		{"adjacent end-to-start", New(18*60, 120), New(20*60, 120), false},
		{"adjacent start-to-end", New(20*60, 120), New(18*60, 120), false},
		{"disjoint", New(12*60, 60), New(18*60, 60), false},
		{"one minute over", New(18*60, 121), New(20*60, 60), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a))
		})
	}
}

func TestContains(t *testing.T) {
	w := New(19*60, 120) // [19:00, 21:00)

	assert.True(t, Contains(w, 19*60))
	assert.True(t, Contains(w, 20*60+59))
	assert.False(t, Contains(w, 21*60))
	assert.False(t, Contains(w, 18*60+59))
}

func TestContainsInclusive(t *testing.T) {
	w := Between(12*60, 23*60) // shift 12:00-23:00

	assert.True(t, ContainsInclusive(w, 12*60))
	assert.True(t, ContainsInclusive(w, 23*60))
	assert.False(t, ContainsInclusive(w, 23*60+1))
	assert.False(t, ContainsInclusive(w, 11*60+59))
}
