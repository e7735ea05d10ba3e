package timewindow

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseDurationText(t *testing.T) {
	logger := zerolog.New(io.Discard)

	tests := []struct {
		input string
		want  int
	}{
		{"2h:30m", 150},
		{"1h:00m", 60},
		{"2h", 120},
		{"90m", 90},
		{"02:30", 150},
		{"1:30", 90},
		{"3", 180},
		{" 2H ", 120},
		// Everything unparseable or non-positive falls back to the default.
		{"", DefaultDurationMinutes},
		{"garbage", DefaultDurationMinutes},
		{"two hours", DefaultDurationMinutes},
		{"0", DefaultDurationMinutes},
		{"0m", DefaultDurationMinutes},
		{"-30m", DefaultDurationMinutes},
		{"1h30m", DefaultDurationMinutes},
	}

	for _, tt := range tests {
		if got := ParseDurationText(tt.input, &logger); got != tt.want {
			t.Errorf("ParseDurationText(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseDurationTextAlwaysPositive(t *testing.T) {
	logger := zerolog.New(io.Discard)
	inputs := []string{"", "x", "0", "-5m", "0h:00m", "99:99:99", "1.5h"}
	for _, input := range inputs {
		if got := ParseDurationText(input, &logger); got <= 0 {
			t.Errorf("ParseDurationText(%q) = %d, want positive", input, got)
		}
	}
}

func TestParseDurationTextFallbackWarns(t *testing.T) {
	// Empty input takes the same warned fallback path as garbage input.
	for _, input := range []string{"", "   ", "garbage"} {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		if got := ParseDurationText(input, &logger); got != DefaultDurationMinutes {
			t.Errorf("ParseDurationText(%q) = %d, want %d", input, got, DefaultDurationMinutes)
		}
		if !strings.Contains(buf.String(), "unparseable duration") {
			t.Errorf("ParseDurationText(%q) did not log a warning: %q", input, buf.String())
		}
	}
}

func TestParseDurationTextNilLogger(t *testing.T) {
	if got := ParseDurationText("junk", nil); got != DefaultDurationMinutes {
		t.Errorf("expected default with nil logger, got %d", got)
	}
}
