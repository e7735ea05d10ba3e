package timewindow

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultDurationMinutes is used when a duration string cannot be parsed.
const DefaultDurationMinutes = 60

var (
	reHoursMinutes = regexp.MustCompile(`^(\d+)h:(\d+)m$`)
	reHours        = regexp.MustCompile(`^(\d+)h$`)
	reMinutes      = regexp.MustCompile(`^(\d+)m$`)
	reClockStrict  = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
	reClockFlex    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	reBareInt      = regexp.MustCompile(`^(\d+)$`)
)

// ParseDurationText converts a human-entered duration string into minutes.
// Accepted forms, first match wins: "2h:30m", "2h", "90m", "02:30", "2:30",
// and a bare integer meaning hours. Any other input (including an empty
// string) yields DefaultDurationMinutes and a warning; the function never
// returns an error.
func ParseDurationText(s string, logger *zerolog.Logger) int {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	minutes, ok := matchDuration(trimmed)
	if !ok || minutes <= 0 {
		if logger != nil {
			logger.Warn().Str("input", s).Int("fallback_minutes", DefaultDurationMinutes).
				Msg("unparseable duration, using default")
		}
		return DefaultDurationMinutes
	}
	return minutes
}

func matchDuration(s string) (int, bool) {
	if m := reHoursMinutes.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return hours*60 + minutes, true
	}
	if m := reHours.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return hours * 60, true
	}
	if m := reMinutes.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return minutes, true
	}
	if m := reClockStrict.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return hours*60 + minutes, true
	}
	if m := reClockFlex.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return hours*60 + minutes, true
	}
	if m := reBareInt.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return hours * 60, true
	}
	return 0, false
}
