package database

import (
	"strings"

	"seatwise/internal/timewindow"
)

func clock(minutes int) timewindow.Clock {
	return timewindow.Clock(minutes)
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// placeholders builds "?, ?, ..." for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args widens a slice of ids into query arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
