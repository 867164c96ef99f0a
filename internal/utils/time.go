package utils

import (
	"fmt"
	"time"

	"github.com/Chabota512/forge-drift/internal/constants"
)

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesSinceMidnight returns the wall-clock minute of day for t, 0-1439.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatMinutes renders minutes-since-midnight as a zero-padded HH:MM string.
// Values past the end of the day wrap around midnight.
func FormatMinutes(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatClock renders the time of day of t as a zero-padded HH:MM string.
func FormatClock(t time.Time) string {
	return t.Format(constants.TimeFormat)
}

// BlockDurationMinutes returns the duration between two HH:MM times.
// An end before the start is treated as wrapping past midnight.
func BlockDurationMinutes(start, end string) (int, error) {
	startMin, err := ParseTimeToMinutes(start)
	if err != nil {
		return 0, fmt.Errorf("invalid start time: %w", err)
	}
	endMin, err := ParseTimeToMinutes(end)
	if err != nil {
		return 0, fmt.Errorf("invalid end time: %w", err)
	}
	if endMin < startMin {
		endMin += 24 * 60
	}
	return endMin - startMin, nil
}

// FormatDriftDuration renders a minute count the way the drift surfaces show
// it: "1h 5m", "1h", "45m", "0m".
func FormatDriftDuration(minutes int) string {
	if minutes < 0 {
		minutes = -minutes
	}
	hours := minutes / 60
	mins := minutes % 60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Today returns the current local date string (YYYY-MM-DD).
func Today() string {
	return time.Now().Format(constants.DateFormat)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}
