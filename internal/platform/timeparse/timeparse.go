package timeparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseable marks input that does not match any accepted shape. Callers
// treat it as "field absent" and continue; it is never a processing failure.
var ErrUnparseable = errors.New("unparseable time value")

// DurationMillis converts an elapsed time in MM:SS or MM:SS.mmm form into
// whole milliseconds. Any other shape, including HH:MM:SS, is unparseable.
func DurationMillis(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: expected MM:SS[.mmm], got %q", ErrUnparseable, raw)
	}

	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: invalid minutes in %q", ErrUnparseable, raw)
	}

	if !validSecondsField(parts[1]) {
		return 0, fmt.Errorf("%w: invalid seconds in %q", ErrUnparseable, raw)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid seconds in %q", ErrUnparseable, raw)
	}

	total := float64(minutes)*60 + seconds
	return int64(math.Round(total * 1000)), nil
}

// CalendarDate combines an M/D string with a reference year into an ISO
// YYYY-MM-DD string. Month and day are zero-padded but not range-checked:
// a day that does not exist in its month passes through unchanged.
func CalendarDate(raw string, refYear int) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: expected M/D, got %q", ErrUnparseable, raw)
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month <= 0 {
		return "", fmt.Errorf("%w: invalid month in %q", ErrUnparseable, raw)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || day <= 0 {
		return "", fmt.Errorf("%w: invalid day in %q", ErrUnparseable, raw)
	}

	return fmt.Sprintf("%d-%02d-%02d", refYear, month, day), nil
}

// ClockTime12 converts a 12-hour clock time with meridiem marker, e.g.
// "8:15AM", into 24-hour HH:MM:SS form.
func ClockTime12(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	// Scraped pages put a space before the meridiem marker ("7:30 AM").
	compact := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	parsed, err := time.Parse("3:04PM", compact)
	if err != nil {
		return "", fmt.Errorf("%w: expected H:MMAM or H:MMPM, got %q", ErrUnparseable, raw)
	}

	return parsed.Format("15:04:05"), nil
}

// NormalizeClockTime reformats MM:SS[.mmm] or HH:MM:SS[.mmm] into HH:MM:SS,
// dropping any sub-second precision.
func NormalizeClockTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrUnparseable)
	}
	if !strings.Contains(raw, ":") {
		return "", fmt.Errorf("%w: expected MM:SS or HH:MM:SS, got %q", ErrUnparseable, raw)
	}

	segments := strings.Split(raw, ":")
	if len(segments) == 2 {
		segments = append([]string{"00"}, segments...)
	}
	if len(segments) != 3 {
		return "", fmt.Errorf("%w: expected MM:SS[.mmm] or HH:MM:SS[.mmm], got %q", ErrUnparseable, raw)
	}

	// Single-digit fields occur in scraped values ("5:30"); the layout's
	// minute and second fields only accept two digits, so pad before parsing.
	segments[0] = padClockField(segments[0])
	segments[1] = padClockField(segments[1])
	segments[2] = padClockField(segments[2])

	// time.Parse accepts an optional fractional second after the seconds
	// field even when the layout omits it.
	parsed, err := time.Parse("15:04:05", strings.Join(segments, ":"))
	if err != nil {
		return "", fmt.Errorf("%w: expected MM:SS[.mmm] or HH:MM:SS[.mmm], got %q", ErrUnparseable, raw)
	}

	return parsed.Format("15:04:05"), nil
}

// padClockField zero-pads a clock field to two digits, leaving any fractional
// suffix on the seconds field intact.
func padClockField(field string) string {
	intPart := field
	if idx := strings.IndexByte(field, '.'); idx >= 0 {
		intPart = field[:idx]
	}
	if len(intPart) == 1 {
		return "0" + field
	}
	return field
}

// FormatMillis renders elapsed milliseconds back into MM:SS.mmm form. It is
// the inverse of DurationMillis for whole-second precision and is used when
// logging normalized totals.
func FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	rem := ms % 60000
	seconds := rem / 1000
	millis := rem % 1000
	if millis == 0 {
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
}

func validSecondsField(raw string) bool {
	if raw == "" {
		return false
	}
	intPart := raw
	fracPart := ""
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		intPart = raw[:idx]
		fracPart = raw[idx+1:]
		if fracPart == "" {
			return false
		}
	}
	return allDigits(intPart) && (fracPart == "" || allDigits(fracPart))
}

func allDigits(raw string) bool {
	if raw == "" {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}
