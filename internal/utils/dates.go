package utils

import "time"

// DateKeyLayout is the canonical YYYY-MM-DD form used for all date fields.
const DateKeyLayout = "2006-01-02"

// NowISO returns the current UTC time in RFC 3339 form with millisecond
// precision, the format every createdAt/updatedAt field is stored in.
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// ToDateKey formats a time as a date key.
func ToDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a date key into a midnight-local time. The zero time
// and false are returned for malformed input.
func ParseDateKey(key string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	diff := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		diff = 6
	}
	return t.AddDate(0, 0, -diff)
}

// EndOfWeek returns the Sunday of the week containing t.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// EnumerateDates lists every date key between from and to inclusive whose
// weekday is in weekdays. An empty weekday set admits every day. Malformed
// bounds or an inverted range yield an empty list.
func EnumerateDates(from, to string, weekdays map[time.Weekday]bool) []string {
	start, okFrom := ParseDateKey(from)
	end, okTo := ParseDateKey(to)
	if !okFrom || !okTo || start.After(end) {
		return nil
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(weekdays) == 0 || weekdays[d.Weekday()] {
			out = append(out, ToDateKey(d))
		}
	}
	return out
}
