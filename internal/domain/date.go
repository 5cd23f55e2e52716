package domain

import "time"

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to its civil date (00:00:00 UTC).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in UTC.
func Today() time.Time {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string. Empty or malformed input falls back
// to the given fallback date.
func ParseDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return DateOf(fallback)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return DateOf(fallback)
	}
	return DateOf(d)
}

// ParseDateStrict parses a YYYY-MM-DD string, returning the parse error for
// malformed input.
func ParseDateStrict(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(d), nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// StartOfWeek returns the Monday of the ISO week containing d.
func StartOfWeek(d time.Time) time.Time {
	d = DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// WeekDates returns the 7 dates (Monday through Sunday) of the ISO week
// containing center.
func WeekDates(center time.Time) []time.Time {
	start := StartOfWeek(center)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// MonthDates returns every calendar date of the given month, in order.
func MonthDates(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	dates := make([]time.Time, last)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}
