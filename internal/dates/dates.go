package dates

import (
	"fmt"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	TimeLayout    = "15:04"
	DisplayLayout = "Jan 2, 2006"

	// Fallbacks used when a task has no due time.
	StartOfDay = "00:00"
	EndOfDay   = "23:59"
)

// FormatDate returns the YYYY-MM-DD key for the calendar day of t in t's own
// location. It never converts to UTC first, so a local 23:30 stays on the
// same day.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// FormatTime returns the 24-hour HH:MM clock time of t.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatDateForDisplay renders a YYYY-MM-DD string as "Jan 5, 2025".
// Unparseable input is returned unchanged.
func FormatDateForDisplay(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return d.Format(DisplayLayout)
}

// FormatTimeForDisplay renders an HH:MM string as "9:30 AM".
// Unparseable input is returned unchanged.
func FormatTimeForDisplay(clock string) string {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

// DayName returns the abbreviated weekday name, e.g. "Mon".
func DayName(t time.Time) string {
	return t.Weekday().String()[:3]
}

// MonthName returns the full English month name of t.
func MonthName(t time.Time) string {
	return t.Month().String()
}

// DaysInMonth returns the number of days in the zero-indexed month of year.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstDayOfMonth returns the weekday index (Sunday = 0) of the first day of
// the zero-indexed month of year.
func FirstDayOfMonth(year, month int) int {
	return int(time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// IsSameDay reports whether a and b fall on the same calendar day as seen in
// their own locations.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD string as local midnight.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.Local)
}

// ValidDate reports whether s is a real YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil && len(s) == len(DateLayout)
}

// ValidTime reports whether s is an HH:MM 24-hour clock time.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil && len(s) == len(TimeLayout)
}

// DueInstant combines a due date and an optional due time into a local
// instant. When clock is empty, fallback is used instead.
func DueInstant(date, clock, fallback string) (time.Time, error) {
	if clock == "" {
		clock = fallback
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, time.Local)
}

// RemainingTime labels how far away a due date is relative to time.Now.
func RemainingTime(dueDate, dueTime string) string {
	return RemainingTimeAt(dueDate, dueTime, time.Now())
}

// RemainingTimeAt labels how far the due instant is from now. A task without
// a time is due at the end of its day. Days are counted as calendar days in
// now's location, so something due at 08:00 tomorrow is "Due tomorrow" even
// if fewer than 24 hours remain.
func RemainingTimeAt(dueDate, dueTime string, now time.Time) string {
	due, err := DueInstant(dueDate, dueTime, EndOfDay)
	if err != nil {
		return "No due date"
	}
	due = due.In(now.Location())
	if due.Before(now) {
		return "Overdue"
	}
	switch days := CalendarDaysBetween(now, due); days {
	case 0:
		return "Due today"
	case 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// CalendarDaysBetween returns the number of calendar days from a to b,
// ignoring time of day. DST shifts do not affect the count.
func CalendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
