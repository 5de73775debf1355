package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2025-06-01", FormatDate(time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12-31", FormatDate(time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-01", FormatDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

// Late evening west of UTC is already the next day in UTC. FormatDate keeps
// the local calendar day rather than the UTC one.
func TestFormatDate_UsesLocalCalendarDayNotUTC(t *testing.T) {
	newYork := time.FixedZone("EST", -5*60*60)
	evening := time.Date(2025, time.March, 9, 22, 30, 0, 0, newYork)

	assert.Equal(t, "2025-03-10", evening.UTC().Format(DateLayout))
	assert.Equal(t, "2025-03-09", FormatDate(evening))
}

func TestFormatDateForDisplay(t *testing.T) {
	assert.Equal(t, "Jan 5, 2025", FormatDateForDisplay("2025-01-05"))
	assert.Equal(t, "Dec 31, 2024", FormatDateForDisplay("2024-12-31"))
	assert.Equal(t, "not a date", FormatDateForDisplay("not a date"))
}

func TestFormatTimeForDisplay(t *testing.T) {
	assert.Equal(t, "9:30 AM", FormatTimeForDisplay("09:30"))
	assert.Equal(t, "11:05 PM", FormatTimeForDisplay("23:05"))
	assert.Equal(t, "12:00 PM", FormatTimeForDisplay("12:00"))
	assert.Equal(t, "", FormatTimeForDisplay(""))
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2025, 0, 31},
		{2025, 1, 28},
		{2024, 1, 29},
		{1900, 1, 28},
		{2000, 1, 29},
		{2025, 3, 30},
		{2025, 11, 31},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DaysInMonth(c.year, c.month), "year %d month %d", c.year, c.month)
	}
}

func TestFirstDayOfMonth(t *testing.T) {
	// June 1, 2025 was a Sunday; January 1, 2025 a Wednesday.
	assert.Equal(t, 0, FirstDayOfMonth(2025, 5))
	assert.Equal(t, 3, FirstDayOfMonth(2025, 0))
	assert.Equal(t, 6, FirstDayOfMonth(2022, 9))
}

func TestMonthAndDayNames(t *testing.T) {
	d := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "February", MonthName(d))
	assert.Equal(t, "Mon", DayName(d))
}

func TestIsSameDay(t *testing.T) {
	a := time.Date(2025, time.June, 1, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(b, c))
	assert.False(t, IsSameDay(a, time.Date(2024, time.June, 1, 0, 0, 1, 0, time.UTC)))
}

func TestValidDateAndTime(t *testing.T) {
	assert.True(t, ValidDate("2025-02-28"))
	assert.False(t, ValidDate("2025-02-30"))
	assert.False(t, ValidDate("2025-2-3"))
	assert.False(t, ValidDate(""))

	assert.True(t, ValidTime("00:00"))
	assert.True(t, ValidTime("23:59"))
	assert.False(t, ValidTime("24:00"))
	assert.False(t, ValidTime("9:30"))
}

func TestDueInstant_Fallback(t *testing.T) {
	got, err := DueInstant("2025-01-01", "", StartOfDay)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())

	got, err = DueInstant("2025-01-01", "", EndOfDay)
	require.NoError(t, err)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())

	_, err = DueInstant("garbage", "10:00", StartOfDay)
	assert.Error(t, err)
}

func TestRemainingTime_FarPastIsOverdue(t *testing.T) {
	assert.Equal(t, "Overdue", RemainingTime("2020-01-01", ""))
}

func TestRemainingTimeAt(t *testing.T) {
	now := time.Date(2025, time.June, 1, 20, 0, 0, 0, time.Local)

	assert.Equal(t, "Overdue", RemainingTimeAt("2025-06-01", "19:59", now))
	assert.Equal(t, "Due today", RemainingTimeAt("2025-06-01", "", now))
	assert.Equal(t, "Due today", RemainingTimeAt("2025-06-01", "21:00", now))
	assert.Equal(t, "Due tomorrow", RemainingTimeAt("2025-06-02", "23:00", now))
	assert.Equal(t, "Due in 5 days", RemainingTimeAt("2025-06-06", "10:00", now))
	assert.Equal(t, "No due date", RemainingTimeAt("", "", now))
}

// Something due at 08:00 tomorrow is less than 24 hours away at 20:00 today.
// Counting elapsed whole days would call it "Due today"; the label follows
// the calendar instead.
func TestRemainingTimeAt_CountsCalendarDays(t *testing.T) {
	now := time.Date(2025, time.June, 1, 20, 0, 0, 0, time.Local)
	assert.Equal(t, "Due tomorrow", RemainingTimeAt("2025-06-02", "08:00", now))
}

func TestCalendarDaysBetween(t *testing.T) {
	a := time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, CalendarDaysBetween(a, b))
	assert.Equal(t, -1, CalendarDaysBetween(b, a))
	assert.Equal(t, 0, CalendarDaysBetween(a, a))
}
