package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devchron/internal/dates"
	"devchron/internal/mood"
	"devchron/internal/view"
)

type monthMoodsMsg struct {
	year  int
	month int
	moods map[string]mood.Mood
	err   error
}

type moodSavedMsg struct {
	day  string
	mood mood.Mood
	err  error
}

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func (m Model) updateCalendar(key string) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleCommon(key); handled {
		return next, cmd
	}

	k := m.cfg.Keys
	switch key {
	case k.Left, "left":
		return m.moveSelection(m.selected.AddDate(0, 0, -1))
	case k.Right, "right":
		return m.moveSelection(m.selected.AddDate(0, 0, 1))
	case k.PrevMonth:
		return m.moveSelection(shiftMonth(m.selected, -1))
	case k.NextMonth:
		return m.moveSelection(shiftMonth(m.selected, 1))
	case k.Today:
		return m.moveSelection(startOfDay(m.now()))
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(mood.Presets) {
		return m, m.saveMood(m.selected, mood.Presets[n-1])
	}
	return m, nil
}

func (m Model) moveSelection(day time.Time) (tea.Model, tea.Cmd) {
	prev := m.selected
	m.selected = startOfDay(day)
	m.cursor = 0
	m.showDetail = false
	if prev.Year() == m.selected.Year() && prev.Month() == m.selected.Month() {
		return m, nil
	}
	m.monthMoods = map[string]mood.Mood{}
	return m, m.loadMonthMoods()
}

// shiftMonth moves by whole months, clamping the day so Jan 31 + 1 lands on
// the last day of February.
func shiftMonth(t time.Time, delta int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, t.Location())
	day := min(t.Day(), dates.DaysInMonth(first.Year(), int(first.Month())-1))
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func (m Model) loadMonthMoods() tea.Cmd {
	if m.moods == nil {
		return nil
	}
	store := m.moods
	year, month := m.selected.Year(), int(m.selected.Month())-1
	return func() tea.Msg {
		ctx, cancel := moodContext()
		defer cancel()
		moods, err := store.Month(ctx, year, month)
		return monthMoodsMsg{year: year, month: month, moods: moods, err: err}
	}
}

func (m Model) saveMood(day time.Time, md mood.Mood) tea.Cmd {
	if m.moods == nil {
		return nil
	}
	store := m.moods
	return func() tea.Msg {
		ctx, cancel := moodContext()
		defer cancel()
		err := store.Set(ctx, day, md)
		return moodSavedMsg{day: dates.FormatDate(day), mood: md, err: err}
	}
}

func (m Model) renderCalendar() string {
	var b strings.Builder

	year, month := m.selected.Year(), int(m.selected.Month())-1
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", dates.MonthName(m.selected), year)))
	b.WriteString("\n")
	b.WriteString(m.renderGrid(year, month))
	b.WriteString("\n\n")

	key := dates.FormatDate(m.selected)
	heading := fmt.Sprintf("%s, %s", dates.DayName(m.selected), dates.FormatDateForDisplay(key))
	if md, ok := m.monthMoods[key]; ok {
		heading += "  " + md.Emoji + " " + md.Label
	}
	b.WriteString(headerStyle.Render(heading))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderMoodPicker()))
	b.WriteString("\n\n")

	list := m.visible()
	if len(list) == 0 {
		b.WriteString(mutedStyle.Render("No tasks for this day."))
		return b.String()
	}
	cur := clampCursor(m.cursor, len(list))
	for i, t := range list {
		b.WriteString(m.renderRow(t, i == cur))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderGrid(year, month int) string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render(strings.Join(weekdayHeader, "  ")))
	b.WriteString("\n")

	busy := view.DaysWithTasks(m.tasks, year, month)
	today := m.now()
	lead := dates.FirstDayOfMonth(year, month)
	days := dates.DaysInMonth(year, month)

	b.WriteString(strings.Repeat("    ", lead))
	for d := 1; d <= days; d++ {
		day := time.Date(year, time.Month(month+1), d, 0, 0, 0, 0, m.selected.Location())
		b.WriteString(m.renderCell(day, busy[dates.FormatDate(day)] > 0, dates.IsSameDay(day, today)))
		if (lead+d)%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return strings.TrimRight(b.String(), "\n ")
}

func (m Model) renderCell(day time.Time, hasTasks, isToday bool) string {
	mark := " "
	if hasTasks {
		mark = "•"
	}
	text := fmt.Sprintf("%2d%s", day.Day(), mark)

	style := lipgloss.NewStyle()
	if md, ok := m.monthMoods[dates.FormatDate(day)]; ok {
		style = style.Foreground(lipgloss.Color(md.Color))
	}
	if isToday {
		style = style.Inherit(todayStyle)
	}
	if dates.IsSameDay(day, m.selected) {
		style = style.Inherit(selectedStyle)
	}
	return style.Render(text)
}

func renderMoodPicker() string {
	parts := make([]string, len(mood.Presets))
	for i, p := range mood.Presets {
		parts[i] = fmt.Sprintf("%d %s %s", i+1, p.Emoji, p.Label)
	}
	return "How are you feeling?  " + strings.Join(parts, "  ")
}
