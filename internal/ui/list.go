package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"devchron/internal/dates"
	"devchron/internal/task"
	"devchron/internal/view"
)

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	if m.chord != "" {
		seq := m.chord + key
		m.chord = ""
		if o, ok := m.sortBinding(seq); ok {
			m.applySort(o)
			return m, nil
		}
	}
	if o, ok := m.sortBinding(key); ok {
		m.applySort(o)
		return m, nil
	}
	if m.isSortPrefix(key) {
		m.chord = key
		m.setStatus("sort: " + key + "…")
		return m, nil
	}

	if next, cmd, handled := m.handleCommon(key); handled {
		return next, cmd
	}

	if key == m.cfg.Keys.Filter {
		m.filter = m.filter.Next()
		m.cursor = 0
		m.setStatus(fmt.Sprintf("Showing %s tasks", strings.ToLower(m.filter.Label())))
	}
	return m, nil
}

func (m Model) sortBinding(seq string) (view.Sort, bool) {
	k := m.cfg.Keys
	switch seq {
	case k.SortDue:
		return view.SortDueDate, true
	case k.SortPriority:
		return view.SortPriority, true
	case k.SortCreated:
		return view.SortCreated, true
	}
	return "", false
}

func (m Model) isSortPrefix(key string) bool {
	k := m.cfg.Keys
	for _, b := range []string{k.SortDue, k.SortPriority, k.SortCreated} {
		if len(b) > len(key) && strings.HasPrefix(b, key) {
			return true
		}
	}
	return false
}

func (m *Model) applySort(o view.Sort) {
	var selected string
	if t, ok := m.current(); ok {
		selected = t.ID
	}
	m.sort = o
	m.cursor = 0
	if selected != "" {
		m.selectTask(selected)
	}
	m.setStatus("Sorted by " + strings.ToLower(o.Label()))
}

func (m Model) renderTaskList() string {
	var b strings.Builder

	if up := view.Upcoming(m.tasks, m.cfg.UpcomingCount, m.now()); len(up) > 0 {
		b.WriteString(headerStyle.Render("Upcoming"))
		b.WriteString("\n")
		for _, t := range up {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", priorityBadge(t.Priority), t.Title,
				mutedStyle.Render(dates.RemainingTimeAt(t.DueDate, t.DueTime, m.now()))))
		}
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", m.filter.Label(), view.Count(m.tasks, m.filter))))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  sorted by %s  •  %d pending / %d done",
		strings.ToLower(m.sort.Label()),
		view.Count(m.tasks, view.FilterPending),
		view.Count(m.tasks, view.FilterCompleted))))
	b.WriteString("\n\n")

	list := m.visible()
	if len(list) == 0 {
		if len(m.tasks) == 0 {
			b.WriteString(mutedStyle.Render("No tasks yet. Press '" + m.cfg.Keys.Add + "' to add one."))
		} else {
			b.WriteString(mutedStyle.Render("No " + strings.ToLower(m.filter.Label()) + " tasks."))
		}
		return b.String()
	}

	cur := clampCursor(m.cursor, len(list))
	for i, t := range list {
		b.WriteString(m.renderRow(t, i == cur))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderRow(t task.Task, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = doneStyle.Render(title)
	}

	due := dates.FormatDateForDisplay(t.DueDate)
	if t.DueTime != "" {
		due += " " + dates.FormatTimeForDisplay(t.DueTime)
	}
	meta := mutedStyle.Render(fmt.Sprintf("%s • %s", due, task.CategoryLabel(t.Category)))

	line := fmt.Sprintf("%s%s %s %s  %s", prefix, check, priorityBadge(t.Priority), title, meta)
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func humanizeCreated(created, now time.Time) string {
	if created.IsZero() {
		return "(unknown)"
	}
	return humanize.RelTime(created, now, "ago", "from now")
}
