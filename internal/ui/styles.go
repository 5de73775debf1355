package ui

import (
	"github.com/charmbracelet/lipgloss"

	"devchron/internal/task"
)

const accent = lipgloss.Color("#6366F1")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accent)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1)
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Padding(0, 1)
)

var priorityColors = map[task.Priority]lipgloss.Color{
	task.PriorityHigh:   lipgloss.Color("#EF4444"),
	task.PriorityMedium: lipgloss.Color("#F59E0B"),
	task.PriorityLow:    lipgloss.Color("#10B981"),
}

func priorityBadge(p task.Priority) string {
	return lipgloss.NewStyle().Foreground(priorityColors[p]).Render("●")
}
