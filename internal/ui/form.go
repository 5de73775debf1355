package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"devchron/internal/task"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldDueTime
	fieldPriority
	fieldCategory
	fieldLocation
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title",
	"Description",
	"Due date",
	"Due time",
	"Priority",
	"Category",
	"Location",
}

var errEmptyTitle = errors.New("title cannot be empty")

type formState struct {
	editing *task.Task
	inputs  [fieldCount]textinput.Model
	focus   int
	err     string
}

func newForm(editing *task.Task, dueDate string) *formState {
	f := &formState{editing: editing}
	placeholders := [fieldCount]string{
		"What needs doing?",
		"optional",
		"YYYY-MM-DD",
		"HH:MM, optional",
		priorityHint(),
		categoryHint(),
		"optional",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 40
		f.inputs[i] = ti
	}

	if editing != nil {
		f.inputs[fieldTitle].SetValue(editing.Title)
		f.inputs[fieldDescription].SetValue(editing.Description)
		f.inputs[fieldDueDate].SetValue(editing.DueDate)
		f.inputs[fieldDueTime].SetValue(editing.DueTime)
		f.inputs[fieldPriority].SetValue(string(editing.Priority))
		f.inputs[fieldCategory].SetValue(editing.Category)
		f.inputs[fieldLocation].SetValue(editing.Location)
	} else {
		f.inputs[fieldDueDate].SetValue(dueDate)
		f.inputs[fieldPriority].SetValue(string(task.PriorityMedium))
		f.inputs[fieldCategory].SetValue(task.CategoryWork)
	}
	for i := range f.inputs {
		f.inputs[i].CursorEnd()
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func categoryHint() string {
	ids := make([]string, len(task.Categories))
	for i, c := range task.Categories {
		ids[i] = c.ID
	}
	return strings.Join(ids, " / ")
}

func priorityHint() string {
	levels := task.Priorities()
	names := make([]string, len(levels))
	for i, p := range levels {
		names[i] = string(p)
	}
	return strings.Join(names, " / ")
}

func (f *formState) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (f *formState) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
}

func (f *formState) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *formState) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *formState) priority() (task.Priority, error) {
	raw := f.value(fieldPriority)
	if raw == "" {
		return task.PriorityMedium, nil
	}
	return task.ParsePriority(raw)
}

// draft checks the title up front so the form can answer before the store
// runs its own validation.
func (f *formState) draft() (task.Draft, error) {
	if f.value(fieldTitle) == "" {
		return task.Draft{}, errEmptyTitle
	}
	p, err := f.priority()
	if err != nil {
		return task.Draft{}, err
	}
	return task.Draft{
		Title:       f.value(fieldTitle),
		Description: f.value(fieldDescription),
		DueDate:     f.value(fieldDueDate),
		DueTime:     f.value(fieldDueTime),
		Priority:    p,
		Category:    f.value(fieldCategory),
		Location:    f.value(fieldLocation),
	}, nil
}

func (f *formState) patch() (task.Patch, error) {
	if f.value(fieldTitle) == "" {
		return task.Patch{}, errEmptyTitle
	}
	p, err := f.priority()
	if err != nil {
		return task.Patch{}, err
	}
	category := f.value(fieldCategory)
	if category == "" {
		category = task.CategoryWork
	}
	return task.Patch{
		Title:       ptr(f.value(fieldTitle)),
		Description: ptr(f.value(fieldDescription)),
		DueDate:     ptr(f.value(fieldDueDate)),
		DueTime:     ptr(f.value(fieldDueTime)),
		Priority:    &p,
		Category:    &category,
		Location:    ptr(f.value(fieldLocation)),
	}, nil
}

func (f *formState) view() string {
	var b strings.Builder
	heading := "New task"
	if f.editing != nil {
		heading = "Edit task"
	}
	b.WriteString(headerStyle.Render(heading))
	b.WriteString("\n\n")
	for i := range f.inputs {
		label := fmt.Sprintf("%-12s", fieldLabels[i])
		if i == f.focus {
			label = titleStyle.Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.err))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case m.cfg.Keys.Cancel, "ctrl+c":
		m.mode = modeBrowse
		m.form = nil
		m.setStatus("Cancelled")
		return m, nil
	case "tab", "down":
		f.move(1)
		return m, nil
	case "shift+tab", "up":
		f.move(-1)
		return m, nil
	case "enter":
		if f.focus < fieldCount-1 {
			f.move(1)
			return m, nil
		}
		return m.submitForm()
	case "ctrl+s":
		return m.submitForm()
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	next, err := m.saveForm()
	if err != nil {
		m.form.err = validationMessage(err)
		if errors.Is(err, errEmptyTitle) {
			m.form.move(fieldTitle - m.form.focus)
		}
		return m, nil
	}
	next.mode = modeBrowse
	next.form = nil
	return next, nil
}
