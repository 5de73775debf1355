package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"devchron/internal/config"
	"devchron/internal/dates"
	"devchron/internal/logging"
	"devchron/internal/mood"
	"devchron/internal/task"
	"devchron/internal/view"
)

type screen int

const (
	screenTasks screen = iota
	screenCalendar
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
	modeConfirmDelete
)

type storeEventMsg task.Event

type storeClosedMsg struct{}

type Model struct {
	store  *task.Store
	moods  *mood.Store
	cfg    config.Config
	events <-chan task.Event
	now    func() time.Time

	tasks      []task.Task
	version    uint64
	screen     screen
	mode       mode
	filter     view.Filter
	sort       view.Sort
	cursor     int
	chord      string
	status     string
	isError    bool
	showDetail bool
	pendingDel *task.Task
	form       *formState

	selected   time.Time
	monthMoods map[string]mood.Mood
	width      int
}

func Run(store *task.Store, moods *mood.Store, cfg config.Config, configPath string, firstLaunch bool) error {
	m := New(store, moods, cfg, time.Now)
	if firstLaunch {
		m.status = "Wrote default config to " + configPath
	}

	events, cancel := store.Subscribe()
	defer cancel()
	m.events = events

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// New builds the UI model over an initialized store.
func New(store *task.Store, moods *mood.Store, cfg config.Config, now func() time.Time) Model {
	filter, err := view.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		logging.Info("ui", "%v, using all", err)
	}
	order, err := view.ParseSort(cfg.DefaultSort)
	if err != nil {
		logging.Info("ui", "%v, using due date", err)
	}
	tasks, version := store.Snapshot()
	return Model{
		store:      store,
		moods:      moods,
		cfg:        cfg,
		now:        now,
		tasks:      tasks,
		version:    version,
		filter:     filter,
		sort:       order,
		selected:   startOfDay(now()),
		monthMoods: map[string]mood.Mood{},
		status:     fmt.Sprintf("Press '%s' to add, '%s' to switch view, '%s' to quit.", cfg.Keys.Add, cfg.Keys.SwitchView, cfg.Keys.Quit),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.loadMonthMoods())
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return storeEventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		}
		if m.screen == screenCalendar {
			return m.updateCalendar(msg.String())
		}
		return m.updateList(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.form != nil {
			m.form.setWidth(msg.Width - 20)
		}
	case storeEventMsg:
		switch msg.Kind {
		case task.EventChanged:
			if msg.Version <= m.version {
				break
			}
			m.tasks, m.version = msg.Tasks, msg.Version
			m.cursor = clampCursor(m.cursor, len(m.visible()))
		case task.EventPersistFailed:
			m.setError(fmt.Sprintf("save failed: %v (changes kept in memory)", msg.Err))
		}
		return m, m.waitForEvent()
	case storeClosedMsg:
		m.events = nil
	case monthMoodsMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("mood load failed: %v", msg.err))
			return m, nil
		}
		if msg.year == m.selected.Year() && msg.month == int(m.selected.Month())-1 {
			m.monthMoods = msg.moods
		}
	case moodSavedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("mood save failed: %v", msg.err))
			return m, nil
		}
		m.monthMoods[msg.day] = msg.mood
		m.setStatus(fmt.Sprintf("You're feeling %s %s", strings.ToLower(msg.mood.Label), msg.mood.Emoji))
	}
	return m, nil
}

// handleCommon covers keys shared by both screens. handled is false when the
// key means something else here.
func (m Model) handleCommon(key string) (Model, tea.Cmd, bool) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit, true
	case k.SwitchView:
		m.showDetail = false
		m.cursor = 0
		if m.screen == screenTasks {
			m.screen = screenCalendar
			return m, m.loadMonthMoods(), true
		}
		m.screen = screenTasks
		return m, nil, true
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible()))
		return m, nil, true
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible()))
		return m, nil, true
	case k.Add:
		due := dates.FormatDate(m.now())
		if m.screen == screenCalendar {
			due = dates.FormatDate(m.selected)
		}
		m.form = newForm(nil, due)
		m.mode = modeForm
		m.status = "New task: tab to move between fields, ctrl+s to save, esc to cancel"
		return m, m.form.focusCmd(), true
	}

	t, ok := m.current()
	switch key {
	case k.Toggle, k.Edit, k.Delete, k.Detail, k.PriorityUp, k.PriorityDown, k.DueForward, k.DueBack:
		if !ok {
			m.setStatus("No task selected")
			return m, nil, true
		}
	default:
		return m, nil, false
	}

	switch key {
	case k.Toggle:
		updated, err := m.store.Complete(t.ID)
		if err != nil {
			m.setError(fmt.Sprintf("toggle failed: %v", err))
			return m, nil, true
		}
		m.refresh()
		m.setStatus(fmt.Sprintf("Marked \"%s\" %s", updated.Title, humanDone(updated.IsCompleted)))
	case k.Edit:
		m.form = newForm(&t, t.DueDate)
		m.mode = modeForm
		m.status = "Edit task: tab to move between fields, ctrl+s to save, esc to cancel"
		return m, m.form.focusCmd(), true
	case k.Delete:
		m.mode = modeConfirmDelete
		m.pendingDel = &t
		m.setStatus(fmt.Sprintf("Delete \"%s\"? y/%s confirm, n/%s cancel", t.Title, m.cfg.Keys.Confirm, m.cfg.Keys.Cancel))
	case k.Detail:
		m.showDetail = !m.showDetail
	case k.PriorityUp:
		m.updateTask(t.ID, task.Patch{Priority: ptr(t.Priority.Raise())}, "Priority raised")
	case k.PriorityDown:
		m.updateTask(t.ID, task.Patch{Priority: ptr(t.Priority.Lower())}, "Priority lowered")
	case k.DueForward:
		m.shiftDue(t, 1)
	case k.DueBack:
		m.shiftDue(t, -1)
	}
	return m, nil, true
}

func (m *Model) updateTask(id string, p task.Patch, done string) {
	if _, err := m.store.Update(id, p); err != nil {
		m.setError(fmt.Sprintf("update failed: %v", err))
		return
	}
	m.refresh()
	m.setStatus(done)
}

func (m *Model) shiftDue(t task.Task, days int) {
	d, err := dates.ParseDate(t.DueDate)
	if err != nil {
		m.setError(fmt.Sprintf("due date invalid: %v", err))
		return
	}
	next := dates.FormatDate(d.AddDate(0, 0, days))
	m.updateTask(t.ID, task.Patch{DueDate: &next}, "Due "+dates.FormatDateForDisplay(next))
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.setStatus("Delete cancelled")
	case "y", "Y", m.cfg.Keys.Confirm:
		if m.pendingDel == nil {
			m.setStatus("Nothing to delete")
			break
		}
		if err := m.store.Delete(m.pendingDel.ID); err != nil {
			m.setError(fmt.Sprintf("delete failed: %v", err))
			break
		}
		m.refresh()
		m.setStatus("Deleted task")
	default:
		return m, nil
	}
	m.mode = modeBrowse
	m.pendingDel = nil
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("DevChron"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.mode == modeForm && m.form != nil:
		b.WriteString(m.form.view())
	case m.screen == screenCalendar:
		b.WriteString(m.renderCalendar())
	default:
		b.WriteString(m.renderTaskList())
	}

	if m.showDetail && m.mode == modeBrowse {
		if t, ok := m.current(); ok {
			b.WriteString("\n")
			b.WriteString(m.renderDetail(t))
		}
	}

	b.WriteString("\n\n")
	if m.isError {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.renderHelp()))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Tasks", "Calendar"}
	out := make([]string, len(tabs))
	for i, name := range tabs {
		if screen(i) == m.screen {
			out[i] = activeTab.Render(name)
		} else {
			out[i] = inactiveTab.Render(name)
		}
	}
	return strings.Join(out, " ")
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	switch {
	case m.mode == modeForm:
		return "tab/shift+tab move • enter next • ctrl+s save • esc cancel"
	case m.mode == modeConfirmDelete:
		return fmt.Sprintf("y/%s confirm • n/%s cancel", keyName(k.Confirm), k.Cancel)
	case m.screen == screenCalendar:
		return fmt.Sprintf("%s/%s day • %s/%s month • %s today • %s/%s select • 1-5 mood • %s add • %s toggle • %s edit • %s delete • %s tasks • %s quit",
			k.Left, k.Right, k.PrevMonth, k.NextMonth, k.Today, k.Up, k.Down, k.Add, keyName(k.Toggle), k.Edit, k.Delete, k.SwitchView, k.Quit)
	}
	return fmt.Sprintf("%s/%s move • %s add • %s detail • %s toggle • %s edit • %s delete • %s filter • %s/%s/%s sort • %s/%s priority • %s/%s due • %s calendar • %s quit",
		k.Up, k.Down, k.Add, k.Detail, keyName(k.Toggle), k.Edit, k.Delete, k.Filter, k.SortDue, k.SortPriority, k.SortCreated,
		k.PriorityUp, k.PriorityDown, k.DueBack, k.DueForward, k.SwitchView, k.Quit)
}

func (m Model) renderDetail(t task.Task) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(t.Title))
	b.WriteString("\n")
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString(t.Description)
		b.WriteString("\n")
	}
	due := dates.FormatDateForDisplay(t.DueDate)
	if t.DueTime != "" {
		due += " at " + dates.FormatTimeForDisplay(t.DueTime)
	}
	b.WriteString(fmt.Sprintf("Due       : %s (%s)\n", due, dates.RemainingTimeAt(t.DueDate, t.DueTime, m.now())))
	b.WriteString(fmt.Sprintf("Priority  : %s %s\n", priorityBadge(t.Priority), t.Priority))
	b.WriteString(fmt.Sprintf("Category  : %s\n", task.CategoryLabel(t.Category)))
	b.WriteString(fmt.Sprintf("Location  : %s\n", emptyPlaceholder(t.Location)))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.IsCompleted)))
	b.WriteString(fmt.Sprintf("Created   : %s", humanizeCreated(t.CreatedAt, m.now())))
	return panelStyle.Render(b.String())
}

// visible is the list the cursor moves over on the current screen.
func (m Model) visible() []task.Task {
	if m.screen == screenCalendar {
		return view.SortByDueDate(view.TasksForDate(m.tasks, m.selected))
	}
	return view.Apply(m.tasks, m.filter, m.sort)
}

func (m Model) current() (task.Task, bool) {
	list := m.visible()
	if len(list) == 0 {
		return task.Task{}, false
	}
	return list[clampCursor(m.cursor, len(list))], true
}

// refresh reads the snapshot straight from the store so the next render
// reflects a mutation before its change event arrives.
func (m *Model) refresh() {
	m.tasks, m.version = m.store.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.visible()))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.isError = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.isError = true
}

func (m Model) saveForm() (Model, error) {
	f := m.form
	if f.editing == nil {
		d, err := f.draft()
		if err != nil {
			return m, err
		}
		created, err := m.store.Add(d)
		if err != nil {
			return m, err
		}
		m.refresh()
		m.selectTask(created.ID)
		m.setStatus(fmt.Sprintf("Added \"%s\"", created.Title))
		return m, nil
	}

	p, err := f.patch()
	if err != nil {
		return m, err
	}
	updated, err := m.store.Update(f.editing.ID, p)
	if err != nil {
		return m, err
	}
	m.refresh()
	m.selectTask(updated.ID)
	m.setStatus(fmt.Sprintf("Saved \"%s\"", updated.Title))
	return m, nil
}

func (m *Model) selectTask(id string) {
	for i, t := range m.visible() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

// validationMessage turns a save error into a form message, dropping the
// sentinel prefix and capitalizing the first letter.
func validationMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, task.ErrValidation) {
		msg = strings.TrimPrefix(msg, task.ErrValidation.Error()+": ")
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

func ptr[T any](v T) *T {
	return &v
}

// moodContext bounds background mood I/O so a hung backend cannot pile up
// goroutines behind the UI.
func moodContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
