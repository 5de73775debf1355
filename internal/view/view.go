// Package view computes read-only projections of a task snapshot. Every
// function returns a new slice; the input is never reordered or modified.
package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"devchron/internal/dates"
	"devchron/internal/task"
)

// DefaultUpcomingCount is how many tasks Upcoming shows when asked for none.
const DefaultUpcomingCount = 3

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

var filters = []Filter{FilterAll, FilterPending, FilterCompleted}

func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(filters, f) {
		return f, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q", s)
}

// Next cycles All -> Pending -> Completed -> All.
func (f Filter) Next() Filter {
	i := slices.Index(filters, f)
	return filters[(i+1)%len(filters)]
}

func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	}
	return "All"
}

func (f Filter) Match(t task.Task) bool {
	switch f {
	case FilterPending:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	}
	return true
}

type Sort string

const (
	SortDueDate  Sort = "due"
	SortPriority Sort = "priority"
	SortCreated  Sort = "created"
)

func ParseSort(s string) (Sort, error) {
	switch o := Sort(strings.ToLower(strings.TrimSpace(s))); o {
	case SortDueDate, SortPriority, SortCreated:
		return o, nil
	}
	return SortDueDate, fmt.Errorf("unknown sort %q", s)
}

func (o Sort) Label() string {
	switch o {
	case SortPriority:
		return "Priority"
	case SortCreated:
		return "Created"
	}
	return "Due Date"
}

// Apply filters and then sorts a copy of tasks.
func Apply(tasks []task.Task, f Filter, o Sort) []task.Task {
	out := FilterTasks(tasks, f)
	switch o {
	case SortPriority:
		sortByPriority(out)
	case SortCreated:
		sortByCreatedDesc(out)
	default:
		sortByDue(out)
	}
	return out
}

func FilterTasks(tasks []task.Task, f Filter) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count returns how many tasks match f.
func Count(tasks []task.Task, f Filter) int {
	n := 0
	for _, t := range tasks {
		if f.Match(t) {
			n++
		}
	}
	return n
}

// TasksForDate returns the tasks whose due date is the calendar day of date.
func TasksForDate(tasks []task.Task, date time.Time) []task.Task {
	key := dates.FormatDate(date)
	out := make([]task.Task, 0)
	for _, t := range tasks {
		if t.DueDate == key {
			out = append(out, t)
		}
	}
	return out
}

// SortByDueDate returns tasks ordered by due date and time, earliest first.
// A missing time counts as midnight. Ties keep their input order.
func SortByDueDate(tasks []task.Task) []task.Task {
	out := slices.Clone(tasks)
	sortByDue(out)
	return out
}

// Upcoming returns up to count pending tasks due today or later, earliest
// first. A count of zero or less means DefaultUpcomingCount.
func Upcoming(tasks []task.Task, count int, now time.Time) []task.Task {
	if count <= 0 {
		count = DefaultUpcomingCount
	}
	today := dates.FormatDate(now)
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsCompleted && t.DueDate >= today {
			out = append(out, t)
		}
	}
	sortByDue(out)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// DaysWithTasks returns the set of YYYY-MM-DD keys in the given zero-indexed
// month that have at least one task due.
func DaysWithTasks(tasks []task.Task, year, month int) map[string]int {
	prefix := fmt.Sprintf("%04d-%02d-", year, month+1)
	out := make(map[string]int)
	for _, t := range tasks {
		if strings.HasPrefix(t.DueDate, prefix) {
			out[t.DueDate]++
		}
	}
	return out
}

// Unparseable due dates sort after every valid one.
func sortByDue(tasks []task.Task) {
	type keyed struct {
		t   task.Task
		at  time.Time
		bad bool
	}
	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		at, err := t.Due()
		ks[i] = keyed{t: t, at: at, bad: err != nil}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.bad && b.bad:
			return 0
		case a.bad:
			return 1
		case b.bad:
			return -1
		}
		return a.at.Compare(b.at)
	})
	for i := range ks {
		tasks[i] = ks[i].t
	}
}

func sortByPriority(tasks []task.Task) {
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
}

func sortByCreatedDesc(tasks []task.Task) {
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
