package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devchron/internal/storage"
	"devchron/internal/task"
)

func titles(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func at(day int) time.Time {
	return time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC)
}

func sample() []task.Task {
	return []task.Task{
		{ID: "1", Title: "jan2-0900", DueDate: "2025-01-02", DueTime: "09:00", Priority: task.PriorityLow, CreatedAt: at(1)},
		{ID: "2", Title: "jan1-2300", DueDate: "2025-01-01", DueTime: "23:00", Priority: task.PriorityHigh, IsCompleted: true, CreatedAt: at(3)},
		{ID: "3", Title: "jan1-notime", DueDate: "2025-01-01", Priority: task.PriorityMedium, CreatedAt: at(2)},
		{ID: "4", Title: "jan2-0900-b", DueDate: "2025-01-02", DueTime: "09:00", Priority: task.PriorityHigh, CreatedAt: at(4)},
	}
}

func TestSortByDueDate(t *testing.T) {
	in := []task.Task{
		{Title: "second", DueDate: "2025-01-02", DueTime: "09:00"},
		{Title: "first", DueDate: "2025-01-01", DueTime: "23:00"},
	}
	assert.Equal(t, []string{"first", "second"}, titles(SortByDueDate(in)))
	assert.Equal(t, []string{"second", "first"}, titles(in), "input must not be reordered")
}

func TestSortByDueDate_MissingTimeIsMidnightAndStable(t *testing.T) {
	got := SortByDueDate(sample())
	assert.Equal(t, []string{"jan1-notime", "jan1-2300", "jan2-0900", "jan2-0900-b"}, titles(got))
}

func TestSortByDueDate_BadDatesLast(t *testing.T) {
	in := []task.Task{
		{Title: "bad", DueDate: "someday"},
		{Title: "ok", DueDate: "2030-01-01"},
	}
	assert.Equal(t, []string{"ok", "bad"}, titles(SortByDueDate(in)))
}

func TestApply_Filters(t *testing.T) {
	all := Apply(sample(), FilterAll, SortDueDate)
	assert.Len(t, all, 4)

	pending := Apply(sample(), FilterPending, SortDueDate)
	assert.Equal(t, []string{"jan1-notime", "jan2-0900", "jan2-0900-b"}, titles(pending))

	done := Apply(sample(), FilterCompleted, SortDueDate)
	assert.Equal(t, []string{"jan1-2300"}, titles(done))
}

func TestApply_SortPriorityHighFirstStable(t *testing.T) {
	got := Apply(sample(), FilterAll, SortPriority)
	assert.Equal(t, []string{"jan1-2300", "jan2-0900-b", "jan1-notime", "jan2-0900"}, titles(got))
}

func TestApply_SortCreatedNewestFirst(t *testing.T) {
	got := Apply(sample(), FilterAll, SortCreated)
	assert.Equal(t, []string{"jan2-0900-b", "jan1-2300", "jan1-notime", "jan2-0900"}, titles(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sample()
	before := titles(in)
	_ = Apply(in, FilterPending, SortPriority)
	_ = Apply(in, FilterAll, SortCreated)
	assert.Equal(t, before, titles(in))
}

func TestCount(t *testing.T) {
	assert.Equal(t, 4, Count(sample(), FilterAll))
	assert.Equal(t, 3, Count(sample(), FilterPending))
	assert.Equal(t, 1, Count(sample(), FilterCompleted))
}

func TestParseFilterAndSort(t *testing.T) {
	f, err := ParseFilter("Pending")
	require.NoError(t, err)
	assert.Equal(t, FilterPending, f)
	_, err = ParseFilter("archived")
	assert.Error(t, err)

	o, err := ParseSort("priority")
	require.NoError(t, err)
	assert.Equal(t, SortPriority, o)
	_, err = ParseSort("alpha")
	assert.Error(t, err)

	assert.Equal(t, FilterPending, FilterAll.Next())
	assert.Equal(t, FilterCompleted, FilterPending.Next())
	assert.Equal(t, FilterAll, FilterCompleted.Next())
	assert.Equal(t, "Due Date", SortDueDate.Label())
}

func TestTasksForDate(t *testing.T) {
	tasks := []task.Task{
		{Title: "eve", DueDate: "2024-12-31"},
		{Title: "new year", DueDate: "2025-01-01"},
		{Title: "leap", DueDate: "2024-02-29"},
		{Title: "new year again", DueDate: "2025-01-01"},
	}

	got := TasksForDate(tasks, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local))
	assert.Equal(t, []string{"new year", "new year again"}, titles(got))

	got = TasksForDate(tasks, time.Date(2024, time.December, 31, 23, 59, 0, 0, time.Local))
	assert.Equal(t, []string{"eve"}, titles(got))

	got = TasksForDate(tasks, time.Date(2024, time.February, 29, 8, 0, 0, 0, time.Local))
	assert.Equal(t, []string{"leap"}, titles(got))

	assert.Empty(t, TasksForDate(tasks, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)))
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.Local)
	tasks := []task.Task{
		{Title: "yesterday", DueDate: "2025-03-09"},
		{Title: "today-late", DueDate: "2025-03-10", DueTime: "18:00"},
		{Title: "today-early", DueDate: "2025-03-10", DueTime: "08:00"},
		{Title: "done", DueDate: "2025-03-11", IsCompleted: true},
		{Title: "next-week", DueDate: "2025-03-17"},
		{Title: "tomorrow", DueDate: "2025-03-11"},
	}

	assert.Equal(t, []string{"today-early", "today-late", "tomorrow"}, titles(Upcoming(tasks, 0, now)))
	assert.Equal(t, []string{"today-early"}, titles(Upcoming(tasks, 1, now)))
	assert.Equal(t, []string{"today-early", "today-late", "tomorrow", "next-week"}, titles(Upcoming(tasks, 10, now)))
}

func TestDaysWithTasks(t *testing.T) {
	got := DaysWithTasks(sample(), 2025, 0)
	assert.Equal(t, map[string]int{"2025-01-01": 2, "2025-01-02": 2}, got)
	assert.Empty(t, DaysWithTasks(sample(), 2025, 1))
}

func TestScenario_BuyMilkOnItsDay(t *testing.T) {
	s := task.NewStore(storage.NewMemory())
	require.NoError(t, s.Initialize(context.Background()))
	defer s.Close(context.Background())

	_, err := s.Add(task.Draft{
		Title:    "Buy milk",
		DueDate:  "2025-06-01",
		DueTime:  "10:00",
		Priority: task.PriorityLow,
		Category: task.CategoryShopping,
	})
	require.NoError(t, err)

	got := TasksForDate(s.Tasks(), time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local))
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Title)
}

func TestScenario_EmptyTitleRejected(t *testing.T) {
	s := task.NewStore(storage.NewMemory())
	require.NoError(t, s.Initialize(context.Background()))
	defer s.Close(context.Background())

	_, err := s.Add(task.Draft{Title: "", DueDate: "2025-06-01"})
	assert.ErrorIs(t, err, task.ErrValidation)
	assert.Empty(t, s.Tasks())
}
