package task

import (
	"fmt"
	"strings"
	"time"

	"devchron/internal/dates"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Priorities lists the levels from most to least urgent.
func Priorities() []Priority {
	return append([]Priority(nil), priorities...)
}

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: priority %q must be low, medium or high", ErrValidation, s)
}

// Rank orders priorities for sorting: high is 0, low is 2.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return len(priorities)
}

// Raise returns the next more urgent level, saturating at high.
func (p Priority) Raise() Priority {
	if r := p.Rank(); r > 0 && r < len(priorities) {
		return priorities[r-1]
	}
	return p
}

// Lower returns the next less urgent level, saturating at low.
func (p Priority) Lower() Priority {
	if r := p.Rank(); r < len(priorities)-1 {
		return priorities[r+1]
	}
	return p
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Conventional categories. The store accepts any string.
const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryShopping = "shopping"
	CategoryHealth   = "health"
	CategoryOther    = "other"
)

type Category struct {
	ID    string
	Label string
}

var Categories = []Category{
	{CategoryWork, "Work"},
	{CategoryPersonal, "Personal"},
	{CategoryShopping, "Shopping"},
	{CategoryHealth, "Health"},
	{CategoryOther, "Others"},
}

// CategoryLabel returns the display label, or the raw id for custom ones.
func CategoryLabel(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return id
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	DueTime     string    `json:"dueTime"`
	Priority    Priority  `json:"priority"`
	Category    string    `json:"category"`
	Location    string    `json:"location,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Due returns the due instant, treating a missing time as the start of the day.
func (t Task) Due() (time.Time, error) {
	return dates.DueInstant(t.DueDate, t.DueTime, dates.StartOfDay)
}

// Draft holds the caller-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	DueDate     string
	DueTime     string
	Priority    Priority
	Category    string
	Location    string
	IsCompleted bool
}

// Patch is a partial update. Nil fields are left untouched. There is no way to
// express a change of ID or CreatedAt.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	DueTime     *string   `json:"dueTime,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Location    *string   `json:"location,omitempty"`
	IsCompleted *bool     `json:"isCompleted,omitempty"`
}

func (p Patch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.DueTime != nil {
		t.DueTime = *p.DueTime
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	return t
}

func validate(t Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if t.DueDate == "" {
		return fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if !dates.ValidDate(t.DueDate) {
		return fmt.Errorf("%w: due date %q is not YYYY-MM-DD", ErrValidation, t.DueDate)
	}
	if t.DueTime != "" && !dates.ValidTime(t.DueTime) {
		return fmt.Errorf("%w: due time %q is not HH:MM", ErrValidation, t.DueTime)
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	return nil
}
