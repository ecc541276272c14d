package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities: High > Medium > Low. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority matches s case-insensitively and returns the canonical value.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: priority must be one of Low, Medium, High", common.ErrInvalidInput)
}

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus matches s case-insensitively. "in_progress" and "inprogress"
// are accepted for "In Progress" since the value contains a space.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	if norm == "inprogress" {
		norm = "in progress"
	}
	for _, st := range Statuses {
		if norm == strings.ToLower(string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: status must be one of Pending, In Progress, Completed", common.ErrInvalidInput)
}

// Task is a row of the tasks table. DueDate is nil when no due date is set;
// otherwise it holds midnight UTC of the due day.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
}

// Clone returns a deep copy of t, so callers never share the DueDate pointer
// with the cache.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// Overdue reports whether t is not completed and its due day is before the
// day of now.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

func (t Task) String() string {
	due := "Not set"
	if t.DueDate != nil {
		due = FormatDate(*t.DueDate)
	}
	return fmt.Sprintf("Task %d: %s (%s, Priority: %s, Due: %s)", t.ID, t.Title, t.Status, t.Priority, due)
}

// Optional distinguishes a field that was not supplied from one supplied
// with its zero value.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some wraps v as a supplied value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Get returns the value when supplied, or fallback otherwise.
func (o Optional[T]) Get(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// NewTask is the input of the add operation. Priority and Status default to
// Medium and Pending when absent.
type NewTask struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Optional[Priority]
	Status      Optional[Status]
}

// TaskUpdate is a partial update. Only supplied fields change; DueDate set
// to Some(nil) clears the due date.
type TaskUpdate struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[*time.Time]
	Priority    Optional[Priority]
	Status      Optional[Status]
}

// Empty reports whether no field was supplied.
func (u TaskUpdate) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.DueDate.Set && !u.Priority.Set && !u.Status.Set
}

// Build validates n and returns the task to persist for owner userID. A new
// task may not be due before the day of now; existing tasks can still be
// moved into the past with an update.
func (n NewTask) Build(userID int64, now time.Time) (Task, error) {
	title, err := ValidateTitle(n.Title)
	if err != nil {
		return Task{}, err
	}

	t := Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(n.Description),
		DueDate:     normalizeDate(n.DueDate),
		Priority:    n.Priority.Get(PriorityMedium),
		Status:      n.Status.Get(StatusPending),
	}
	if !t.Priority.Valid() {
		return Task{}, fmt.Errorf("%w: unknown priority %q", common.ErrInvalidInput, t.Priority)
	}
	if !t.Status.Valid() {
		return Task{}, fmt.Errorf("%w: unknown status %q", common.ErrInvalidInput, t.Status)
	}
	if t.DueDate != nil && t.DueDate.Before(DateOf(now)) {
		return Task{}, fmt.Errorf("%w: due date cannot be in the past", common.ErrInvalidInput)
	}
	return t, nil
}

// Validate checks every supplied field of u without needing the task.
func (u TaskUpdate) Validate() error {
	if u.Title.Set {
		if _, err := ValidateTitle(u.Title.Value); err != nil {
			return err
		}
	}
	if u.Priority.Set && !u.Priority.Value.Valid() {
		return fmt.Errorf("%w: unknown priority %q", common.ErrInvalidInput, u.Priority.Value)
	}
	if u.Status.Set && !u.Status.Value.Valid() {
		return fmt.Errorf("%w: unknown status %q", common.ErrInvalidInput, u.Status.Value)
	}
	return nil
}

// Apply validates every supplied field of u and returns t with them applied.
// t itself is left untouched.
func (u TaskUpdate) Apply(t Task) (Task, error) {
	if err := u.Validate(); err != nil {
		return Task{}, err
	}

	out := t.Clone()
	if u.Title.Set {
		out.Title, _ = ValidateTitle(u.Title.Value)
	}
	if u.Description.Set {
		out.Description = strings.TrimSpace(u.Description.Value)
	}
	if u.DueDate.Set {
		out.DueDate = normalizeDate(u.DueDate.Value)
	}
	if u.Priority.Set {
		out.Priority = u.Priority.Value
	}
	if u.Status.Set {
		out.Status = u.Status.Value
	}
	return out, nil
}

// TaskFilter selects tasks for listing. Nil fields do not filter. DueFrom and
// DueTo are inclusive; when either is set, tasks without a due date are
// excluded.
type TaskFilter struct {
	Status   *Status
	Priority *Priority
	DueFrom  *time.Time
	DueTo    *time.Time
}

// Validate checks that the range bounds are in order.
func (f TaskFilter) Validate() error {
	if f.DueFrom != nil && f.DueTo != nil && f.DueTo.Before(*f.DueFrom) {
		return fmt.Errorf("%w: due date range end is before its start", common.ErrInvalidInput)
	}
	return nil
}

// Match reports whether t satisfies every set criterion.
func (f TaskFilter) Match(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		if f.DueFrom != nil && t.DueDate.Before(DateOf(*f.DueFrom)) {
			return false
		}
		if f.DueTo != nil && t.DueDate.After(DateOf(*f.DueTo)) {
			return false
		}
	}
	return true
}

// Statistics aggregates a user's tasks.
type Statistics struct {
	Total      int
	ByStatus   map[Status]int
	ByPriority map[Priority]int
	Overdue    int
}

// NewStatistics returns Statistics with every known key present.
func NewStatistics() Statistics {
	s := Statistics{
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, p := range Priorities {
		s.ByPriority[p] = 0
	}
	return s
}

// Add counts t into s.
func (s *Statistics) Add(t Task, now time.Time) {
	s.Total++
	s.ByStatus[t.Status]++
	s.ByPriority[t.Priority]++
	if t.Overdue(now) {
		s.Overdue++
	}
}

func (s Statistics) Completed() int    { return s.ByStatus[StatusCompleted] }
func (s Statistics) Pending() int      { return s.ByStatus[StatusPending] }
func (s Statistics) InProgress() int   { return s.ByStatus[StatusInProgress] }
func (s Statistics) HighPriority() int { return s.ByPriority[PriorityHigh] }
