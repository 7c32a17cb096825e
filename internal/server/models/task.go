package models

import (
	"strings"
	"time"
)

// Task is a unit of work owned by exactly one user. DueDate is nil when the
// task has no deadline.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsOverdue reports whether the task is pending with a deadline strictly
// before now. A deadline equal to now is not overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// Filter selects a subset of an owner's tasks.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// ParseFilter maps user input to a Filter; anything unrecognised is FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterPending, FilterCompleted, FilterOverdue:
		return f
	default:
		return FilterAll
	}
}

// Sort orders a task listing.
type Sort string

const (
	SortCreated Sort = "created"
	SortDate    Sort = "date"
	SortTitle   Sort = "title"
)

// ParseSort maps user input to a Sort; anything unrecognised is SortCreated.
func ParseSort(s string) Sort {
	switch o := Sort(strings.ToLower(strings.TrimSpace(s))); o {
	case SortDate, SortTitle:
		return o
	default:
		return SortCreated
	}
}

// TaskCounts summarises an owner's full task set. Total == Pending + Completed.
type TaskCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
