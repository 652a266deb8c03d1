// Package task defines the canonical task and category record shapes.
package task

import (
	"errors"
	"strings"
	"time"
)

// Priority is a task priority level.
type Priority string

// Priority levels in rank order.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the sort rank for a priority: High=1, Medium=2, Low=3.
// Unknown values rank after Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Task is a single task record. The canonical instance lives in the cache;
// views hold copies. All timestamps are epoch milliseconds.
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Notes     string   `json:"notes,omitempty"`
	Category  string   `json:"category,omitempty"` // category id; dangling references are tolerated
	Priority  Priority `json:"priority,omitempty"`
	Due       *int64   `json:"due,omitempty"`
	Completed bool     `json:"completed"`
	CreatedAt int64    `json:"createdAt"`
}

// Category is a user-defined task category.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// ErrEmptyTitle indicates a task with an empty or whitespace-only title.
var ErrEmptyTitle = errors.New("title required")

// Validate checks the task against the rules enforced on add/edit.
// Only a non-empty title is required.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Millis converts a wall-clock time to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds back to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
