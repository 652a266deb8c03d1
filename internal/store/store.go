// Package store defines the backend-agnostic contract for the remote
// per-user document store. All remote calls go through this interface;
// nothing outside internal/backend imports the Firestore SDK directly.
package store

import (
	"context"
	"errors"

	"smartodo/internal/task"
)

// Sentinel errors for remote failures. Backends translate provider errors
// into these so callers can classify without string matching.
var (
	// ErrUnavailable indicates the remote store cannot be reached.
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrAuth indicates expired or missing credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound indicates the addressed record does not exist.
	ErrNotFound = errors.New("not found")
)

// Unsubscribe tears down a live subscription. Implementations must be
// idempotent: calling it more than once is a no-op.
type Unsubscribe func()

// TaskFunc receives one full task snapshot per remote change.
type TaskFunc func([]task.Task)

// CategoryFunc receives one full category snapshot per remote change.
type CategoryFunc func([]task.Category)

// Store is the subscribe/write contract for the remote document store.
// Subscriptions deliver the entire current result set on every server-side
// change; there are no delta semantics. The whole sequence is authoritative
// on each tick.
type Store interface {
	// SubscribeTasks opens a live feed of the user's tasks ordered by
	// createdAt descending. Timestamps are normalized to epoch milliseconds
	// before fn sees them. fn is invoked once with the initial result set
	// and again after every change until the returned Unsubscribe runs or
	// ctx is cancelled.
	SubscribeTasks(ctx context.Context, userID string, fn TaskFunc) (Unsubscribe, error)

	// SubscribeCategories opens a live feed of the user's categories
	// ordered by name ascending.
	SubscribeCategories(ctx context.Context, userID string, fn CategoryFunc) (Unsubscribe, error)

	// AddTask creates a task document. The backend assigns the id.
	AddTask(ctx context.Context, userID string, t task.Task) error

	// UpdateTask applies field-level updates to an existing task.
	// Keys use the document field names (title, notes, category, priority,
	// due, completed, position).
	UpdateTask(ctx context.Context, userID, taskID string, updates map[string]any) error

	// DeleteTask deletes a task document.
	DeleteTask(ctx context.Context, userID, taskID string) error

	// AddCategory creates a category document. The backend assigns the id.
	AddCategory(ctx context.Context, userID, name string) error

	// UpdateCategory applies field-level updates to a category.
	UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) error

	// DeleteCategory deletes a category document. Tasks referencing it keep
	// their dangling category id.
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}
