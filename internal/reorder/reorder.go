// Package reorder translates drag-drop gestures expressed in view-space
// indices into canonical-sequence mutations. A visual index never equals a
// canonical index once filters, sorting or pagination are active, so the
// engine always recovers canonical positions through stable id lookup.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartodo/internal/cache"
	"smartodo/internal/store"
	"smartodo/internal/task"
)

// Errors returned before any mutation happens.
var (
	// ErrVisibleIndexOutOfRange indicates a gesture index outside the
	// visible slice.
	ErrVisibleIndexOutOfRange = errors.New("visible index out of range")

	// ErrNotInSequence indicates a visible task whose id is no longer in the
	// canonical sequence (a remote replace ran between render and drop).
	ErrNotInSequence = errors.New("task not in canonical sequence")
)

// Engine maps reorder gestures onto the cache. When pushRemote is set, the
// new canonical order is also written to the remote store so it survives the
// next snapshot; otherwise the reorder is ephemeral and the next remote push
// overwrites it.
type Engine struct {
	cache      *cache.Cache
	store      store.Store
	pushRemote bool
	log        *slog.Logger
}

// New creates a reorder engine. st may be nil when pushRemote is false.
func New(c *cache.Cache, st store.Store, pushRemote bool, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cache: c, store: st, pushRemote: pushRemote, log: log}
}

// Reorder moves the task at visible[visFrom] so it lands at the canonical
// position of visible[visTo]. It returns the canonical (from, to) pair it
// resolved. If the view is not in manual sort mode the mutation is real but
// visually invisible until the caller switches back to manual; that is
// accepted behavior, not corrected here.
func (e *Engine) Reorder(ctx context.Context, visFrom, visTo int, visible []task.Task) (from, to int, err error) {
	if visFrom < 0 || visFrom >= len(visible) || visTo < 0 || visTo >= len(visible) {
		return 0, 0, fmt.Errorf("%w: %d -> %d with %d visible", ErrVisibleIndexOutOfRange, visFrom, visTo, len(visible))
	}

	from = e.cache.IndexOf(visible[visFrom].ID)
	if from < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotInSequence, visible[visFrom].ID)
	}
	to = e.cache.IndexOf(visible[visTo].ID)
	if to < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotInSequence, visible[visTo].ID)
	}

	if err := e.cache.Move(from, to); err != nil {
		return 0, 0, err
	}

	if e.pushRemote && from != to {
		if err := e.pushPositions(ctx); err != nil {
			// The local move stands; the remote order is simply stale until
			// the next successful push or snapshot.
			e.log.Warn("reorder push failed", "user", e.cache.UserID(), "error", err)
			return from, to, err
		}
	}

	return from, to, nil
}

// pushPositions writes each task's canonical index to the remote store as a
// position field.
func (e *Engine) pushPositions(ctx context.Context) error {
	if e.store == nil {
		return errors.New("no remote store configured")
	}
	userID := e.cache.UserID()
	for i, t := range e.cache.Tasks() {
		if err := e.store.UpdateTask(ctx, userID, t.ID, map[string]any{"position": i}); err != nil {
			return fmt.Errorf("update position of %s: %w", t.ID, err)
		}
	}
	return nil
}
