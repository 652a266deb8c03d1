package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"smartodo/internal/cache"
	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
	tasksync "smartodo/internal/sync"
	"smartodo/internal/task"
	"smartodo/internal/view"
)

// syncTimeout bounds the wait for the first remote snapshot pair.
const syncTimeout = 5 * time.Second

// openCache builds the local cache for the configured user and restores the
// last durable snapshot. A corrupt snapshot leaves the cache empty; it will
// be rebuilt by the next remote snapshot.
func openCache(cfg *config.Config) *cache.Cache {
	c := cache.New(cfg.UserID, cfg.SnapshotDir(), cfg.Logger())
	if err := c.LoadSnapshot(); err != nil {
		cfg.Logger().Warn("snapshot unavailable", "error", err)
	}
	return c
}

// syncOnce opens both feeds, waits for the first task and category snapshot
// to land in the cache and tears the session down again. On failure the
// cache keeps whatever the durable snapshot held.
func syncOnce(ctx context.Context, cfg *config.Config, st store.Store, c *cache.Cache) error {
	tasksCh := make(chan struct{}, 1)
	catsCh := make(chan struct{}, 1)

	sess := tasksync.NewSession(st, c, cfg.Logger())
	sess.OnTasks = func([]task.Task) {
		select {
		case tasksCh <- struct{}{}:
		default:
		}
	}
	sess.OnCategories = func([]task.Category) {
		select {
		case catsCh <- struct{}{}:
		default:
		}
	}

	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Stop()

	timer := time.NewTimer(syncTimeout)
	defer timer.Stop()

	for _, ch := range []chan struct{}{tasksCh, catsCh} {
		select {
		case <-ch:
		case <-timer.C:
			return fmt.Errorf("remote snapshot timed out: %w", store.ErrUnavailable)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// mustSync is syncOnce for commands that mutate by listing number: a stale
// view could resolve the wrong task, so sync failure is fatal. Returns
// exitcode.Success when the sync landed, otherwise prints the error and
// returns the exit code to propagate.
func mustSync(ctx context.Context, cfg *config.Config, st store.Store, c *cache.Cache, errOut io.Writer) int {
	if err := syncOnce(ctx, cfg, st, c); err != nil {
		if errors.Is(err, store.ErrAuth) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// resolveVisible resolves a 1-based listing number against the full visible
// sequence for the given view state. Numbering is continuous across pages.
func resolveVisible(c *cache.Cache, s view.State, num int) (task.Task, error) {
	visible := view.Visible(c.Tasks(), s)
	if num < 1 || num > len(visible) {
		return task.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return visible[num-1], nil
}
