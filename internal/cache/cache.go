// Package cache holds the per-user canonical task sequence and category set.
// The sequence's array position is the source of truth for manual ordering;
// views are derived elsewhere and never written back.
package cache

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"smartodo/internal/codec"
	"smartodo/internal/task"
)

// Errors returned by cache mutations.
var (
	// ErrIndexOutOfRange indicates a Move index outside the canonical sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDuplicateID indicates a replacement sequence with a repeated task id.
	ErrDuplicateID = errors.New("duplicate task id")
)

// Cache is the process-wide, per-user store of the canonical task sequence.
// Every replacement is snapshotted to durable local storage so the next
// session can render a last-known view before the remote feed delivers.
type Cache struct {
	mu         sync.RWMutex
	userID     string
	tasks      []task.Task
	categories []task.Category

	snapshotDir string
	log         *slog.Logger
}

// New creates an empty cache for the given user. Snapshots are written under
// snapshotDir; pass an empty dir to disable persistence (tests).
func New(userID, snapshotDir string, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		userID:      userID,
		snapshotDir: snapshotDir,
		log:         log,
	}
}

// UserID returns the id of the user this cache belongs to.
func (c *Cache) UserID() string { return c.userID }

// Tasks returns a copy of the canonical task sequence.
func (c *Cache) Tasks() []task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]task.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Categories returns a copy of the category set.
func (c *Cache) Categories() []task.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]task.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ReplaceTasks atomically swaps the canonical sequence. The previous sequence
// is discarded entirely; there is no merge. A sequence with duplicate ids is
// rejected and the existing sequence stays in place.
func (c *Cache) ReplaceTasks(seq []task.Task) error {
	seen := make(map[string]bool, len(seq))
	for _, t := range seq {
		if t.ID != "" && seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}

	c.mu.Lock()
	c.tasks = make([]task.Task, len(seq))
	copy(c.tasks, seq)
	// persist runs outside the lock, so it must not share the live backing
	// array with a concurrent mutation.
	snapshot := append([]task.Task(nil), c.tasks...)
	c.mu.Unlock()

	c.persist(snapshot)
	return nil
}

// ReplaceCategories atomically swaps the category set.
func (c *Cache) ReplaceCategories(seq []task.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = make([]task.Category, len(seq))
	copy(c.categories, seq)
}

// Move removes the element at canonical index from and reinserts it at
// canonical index to. Moving an element onto itself is a no-op.
func (c *Cache) Move(from, to int) error {
	c.mu.Lock()

	if from < 0 || from >= len(c.tasks) || to < 0 || to >= len(c.tasks) {
		c.mu.Unlock()
		return fmt.Errorf("%w: move %d -> %d with %d tasks", ErrIndexOutOfRange, from, to, len(c.tasks))
	}
	if from == to {
		c.mu.Unlock()
		return nil
	}

	moved := c.tasks[from]
	c.tasks = append(c.tasks[:from], c.tasks[from+1:]...)
	c.tasks = append(c.tasks[:to], append([]task.Task{moved}, c.tasks[to:]...)...)
	snapshot := append([]task.Task(nil), c.tasks...)

	c.mu.Unlock()

	c.persist(snapshot)
	return nil
}

// IndexOf returns the canonical index of the task with the given id,
// or -1 if absent.
func (c *Cache) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// LoadSnapshot restores the last persisted sequence, if any. A missing
// snapshot is not an error; a corrupt one is.
func (c *Cache) LoadSnapshot() error {
	if c.snapshotDir == "" {
		return nil
	}

	data, err := os.ReadFile(c.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	seq, err := codec.Deserialize(data, codec.JSON)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = seq
	return nil
}

// SnapshotPath returns the durable snapshot location for this user.
func (c *Cache) SnapshotPath() string { return c.snapshotPath() }

func (c *Cache) snapshotPath() string {
	return filepath.Join(c.snapshotDir, "tasks-"+c.userID+".json")
}

// persist writes the snapshot atomically. Failures are logged, not fatal:
// the in-memory sequence is already authoritative for this session.
func (c *Cache) persist(seq []task.Task) {
	if c.snapshotDir == "" {
		return
	}

	data, err := codec.Serialize(seq, codec.JSON)
	if err != nil {
		c.log.Warn("snapshot encode failed", "user", c.userID, "error", err)
		return
	}
	if err := os.MkdirAll(c.snapshotDir, 0o700); err != nil {
		c.log.Warn("snapshot dir create failed", "dir", c.snapshotDir, "error", err)
		return
	}
	if err := atomic.WriteFile(c.snapshotPath(), bytes.NewReader(data)); err != nil {
		c.log.Warn("snapshot write failed", "path", c.snapshotPath(), "error", err)
	}
}
