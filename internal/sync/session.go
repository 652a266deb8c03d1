// Package sync ties the remote subscriptions to a user session and
// republishes every remote snapshot into the local cache.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"smartodo/internal/cache"
	"smartodo/internal/store"
	"smartodo/internal/task"
)

// ErrAlreadyStarted indicates Start was called on a running session.
// A session holds at most one active subscription pair.
var ErrAlreadyStarted = errors.New("session already started")

// Session owns the live task and category feeds for exactly one user. Its
// lifetime is the user session's lifetime: Start at login, Stop at logout.
// A session that is never stopped leaks a callback that would write a
// previous user's data into a cache that may no longer be theirs.
type Session struct {
	store store.Store
	cache *cache.Cache
	log   *slog.Logger

	// OnTasks, if set, runs after every task snapshot has been applied to
	// the cache. Used by watchers to re-derive the view.
	OnTasks func([]task.Task)

	// OnCategories runs after every category snapshot.
	OnCategories func([]task.Category)

	mu        sync.Mutex
	deliverMu sync.Mutex
	unsubT    store.Unsubscribe
	unsubC    store.Unsubscribe
	started   bool
}

// NewSession creates a session for the cache's user. Nothing is subscribed
// until Start.
func NewSession(st store.Store, c *cache.Cache, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{store: st, cache: c, log: log}
}

// Start opens both feeds. Each delivery replaces the cache's canonical
// sequence wholesale; there are no delta semantics, so the last snapshot to
// arrive always wins over any earlier local mutation.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	userID := s.cache.UserID()

	unsubT, err := s.store.SubscribeTasks(ctx, userID, s.applyTasks)
	if err != nil {
		s.reset()
		return fmt.Errorf("subscribe tasks: %w", err)
	}

	unsubC, err := s.store.SubscribeCategories(ctx, userID, s.applyCategories)
	if err != nil {
		unsubT()
		s.reset()
		return fmt.Errorf("subscribe categories: %w", err)
	}

	s.mu.Lock()
	s.unsubT = unsubT
	s.unsubC = unsubC
	s.mu.Unlock()

	s.log.Debug("sync session started", "user", userID)
	return nil
}

// Stop tears down both subscriptions. It is idempotent and safe to call on
// a session that never started.
func (s *Session) Stop() {
	s.mu.Lock()
	unsubT, unsubC := s.unsubT, s.unsubC
	s.unsubT, s.unsubC = nil, nil
	wasStarted := s.started
	s.started = false
	s.mu.Unlock()

	if unsubT != nil {
		unsubT()
	}
	if unsubC != nil {
		unsubC()
	}
	if wasStarted {
		s.log.Debug("sync session stopped", "user", s.cache.UserID())
	}
}

// applyTasks is the feed callback. Deliveries are serialized so a slow
// snapshot never interleaves with another cache mutation from this session.
func (s *Session) applyTasks(seq []task.Task) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if err := s.cache.ReplaceTasks(seq); err != nil {
		// A snapshot violating the id-uniqueness invariant is dropped; the
		// cache keeps serving its last good sequence.
		s.log.Warn("rejected remote snapshot", "user", s.cache.UserID(), "error", err)
		return
	}

	if s.OnTasks != nil {
		s.OnTasks(seq)
	}
}

func (s *Session) applyCategories(seq []task.Category) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.cache.ReplaceCategories(seq)

	if s.OnCategories != nil {
		s.OnCategories(seq)
	}
}

func (s *Session) reset() {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}
