// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"smartodo/internal/store"
	"smartodo/internal/task"
)

// UpdateCall records one UpdateTask invocation for assertions.
type UpdateCall struct {
	UserID  string
	TaskID  string
	Updates map[string]any
}

// FakeStore is an in-memory implementation of store.Store for testing.
// It delivers full snapshots to subscribers on every mutation, newest task
// first, mirroring the remote feed's createdAt-descending order.
type FakeStore struct {
	mu         sync.Mutex
	tasks      map[string][]task.Task
	categories map[string][]task.Category

	taskSubs map[string]map[int]store.TaskFunc
	catSubs  map[string]map[int]store.CategoryFunc
	nextSub  int

	// UpdateCalls records every UpdateTask call in order.
	UpdateCalls []UpdateCall

	// Error injection for testing.
	SubscribeTasksErr      error
	SubscribeCategoriesErr error
	AddTaskErr             error
	UpdateTaskErr          error
	DeleteTaskErr          error
	AddCategoryErr         error
	UpdateCategoryErr      error
	DeleteCategoryErr      error
}

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		tasks:      make(map[string][]task.Task),
		categories: make(map[string][]task.Category),
		taskSubs:   make(map[string]map[int]store.TaskFunc),
		catSubs:    make(map[string]map[int]store.CategoryFunc),
	}
}

// SetTasks seeds a user's task sequence and notifies subscribers.
func (f *FakeStore) SetTasks(userID string, seq []task.Task) {
	f.mu.Lock()
	f.tasks[userID] = append([]task.Task(nil), seq...)
	f.mu.Unlock()
	f.notifyTasks(userID)
}

// SetCategories seeds a user's categories and notifies subscribers.
func (f *FakeStore) SetCategories(userID string, seq []task.Category) {
	f.mu.Lock()
	f.categories[userID] = append([]task.Category(nil), seq...)
	f.mu.Unlock()
	f.notifyCategories(userID)
}

// Tasks returns a copy of a user's current sequence.
func (f *FakeStore) Tasks(userID string) []task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]task.Task(nil), f.tasks[userID]...)
}

// TaskSubscriberCount reports how many live task subscriptions a user has.
func (f *FakeStore) TaskSubscriberCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taskSubs[userID])
}

// SubscribeTasks implements store.Store.
func (f *FakeStore) SubscribeTasks(ctx context.Context, userID string, fn store.TaskFunc) (store.Unsubscribe, error) {
	if f.SubscribeTasksErr != nil {
		return nil, f.SubscribeTasksErr
	}

	f.mu.Lock()
	if f.taskSubs[userID] == nil {
		f.taskSubs[userID] = make(map[int]store.TaskFunc)
	}
	id := f.nextSub
	f.nextSub++
	f.taskSubs[userID][id] = fn
	initial := append([]task.Task(nil), f.tasks[userID]...)
	f.mu.Unlock()

	// Initial delivery, like a snapshot listener's first tick.
	fn(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.taskSubs[userID], id)
			f.mu.Unlock()
		})
	}, nil
}

// SubscribeCategories implements store.Store.
func (f *FakeStore) SubscribeCategories(ctx context.Context, userID string, fn store.CategoryFunc) (store.Unsubscribe, error) {
	if f.SubscribeCategoriesErr != nil {
		return nil, f.SubscribeCategoriesErr
	}

	f.mu.Lock()
	if f.catSubs[userID] == nil {
		f.catSubs[userID] = make(map[int]store.CategoryFunc)
	}
	id := f.nextSub
	f.nextSub++
	f.catSubs[userID][id] = fn
	initial := append([]task.Category(nil), f.categories[userID]...)
	f.mu.Unlock()

	fn(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.catSubs[userID], id)
			f.mu.Unlock()
		})
	}, nil
}

// AddTask implements store.Store. New tasks are prepended: the feed is
// ordered createdAt descending, newest first.
func (f *FakeStore) AddTask(ctx context.Context, userID string, t task.Task) error {
	if f.AddTaskErr != nil {
		return f.AddTaskErr
	}

	f.mu.Lock()
	t.ID = uuid.NewString()
	f.tasks[userID] = append([]task.Task{t}, f.tasks[userID]...)
	f.mu.Unlock()

	f.notifyTasks(userID)
	return nil
}

// UpdateTask implements store.Store.
func (f *FakeStore) UpdateTask(ctx context.Context, userID, taskID string, updates map[string]any) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}

	f.mu.Lock()
	f.UpdateCalls = append(f.UpdateCalls, UpdateCall{UserID: userID, TaskID: taskID, Updates: updates})

	seq := f.tasks[userID]
	found := false
	for i := range seq {
		if seq[i].ID != taskID {
			continue
		}
		found = true
		applyUpdates(&seq[i], updates)
	}
	f.mu.Unlock()

	if !found {
		return store.ErrNotFound
	}
	f.notifyTasks(userID)
	return nil
}

// DeleteTask implements store.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, userID, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	f.mu.Lock()
	seq := f.tasks[userID]
	found := false
	for i := range seq {
		if seq[i].ID == taskID {
			f.tasks[userID] = append(seq[:i], seq[i+1:]...)
			found = true
			break
		}
	}
	f.mu.Unlock()

	if !found {
		return store.ErrNotFound
	}
	f.notifyTasks(userID)
	return nil
}

// AddCategory implements store.Store. Categories are kept name ascending,
// mirroring the remote feed's order.
func (f *FakeStore) AddCategory(ctx context.Context, userID, name string) error {
	if f.AddCategoryErr != nil {
		return f.AddCategoryErr
	}

	f.mu.Lock()
	f.categories[userID] = append(f.categories[userID], task.Category{ID: uuid.NewString(), Name: name})
	sort.SliceStable(f.categories[userID], func(i, j int) bool {
		return f.categories[userID][i].Name < f.categories[userID][j].Name
	})
	f.mu.Unlock()

	f.notifyCategories(userID)
	return nil
}

// UpdateCategory implements store.Store.
func (f *FakeStore) UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) error {
	if f.UpdateCategoryErr != nil {
		return f.UpdateCategoryErr
	}

	f.mu.Lock()
	found := false
	for i := range f.categories[userID] {
		if f.categories[userID][i].ID != categoryID {
			continue
		}
		found = true
		if name, ok := updates["name"].(string); ok {
			f.categories[userID][i].Name = name
		}
	}
	f.mu.Unlock()

	if !found {
		return store.ErrNotFound
	}
	f.notifyCategories(userID)
	return nil
}

// DeleteCategory implements store.Store. Tasks keep their dangling
// category id.
func (f *FakeStore) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	if f.DeleteCategoryErr != nil {
		return f.DeleteCategoryErr
	}

	f.mu.Lock()
	cats := f.categories[userID]
	found := false
	for i := range cats {
		if cats[i].ID == categoryID {
			f.categories[userID] = append(cats[:i], cats[i+1:]...)
			found = true
			break
		}
	}
	f.mu.Unlock()

	if !found {
		return store.ErrNotFound
	}
	f.notifyCategories(userID)
	return nil
}

func (f *FakeStore) notifyTasks(userID string) {
	f.mu.Lock()
	snapshot := append([]task.Task(nil), f.tasks[userID]...)
	subs := make([]store.TaskFunc, 0, len(f.taskSubs[userID]))
	for _, fn := range f.taskSubs[userID] {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (f *FakeStore) notifyCategories(userID string) {
	f.mu.Lock()
	snapshot := append([]task.Category(nil), f.categories[userID]...)
	subs := make([]store.CategoryFunc, 0, len(f.catSubs[userID]))
	for _, fn := range f.catSubs[userID] {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func applyUpdates(t *task.Task, updates map[string]any) {
	for key, v := range updates {
		switch key {
		case "title":
			if s, ok := v.(string); ok {
				t.Title = s
			}
		case "notes":
			if s, ok := v.(string); ok {
				t.Notes = s
			}
		case "category":
			if s, ok := v.(string); ok {
				t.Category = s
			}
		case "priority":
			switch p := v.(type) {
			case task.Priority:
				t.Priority = p
			case string:
				t.Priority = task.Priority(p)
			}
		case "due":
			switch d := v.(type) {
			case int64:
				t.Due = &d
			case *int64:
				t.Due = d
			case nil:
				t.Due = nil
			}
		case "completed":
			if b, ok := v.(bool); ok {
				t.Completed = b
			}
		}
	}
}

var _ store.Store = (*FakeStore)(nil)
