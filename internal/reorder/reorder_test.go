package reorder

import (
	"context"
	"errors"
	"testing"

	"smartodo/internal/cache"
	"smartodo/internal/task"
	"smartodo/internal/testutil"
	"smartodo/internal/view"
)

func seedCache(t *testing.T, ids ...string) *cache.Cache {
	t.Helper()
	c := cache.New("u1", "", nil)
	seq := make([]task.Task, len(ids))
	for i, id := range ids {
		seq[i] = task.Task{ID: id, Title: "task " + id}
	}
	if err := c.ReplaceTasks(seq); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}
	return c
}

func ids(seq []task.Task) []string {
	out := make([]string, len(seq))
	for i, t := range seq {
		out[i] = t.ID
	}
	return out
}

// Dragging the item at canonical index 0 to canonical index 2 in [A,B,C]
// yields [B,C,A].
func TestReorderUnfilteredView(t *testing.T) {
	c := seedCache(t, "A", "B", "C")
	eng := New(c, nil, false, nil)

	visible := c.Tasks() // manual mode, no filters: visible == canonical

	from, to, err := eng.Reorder(context.Background(), 0, 2, visible)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if from != 0 || to != 2 {
		t.Errorf("canonical (from, to) = (%d, %d), want (0, 2)", from, to)
	}

	got := ids(c.Tasks())
	want := []string{"B", "C", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence = %v, want %v", got, want)
		}
	}
}

// With a filter active, visible indices must be mapped back through id
// lookup: dragging within the filtered view moves the right canonical
// elements and leaves the hidden ones in place.
func TestReorderFilteredView(t *testing.T) {
	c := cache.New("u1", "", nil)
	err := c.ReplaceTasks([]task.Task{
		{ID: "A", Title: "milk run"},
		{ID: "B", Title: "call mom"},
		{ID: "C", Title: "milk shake"},
		{ID: "D", Title: "dentist"},
	})
	if err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	s := view.NewState()
	s.Query = "milk"
	visible := view.Filtered(c.Tasks(), s) // [A, C]

	eng := New(c, nil, false, nil)
	from, to, err := eng.Reorder(context.Background(), 0, 1, visible)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if from != 0 || to != 2 {
		t.Errorf("canonical (from, to) = (%d, %d), want (0, 2)", from, to)
	}

	got := ids(c.Tasks())
	want := []string{"B", "C", "A", "D"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence = %v, want %v", got, want)
		}
	}
}

func TestReorderVisibleIndexOutOfRange(t *testing.T) {
	c := seedCache(t, "A", "B")
	eng := New(c, nil, false, nil)
	visible := c.Tasks()

	_, _, err := eng.Reorder(context.Background(), 0, 5, visible)
	if !errors.Is(err, ErrVisibleIndexOutOfRange) {
		t.Fatalf("expected ErrVisibleIndexOutOfRange, got %v", err)
	}
	if got := ids(c.Tasks()); got[0] != "A" || got[1] != "B" {
		t.Errorf("failed reorder mutated sequence: %v", got)
	}
}

// A remote replace can remove a task between render and drop; the gesture
// must fail without mutating anything.
func TestReorderStaleVisibleSlice(t *testing.T) {
	c := seedCache(t, "A", "B", "C")
	visible := c.Tasks()

	// Remote snapshot arrives without C.
	if err := c.ReplaceTasks([]task.Task{{ID: "A", Title: "a"}, {ID: "B", Title: "b"}}); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	eng := New(c, nil, false, nil)
	_, _, err := eng.Reorder(context.Background(), 2, 0, visible)
	if !errors.Is(err, ErrNotInSequence) {
		t.Fatalf("expected ErrNotInSequence, got %v", err)
	}
}

func TestReorderLocalOnlyDoesNotTouchRemote(t *testing.T) {
	c := seedCache(t, "A", "B", "C")
	st := testutil.NewFakeStore()
	eng := New(c, st, false, nil)

	if _, _, err := eng.Reorder(context.Background(), 0, 2, c.Tasks()); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if len(st.UpdateCalls) != 0 {
		t.Errorf("local-only reorder wrote %d remote updates", len(st.UpdateCalls))
	}
}

func TestReorderPushWritesPositions(t *testing.T) {
	c := seedCache(t, "A", "B", "C")
	st := testutil.NewFakeStore()
	st.SetTasks("u1", c.Tasks())
	eng := New(c, st, true, nil)

	if _, _, err := eng.Reorder(context.Background(), 0, 2, c.Tasks()); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	if len(st.UpdateCalls) != 3 {
		t.Fatalf("expected 3 position updates, got %d", len(st.UpdateCalls))
	}
	// New canonical order is [B, C, A]; positions follow it.
	wantOrder := []string{"B", "C", "A"}
	for i, call := range st.UpdateCalls {
		if call.TaskID != wantOrder[i] {
			t.Errorf("update %d wrote task %s, want %s", i, call.TaskID, wantOrder[i])
		}
		if pos, ok := call.Updates["position"].(int); !ok || pos != i {
			t.Errorf("update %d position = %v, want %d", i, call.Updates["position"], i)
		}
	}
}

// A failed push surfaces the error but keeps the local move.
func TestReorderPushFailureKeepsLocalMove(t *testing.T) {
	c := seedCache(t, "A", "B", "C")
	st := testutil.NewFakeStore()
	st.UpdateTaskErr = errors.New("remote down")
	eng := New(c, st, true, nil)

	_, _, err := eng.Reorder(context.Background(), 0, 2, c.Tasks())
	if err == nil {
		t.Fatal("expected push error")
	}
	if got := ids(c.Tasks()); got[0] != "B" || got[2] != "A" {
		t.Errorf("local move rolled back: %v", got)
	}
}
