package cache

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"smartodo/internal/task"
)

func seq(ids ...string) []task.Task {
	out := make([]task.Task, len(ids))
	for i, id := range ids {
		out[i] = task.Task{ID: id, Title: "task " + id, CreatedAt: int64(i)}
	}
	return out
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New("u1", t.TempDir(), nil)
}

func TestReplaceTasksCopies(t *testing.T) {
	c := newTestCache(t)
	in := seq("a", "b")
	if err := c.ReplaceTasks(in); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	in[0].Title = "mutated"
	if got := c.Tasks(); got[0].Title != "task a" {
		t.Errorf("cache shares backing array with caller: %q", got[0].Title)
	}

	got := c.Tasks()
	got[1].Title = "mutated"
	if again := c.Tasks(); again[1].Title != "task b" {
		t.Errorf("Tasks() exposes internal slice: %q", again[1].Title)
	}
}

func TestReplaceTasksRejectsDuplicateIDs(t *testing.T) {
	c := newTestCache(t)
	if err := c.ReplaceTasks(seq("a", "b")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	err := c.ReplaceTasks(seq("x", "x"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	// Previous sequence must survive the rejected replace.
	if diff := cmp.Diff(seq("a", "b"), c.Tasks()); diff != "" {
		t.Errorf("sequence changed after rejected replace (-want +got):\n%s", diff)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"B", "C", "A"}},
		{"last to first", 2, 0, []string{"C", "A", "B"}},
		{"adjacent swap", 0, 1, []string{"B", "A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t)
			if err := c.ReplaceTasks(seq("A", "B", "C")); err != nil {
				t.Fatalf("ReplaceTasks: %v", err)
			}
			if err := c.Move(tt.from, tt.to); err != nil {
				t.Fatalf("Move: %v", err)
			}
			got := c.Tasks()
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestMoveNoOp(t *testing.T) {
	c := newTestCache(t)
	if err := c.ReplaceTasks(seq("A", "B", "C")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}
	before := c.Tasks()

	if err := c.Move(1, 1); err != nil {
		t.Fatalf("Move(1,1): %v", err)
	}
	if diff := cmp.Diff(before, c.Tasks()); diff != "" {
		t.Errorf("Move(i,i) changed sequence (-want +got):\n%s", diff)
	}
}

// move(move(S, i, j), j, i) == S when no other mutation intervenes.
func TestMoveInverse(t *testing.T) {
	c := newTestCache(t)
	if err := c.ReplaceTasks(seq("A", "B", "C", "D", "E")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}
	before := c.Tasks()

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if err := c.Move(i, j); err != nil {
				t.Fatalf("Move(%d,%d): %v", i, j, err)
			}
			if err := c.Move(j, i); err != nil {
				t.Fatalf("Move(%d,%d): %v", j, i, err)
			}
			if diff := cmp.Diff(before, c.Tasks()); diff != "" {
				t.Fatalf("move inverse broken at (%d,%d) (-want +got):\n%s", i, j, diff)
			}
		}
	}
}

func TestMoveOutOfRange(t *testing.T) {
	c := newTestCache(t)
	if err := c.ReplaceTasks(seq("A", "B")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	for _, pair := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {5, 5}} {
		err := c.Move(pair[0], pair[1])
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Move(%d,%d) = %v, want ErrIndexOutOfRange", pair[0], pair[1], err)
		}
	}

	// Failed moves must not mutate.
	if diff := cmp.Diff(seq("A", "B"), c.Tasks()); diff != "" {
		t.Errorf("sequence changed after failed move (-want +got):\n%s", diff)
	}
}

func TestIndexOf(t *testing.T) {
	c := newTestCache(t)
	if err := c.ReplaceTasks(seq("A", "B", "C")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	if got := c.IndexOf("B"); got != 1 {
		t.Errorf("IndexOf(B) = %d, want 1", got)
	}
	if got := c.IndexOf("missing"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestSnapshotPersistence(t *testing.T) {
	dir := t.TempDir()

	c := New("u1", dir, nil)
	if err := c.ReplaceTasks(seq("A", "B", "C")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}
	if err := c.Move(0, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}

	// A fresh cache for the same user restores the post-move sequence.
	restored := New("u1", dir, nil)
	if err := restored.LoadSnapshot(); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	got := restored.Tasks()
	if len(got) != 3 || got[0].ID != "B" || got[2].ID != "A" {
		t.Errorf("restored sequence = %v", got)
	}

	// Snapshots are keyed by user id.
	other := New("u2", dir, nil)
	if err := other.LoadSnapshot(); err != nil {
		t.Fatalf("LoadSnapshot (other user): %v", err)
	}
	if len(other.Tasks()) != 0 {
		t.Errorf("user u2 restored u1's tasks")
	}
}

func TestConcurrentMutationKeepsSnapshotConsistent(t *testing.T) {
	dir := t.TempDir()

	c := New("u1", dir, nil)
	if err := c.ReplaceTasks(seq("A", "B", "C", "D")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}

	// Moves and replaces racing each other must never hand persist a
	// sequence that another mutation is rewriting in place.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = c.Move(0, 3)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = c.ReplaceTasks(seq("A", "B", "C", "D"))
			}
		}()
	}
	wg.Wait()

	restored := New("u1", dir, nil)
	if err := restored.LoadSnapshot(); err != nil {
		t.Fatalf("LoadSnapshot after concurrent mutation: %v", err)
	}
	got := restored.Tasks()
	if len(got) != 4 {
		t.Fatalf("restored %d tasks, want 4", len(got))
	}
	seen := map[string]bool{}
	for _, tk := range got {
		seen[tk.ID] = true
	}
	for _, id := range []string{"A", "B", "C", "D"} {
		if !seen[id] {
			t.Errorf("restored sequence missing %q: %v", id, got)
		}
	}
}

func TestLoadSnapshotCorrupt(t *testing.T) {
	dir := t.TempDir()
	c := New("u1", dir, nil)
	if err := os.WriteFile(c.SnapshotPath(), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadSnapshot(); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}

func TestNoPersistenceWithoutDir(t *testing.T) {
	c := New("u1", "", nil)
	if err := c.ReplaceTasks(seq("A")); err != nil {
		t.Fatalf("ReplaceTasks: %v", err)
	}
	if err := c.LoadSnapshot(); err != nil {
		t.Errorf("LoadSnapshot with no dir: %v", err)
	}
}
