package manager

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"taskdesk/pkg/task"
)

// --- Mock task store ---

type mockStore struct {
	tasks  map[int64]*task.Task
	nextID int64

	// lastUpdates records the field set most recently passed to Update,
	// so tests can see what the manager injected.
	lastUpdates map[string]any
}

func newMockStore() *mockStore {
	return &mockStore{tasks: map[int64]*task.Task{}, nextID: 1}
}

func (s *mockStore) Create(_ context.Context, t *task.Task) (*task.Task, error) {
	t.ID = s.nextID
	s.nextID++
	t.CreatedAt = time.Now().Format(task.TimestampLayout)
	t.State = task.StatePending
	cp := *t
	s.tasks[t.ID] = &cp
	return &cp, nil
}

func (s *mockStore) Get(_ context.Context, id int64) (*task.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *mockStore) All(_ context.Context) ([]task.Task, error) {
	ids := make([]int64, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.tasks[id])
	}
	return out, nil
}

func (s *mockStore) Update(_ context.Context, id int64, updates map[string]any) (bool, error) {
	s.lastUpdates = updates
	if len(updates) == 0 {
		return false, nil
	}
	t, ok := s.tasks[id]
	if !ok {
		return true, nil // vacuous success, as the real stores do
	}
	if v, ok := updates["titulo"]; ok {
		t.Title = v.(string)
	}
	if v, ok := updates["estado"]; ok {
		t.State = task.State(asString(v))
	}
	if v, ok := updates["data_conclusao"]; ok {
		t.CompletedAt = v.(string)
	}
	if v, ok := updates["prioridade"]; ok {
		t.Priority = task.Priority(asString(v))
	}
	return true, nil
}

func (s *mockStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	// cascade
	for cid, t := range s.tasks {
		if t.ParentID != nil && *t.ParentID == id {
			s.Delete(context.Background(), cid)
		}
	}
	return true, nil
}

func (s *mockStore) Filter(_ context.Context, criteria map[string]any) ([]task.Task, error) {
	all, _ := s.All(context.Background())
	var out []task.Task
	for _, t := range all {
		match := true
		for col, val := range criteria {
			if val == nil {
				continue
			}
			switch col {
			case "id":
				if t.ID != val.(int64) {
					match = false
				}
			case "estado":
				if string(t.State) != asString(val) {
					match = false
				}
			case "titulo":
				if t.Title != val.(string) {
					match = false
				}
			}
		}
		if match {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *mockStore) Children(_ context.Context, parentID int64) ([]task.Task, error) {
	all, _ := s.All(context.Background())
	var out []task.Task
	for _, t := range all {
		if t.ParentID != nil && *t.ParentID == parentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *mockStore) HasChildren(ctx context.Context, parentID int64) (bool, error) {
	kids, _ := s.Children(ctx, parentID)
	return len(kids) > 0, nil
}

func (s *mockStore) Count(_ context.Context) (int, error) { return len(s.tasks), nil }

func (s *mockStore) EnsureSchema(_ context.Context) error { return nil }

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case task.State:
		return string(s)
	case task.Priority:
		return string(s)
	case task.Category:
		return string(s)
	}
	return ""
}

// --- Tests ---

// TestCreateRejectsEmptyTitle verifies title validation happens before the
// store is reached.
func TestCreateRejectsEmptyTitle(t *testing.T) {
	s := newMockStore()
	m := New(s)

	for _, title := range []string{"", "   "} {
		_, err := m.Create(context.Background(), title, "", "", "", "", nil)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("title %q: want ErrValidation, got %v", title, err)
		}
	}
	if len(s.tasks) != 0 {
		t.Error("store reached despite validation failure")
	}
}

// TestCreateRejectsUnknownEnums verifies that unrecognized priority and
// category values are rejected, while empty means unset.
func TestCreateRejectsUnknownEnums(t *testing.T) {
	m := New(newMockStore())
	ctx := context.Background()

	if _, err := m.Create(ctx, "t", "", "Hobby", "", "", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown category: want ErrValidation, got %v", err)
	}
	if _, err := m.Create(ctx, "t", "", "", "Urgent", "", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown priority: want ErrValidation, got %v", err)
	}
	if _, err := m.Create(ctx, "t", "", "", "", "", nil); err != nil {
		t.Errorf("empty enums are unset, not invalid: %v", err)
	}
}

// TestUpdateStampsCompletion verifies that setting estado to done injects
// data_conclusao into the same store call.
func TestUpdateStampsCompletion(t *testing.T) {
	s := newMockStore()
	m := New(s)
	stamped := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	m.now = func() time.Time { return stamped }

	id, err := m.Create(context.Background(), "finish me", "", "", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := m.Update(context.Background(), id, map[string]any{"estado": "done"})
	if err != nil || !ok {
		t.Fatalf("update: got (%v, %v)", ok, err)
	}

	want := stamped.Format(task.TimestampLayout)
	if got := s.lastUpdates["data_conclusao"]; got != want {
		t.Errorf("data_conclusao: want %q, got %v", want, got)
	}
	if s.tasks[id].CompletedAt != want {
		t.Errorf("completed_at not persisted: %+v", s.tasks[id])
	}
}

// TestUpdateLeavesCompletionAlone verifies that non-done transitions never
// touch data_conclusao, including moving away from done.
func TestUpdateLeavesCompletionAlone(t *testing.T) {
	s := newMockStore()
	m := New(s)
	ctx := context.Background()

	id, _ := m.Create(ctx, "flip-flop", "", "", "", "", nil)
	if _, err := m.Update(ctx, id, map[string]any{"estado": "done"}); err != nil {
		t.Fatal(err)
	}
	stale := s.tasks[id].CompletedAt
	if stale == "" {
		t.Fatal("completion not stamped")
	}

	if _, err := m.Update(ctx, id, map[string]any{"estado": "in-progress"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.lastUpdates["data_conclusao"]; ok {
		t.Error("non-done transition injected data_conclusao")
	}
	if s.tasks[id].CompletedAt != stale {
		t.Errorf("stale completion stamp should remain, got %q", s.tasks[id].CompletedAt)
	}
}

// TestUpdateRejectsUnknownState verifies boundary validation of estado.
func TestUpdateRejectsUnknownState(t *testing.T) {
	m := New(newMockStore())
	_, err := m.Update(context.Background(), 1, map[string]any{"estado": "archived"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

// TestListAllRootsOnly verifies that includeSubtasks=false filters to tasks
// without a parent.
func TestListAllRootsOnly(t *testing.T) {
	s := newMockStore()
	m := New(s)
	ctx := context.Background()

	rootID, _ := m.Create(ctx, "root", "", "", "", "", nil)
	if _, err := m.Create(ctx, "child", "", "", "", "", &rootID); err != nil {
		t.Fatal(err)
	}

	all, err := m.ListAll(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 tasks, got %d", len(all))
	}

	roots, err := m.ListAll(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].ID != rootID {
		t.Errorf("want only the root, got %v", roots)
	}
}

// TestCreateRejectsMissingParent verifies that a subtask cannot reference a
// parent that does not exist.
func TestCreateRejectsMissingParent(t *testing.T) {
	m := New(newMockStore())
	missing := int64(77)
	_, err := m.Create(context.Background(), "orphan", "", "", "", "", &missing)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

// TestCreateDetectsCorruptParentCycle verifies the ancestor walk refuses a
// parent whose chain already contains a cycle (only reachable by direct
// store manipulation).
func TestCreateDetectsCorruptParentCycle(t *testing.T) {
	s := newMockStore()
	m := New(s)

	a, b := int64(1), int64(2)
	s.tasks[a] = &task.Task{ID: a, Title: "a", ParentID: &b}
	s.tasks[b] = &task.Task{ID: b, Title: "b", ParentID: &a}
	s.nextID = 3

	_, err := m.Create(context.Background(), "child of a cycle", "", "", "", "", &a)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation for cyclic chain, got %v", err)
	}
}
