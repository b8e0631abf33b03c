// Package manager layers the task business rules over a task.Store:
// title and enum validation, completion stamping, subtask navigation, and
// bulk import/export.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdesk/pkg/task"
)

// ErrValidation marks input rejected before it reaches the store.
var ErrValidation = errors.New("validation")

// maxParentDepth bounds the ancestor walk at creation. A chain this long is
// only reachable through direct store manipulation.
const maxParentDepth = 64

// Manager owns the business rules over a task store.
type Manager struct {
	store task.Store
	now   func() time.Time
}

// New creates a Manager.
func New(store task.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Create validates the new task and delegates to the store, which stamps
// data_criacao and forces estado to pending. Returns the new id.
func (m *Manager) Create(ctx context.Context, title, description string, category task.Category, priority task.Priority, dueAt string, parentID *int64) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if category != "" && !category.Valid() {
		return 0, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if priority != "" && !priority.Valid() {
		return 0, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	if parentID != nil {
		if err := m.checkParentChain(ctx, *parentID); err != nil {
			return 0, err
		}
	}

	t := &task.Task{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		DueAt:       dueAt,
		ParentID:    parentID,
	}
	created, err := m.store.Create(ctx, t)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// checkParentChain walks the ancestor links of the prospective parent. The
// store never accepts a parent_id change after creation, so a fresh task
// cannot close a cycle; the walk guards against an already-corrupted chain
// introduced by direct store manipulation.
func (m *Manager) checkParentChain(ctx context.Context, parentID int64) error {
	seen := map[int64]bool{}
	id := parentID
	for depth := 0; depth < maxParentDepth; depth++ {
		if seen[id] {
			return fmt.Errorf("%w: parent chain of task %d contains a cycle", ErrValidation, parentID)
		}
		seen[id] = true

		t, err := m.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, task.ErrNotFound) {
				return fmt.Errorf("%w: parent task %d does not exist", ErrValidation, id)
			}
			return err
		}
		if t.ParentID == nil {
			return nil
		}
		id = *t.ParentID
	}
	return fmt.Errorf("%w: parent chain of task %d exceeds depth %d", ErrValidation, parentID, maxParentDepth)
}

// Get retrieves a single task.
func (m *Manager) Get(ctx context.Context, id int64) (*task.Task, error) {
	return m.store.Get(ctx, id)
}

// ListAll returns every task, or only the roots of the forest when
// includeSubtasks is false.
func (m *Manager) ListAll(ctx context.Context, includeSubtasks bool) ([]task.Task, error) {
	tasks, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}
	if includeSubtasks {
		return tasks, nil
	}
	roots := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ParentID == nil {
			roots = append(roots, t)
		}
	}
	return roots, nil
}

// Update validates enum updates and delegates. When estado is set to done,
// data_conclusao is stamped with the update time in the same store call.
// Moving estado away from done leaves any earlier stamp in place.
func (m *Manager) Update(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	if v, ok := updates["estado"]; ok {
		s := task.State(toString(v))
		if !s.Valid() {
			return false, fmt.Errorf("%w: unknown state %q", ErrValidation, toString(v))
		}
		if s == task.StateDone {
			updates["data_conclusao"] = m.now().Format(task.TimestampLayout)
		}
	}
	if v, ok := updates["prioridade"]; ok {
		if p := task.Priority(toString(v)); !p.Valid() {
			return false, fmt.Errorf("%w: unknown priority %q", ErrValidation, toString(v))
		}
	}
	if v, ok := updates["categoria"]; ok {
		if c := task.Category(toString(v)); !c.Valid() {
			return false, fmt.Errorf("%w: unknown category %q", ErrValidation, toString(v))
		}
	}
	return m.store.Update(ctx, id, updates)
}

// Delete removes a task and, through the store's referential action, its
// descendants.
func (m *Manager) Delete(ctx context.Context, id int64) (bool, error) {
	return m.store.Delete(ctx, id)
}

// Filter delegates an exact-match column filter to the store.
func (m *Manager) Filter(ctx context.Context, criteria map[string]any) ([]task.Task, error) {
	return m.store.Filter(ctx, criteria)
}

// Children returns the direct children of a task.
func (m *Manager) Children(ctx context.Context, parentID int64) ([]task.Task, error) {
	return m.store.Children(ctx, parentID)
}

// HasChildren reports whether a task has subtasks.
func (m *Manager) HasChildren(ctx context.Context, parentID int64) (bool, error) {
	return m.store.HasChildren(ctx, parentID)
}

// Count returns the total task count.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// toString renders the enum-ish update values the callers hand us: plain
// strings, or the typed constants.
func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case task.State:
		return string(s)
	case task.Priority:
		return string(s)
	case task.Category:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
