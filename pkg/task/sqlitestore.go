package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// SQLiteStore is the default, file-backed task store.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore creates a SQLiteStore over an open GORM handle.
func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// EnsureSchema creates the tasks table if it doesn't exist. The connection
// must have foreign keys enabled for the cascade to take effect.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	err := s.db.WithContext(ctx).Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			titulo          TEXT NOT NULL,
			descricao       TEXT,
			categoria       TEXT,
			prioridade      TEXT,
			estado          TEXT,
			data_criacao    TEXT,
			data_vencimento TEXT,
			data_conclusao  TEXT,
			parent_id       INTEGER,
			FOREIGN KEY (parent_id) REFERENCES tasks(id) ON DELETE CASCADE
		)`).Error
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	err = s.db.WithContext(ctx).Exec(
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`).Error
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new task. data_criacao is stamped with the current local
// time and estado is forced to pending.
func (s *SQLiteStore) Create(ctx context.Context, t *Task) (*Task, error) {
	t.ID = 0
	t.CreatedAt = time.Now().Format(TimestampLayout)
	t.State = StatePending
	t.CompletedAt = ""
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get retrieves a single task by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Task, error) {
	var t Task
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// All returns every task in storage order.
func (s *SQLiteStore) All(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := s.db.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies an allow-listed partial update. Unknown keys are dropped
// silently; an empty surviving set returns false. The id is not verified to
// exist; zero rows affected is still reported as success.
func (s *SQLiteStore) Update(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	kept := filterUpdates(updates)
	if len(kept) == 0 {
		return false, nil
	}
	res := s.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Updates(kept)
	if res.Error != nil {
		return false, fmt.Errorf("update task %d: %w", id, res.Error)
	}
	return true, nil
}

// Delete removes a task, cascading to its descendants. It reports whether a
// row was actually removed.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete task %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Filter returns tasks matching every non-nil criterion by exact equality.
// Columns outside the filter allow-list are ignored.
func (s *SQLiteStore) Filter(ctx context.Context, criteria map[string]any) ([]Task, error) {
	q := s.db.WithContext(ctx).Model(&Task{}).Order("id")
	for col, val := range criteria {
		if val == nil || !filterColumns[col] {
			continue
		}
		q = q.Where(col+" = ?", val)
	}
	var tasks []Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("filter tasks: %w", err)
	}
	return tasks, nil
}

// Children returns the direct children of a task, one level only.
func (s *SQLiteStore) Children(ctx context.Context, parentID int64) ([]Task, error) {
	var tasks []Task
	err := s.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("id").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("children of %d: %w", parentID, err)
	}
	return tasks, nil
}

// HasChildren reports whether a task has at least one direct child.
func (s *SQLiteStore) HasChildren(ctx context.Context, parentID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Task{}).Where("parent_id = ?", parentID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("has children of %d: %w", parentID, err)
	}
	return n > 0, nil
}

// Count returns the total task count.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Task{}).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return int(n), nil
}
