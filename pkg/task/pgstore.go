package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed task store, for deployments that point the
// core at a server database instead of the default SQLite file.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const taskCols = `id, titulo, descricao, categoria, prioridade, estado, data_criacao, data_vencimento, data_conclusao, parent_id`

// EnsureSchema creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			titulo          TEXT NOT NULL,
			descricao       TEXT NOT NULL DEFAULT '',
			categoria       TEXT NOT NULL DEFAULT '',
			prioridade      TEXT NOT NULL DEFAULT '',
			estado          TEXT NOT NULL DEFAULT 'pending',
			data_criacao    TEXT NOT NULL DEFAULT '',
			data_vencimento TEXT NOT NULL DEFAULT '',
			data_conclusao  TEXT NOT NULL DEFAULT '',
			parent_id       BIGINT REFERENCES tasks(id) ON DELETE CASCADE
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id) WHERE parent_id IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new task, stamping data_criacao and forcing estado to
// pending.
func (s *PgStore) Create(ctx context.Context, t *Task) (*Task, error) {
	t.CreatedAt = time.Now().Format(TimestampLayout)
	t.State = StatePending
	t.CompletedAt = ""
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (titulo, descricao, categoria, prioridade, estado, data_criacao, data_vencimento, data_conclusao, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		t.Title, t.Description, string(t.Category), string(t.Priority), string(t.State),
		t.CreatedAt, t.DueAt, t.CompletedAt, t.ParentID).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get retrieves a single task by id.
func (s *PgStore) Get(ctx context.Context, id int64) (*Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// All returns every task in storage order.
func (s *PgStore) All(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// Update applies an allow-listed partial update with a dynamically built SET
// clause. Unknown keys are dropped; an empty surviving set returns false.
// Zero rows affected is still success.
func (s *PgStore) Update(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	kept := filterUpdates(updates)
	if len(kept) == 0 {
		return false, nil
	}

	// Deterministic clause order keeps queries reproducible in logs.
	cols := make([]string, 0, len(kept))
	for col := range kept {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := ""
	args := make([]any, 0, len(kept)+1)
	for i, col := range cols {
		if i > 0 {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, kept[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", set, len(args))
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return false, fmt.Errorf("update task %d: %w", id, err)
	}
	return true, nil
}

// Delete removes a task, cascading to descendants, and reports whether a row
// was actually removed.
func (s *PgStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Filter returns tasks matching every non-nil criterion by exact equality.
func (s *PgStore) Filter(ctx context.Context, criteria map[string]any) ([]Task, error) {
	cols := make([]string, 0, len(criteria))
	for col, val := range criteria {
		if val == nil || !filterColumns[col] {
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	query := `SELECT ` + taskCols + ` FROM tasks WHERE 1=1`
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		query += fmt.Sprintf(" AND %s = $%d", col, i+1)
		args = append(args, criteria[col])
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter tasks: %w", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// Children returns the direct children of a task.
func (s *PgStore) Children(ctx context.Context, parentID int64) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskCols+` FROM tasks WHERE parent_id = $1 ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("children of %d: %w", parentID, err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// HasChildren reports whether a task has at least one direct child.
func (s *PgStore) HasChildren(ctx context.Context, parentID int64) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE parent_id = $1`, parentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has children of %d: %w", parentID, err)
	}
	return n > 0, nil
}

// Count returns the total task count.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var categoria, prioridade, estado string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &categoria, &prioridade, &estado,
		&t.CreatedAt, &t.DueAt, &t.CompletedAt, &t.ParentID)
	if err != nil {
		return nil, err
	}
	t.Category = Category(categoria)
	t.Priority = Priority(prioridade)
	t.State = State(estado)
	return &t, nil
}

func scanTaskRows(rows pgx.Rows) ([]Task, error) {
	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}
