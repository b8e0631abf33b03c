// Package task defines the task record, its enumerated fields, and the
// storage contract shared by the SQLite and Postgres backends.
package task

import (
	"context"
)

// Persisted date/time layouts. The tasks table stores all dates as TEXT.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is a recognized priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Category is the closed set of task categories.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryStudies  Category = "Studies"
	CategoryPersonal Category = "Personal"
)

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryStudies, CategoryPersonal:
		return true
	}
	return false
}

// State is the closed set of task lifecycle states.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in-progress"
	StateDone       State = "done"
)

// Valid reports whether s is a recognized state.
func (s State) Valid() bool {
	switch s {
	case StatePending, StateInProgress, StateDone:
		return true
	}
	return false
}

// Task is the sole persisted entity. Column names follow the on-disk
// schema the export encodings are defined against.
type Task struct {
	ID          int64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string   `gorm:"column:titulo;not null" json:"titulo"`
	Description string   `gorm:"column:descricao" json:"descricao"`
	Category    Category `gorm:"column:categoria" json:"categoria"`
	Priority    Priority `gorm:"column:prioridade" json:"prioridade"`
	State       State    `gorm:"column:estado" json:"estado"`
	CreatedAt   string   `gorm:"column:data_criacao" json:"data_criacao"`       // TimestampLayout, write-once
	DueAt       string   `gorm:"column:data_vencimento" json:"data_vencimento"` // DateLayout, optional
	CompletedAt string   `gorm:"column:data_conclusao" json:"data_conclusao"`   // TimestampLayout, optional
	ParentID    *int64   `gorm:"column:parent_id" json:"parent_id,omitempty"`
}

// TableName returns the table name for the Task record.
func (Task) TableName() string {
	return "tasks"
}

// updateColumns is the allow-list of columns a partial update may touch.
// parent_id is deliberately absent: a task's position in the forest is
// fixed at creation.
var updateColumns = map[string]bool{
	"titulo":          true,
	"descricao":       true,
	"categoria":       true,
	"prioridade":      true,
	"estado":          true,
	"data_vencimento": true,
	"data_conclusao":  true,
}

// filterColumns is the allow-list of columns Filter may match on.
var filterColumns = map[string]bool{
	"id":              true,
	"titulo":          true,
	"descricao":       true,
	"categoria":       true,
	"prioridade":      true,
	"estado":          true,
	"data_criacao":    true,
	"data_vencimento": true,
	"data_conclusao":  true,
	"parent_id":       true,
}

// filterUpdates keeps only allow-listed update columns, preserving the
// silent-drop semantics for unknown keys.
func filterUpdates(updates map[string]any) map[string]any {
	kept := make(map[string]any, len(updates))
	for k, v := range updates {
		if updateColumns[k] {
			kept[k] = v
		}
	}
	return kept
}

// Store is the contract for task persistence.
type Store interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	All(ctx context.Context) ([]Task, error)

	// Update applies an allow-listed partial update. It returns false when
	// nothing survives filtering. An update against a missing id succeeds
	// vacuously with zero rows affected.
	Update(ctx context.Context, id int64, updates map[string]any) (bool, error)

	// Delete reports whether a row was actually removed. Deleting a parent
	// cascades to its descendants.
	Delete(ctx context.Context, id int64) (bool, error)

	// Filter matches columns by exact equality. Criteria with nil values
	// are ignored rather than treated as IS NULL.
	Filter(ctx context.Context, criteria map[string]any) ([]Task, error)

	Children(ctx context.Context, parentID int64) ([]Task, error)
	HasChildren(ctx context.Context, parentID int64) (bool, error)
	Count(ctx context.Context) (int, error)
	EnsureSchema(ctx context.Context) error
}
