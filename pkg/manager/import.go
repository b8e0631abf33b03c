package manager

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"taskdesk/pkg/task"
)

// Import error conditions, distinguished so callers can report them
// differently.
var (
	ErrSourceNotFound = errors.New("import source not found")
	ErrBadFormat      = errors.New("import source malformed")
)

// importRecord is one incoming task. The source id decides skip-vs-create;
// it is never carried onto the new record.
type importRecord struct {
	ID       int64
	Title    string
	Desc     string
	Category string
	Priority string
	DueAt    string
	ParentID *int64
}

// Import reads records from path and creates a task for each record whose
// source id is not already present. Import is additive-only: existing ids
// are skipped, never updated. The store assigns fresh ids.
func (m *Manager) Import(ctx context.Context, path string, f Format) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("import: %w", err)
	}
	defer file.Close()

	var records []importRecord
	switch f {
	case FormatCSV:
		records, err = readCSV(file)
	case FormatJSON:
		records, err = readJSON(file)
	default:
		return fmt.Errorf("import: unknown format %q", f)
	}
	if err != nil {
		return err
	}

	for i, r := range records {
		existing, err := m.store.Filter(ctx, map[string]any{"id": r.ID})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		priority := task.Priority(r.Priority)
		if priority == "" {
			priority = task.PriorityMedium
		}
		_, err = m.Create(ctx, r.Title, r.Desc, task.Category(r.Category), priority, r.DueAt, r.ParentID)
		if err != nil {
			if errors.Is(err, ErrValidation) {
				return fmt.Errorf("%w: record %d: %v", ErrBadFormat, i+1, err)
			}
			return err
		}
	}
	return nil
}

func readCSV(r io.Reader) ([]importRecord, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if len(rows) == 0 || len(rows[0]) != len(csvHeader) {
		return nil, fmt.Errorf("%w: unexpected column count", ErrBadFormat)
	}

	var records []importRecord
	for i, row := range rows[1:] {
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad id %q", ErrBadFormat, i+2, row[0])
		}
		records = append(records, importRecord{
			ID:       id,
			Title:    row[1],
			Desc:     row[2],
			Category: row[3],
			Priority: row[4],
			DueAt:    row[7],
		})
	}
	return records, nil
}

func readJSON(r io.Reader) ([]importRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("import json: %w", err)
	}

	var incoming []struct {
		record
		ParentID *int64 `json:"parent_id"`
	}
	if err := json.Unmarshal(data, &incoming); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	records := make([]importRecord, 0, len(incoming))
	for _, in := range incoming {
		records = append(records, importRecord{
			ID:       in.ID,
			Title:    in.Title,
			Desc:     in.Description,
			Category: in.Category,
			Priority: in.Priority,
			DueAt:    in.DueAt,
			ParentID: in.ParentID,
		})
	}
	return records, nil
}
