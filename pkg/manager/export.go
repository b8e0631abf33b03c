package manager

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"taskdesk/pkg/task"
)

// Format selects a bulk transfer encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// csvHeader is the exact tabular header row, in export column order.
var csvHeader = []string{
	"ID", "Título", "Descrição", "Categoria", "Prioridade",
	"Estado", "Data Criação", "Data Vencimento", "Data Conclusão",
}

// record is one exported task. The encodings carry the flat list only;
// parent links are not part of the transfer contract.
type record struct {
	ID          int64  `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descricao"`
	Category    string `json:"categoria"`
	Priority    string `json:"prioridade"`
	State       string `json:"estado"`
	CreatedAt   string `json:"data_criacao"`
	DueAt       string `json:"data_vencimento"`
	CompletedAt string `json:"data_conclusao"`
}

func toRecord(t task.Task) record {
	return record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		State:       string(t.State),
		CreatedAt:   t.CreatedAt,
		DueAt:       t.DueAt,
		CompletedAt: t.CompletedAt,
	}
}

// Export serializes the full task list to path in the chosen encoding,
// creating any needed directories. Write failures propagate; no partial-file
// cleanup is attempted.
func (m *Manager) Export(ctx context.Context, path string, f Format) error {
	tasks, err := m.ListAll(ctx, true)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	switch f {
	case FormatCSV:
		return exportCSV(path, tasks)
	case FormatJSON:
		return exportJSON(path, tasks)
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
}

func exportCSV(path string, tasks []task.Task) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	for _, t := range tasks {
		r := toRecord(t)
		row := []string{
			strconv.FormatInt(r.ID, 10), r.Title, r.Description, r.Category,
			r.Priority, r.State, r.CreatedAt, r.DueAt, r.CompletedAt,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return file.Close()
}

func exportJSON(path string, tasks []task.Task) error {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}
