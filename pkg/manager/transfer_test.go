package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"taskdesk/pkg/task"
)

type tuple struct {
	title, desc, category, priority, due string
}

func tuplesOf(t *testing.T, m *Manager) []tuple {
	t.Helper()
	tasks, err := m.ListAll(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]tuple, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tuple{tk.Title, tk.Description, string(tk.Category), string(tk.Priority), tk.DueAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].title < out[j].title })
	return out
}

func seedTasks(t *testing.T, m *Manager) {
	t.Helper()
	ctx := context.Background()
	seeds := []struct {
		title, desc string
		category    task.Category
		priority    task.Priority
		due         string
	}{
		{"Buy milk", "", task.CategoryPersonal, task.PriorityLow, "2025-01-10"},
		{"Write report", "quarterly numbers", task.CategoryWork, task.PriorityHigh, "2025-02-01"},
		{"Revise algebra", "chapters 1-3", task.CategoryStudies, task.PriorityMedium, ""},
	}
	for _, s := range seeds {
		if _, err := m.Create(ctx, s.title, s.desc, s.category, s.priority, s.due, nil); err != nil {
			t.Fatal(err)
		}
	}
}

// TestExportImportRoundTrip verifies that exporting and importing into a
// fresh store reproduces the same (title, description, category, priority,
// due) tuples for both encodings, even though ids are reassigned.
func TestExportImportRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			ctx := context.Background()
			src := New(newMockStore())
			seedTasks(t, src)

			path := filepath.Join(t.TempDir(), "out."+string(f))
			if err := src.Export(ctx, path, f); err != nil {
				t.Fatalf("export: %v", err)
			}

			dst := New(newMockStore())
			if err := dst.Import(ctx, path, f); err != nil {
				t.Fatalf("import: %v", err)
			}

			want := tuplesOf(t, src)
			got := tuplesOf(t, dst)
			if len(got) != len(want) {
				t.Fatalf("want %d tasks, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("tuple %d: want %+v, got %+v", i, want[i], got[i])
				}
			}
		})
	}
}

// TestImportSkipsExistingIDs verifies additive-only import: a record whose
// source id already exists is neither duplicated nor updated.
func TestImportSkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	m := New(newMockStore())
	seedTasks(t, m)

	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := m.Export(ctx, path, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if err := m.Import(ctx, path, FormatJSON); err != nil {
		t.Fatal(err)
	}

	n, err := m.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("re-import must be a no-op, want 3 tasks, got %d", n)
	}
}

// TestExportCreatesDirectories verifies that export creates missing parent
// directories of the destination.
func TestExportCreatesDirectories(t *testing.T) {
	ctx := context.Background()
	m := New(newMockStore())
	seedTasks(t, m)

	path := filepath.Join(t.TempDir(), "nested", "deeper", "tasks.csv")
	if err := m.Export(ctx, path, FormatCSV); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

// TestImportDistinguishesErrorConditions verifies the not-found versus
// malformed-source split.
func TestImportDistinguishesErrorConditions(t *testing.T) {
	ctx := context.Background()
	m := New(newMockStore())

	err := m.Import(ctx, filepath.Join(t.TempDir(), "nope.csv"), FormatCSV)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("missing file: want ErrSourceNotFound, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{definitely not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = m.Import(ctx, bad, FormatJSON)
	if !errors.Is(err, ErrBadFormat) {
		t.Errorf("garbage json: want ErrBadFormat, got %v", err)
	}

	badCSV := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(badCSV, []byte("just,two\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = m.Import(ctx, badCSV, FormatCSV)
	if !errors.Is(err, ErrBadFormat) {
		t.Errorf("wrong column count: want ErrBadFormat, got %v", err)
	}
}
