package task

import "testing"

// TestEnumValidation verifies that only the closed enum values are accepted.
func TestEnumValidation(t *testing.T) {
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if !p.Valid() {
			t.Errorf("priority %q should be valid", p)
		}
	}
	if Priority("Urgent").Valid() || Priority("").Valid() {
		t.Error("unrecognized priorities must not validate")
	}

	for _, c := range []Category{CategoryWork, CategoryStudies, CategoryPersonal} {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("Hobby").Valid() {
		t.Error("unrecognized categories must not validate")
	}

	for _, s := range []State{StatePending, StateInProgress, StateDone} {
		if !s.Valid() {
			t.Errorf("state %q should be valid", s)
		}
	}
	if State("concluded").Valid() {
		t.Error("unrecognized states must not validate")
	}
}

// TestFilterUpdatesAllowList verifies that unknown and forbidden columns are
// silently dropped, including parent_id and the write-once data_criacao.
func TestFilterUpdatesAllowList(t *testing.T) {
	kept := filterUpdates(map[string]any{
		"titulo":       "new title",
		"estado":       "done",
		"parent_id":    int64(3),
		"data_criacao": "2025-01-01 00:00:00",
		"id":           int64(9),
		"bogus":        true,
	})
	if len(kept) != 2 {
		t.Fatalf("want 2 surviving columns, got %d: %v", len(kept), kept)
	}
	if kept["titulo"] != "new title" || kept["estado"] != "done" {
		t.Errorf("allow-listed columns missing: %v", kept)
	}
}
