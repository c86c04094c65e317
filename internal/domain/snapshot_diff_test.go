package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSnapshotCanonicalText(t *testing.T) {
	snapshot := json.RawMessage(`{
		"scientific_name": "Rosa canina",
		"common_names": ["dog rose", "wild rose"],
		"images": [],
		"details": {"habit": "shrub", "height": 3}
	}`)

	lines, err := SnapshotCanonicalText(snapshot)
	if err != nil {
		t.Fatalf("unexpected error generating canonical text: %v", err)
	}

	expected := []string{
		`common_names[0]: "dog rose"`,
		`common_names[1]: "wild rose"`,
		`details.habit: "shrub"`,
		`details.height: 3`,
		`images: []`,
		`scientific_name: "Rosa canina"`,
	}

	if len(lines) != len(expected) {
		t.Fatalf("expected %d canonical lines, got %d\n%v", len(expected), len(lines), lines)
	}
	for idx, line := range expected {
		if lines[idx] != line {
			t.Errorf("line %d mismatch: expected %q got %q", idx, line, lines[idx])
		}
	}
}

func TestSnapshotCanonicalTextEmptySnapshot(t *testing.T) {
	lines, err := SnapshotCanonicalText(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines for nil snapshot, got %v", lines)
	}
}

func TestDiffSnapshots(t *testing.T) {
	base := json.RawMessage(`{"scientific_name": "Rosa canina", "description": "a climbing rose"}`)
	target := json.RawMessage(`{"scientific_name": "Rosa canina", "description": "a climbing wild rose"}`)

	diff, err := DiffSnapshots("history/abc", base, "plant/def", target)
	if err != nil {
		t.Fatalf("diff returned error: %v", err)
	}

	if !strings.Contains(diff, "--- history/abc") || !strings.Contains(diff, "+++ plant/def") {
		t.Fatalf("diff missing labels:\n%s", diff)
	}
	if !strings.Contains(diff, `-description: "a climbing rose"`) {
		t.Fatalf("diff missing removed line:\n%s", diff)
	}
	if !strings.Contains(diff, `+description: "a climbing wild rose"`) {
		t.Fatalf("diff missing added line:\n%s", diff)
	}
	if !strings.Contains(diff, ` scientific_name: "Rosa canina"`) {
		t.Fatalf("diff missing unchanged line:\n%s", diff)
	}
}

func TestDiffSnapshotsAgainstDeleted(t *testing.T) {
	base := json.RawMessage(`{"scientific_name": "Rosa canina"}`)

	diff, err := DiffSnapshots("history/abc", base, "plant/def", nil)
	if err != nil {
		t.Fatalf("diff returned error: %v", err)
	}

	if !strings.Contains(diff, `-scientific_name: "Rosa canina"`) {
		t.Fatalf("expected every base line removed:\n%s", diff)
	}
	body := diff[strings.Index(diff, "@@"):]
	for _, line := range strings.Split(body, "\n")[1:] {
		if strings.HasPrefix(line, "+") {
			t.Fatalf("expected no added lines:\n%s", diff)
		}
	}
}
