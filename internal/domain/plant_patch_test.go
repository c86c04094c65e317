package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestPlantPatchApplyToLeavesAbsentFieldsAlone(t *testing.T) {
	plant := NewPlant("Salvia officinalis", []string{"sage"}, "a herb", uuid.New(), nil, []string{"sage.jpg"}, nil)

	name := "Salvia rosmarinus"
	patched := PlantPatch{ScientificName: &name}.ApplyTo(plant)

	if patched.ScientificName != name {
		t.Fatalf("expected scientific name %q, got %q", name, patched.ScientificName)
	}
	if len(patched.CommonNames) != 1 || patched.CommonNames[0] != "sage" {
		t.Fatalf("common names changed unexpectedly: %v", patched.CommonNames)
	}
	if patched.Description != "a herb" {
		t.Fatalf("description changed unexpectedly: %q", patched.Description)
	}
	if len(patched.Images) != 1 {
		t.Fatalf("images changed unexpectedly: %v", patched.Images)
	}
}

func TestPlantPatchApplyToReplacesProvidedSlices(t *testing.T) {
	plant := NewPlant("Mentha", []string{"mint"}, "", uuid.New(), []uuid.UUID{uuid.New()}, []string{"old.jpg"}, nil)

	newFamily := uuid.New()
	patch := PlantPatch{
		CommonNames:  []string{"peppermint", "spearmint"},
		FamilyID:     &newFamily,
		AttributeIDs: []uuid.UUID{},
		Images:       []string{"new.jpg"},
	}
	patched := patch.ApplyTo(plant)

	if len(patched.CommonNames) != 2 {
		t.Fatalf("expected common names replaced, got %v", patched.CommonNames)
	}
	if patched.FamilyID != newFamily {
		t.Fatalf("expected family replaced")
	}
	if len(patched.AttributeIDs) != 0 {
		t.Fatalf("expected attribute ids cleared, got %v", patched.AttributeIDs)
	}
	if len(patched.Images) != 1 || patched.Images[0] != "new.jpg" {
		t.Fatalf("expected images replaced, got %v", patched.Images)
	}
}

func TestPlantPatchApplyToCopiesPatchSlices(t *testing.T) {
	plant := NewPlant("Ficus", nil, "", uuid.New(), nil, nil, nil)

	images := []string{"a.jpg"}
	patched := PlantPatch{Images: images}.ApplyTo(plant)

	images[0] = "mutated"
	if patched.Images[0] != "a.jpg" {
		t.Fatalf("patched plant aliased patch slice: %v", patched.Images)
	}
}

func TestPlantPatchIsEmpty(t *testing.T) {
	if !(PlantPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	description := "changed"
	if (PlantPatch{Description: &description}).IsEmpty() {
		t.Fatalf("patch with description should not be empty")
	}
	if (PlantPatch{Images: []string{}}).IsEmpty() {
		t.Fatalf("patch with explicit empty images should not be empty")
	}
}
