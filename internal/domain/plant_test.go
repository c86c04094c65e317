package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewPlantCopiesSlices(t *testing.T) {
	commonNames := []string{"rose"}
	images := []string{"a.jpg"}
	attributeIDs := []uuid.UUID{uuid.New()}
	sections := []DescriptionSection{
		{Section: "Leaves", Details: []DescriptionDetail{{Label: "Shape", Content: "oval"}}},
	}

	plant := NewPlant("Rosa rubiginosa", commonNames, "a rose", uuid.New(), attributeIDs, images, sections)

	commonNames[0] = "mutated"
	images[0] = "mutated"
	attributeIDs[0] = uuid.Nil
	sections[0].Details[0].Content = "mutated"

	if plant.CommonNames[0] != "rose" {
		t.Fatalf("common names aliased caller slice: %v", plant.CommonNames)
	}
	if plant.Images[0] != "a.jpg" {
		t.Fatalf("images aliased caller slice: %v", plant.Images)
	}
	if plant.AttributeIDs[0] == uuid.Nil {
		t.Fatalf("attribute ids aliased caller slice")
	}
	if plant.SpeciesDescription[0].Details[0].Content != "oval" {
		t.Fatalf("species description aliased caller slice")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	plant := NewPlant(
		"Quercus robur",
		[]string{"English oak", "common oak"},
		"a large deciduous tree",
		uuid.New(),
		[]uuid.UUID{uuid.New(), uuid.New()},
		[]string{"oak.jpg"},
		[]DescriptionSection{
			{Section: "Bark", Details: []DescriptionDetail{{Label: "Texture", Content: "fissured"}}},
		},
	)

	snapshot, err := plant.Snapshot()
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}

	restored, err := PlantFromSnapshot(snapshot)
	if err != nil {
		t.Fatalf("restore returned error: %v", err)
	}

	if restored.ID != plant.ID {
		t.Fatalf("expected id %s, got %s", plant.ID, restored.ID)
	}
	if restored.ScientificName != plant.ScientificName {
		t.Fatalf("expected scientific name %q, got %q", plant.ScientificName, restored.ScientificName)
	}
	if len(restored.CommonNames) != 2 || restored.CommonNames[1] != "common oak" {
		t.Fatalf("unexpected common names: %v", restored.CommonNames)
	}
	if len(restored.AttributeIDs) != 2 {
		t.Fatalf("expected 2 attribute ids, got %d", len(restored.AttributeIDs))
	}
	if len(restored.SpeciesDescription) != 1 || restored.SpeciesDescription[0].Details[0].Content != "fissured" {
		t.Fatalf("unexpected species description: %+v", restored.SpeciesDescription)
	}
}

func TestPlantFromSnapshotNormalizesNilSlices(t *testing.T) {
	restored, err := PlantFromSnapshot([]byte(`{"id":"123e4567-e89b-12d3-a456-426614174000","scientific_name":"Ficus"}`))
	if err != nil {
		t.Fatalf("restore returned error: %v", err)
	}

	if restored.CommonNames == nil || restored.AttributeIDs == nil || restored.Images == nil || restored.SpeciesDescription == nil {
		t.Fatalf("expected empty slices, got %+v", restored)
	}
}

func TestPlantFromSnapshotRejectsGarbage(t *testing.T) {
	if _, err := PlantFromSnapshot([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed snapshot")
	}
}

func TestWithImagesAppendedDoesNotMutateReceiver(t *testing.T) {
	plant := NewPlant("Acer", nil, "", uuid.New(), nil, []string{"one.jpg"}, nil)

	extended := plant.WithImagesAppended([]string{"two.jpg"})

	if len(plant.Images) != 1 {
		t.Fatalf("receiver image list mutated: %v", plant.Images)
	}
	if len(extended.Images) != 2 || extended.Images[1] != "two.jpg" {
		t.Fatalf("unexpected extended images: %v", extended.Images)
	}
}
