package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DescriptionDetail is one labelled fact inside a description section.
type DescriptionDetail struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// DescriptionSection groups structured description details under a heading.
type DescriptionSection struct {
	Section string              `json:"section"`
	Details []DescriptionDetail `json:"details"`
}

// Plant is the canonical catalog record. Scientific names are unique across
// the catalog.
type Plant struct {
	ID                 uuid.UUID            `json:"id"`
	ScientificName     string               `json:"scientific_name"`
	CommonNames        []string             `json:"common_names"`
	Description        string               `json:"description"`
	FamilyID           uuid.UUID            `json:"family_id"`
	AttributeIDs       []uuid.UUID          `json:"attribute_ids"`
	Images             []string             `json:"images"`
	SpeciesDescription []DescriptionSection `json:"species_description"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewPlant builds a plant with a fresh identity. Slice arguments are copied
// so the caller cannot alias internal state.
func NewPlant(
	scientificName string,
	commonNames []string,
	description string,
	familyID uuid.UUID,
	attributeIDs []uuid.UUID,
	images []string,
	speciesDescription []DescriptionSection,
) Plant {
	now := time.Now()
	return Plant{
		ID:                 uuid.New(),
		ScientificName:     scientificName,
		CommonNames:        copyStrings(commonNames),
		Description:        description,
		FamilyID:           familyID,
		AttributeIDs:       copyUUIDs(attributeIDs),
		Images:             copyStrings(images),
		SpeciesDescription: copySections(speciesDescription),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Snapshot serializes the plant into the opaque JSON document the history
// ledger stores.
func (p Plant) Snapshot() (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plant snapshot: %w", err)
	}
	return data, nil
}

// PlantFromSnapshot decodes a ledger snapshot back into a plant. Nil slices
// are normalized to empty so a restored plant round-trips cleanly.
func PlantFromSnapshot(snapshot json.RawMessage) (Plant, error) {
	var plant Plant
	if err := json.Unmarshal(snapshot, &plant); err != nil {
		return Plant{}, fmt.Errorf("failed to unmarshal plant snapshot: %w", err)
	}
	if plant.CommonNames == nil {
		plant.CommonNames = []string{}
	}
	if plant.AttributeIDs == nil {
		plant.AttributeIDs = []uuid.UUID{}
	}
	if plant.Images == nil {
		plant.Images = []string{}
	}
	if plant.SpeciesDescription == nil {
		plant.SpeciesDescription = []DescriptionSection{}
	}
	return plant, nil
}

// WithImagesAppended returns a copy of the plant with urls appended to its
// image list.
func (p Plant) WithImagesAppended(urls []string) Plant {
	images := make([]string, 0, len(p.Images)+len(urls))
	images = append(images, p.Images...)
	images = append(images, urls...)
	p.Images = images
	return p
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyUUIDs(in []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(in))
	copy(out, in)
	return out
}

func copySections(in []DescriptionSection) []DescriptionSection {
	out := make([]DescriptionSection, len(in))
	for i, section := range in {
		details := make([]DescriptionDetail, len(section.Details))
		copy(details, section.Details)
		out[i] = DescriptionSection{Section: section.Section, Details: details}
	}
	return out
}
