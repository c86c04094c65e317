package domain

import "github.com/google/uuid"

// PlantPatch is a partial plant mutation. Nil fields leave the current value
// untouched; non-nil fields replace it wholesale.
type PlantPatch struct {
	ScientificName     *string
	CommonNames        []string
	Description        *string
	FamilyID           *uuid.UUID
	AttributeIDs       []uuid.UUID
	Images             []string
	SpeciesDescription []DescriptionSection
}

// IsEmpty reports whether the patch changes nothing.
func (p PlantPatch) IsEmpty() bool {
	return p.ScientificName == nil &&
		p.CommonNames == nil &&
		p.Description == nil &&
		p.FamilyID == nil &&
		p.AttributeIDs == nil &&
		p.Images == nil &&
		p.SpeciesDescription == nil
}

// ApplyTo overlays the patch onto plant and returns the result. Provided
// slices are deep-copied so later edits to the patch cannot leak into the
// returned plant.
func (p PlantPatch) ApplyTo(plant Plant) Plant {
	if p.ScientificName != nil {
		plant.ScientificName = *p.ScientificName
	}
	if p.CommonNames != nil {
		plant.CommonNames = copyStrings(p.CommonNames)
	}
	if p.Description != nil {
		plant.Description = *p.Description
	}
	if p.FamilyID != nil {
		plant.FamilyID = *p.FamilyID
	}
	if p.AttributeIDs != nil {
		plant.AttributeIDs = copyUUIDs(p.AttributeIDs)
	}
	if p.Images != nil {
		plant.Images = copyStrings(p.Images)
	}
	if p.SpeciesDescription != nil {
		plant.SpeciesDescription = copySections(p.SpeciesDescription)
	}
	return plant
}
