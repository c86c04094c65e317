package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContributionType says what a contribution proposes to do to the catalog.
type ContributionType string

const (
	ContributionTypeCreate ContributionType = "create"
	ContributionTypeUpdate ContributionType = "update"
)

// Valid reports whether the type is one of the known values.
func (t ContributionType) Valid() bool {
	return t == ContributionTypeCreate || t == ContributionTypeUpdate
}

// ContributionStatus is the moderation lifecycle state.
type ContributionStatus string

const (
	ContributionStatusPending  ContributionStatus = "pending"
	ContributionStatusApproved ContributionStatus = "approved"
	ContributionStatusRejected ContributionStatus = "rejected"
)

// Terminal reports whether the status is a settled review outcome.
func (s ContributionStatus) Terminal() bool {
	return s == ContributionStatusApproved || s == ContributionStatusRejected
}

// ContributionPlant is the staged plant payload. Every field is optional:
// a create contribution fills most of them, an update contribution carries
// only the fields it wants to change. Family and Attributes hold raw
// name-or-id strings resolved at approval time.
type ContributionPlant struct {
	ScientificName     *string              `json:"scientific_name,omitempty"`
	CommonNames        []string             `json:"common_names,omitempty"`
	Description        *string              `json:"description,omitempty"`
	Family             *string              `json:"family,omitempty"`
	Attributes         []string             `json:"attributes,omitempty"`
	Images             []string             `json:"images,omitempty"`
	SpeciesDescription []DescriptionSection `json:"species_description,omitempty"`
}

// ContributionData is the full staged payload of a contribution.
type ContributionData struct {
	// PlantRef targets the plant an update applies to. For a create
	// contribution it is set by approval as a back-reference to the plant
	// that was minted.
	PlantRef *uuid.UUID `json:"plant_ref,omitempty"`

	Plant ContributionPlant `json:"plant"`

	// NewImages are image URLs staged for appending to the target plant,
	// kept apart from Plant.Images so approval can only ever grow the
	// canonical image list.
	NewImages []string `json:"new_images,omitempty"`
}

// Contribution is a community-submitted catalog change awaiting moderation.
type Contribution struct {
	ID            uuid.UUID          `json:"id"`
	AuthorID      uuid.UUID          `json:"author_id"`
	Type          ContributionType   `json:"type"`
	Status        ContributionStatus `json:"status"`
	Message       string             `json:"message"`
	ReviewerID    *uuid.UUID         `json:"reviewer_id,omitempty"`
	ReviewMessage *string            `json:"review_message,omitempty"`
	Data          ContributionData   `json:"data"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewContribution stages a pending contribution with a fresh identity.
func NewContribution(authorID uuid.UUID, typ ContributionType, message string, data ContributionData) Contribution {
	now := time.Now()
	return Contribution{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Type:      typ,
		Status:    ContributionStatusPending,
		Message:   message,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
