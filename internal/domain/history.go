package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HistoryAction classifies what a ledger record captured.
type HistoryAction string

const (
	// HistoryActionUpdate records a plant state overwritten in place.
	HistoryActionUpdate HistoryAction = "update"

	// HistoryActionDelete records a plant removed from the catalog.
	HistoryActionDelete HistoryAction = "delete"

	// HistoryActionRollback marks a record whose snapshot has been
	// replayed. Rolled-back records are spent and cannot be replayed
	// again.
	HistoryActionRollback HistoryAction = "rollback"
)

// HistoryRecord is one append-only ledger entry: the full plant state as it
// was immediately before a mutation.
type HistoryRecord struct {
	ID      uuid.UUID     `json:"id"`
	PlantID uuid.UUID     `json:"plant_id"`
	Action  HistoryAction `json:"action"`

	// Before is the opaque pre-mutation snapshot. The ledger never
	// interprets it except when replaying a rollback.
	Before json.RawMessage `json:"before"`

	// AfterID points at the surviving plant row for update records; nil
	// for deletes.
	AfterID *uuid.UUID `json:"after_id,omitempty"`

	// ActorID is the user who performed the mutation, when known.
	ActorID *uuid.UUID `json:"actor_id,omitempty"`

	// ContributorID credits the contribution author when the mutation came
	// through an approved contribution.
	ContributorID *uuid.UUID `json:"contributor_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Consumable reports whether the record's snapshot can still be replayed.
func (r HistoryRecord) Consumable() bool {
	return r.Action == HistoryActionUpdate || r.Action == HistoryActionDelete
}

// HistoryFilter narrows ledger listings. Zero-valued fields match
// everything.
type HistoryFilter struct {
	Action  HistoryAction
	PlantID *uuid.UUID
	ActorID *uuid.UUID
}
