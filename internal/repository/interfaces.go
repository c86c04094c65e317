package repository

import (
	"context"

	"github.com/verdantlabs/herbarium/internal/domain"

	"github.com/google/uuid"
)

// PlantFilter narrows plant listings. Zero values match everything.
type PlantFilter struct {
	FamilyID     *uuid.UUID
	AttributeIDs []uuid.UUID
	Search       string
}

// FamilyCount is one row of the per-family statistics.
type FamilyCount struct {
	FamilyID uuid.UUID `json:"family_id"`
	Family   string    `json:"family"`
	Count    int64     `json:"count"`
}

// PlantRepository defines the durable operations on canonical plants.
type PlantRepository interface {
	Create(ctx context.Context, plant domain.Plant) (domain.Plant, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plant, error)
	List(ctx context.Context, filter PlantFilter, limit int, offset int) ([]domain.Plant, int, error)
	Update(ctx context.Context, plant domain.Plant) (domain.Plant, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByFamily(ctx context.Context) ([]FamilyCount, error)
}

// ContributionFilter narrows contribution listings. Search matches
// case-insensitively against the staged scientific and common names.
type ContributionFilter struct {
	Type   domain.ContributionType
	Status domain.ContributionStatus
	Search string
}

// ContributionRepository defines the durable operations on staged
// contributions.
type ContributionRepository interface {
	Create(ctx context.Context, contribution domain.Contribution) (domain.Contribution, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Contribution, error)
	List(ctx context.Context, filter ContributionFilter, limit int, offset int) ([]domain.Contribution, int, error)
	// UpdateData rewrites the author-editable fields (message, payload) of a
	// contribution. Lifecycle fields are untouched.
	UpdateData(ctx context.Context, contribution domain.Contribution) (domain.Contribution, error)
	// SetReview records reviewer, review message, terminal status and the
	// optional plant back-reference in a single write guarded by the current
	// status being pending. Returns ErrInvalidState when the guard fails.
	SetReview(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, status domain.ContributionStatus, message string, plantRef *uuid.UUID) (domain.Contribution, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HistoryRepository defines the durable operations on the append-only
// ledger.
type HistoryRepository interface {
	Insert(ctx context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.HistoryRecord, error)
	List(ctx context.Context, filter domain.HistoryFilter, limit int, offset int) ([]domain.HistoryRecord, int, error)
	ListByPlant(ctx context.Context, plantID uuid.UUID) ([]domain.HistoryRecord, error)
	// MarkRolledBack flips the record's action to rollback, guarded by the
	// action still being update or delete. Returns ErrInvalidState when the
	// record was already consumed.
	MarkRolledBack(ctx context.Context, id uuid.UUID) error
}

// FamilyRepository defines the durable operations on family reference rows.
type FamilyRepository interface {
	Create(ctx context.Context, family domain.Family) (domain.Family, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Family, error)
	GetByName(ctx context.Context, name string) (domain.Family, error)
	List(ctx context.Context) ([]domain.Family, error)
	Update(ctx context.Context, family domain.Family) (domain.Family, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttributeRepository defines the durable operations on attribute reference
// rows.
type AttributeRepository interface {
	Create(ctx context.Context, attribute domain.Attribute) (domain.Attribute, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Attribute, error)
	GetByName(ctx context.Context, name string) (domain.Attribute, error)
	List(ctx context.Context) ([]domain.Attribute, error)
}
