package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
)

// ImageStore is the object-store collaborator. Upload returns the public URL
// of the stored bytes.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

// Ledger is the slice of the history ledger the catalog writes to.
type Ledger interface {
	RecordUpdate(ctx context.Context, plantID uuid.UUID, before json.RawMessage, actorID uuid.UUID, contributorID *uuid.UUID) error
	RecordDelete(ctx context.Context, plantID uuid.UUID, before json.RawMessage, actorID uuid.UUID, contributorID *uuid.UUID) error
}

const imageFolder = "plants"

// Service is the canonical entity store: the authoritative plant catalog
// with snapshotting delegated to the history ledger.
type Service struct {
	plants repository.PlantRepository
	images ImageStore
	ledger Ledger
}

// NewService creates the catalog service.
func NewService(plants repository.PlantRepository, images ImageStore, ledger Ledger) *Service {
	return &Service{plants: plants, images: images, ledger: ledger}
}

// CreateParams carries an already-resolved new plant. Reference resolution
// (names to ids) happens before the catalog is involved.
type CreateParams struct {
	ScientificName     string
	CommonNames        []string
	Description        string
	FamilyID           uuid.UUID
	AttributeIDs       []uuid.UUID
	Images             []string
	SpeciesDescription []domain.DescriptionSection
}

// Create validates and persists a new plant. A scientific name already in
// the catalog fails with ErrConflict.
func (s *Service) Create(ctx context.Context, params CreateParams, imageBuffers [][]byte) (domain.Plant, error) {
	if strings.TrimSpace(params.ScientificName) == "" {
		return domain.Plant{}, fmt.Errorf("%w: scientific name is required", domain.ErrValidation)
	}
	if params.FamilyID == uuid.Nil {
		return domain.Plant{}, fmt.Errorf("%w: family is required", domain.ErrValidation)
	}

	urls, err := s.uploadAll(ctx, imageBuffers)
	if err != nil {
		return domain.Plant{}, err
	}

	plant := domain.NewPlant(
		params.ScientificName,
		params.CommonNames,
		params.Description,
		params.FamilyID,
		params.AttributeIDs,
		append(params.Images, urls...),
		params.SpeciesDescription,
	)

	return s.plants.Create(ctx, plant)
}

// Get retrieves a plant by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Plant, error) {
	return s.plants.GetByID(ctx, id)
}

// List retrieves plants matching the filter with pagination.
func (s *Service) List(ctx context.Context, filter repository.PlantFilter, page, pageSize int) ([]domain.Plant, int, error) {
	limit, offset := pageWindow(page, pageSize)
	return s.plants.List(ctx, filter, limit, offset)
}

// Update applies a partial mutation to a plant. The pre-mutation snapshot is
// taken before any field changes and recorded in the ledger only after the
// mutation commits, so the snapshot is always a true before-state. Raw image
// buffers are uploaded and their URLs appended to the final image list.
//
// A ledger write failure does not roll back the committed mutation: the
// updated plant is returned together with an error matching ErrAuditLog so
// the caller can retry logging.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch domain.PlantPatch, actorID uuid.UUID, contributorID *uuid.UUID, imageBuffers [][]byte) (domain.Plant, error) {
	current, err := s.plants.GetByID(ctx, id)
	if err != nil {
		return domain.Plant{}, err
	}

	before, err := current.Snapshot()
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to snapshot plant %s: %w", id, err)
	}

	urls, err := s.uploadAll(ctx, imageBuffers)
	if err != nil {
		return domain.Plant{}, err
	}

	updated := patch.ApplyTo(current)
	if len(urls) > 0 {
		updated = updated.WithImagesAppended(urls)
	}

	persisted, err := s.plants.Update(ctx, updated)
	if err != nil {
		return domain.Plant{}, err
	}

	if err := s.ledger.RecordUpdate(ctx, id, before, actorID, contributorID); err != nil {
		return persisted, fmt.Errorf("%w for plant %s: %v", domain.ErrAuditLog, id, err)
	}

	return persisted, nil
}

// Delete removes a plant after snapshotting it into the ledger.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	current, err := s.plants.GetByID(ctx, id)
	if err != nil {
		return err
	}

	before, err := current.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot plant %s: %w", id, err)
	}

	if err := s.plants.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.ledger.RecordDelete(ctx, id, before, actorID, nil); err != nil {
		return fmt.Errorf("%w for plant %s: %v", domain.ErrAuditLog, id, err)
	}

	return nil
}

// FamilyStats aggregates catalog totals per family.
type FamilyStats struct {
	TotalPlants int64                    `json:"total_plants"`
	Families    []repository.FamilyCount `json:"families"`
}

// Stats returns the per-family plant counts plus the catalog total.
func (s *Service) Stats(ctx context.Context) (FamilyStats, error) {
	total, err := s.plants.Count(ctx)
	if err != nil {
		return FamilyStats{}, err
	}
	families, err := s.plants.CountByFamily(ctx)
	if err != nil {
		return FamilyStats{}, err
	}
	return FamilyStats{TotalPlants: total, Families: families}, nil
}

func (s *Service) uploadAll(ctx context.Context, buffers [][]byte) ([]string, error) {
	if len(buffers) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(buffers))
	for _, buffer := range buffers {
		url, err := s.images.Upload(ctx, buffer, imageFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

const maxPageSize = 100

// pageWindow normalizes 1-based pagination into a bounded limit/offset pair.
func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
