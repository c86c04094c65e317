package contribution

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/catalog"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/notify"
	"github.com/verdantlabs/herbarium/internal/repository"
	"github.com/verdantlabs/herbarium/internal/taxonomy"
)

// Catalog is the slice of the canonical entity store the moderation engine
// drives.
type Catalog interface {
	Create(ctx context.Context, params catalog.CreateParams, imageBuffers [][]byte) (domain.Plant, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Plant, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.PlantPatch, actorID uuid.UUID, contributorID *uuid.UUID, imageBuffers [][]byte) (domain.Plant, error)
}

// ReferenceResolver converts names-or-ids in staged payloads into stable
// ids.
type ReferenceResolver interface {
	ResolveFamily(ctx context.Context, nameOrID string, mode taxonomy.ResolveMode) (uuid.UUID, error)
	ResolveAttributes(ctx context.Context, namesOrIDs []string, mode taxonomy.ResolveMode) ([]uuid.UUID, error)
}

// ReviewAction is a moderator decision over a pending contribution.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// Service is the contribution store and moderation engine.
type Service struct {
	contributions repository.ContributionRepository
	catalog       Catalog
	resolver      ReferenceResolver
	images        catalog.ImageStore
	notifier      notify.Notifier
}

// NewService creates the contribution service.
func NewService(
	contributions repository.ContributionRepository,
	cat Catalog,
	resolver ReferenceResolver,
	images catalog.ImageStore,
	notifier notify.Notifier,
) *Service {
	return &Service{
		contributions: contributions,
		catalog:       cat,
		resolver:      resolver,
		images:        images,
		notifier:      notifier,
	}
}

// Create stages a new contribution with status pending. Raw image buffers
// are uploaded up front: imageBuffers extend the staged payload's image
// list, newImageBuffers extend the separately staged new-image list.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, typ domain.ContributionType, message string, data domain.ContributionData, imageBuffers, newImageBuffers [][]byte) (domain.Contribution, error) {
	if !typ.Valid() {
		return domain.Contribution{}, fmt.Errorf("%w: unknown contribution type %q", domain.ErrValidation, typ)
	}

	switch typ {
	case domain.ContributionTypeUpdate:
		if data.PlantRef == nil || *data.PlantRef == uuid.Nil {
			return domain.Contribution{}, fmt.Errorf("%w: update contribution requires plant_ref", domain.ErrValidation)
		}
	case domain.ContributionTypeCreate:
		// plant_ref is set by approval as a back-reference; ignore any
		// client-supplied value.
		data.PlantRef = nil
	}

	urls, err := s.uploadAll(ctx, imageBuffers)
	if err != nil {
		return domain.Contribution{}, err
	}
	data.Plant.Images = append(data.Plant.Images, urls...)

	newURLs, err := s.uploadAll(ctx, newImageBuffers)
	if err != nil {
		return domain.Contribution{}, err
	}
	data.NewImages = append(data.NewImages, newURLs...)

	return s.contributions.Create(ctx, domain.NewContribution(authorID, typ, message, data))
}

// Get retrieves a contribution by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Contribution, error) {
	return s.contributions.GetByID(ctx, id)
}

// List retrieves contributions matching the filter with pagination.
func (s *Service) List(ctx context.Context, filter repository.ContributionFilter, page, pageSize int) ([]domain.Contribution, int, error) {
	limit, offset := pageWindow(page, pageSize)
	return s.contributions.List(ctx, filter, limit, offset)
}

// PatchParams carries the author-editable fields of a pending contribution.
// Nil fields are left unchanged.
type PatchParams struct {
	Message *string
	Plant   *domain.ContributionPlant
	// NewImages replaces the staged new-image list wholesale when non-nil.
	NewImages []string
}

// Patch lets the author amend a contribution while it is still pending.
// Only provided top-level payload fields overwrite; absent arrays are kept,
// and for the image list an explicitly empty array is kept too, so a partial
// multipart submission can never wipe staged images.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, byUserID uuid.UUID, params PatchParams, imageBuffers, newImageBuffers [][]byte) (domain.Contribution, error) {
	contribution, err := s.contributions.GetByID(ctx, id)
	if err != nil {
		return domain.Contribution{}, err
	}

	if contribution.AuthorID != byUserID {
		return domain.Contribution{}, fmt.Errorf("only the author may edit contribution %s: %w", id, domain.ErrForbidden)
	}
	if contribution.Status != domain.ContributionStatusPending {
		return domain.Contribution{}, fmt.Errorf("contribution %s is %s: %w", id, contribution.Status, domain.ErrInvalidState)
	}

	urls, err := s.uploadAll(ctx, imageBuffers)
	if err != nil {
		return domain.Contribution{}, err
	}
	contribution.Data.Plant.Images = append(contribution.Data.Plant.Images, urls...)

	newURLs, err := s.uploadAll(ctx, newImageBuffers)
	if err != nil {
		return domain.Contribution{}, err
	}
	contribution.Data.NewImages = append(contribution.Data.NewImages, newURLs...)

	if params.Message != nil {
		contribution.Message = *params.Message
	}
	if params.Plant != nil {
		mergeStagedPlant(&contribution.Data.Plant, *params.Plant)
	}
	if params.NewImages != nil {
		contribution.Data.NewImages = params.NewImages
	}

	return s.contributions.UpdateData(ctx, contribution)
}

// mergeStagedPlant overlays the provided top-level fields onto the staged
// payload. Empty or absent arrays preserve the existing value.
func mergeStagedPlant(dst *domain.ContributionPlant, patch domain.ContributionPlant) {
	if patch.ScientificName != nil {
		dst.ScientificName = patch.ScientificName
	}
	if len(patch.CommonNames) > 0 {
		dst.CommonNames = patch.CommonNames
	}
	if patch.Description != nil {
		dst.Description = patch.Description
	}
	if patch.Family != nil {
		dst.Family = patch.Family
	}
	if len(patch.Attributes) > 0 {
		dst.Attributes = patch.Attributes
	}
	if len(patch.Images) > 0 {
		dst.Images = patch.Images
	}
	if len(patch.SpeciesDescription) > 0 {
		dst.SpeciesDescription = patch.SpeciesDescription
	}
}

// Moderate applies a reviewer decision to a pending contribution. Approval
// is all-or-nothing: any failure while mutating the catalog leaves the
// contribution pending and surfaces the underlying error. The reviewer,
// review message and terminal status land in one guarded write.
func (s *Service) Moderate(ctx context.Context, id uuid.UUID, action ReviewAction, reviewerID uuid.UUID, message string) (domain.Contribution, error) {
	contribution, err := s.contributions.GetByID(ctx, id)
	if err != nil {
		return domain.Contribution{}, err
	}
	if contribution.Status != domain.ContributionStatusPending {
		return domain.Contribution{}, fmt.Errorf("contribution %s is %s: %w", id, contribution.Status, domain.ErrInvalidState)
	}

	switch action {
	case ActionReject:
		return s.finishReview(ctx, id, reviewerID, domain.ContributionStatusRejected, message, nil)
	case ActionApprove:
		// handled below
	default:
		return domain.Contribution{}, fmt.Errorf("%w: unknown review action %q", domain.ErrValidation, action)
	}

	switch contribution.Type {
	case domain.ContributionTypeCreate:
		plant, err := s.applyCreate(ctx, contribution)
		if err != nil {
			return domain.Contribution{}, err
		}
		return s.finishReview(ctx, id, reviewerID, domain.ContributionStatusApproved, message, &plant.ID)
	case domain.ContributionTypeUpdate:
		if err := s.applyUpdate(ctx, contribution, reviewerID); err != nil {
			return domain.Contribution{}, err
		}
		return s.finishReview(ctx, id, reviewerID, domain.ContributionStatusApproved, message, nil)
	default:
		return domain.Contribution{}, fmt.Errorf("%w: unknown contribution type %q", domain.ErrValidation, contribution.Type)
	}
}

// applyCreate turns an approved create-type contribution into a new
// canonical plant. Reference resolution is lookup-only: an unknown name
// fails the approval instead of minting reference rows from
// contributor-controlled strings.
func (s *Service) applyCreate(ctx context.Context, contribution domain.Contribution) (domain.Plant, error) {
	staged := contribution.Data.Plant

	params := catalog.CreateParams{
		CommonNames:        staged.CommonNames,
		Images:             staged.Images,
		SpeciesDescription: staged.SpeciesDescription,
	}
	if staged.ScientificName != nil {
		params.ScientificName = *staged.ScientificName
	}
	if staged.Description != nil {
		params.Description = *staged.Description
	}

	if staged.Family != nil {
		familyID, err := s.resolver.ResolveFamily(ctx, *staged.Family, taxonomy.LookupOnly)
		if err != nil {
			return domain.Plant{}, err
		}
		params.FamilyID = familyID
	}
	if len(staged.Attributes) > 0 {
		attributeIDs, err := s.resolver.ResolveAttributes(ctx, staged.Attributes, taxonomy.LookupOnly)
		if err != nil {
			return domain.Plant{}, err
		}
		params.AttributeIDs = attributeIDs
	}

	return s.catalog.Create(ctx, params, nil)
}

// applyUpdate merges an approved update-type contribution into its target
// plant. Only staged fields are applied; the image list becomes the current
// canonical list plus the staged new images, so this path can only ever
// append images.
func (s *Service) applyUpdate(ctx context.Context, contribution domain.Contribution, reviewerID uuid.UUID) error {
	if contribution.Data.PlantRef == nil {
		return fmt.Errorf("%w: update contribution %s has no plant_ref", domain.ErrValidation, contribution.ID)
	}
	plantID := *contribution.Data.PlantRef
	staged := contribution.Data.Plant

	patch := domain.PlantPatch{
		ScientificName:     staged.ScientificName,
		CommonNames:        staged.CommonNames,
		Description:        staged.Description,
		SpeciesDescription: staged.SpeciesDescription,
	}

	if staged.Family != nil {
		familyID, err := s.resolver.ResolveFamily(ctx, *staged.Family, taxonomy.LookupOnly)
		if err != nil {
			return err
		}
		patch.FamilyID = &familyID
	}
	if staged.Attributes != nil {
		attributeIDs, err := s.resolver.ResolveAttributes(ctx, staged.Attributes, taxonomy.LookupOnly)
		if err != nil {
			return err
		}
		patch.AttributeIDs = attributeIDs
	}

	if len(contribution.Data.NewImages) > 0 {
		current, err := s.catalog.Get(ctx, plantID)
		if err != nil {
			return err
		}
		merged := make([]string, 0, len(current.Images)+len(contribution.Data.NewImages))
		merged = append(merged, current.Images...)
		merged = append(merged, contribution.Data.NewImages...)
		patch.Images = merged
	}

	contributorID := contribution.AuthorID
	_, err := s.catalog.Update(ctx, plantID, patch, reviewerID, &contributorID, nil)
	return err
}

// finishReview performs the single atomic review write and fires the
// best-effort notification.
func (s *Service) finishReview(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, status domain.ContributionStatus, message string, plantRef *uuid.UUID) (domain.Contribution, error) {
	reviewed, err := s.contributions.SetReview(ctx, id, reviewerID, status, message, plantRef)
	if err != nil {
		return domain.Contribution{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.ContributionReviewed(ctx, reviewed); err != nil {
			log.Printf("failed to notify author of contribution %s: %v", reviewed.ID, err)
		}
	}

	return reviewed, nil
}

// Delete hard-deletes a contribution regardless of its status.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.contributions.Delete(ctx, id)
}

func (s *Service) uploadAll(ctx context.Context, buffers [][]byte) ([]string, error) {
	if len(buffers) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(buffers))
	for _, buffer := range buffers {
		url, err := s.images.Upload(ctx, buffer, "plants")
		if err != nil {
			return nil, fmt.Errorf("failed to upload staged image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

const maxPageSize = 100

func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
