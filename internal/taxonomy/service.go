package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
)

// Service exposes the admin CRUD over the taxonomy reference tables.
type Service struct {
	families   repository.FamilyRepository
	attributes repository.AttributeRepository
}

// NewService creates the taxonomy admin service.
func NewService(families repository.FamilyRepository, attributes repository.AttributeRepository) *Service {
	return &Service{families: families, attributes: attributes}
}

// CreateFamily creates a family row; a duplicate name fails with ErrConflict.
func (s *Service) CreateFamily(ctx context.Context, name string) (domain.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Family{}, fmt.Errorf("%w: family name is required", domain.ErrValidation)
	}
	return s.families.Create(ctx, newFamily(name))
}

// GetFamily retrieves a family by id.
func (s *Service) GetFamily(ctx context.Context, id uuid.UUID) (domain.Family, error) {
	return s.families.GetByID(ctx, id)
}

// ListFamilies retrieves all families.
func (s *Service) ListFamilies(ctx context.Context) ([]domain.Family, error) {
	return s.families.List(ctx)
}

// RenameFamily changes a family's display name.
func (s *Service) RenameFamily(ctx context.Context, id uuid.UUID, name string) (domain.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Family{}, fmt.Errorf("%w: family name is required", domain.ErrValidation)
	}
	family, err := s.families.GetByID(ctx, id)
	if err != nil {
		return domain.Family{}, err
	}
	family.Name = name
	return s.families.Update(ctx, family)
}

// DeleteFamily removes a family row.
func (s *Service) DeleteFamily(ctx context.Context, id uuid.UUID) error {
	return s.families.Delete(ctx, id)
}

// CreateAttribute creates an attribute row; a duplicate name fails with
// ErrConflict.
func (s *Service) CreateAttribute(ctx context.Context, name string) (domain.Attribute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Attribute{}, fmt.Errorf("%w: attribute name is required", domain.ErrValidation)
	}
	return s.attributes.Create(ctx, newAttribute(name))
}

// ListAttributes retrieves all attributes.
func (s *Service) ListAttributes(ctx context.Context) ([]domain.Attribute, error) {
	return s.attributes.List(ctx)
}

func newFamily(name string) domain.Family {
	now := time.Now()
	return domain.Family{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
}

func newAttribute(name string) domain.Attribute {
	now := time.Now()
	return domain.Attribute{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
}
