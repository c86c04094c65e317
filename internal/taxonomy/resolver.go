package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
)

// ResolveMode controls what happens when a reference name has no row yet.
type ResolveMode int

const (
	// LookupOnly fails with ErrNotFound on unknown names. Used while
	// approving contributions so contributor-controlled strings can never
	// create reference rows.
	LookupOnly ResolveMode = iota

	// CreateOnMiss creates the reference row on first use. Used on the
	// direct admin entry paths.
	CreateOnMiss
)

// Resolver converts between display names and stable ids for the taxonomy
// reference entities.
type Resolver struct {
	families   repository.FamilyRepository
	attributes repository.AttributeRepository
}

// NewResolver creates a resolver over the reference repositories.
func NewResolver(families repository.FamilyRepository, attributes repository.AttributeRepository) *Resolver {
	return &Resolver{families: families, attributes: attributes}
}

// ResolveFamily accepts a stable id or a display name and returns the family
// id.
func (r *Resolver) ResolveFamily(ctx context.Context, nameOrID string, mode ResolveMode) (uuid.UUID, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return uuid.Nil, fmt.Errorf("%w: family is required", domain.ErrValidation)
	}

	if id, err := uuid.Parse(nameOrID); err == nil {
		family, err := r.families.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to resolve family %q: %w", nameOrID, err)
		}
		return family.ID, nil
	}

	family, err := r.families.GetByName(ctx, nameOrID)
	if err == nil {
		return family.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("failed to resolve family %q: %w", nameOrID, err)
	}
	if mode != CreateOnMiss {
		return uuid.Nil, fmt.Errorf("failed to resolve family %q: %w", nameOrID, domain.ErrNotFound)
	}

	created, err := r.families.Create(ctx, newFamily(nameOrID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create family %q: %w", nameOrID, err)
	}
	return created.ID, nil
}

// ResolveAttributes resolves each entry of namesOrIDs, preserving order.
func (r *Resolver) ResolveAttributes(ctx context.Context, namesOrIDs []string, mode ResolveMode) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(namesOrIDs))
	for _, nameOrID := range namesOrIDs {
		id, err := r.resolveAttribute(ctx, nameOrID, mode)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *Resolver) resolveAttribute(ctx context.Context, nameOrID string, mode ResolveMode) (uuid.UUID, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return uuid.Nil, fmt.Errorf("%w: attribute name is empty", domain.ErrValidation)
	}

	if id, err := uuid.Parse(nameOrID); err == nil {
		attribute, err := r.attributes.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to resolve attribute %q: %w", nameOrID, err)
		}
		return attribute.ID, nil
	}

	attribute, err := r.attributes.GetByName(ctx, nameOrID)
	if err == nil {
		return attribute.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("failed to resolve attribute %q: %w", nameOrID, err)
	}
	if mode != CreateOnMiss {
		return uuid.Nil, fmt.Errorf("failed to resolve attribute %q: %w", nameOrID, domain.ErrNotFound)
	}

	created, err := r.attributes.Create(ctx, newAttribute(nameOrID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create attribute %q: %w", nameOrID, err)
	}
	return created.ID, nil
}
