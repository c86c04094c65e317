package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// familyRepository implements FamilyRepository over Postgres.
type familyRepository struct {
	pool *pgxpool.Pool
}

// NewFamilyRepository creates a new family repository.
func NewFamilyRepository(pool *pgxpool.Pool) FamilyRepository {
	return &familyRepository{pool: pool}
}

// Create persists a family. Duplicate names surface as ErrConflict.
func (r *familyRepository) Create(ctx context.Context, family domain.Family) (domain.Family, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO families (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, created_at, updated_at`,
		family.ID, family.Name, family.CreatedAt, family.UpdatedAt,
	)

	var created domain.Family
	if err := row.Scan(&created.ID, &created.Name, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return domain.Family{}, fmt.Errorf("failed to create family: %w", classifyError(err))
	}
	return created, nil
}

// GetByID retrieves a family by id.
func (r *familyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Family, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM families WHERE id = $1`, id)

	var family domain.Family
	if err := row.Scan(&family.ID, &family.Name, &family.CreatedAt, &family.UpdatedAt); err != nil {
		return domain.Family{}, fmt.Errorf("failed to get family: %w", classifyError(err))
	}
	return family, nil
}

// GetByName retrieves a family by its unique display name.
func (r *familyRepository) GetByName(ctx context.Context, name string) (domain.Family, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM families WHERE name = $1`, name)

	var family domain.Family
	if err := row.Scan(&family.ID, &family.Name, &family.CreatedAt, &family.UpdatedAt); err != nil {
		return domain.Family{}, fmt.Errorf("failed to get family by name: %w", classifyError(err))
	}
	return family, nil
}

// List retrieves all families ordered by name.
func (r *familyRepository) List(ctx context.Context) ([]domain.Family, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM families ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer rows.Close()

	families := []domain.Family{}
	for rows.Next() {
		var family domain.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.CreatedAt, &family.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family row: %w", err)
		}
		families = append(families, family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read family rows: %w", err)
	}

	return families, nil
}

// Update renames a family. Duplicate names surface as ErrConflict.
func (r *familyRepository) Update(ctx context.Context, family domain.Family) (domain.Family, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE families
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at`,
		family.ID, family.Name,
	)

	var updated domain.Family
	if err := row.Scan(&updated.ID, &updated.Name, &updated.CreatedAt, &updated.UpdatedAt); err != nil {
		return domain.Family{}, fmt.Errorf("failed to update family: %w", classifyError(err))
	}
	return updated, nil
}

// Delete removes a family row.
func (r *familyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM families WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete family: %w", domain.ErrNotFound)
	}
	return nil
}

// attributeRepository implements AttributeRepository over Postgres.
type attributeRepository struct {
	pool *pgxpool.Pool
}

// NewAttributeRepository creates a new attribute repository.
func NewAttributeRepository(pool *pgxpool.Pool) AttributeRepository {
	return &attributeRepository{pool: pool}
}

// Create persists an attribute. Duplicate names surface as ErrConflict.
func (r *attributeRepository) Create(ctx context.Context, attribute domain.Attribute) (domain.Attribute, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attributes (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, created_at, updated_at`,
		attribute.ID, attribute.Name, attribute.CreatedAt, attribute.UpdatedAt,
	)

	var created domain.Attribute
	if err := row.Scan(&created.ID, &created.Name, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return domain.Attribute{}, fmt.Errorf("failed to create attribute: %w", classifyError(err))
	}
	return created, nil
}

// GetByID retrieves an attribute by id.
func (r *attributeRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Attribute, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM attributes WHERE id = $1`, id)

	var attribute domain.Attribute
	if err := row.Scan(&attribute.ID, &attribute.Name, &attribute.CreatedAt, &attribute.UpdatedAt); err != nil {
		return domain.Attribute{}, fmt.Errorf("failed to get attribute: %w", classifyError(err))
	}
	return attribute, nil
}

// GetByName retrieves an attribute by its unique display name.
func (r *attributeRepository) GetByName(ctx context.Context, name string) (domain.Attribute, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM attributes WHERE name = $1`, name)

	var attribute domain.Attribute
	if err := row.Scan(&attribute.ID, &attribute.Name, &attribute.CreatedAt, &attribute.UpdatedAt); err != nil {
		return domain.Attribute{}, fmt.Errorf("failed to get attribute by name: %w", classifyError(err))
	}
	return attribute, nil
}

// List retrieves all attributes ordered by name.
func (r *attributeRepository) List(ctx context.Context) ([]domain.Attribute, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM attributes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer rows.Close()

	attributes := []domain.Attribute{}
	for rows.Next() {
		var attribute domain.Attribute
		if err := rows.Scan(&attribute.ID, &attribute.Name, &attribute.CreatedAt, &attribute.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attribute row: %w", err)
		}
		attributes = append(attributes, attribute)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attribute rows: %w", err)
	}

	return attributes, nil
}
