package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// plantRepository implements PlantRepository over Postgres.
type plantRepository struct {
	pool *pgxpool.Pool
}

// NewPlantRepository creates a new plant repository.
func NewPlantRepository(pool *pgxpool.Pool) PlantRepository {
	return &plantRepository{pool: pool}
}

const plantColumns = "id, scientific_name, common_names, description, family_id, attribute_ids, images, species_description, created_at, updated_at"

// Create persists a new plant. A duplicate scientific name surfaces as
// ErrConflict through the unique index.
func (r *plantRepository) Create(ctx context.Context, plant domain.Plant) (domain.Plant, error) {
	descriptionJSON, err := json.Marshal(plant.SpeciesDescription)
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to marshal species description: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO plants (id, scientific_name, common_names, description, family_id, attribute_ids, images, species_description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+plantColumns,
		plant.ID, plant.ScientificName, plant.CommonNames, plant.Description,
		plant.FamilyID, plant.AttributeIDs, plant.Images, descriptionJSON,
		plant.CreatedAt, plant.UpdatedAt,
	)

	created, err := scanPlant(row)
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to create plant: %w", classifyError(err))
	}
	return created, nil
}

// GetByID retrieves a plant by id.
func (r *plantRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Plant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+plantColumns+` FROM plants WHERE id = $1`, id)
	plant, err := scanPlant(row)
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to get plant: %w", classifyError(err))
	}
	return plant, nil
}

// List retrieves plants matching the filter, newest-first, with a windowed
// total count.
func (r *plantRepository) List(ctx context.Context, filter PlantFilter, limit int, offset int) ([]domain.Plant, int, error) {
	conditions := []string{}
	args := []any{}

	if filter.FamilyID != nil {
		args = append(args, *filter.FamilyID)
		conditions = append(conditions, fmt.Sprintf("family_id = $%d", len(args)))
	}
	if len(filter.AttributeIDs) > 0 {
		args = append(args, filter.AttributeIDs)
		conditions = append(conditions, fmt.Sprintf("attribute_ids @> $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(scientific_name ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(common_names) AS cn WHERE cn ILIKE $%d))", idx, idx))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM plants
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, plantColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plants: %w", err)
	}
	defer rows.Close()

	plants := []domain.Plant{}
	totalCount := 0
	for rows.Next() {
		plant, total, err := scanPlantWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan plant row: %w", err)
		}
		plants = append(plants, plant)
		totalCount = total
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read plant rows: %w", err)
	}

	return plants, totalCount, nil
}

// Update overwrites the stored plant row.
func (r *plantRepository) Update(ctx context.Context, plant domain.Plant) (domain.Plant, error) {
	descriptionJSON, err := json.Marshal(plant.SpeciesDescription)
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to marshal species description: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE plants
		SET scientific_name = $2,
		    common_names = $3,
		    description = $4,
		    family_id = $5,
		    attribute_ids = $6,
		    images = $7,
		    species_description = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+plantColumns,
		plant.ID, plant.ScientificName, plant.CommonNames, plant.Description,
		plant.FamilyID, plant.AttributeIDs, plant.Images, descriptionJSON,
	)

	updated, err := scanPlant(row)
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to update plant: %w", classifyError(err))
	}
	return updated, nil
}

// Delete removes a plant row.
func (r *plantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete plant: %w", domain.ErrNotFound)
	}
	return nil
}

// Count returns the total number of plants.
func (r *plantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM plants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plants: %w", err)
	}
	return count, nil
}

// CountByFamily aggregates plant counts per family, largest first.
func (r *plantRepository) CountByFamily(ctx context.Context) ([]FamilyCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.name, COUNT(p.id) AS plant_count
		FROM plants p
		JOIN families f ON f.id = p.family_id
		GROUP BY f.id, f.name
		ORDER BY plant_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to count plants by family: %w", err)
	}
	defer rows.Close()

	stats := []FamilyCount{}
	for rows.Next() {
		var fc FamilyCount
		if err := rows.Scan(&fc.FamilyID, &fc.Family, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan family count: %w", err)
		}
		stats = append(stats, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read family counts: %w", err)
	}

	return stats, nil
}

func scanPlant(row pgx.Row) (domain.Plant, error) {
	var plant domain.Plant
	var descriptionJSON []byte
	err := row.Scan(
		&plant.ID, &plant.ScientificName, &plant.CommonNames, &plant.Description,
		&plant.FamilyID, &plant.AttributeIDs, &plant.Images, &descriptionJSON,
		&plant.CreatedAt, &plant.UpdatedAt,
	)
	if err != nil {
		return domain.Plant{}, err
	}
	if err := json.Unmarshal(descriptionJSON, &plant.SpeciesDescription); err != nil {
		return domain.Plant{}, fmt.Errorf("failed to decode species description for plant %s: %w", plant.ID, err)
	}
	return plant, nil
}

func scanPlantWithTotal(rows pgx.Rows) (domain.Plant, int, error) {
	var plant domain.Plant
	var descriptionJSON []byte
	var total int
	err := rows.Scan(
		&plant.ID, &plant.ScientificName, &plant.CommonNames, &plant.Description,
		&plant.FamilyID, &plant.AttributeIDs, &plant.Images, &descriptionJSON,
		&plant.CreatedAt, &plant.UpdatedAt, &total,
	)
	if err != nil {
		return domain.Plant{}, 0, err
	}
	if err := json.Unmarshal(descriptionJSON, &plant.SpeciesDescription); err != nil {
		return domain.Plant{}, 0, fmt.Errorf("failed to decode species description for plant %s: %w", plant.ID, err)
	}
	return plant, total, nil
}
