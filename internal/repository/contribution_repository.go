package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// contributionRepository implements ContributionRepository over Postgres.
type contributionRepository struct {
	pool *pgxpool.Pool
}

// NewContributionRepository creates a new contribution repository.
func NewContributionRepository(pool *pgxpool.Pool) ContributionRepository {
	return &contributionRepository{pool: pool}
}

const contributionColumns = "id, author_id, type, status, message, reviewer_id, review_message, plant_ref, plant, new_images, created_at, updated_at"

// Create persists a staged contribution.
func (r *contributionRepository) Create(ctx context.Context, contribution domain.Contribution) (domain.Contribution, error) {
	plantJSON, err := json.Marshal(contribution.Data.Plant)
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("failed to marshal contribution payload: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO contributions (id, author_id, type, status, message, reviewer_id, review_message, plant_ref, plant, new_images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+contributionColumns,
		contribution.ID, contribution.AuthorID, contribution.Type, contribution.Status,
		contribution.Message, contribution.ReviewerID, contribution.ReviewMessage,
		contribution.Data.PlantRef, plantJSON, contribution.Data.NewImages,
		contribution.CreatedAt, contribution.UpdatedAt,
	)

	created, err := scanContribution(row)
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("failed to create contribution: %w", classifyError(err))
	}
	return created, nil
}

// GetByID retrieves a contribution by id.
func (r *contributionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Contribution, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE id = $1`, id)
	contribution, err := scanContribution(row)
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("failed to get contribution: %w", classifyError(err))
	}
	return contribution, nil
}

// List retrieves contributions matching the filter, newest-first, with a
// windowed total count.
func (r *contributionRepository) List(ctx context.Context, filter ContributionFilter, limit int, offset int) ([]domain.Contribution, int, error) {
	query, args := buildContributionListQuery(filter, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	contributions := []domain.Contribution{}
	totalCount := 0
	for rows.Next() {
		contribution, total, err := scanContributionWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contribution row: %w", err)
		}
		contributions = append(contributions, contribution)
		totalCount = total
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read contribution rows: %w", err)
	}

	return contributions, totalCount, nil
}

// buildContributionListQuery assembles the filtered listing statement.
// Separated from List so the clause construction is testable without a
// database.
func buildContributionListQuery(filter ContributionFilter, limit int, offset int) (string, []any) {
	conditions := []string{}
	args := []any{}

	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(plant->>'scientific_name' ILIKE $%d OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(COALESCE(plant->'common_names', '[]'::jsonb)) AS cn WHERE cn ILIKE $%d))", idx, idx))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM contributions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, contributionColumns, where, len(args)-1, len(args))

	return query, args
}

// UpdateData rewrites the author-editable fields of a contribution.
func (r *contributionRepository) UpdateData(ctx context.Context, contribution domain.Contribution) (domain.Contribution, error) {
	plantJSON, err := json.Marshal(contribution.Data.Plant)
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("failed to marshal contribution payload: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE contributions
		SET message = $2,
		    plant_ref = $3,
		    plant = $4,
		    new_images = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+contributionColumns,
		contribution.ID, contribution.Message, contribution.Data.PlantRef,
		plantJSON, contribution.Data.NewImages,
	)

	updated, err := scanContribution(row)
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("failed to update contribution: %w", classifyError(err))
	}
	return updated, nil
}

// SetReview performs the single atomic review write. The status guard makes
// terminal states final: once a row leaves pending no second review can land.
func (r *contributionRepository) SetReview(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, status domain.ContributionStatus, message string, plantRef *uuid.UUID) (domain.Contribution, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE contributions
		SET status = $2,
		    reviewer_id = $3,
		    review_message = $4,
		    plant_ref = COALESCE($5, plant_ref),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+contributionColumns,
		id, status, reviewerID, message, plantRef,
	)

	reviewed, err := scanContribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the row is gone or it already left pending.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return domain.Contribution{}, getErr
			}
			return domain.Contribution{}, fmt.Errorf("failed to review contribution: %w", domain.ErrInvalidState)
		}
		return domain.Contribution{}, fmt.Errorf("failed to review contribution: %w", err)
	}
	return reviewed, nil
}

// Delete removes a contribution regardless of status.
func (r *contributionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contributions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete contribution: %w", domain.ErrNotFound)
	}
	return nil
}

func scanContribution(row pgx.Row) (domain.Contribution, error) {
	var c domain.Contribution
	var plantJSON []byte
	err := row.Scan(
		&c.ID, &c.AuthorID, &c.Type, &c.Status, &c.Message,
		&c.ReviewerID, &c.ReviewMessage, &c.Data.PlantRef, &plantJSON,
		&c.Data.NewImages, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Contribution{}, err
	}
	if err := json.Unmarshal(plantJSON, &c.Data.Plant); err != nil {
		return domain.Contribution{}, fmt.Errorf("failed to decode payload for contribution %s: %w", c.ID, err)
	}
	return c, nil
}

func scanContributionWithTotal(rows pgx.Rows) (domain.Contribution, int, error) {
	var c domain.Contribution
	var plantJSON []byte
	var total int
	err := rows.Scan(
		&c.ID, &c.AuthorID, &c.Type, &c.Status, &c.Message,
		&c.ReviewerID, &c.ReviewMessage, &c.Data.PlantRef, &plantJSON,
		&c.Data.NewImages, &c.CreatedAt, &c.UpdatedAt, &total,
	)
	if err != nil {
		return domain.Contribution{}, 0, err
	}
	if err := json.Unmarshal(plantJSON, &c.Data.Plant); err != nil {
		return domain.Contribution{}, 0, fmt.Errorf("failed to decode payload for contribution %s: %w", c.ID, err)
	}
	return c, total, nil
}
