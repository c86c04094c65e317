package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// historyRepository implements HistoryRepository over Postgres.
type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

const historyColumns = "id, plant_id, action, before, after_id, actor_id, contributor_id, created_at"

// Insert appends a record to the ledger.
func (r *historyRepository) Insert(ctx context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO history (id, plant_id, action, before, after_id, actor_id, contributor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+historyColumns,
		record.ID, record.PlantID, record.Action, []byte(record.Before),
		record.AfterID, record.ActorID, record.ContributorID, record.CreatedAt,
	)

	created, err := scanHistory(row)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("failed to insert history record: %w", err)
	}
	return created, nil
}

// GetByID retrieves a record by id.
func (r *historyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.HistoryRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+historyColumns+` FROM history WHERE id = $1`, id)
	record, err := scanHistory(row)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("failed to get history record: %w", classifyError(err))
	}
	return record, nil
}

// List retrieves history records matching the filter, newest-first, with a
// windowed total count.
func (r *historyRepository) List(ctx context.Context, filter domain.HistoryFilter, limit int, offset int) ([]domain.HistoryRecord, int, error) {
	conditions := []string{}
	args := []any{}

	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.PlantID != nil {
		args = append(args, *filter.PlantID)
		conditions = append(conditions, fmt.Sprintf("plant_id = $%d", len(args)))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM history
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, historyColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history records: %w", err)
	}
	defer rows.Close()

	records := []domain.HistoryRecord{}
	totalCount := 0
	for rows.Next() {
		var record domain.HistoryRecord
		var before []byte
		if err := rows.Scan(
			&record.ID, &record.PlantID, &record.Action, &before,
			&record.AfterID, &record.ActorID, &record.ContributorID,
			&record.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan history row: %w", err)
		}
		record.Before = before
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read history rows: %w", err)
	}

	return records, totalCount, nil
}

// ListByPlant retrieves all records for one plant, newest-first.
func (r *historyRepository) ListByPlant(ctx context.Context, plantID uuid.UUID) ([]domain.HistoryRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+historyColumns+` FROM history WHERE plant_id = $1 ORDER BY created_at DESC`, plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for plant: %w", err)
	}
	defer rows.Close()

	records := []domain.HistoryRecord{}
	for rows.Next() {
		var record domain.HistoryRecord
		var before []byte
		if err := rows.Scan(
			&record.ID, &record.PlantID, &record.Action, &before,
			&record.AfterID, &record.ActorID, &record.ContributorID,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		record.Before = before
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return records, nil
}

// MarkRolledBack flips the record's action to rollback. The action guard is
// what prevents the same snapshot from being replayed twice.
func (r *historyRepository) MarkRolledBack(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE history
		SET action = 'rollback'
		WHERE id = $1 AND action IN ('update', 'delete')`, id)
	if err != nil {
		return fmt.Errorf("failed to mark history record rolled back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to mark history record rolled back: %w", domain.ErrInvalidState)
	}
	return nil
}

func scanHistory(row pgx.Row) (domain.HistoryRecord, error) {
	var record domain.HistoryRecord
	var before []byte
	err := row.Scan(
		&record.ID, &record.PlantID, &record.Action, &before,
		&record.AfterID, &record.ActorID, &record.ContributorID,
		&record.CreatedAt,
	)
	if err != nil {
		return domain.HistoryRecord{}, err
	}
	record.Before = before
	return record, nil
}
