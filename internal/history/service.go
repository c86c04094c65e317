package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
)

// Service is the history ledger: it appends before-snapshots for every plant
// mutation and can replay them as rollbacks.
type Service struct {
	records repository.HistoryRepository
	plants  repository.PlantRepository
}

// NewService creates the ledger service.
func NewService(records repository.HistoryRepository, plants repository.PlantRepository) *Service {
	return &Service{records: records, plants: plants}
}

// RecordUpdate appends an update record whose Before snapshot is the plant
// state strictly prior to the committed mutation.
func (s *Service) RecordUpdate(ctx context.Context, plantID uuid.UUID, before json.RawMessage, actorID uuid.UUID, contributorID *uuid.UUID) error {
	record := newRecord(plantID, domain.HistoryActionUpdate, before, actorID, contributorID)
	record.AfterID = &plantID
	if _, err := s.records.Insert(ctx, record); err != nil {
		return err
	}
	return nil
}

// RecordDelete appends a delete record preserving the removed plant's full
// state.
func (s *Service) RecordDelete(ctx context.Context, plantID uuid.UUID, before json.RawMessage, actorID uuid.UUID, contributorID *uuid.UUID) error {
	if _, err := s.records.Insert(ctx, newRecord(plantID, domain.HistoryActionDelete, before, actorID, contributorID)); err != nil {
		return err
	}
	return nil
}

// Get retrieves a single ledger record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.HistoryRecord, error) {
	return s.records.GetByID(ctx, id)
}

// List retrieves ledger records newest-first with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.HistoryFilter, page, pageSize int) ([]domain.HistoryRecord, int, error) {
	limit, offset := pageWindow(page, pageSize)
	return s.records.List(ctx, filter, limit, offset)
}

// ListByPlant retrieves every record touching one plant, newest-first.
func (s *Service) ListByPlant(ctx context.Context, plantID uuid.UUID) ([]domain.HistoryRecord, error) {
	return s.records.ListByPlant(ctx, plantID)
}

// RollbackOne reapplies the record's before-snapshot as the new current
// state and consumes the record. An update record overwrites the still-
// existing plant; a delete record recreates the plant under a fresh identity
// since the original id is gone. Rolling back never cascades to later
// records: it is a forward-moving operation that happens to apply old data.
func (s *Service) RollbackOne(ctx context.Context, id uuid.UUID) (domain.Plant, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return domain.Plant{}, err
	}

	if !record.Consumable() {
		return domain.Plant{}, fmt.Errorf("cannot rollback history record %s with action %q: %w",
			record.ID, record.Action, domain.ErrInvalidState)
	}

	restored, err := s.applySnapshot(ctx, record)
	if err != nil {
		return domain.Plant{}, err
	}

	if err := s.records.MarkRolledBack(ctx, id); err != nil {
		return domain.Plant{}, err
	}

	return restored, nil
}

// RollbackMany rolls back each record independently. Records that were
// already consumed are skipped rather than failing the batch; a batch where
// none of the ids exist fails with ErrNotFound.
func (s *Service) RollbackMany(ctx context.Context, ids []uuid.UUID) ([]domain.Plant, error) {
	found := 0
	restored := []domain.Plant{}

	for _, id := range ids {
		record, err := s.records.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		found++

		if !record.Consumable() {
			continue
		}

		plant, err := s.applySnapshot(ctx, record)
		if err != nil {
			return nil, err
		}

		if err := s.records.MarkRolledBack(ctx, id); err != nil {
			return nil, err
		}

		restored = append(restored, plant)
	}

	if found == 0 {
		return nil, fmt.Errorf("no history records matched: %w", domain.ErrNotFound)
	}

	return restored, nil
}

// Diff renders a unified diff between the record's before-snapshot and the
// plant's live state. A deleted plant diffs against an empty document.
func (s *Service) Diff(ctx context.Context, id uuid.UUID) (string, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	var live json.RawMessage
	plant, err := s.plants.GetByID(ctx, record.PlantID)
	switch {
	case err == nil:
		live, err = plant.Snapshot()
		if err != nil {
			return "", fmt.Errorf("failed to snapshot plant %s: %w", record.PlantID, err)
		}
	case errors.Is(err, domain.ErrNotFound):
		// Plant deleted since the record was written.
	default:
		return "", err
	}

	return domain.DiffSnapshots(
		fmt.Sprintf("history/%s", record.ID),
		record.Before,
		fmt.Sprintf("plant/%s", record.PlantID),
		live,
	)
}

func (s *Service) applySnapshot(ctx context.Context, record domain.HistoryRecord) (domain.Plant, error) {
	snapshot, err := domain.PlantFromSnapshot(record.Before)
	if err != nil {
		return domain.Plant{}, fmt.Errorf("failed to decode snapshot of record %s: %w", record.ID, err)
	}

	switch record.Action {
	case domain.HistoryActionUpdate:
		if _, err := s.plants.GetByID(ctx, record.PlantID); err != nil {
			return domain.Plant{}, fmt.Errorf("rollback target plant %s: %w", record.PlantID, err)
		}
		snapshot.ID = record.PlantID
		return s.plants.Update(ctx, snapshot)
	case domain.HistoryActionDelete:
		snapshot.ID = uuid.New()
		snapshot.CreatedAt = time.Now()
		return s.plants.Create(ctx, snapshot)
	default:
		return domain.Plant{}, fmt.Errorf("cannot rollback action %q: %w", record.Action, domain.ErrInvalidState)
	}
}

func newRecord(plantID uuid.UUID, action domain.HistoryAction, before json.RawMessage, actorID uuid.UUID, contributorID *uuid.UUID) domain.HistoryRecord {
	record := domain.HistoryRecord{
		ID:            uuid.New(),
		PlantID:       plantID,
		Action:        action,
		Before:        before,
		ContributorID: contributorID,
		CreatedAt:     time.Now(),
	}
	if actorID != uuid.Nil {
		record.ActorID = &actorID
	}
	return record
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
