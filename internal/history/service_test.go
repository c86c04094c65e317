package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/repository"
)

type stubHistoryRepo struct {
	records map[uuid.UUID]domain.HistoryRecord
}

func newStubHistoryRepo() *stubHistoryRepo {
	return &stubHistoryRepo{records: map[uuid.UUID]domain.HistoryRecord{}}
}

func (s *stubHistoryRepo) Insert(_ context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error) {
	s.records[record.ID] = record
	return record, nil
}

func (s *stubHistoryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.HistoryRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return domain.HistoryRecord{}, fmt.Errorf("failed to get history record: %w", domain.ErrNotFound)
	}
	return record, nil
}

func (s *stubHistoryRepo) List(_ context.Context, _ domain.HistoryFilter, _ int, _ int) ([]domain.HistoryRecord, int, error) {
	out := []domain.HistoryRecord{}
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, len(out), nil
}

func (s *stubHistoryRepo) ListByPlant(_ context.Context, plantID uuid.UUID) ([]domain.HistoryRecord, error) {
	out := []domain.HistoryRecord{}
	for _, record := range s.records {
		if record.PlantID == plantID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubHistoryRepo) MarkRolledBack(_ context.Context, id uuid.UUID) error {
	record, ok := s.records[id]
	if !ok || !record.Consumable() {
		return fmt.Errorf("failed to mark history record rolled back: %w", domain.ErrInvalidState)
	}
	record.Action = domain.HistoryActionRollback
	s.records[id] = record
	return nil
}

type stubPlantRepo struct {
	plants  map[uuid.UUID]domain.Plant
	created []domain.Plant
	updated []domain.Plant
}

func newStubPlantRepo() *stubPlantRepo {
	return &stubPlantRepo{plants: map[uuid.UUID]domain.Plant{}}
}

func (s *stubPlantRepo) Create(_ context.Context, plant domain.Plant) (domain.Plant, error) {
	if _, exists := s.plants[plant.ID]; exists {
		return domain.Plant{}, fmt.Errorf("failed to create plant: %w", domain.ErrConflict)
	}
	s.plants[plant.ID] = plant
	s.created = append(s.created, plant)
	return plant, nil
}

func (s *stubPlantRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Plant, error) {
	plant, ok := s.plants[id]
	if !ok {
		return domain.Plant{}, fmt.Errorf("failed to get plant: %w", domain.ErrNotFound)
	}
	return plant, nil
}

func (s *stubPlantRepo) List(_ context.Context, _ repository.PlantFilter, _ int, _ int) ([]domain.Plant, int, error) {
	out := []domain.Plant{}
	for _, plant := range s.plants {
		out = append(out, plant)
	}
	return out, len(out), nil
}

func (s *stubPlantRepo) Update(_ context.Context, plant domain.Plant) (domain.Plant, error) {
	if _, ok := s.plants[plant.ID]; !ok {
		return domain.Plant{}, fmt.Errorf("failed to update plant: %w", domain.ErrNotFound)
	}
	s.plants[plant.ID] = plant
	s.updated = append(s.updated, plant)
	return plant, nil
}

func (s *stubPlantRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.plants[id]; !ok {
		return fmt.Errorf("failed to delete plant: %w", domain.ErrNotFound)
	}
	delete(s.plants, id)
	return nil
}

func (s *stubPlantRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.plants)), nil
}

func (s *stubPlantRepo) CountByFamily(_ context.Context) ([]repository.FamilyCount, error) {
	return nil, nil
}

func seedUpdateRecord(t *testing.T, records *stubHistoryRepo, plant domain.Plant) domain.HistoryRecord {
	t.Helper()
	before, err := plant.Snapshot()
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	record := domain.HistoryRecord{
		ID:      uuid.New(),
		PlantID: plant.ID,
		Action:  domain.HistoryActionUpdate,
		Before:  before,
	}
	records.records[record.ID] = record
	return record
}

func TestRollbackOneRestoresUpdateSnapshot(t *testing.T) {
	plants := newStubPlantRepo()
	records := newStubHistoryRepo()
	service := NewService(records, plants)

	original := domain.NewPlant("Rosa canina", []string{"dog rose"}, "before", uuid.New(), nil, nil, nil)
	record := seedUpdateRecord(t, records, original)

	mutated := original
	mutated.Description = "after"
	plants.plants[original.ID] = mutated

	restored, err := service.RollbackOne(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("rollback returned error: %v", err)
	}

	if restored.ID != original.ID {
		t.Fatalf("expected rollback to keep plant id %s, got %s", original.ID, restored.ID)
	}
	if restored.Description != "before" {
		t.Fatalf("expected description restored, got %q", restored.Description)
	}
	if got := records.records[record.ID].Action; got != domain.HistoryActionRollback {
		t.Fatalf("expected record consumed, action is %q", got)
	}
}

func TestRollbackOneRecreatesDeletedPlantUnderNewID(t *testing.T) {
	plants := newStubPlantRepo()
	records := newStubHistoryRepo()
	service := NewService(records, plants)

	deleted := domain.NewPlant("Quercus robur", nil, "an oak", uuid.New(), nil, nil, nil)
	before, err := deleted.Snapshot()
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	record := domain.HistoryRecord{
		ID:      uuid.New(),
		PlantID: deleted.ID,
		Action:  domain.HistoryActionDelete,
		Before:  before,
	}
	records.records[record.ID] = record

	restored, err := service.RollbackOne(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("rollback returned error: %v", err)
	}

	if restored.ID == deleted.ID {
		t.Fatalf("expected recreated plant to get a fresh id")
	}
	if restored.ScientificName != "Quercus robur" {
		t.Fatalf("unexpected restored plant: %+v", restored)
	}
	if len(plants.created) != 1 {
		t.Fatalf("expected one create, got %d", len(plants.created))
	}
}

func TestRollbackOneRejectsConsumedRecord(t *testing.T) {
	plants := newStubPlantRepo()
	records := newStubHistoryRepo()
	service := NewService(records, plants)

	plant := domain.NewPlant("Mentha", nil, "", uuid.New(), nil, nil, nil)
	plants.plants[plant.ID] = plant
	record := seedUpdateRecord(t, records, plant)

	if _, err := service.RollbackOne(context.Background(), record.ID); err != nil {
		t.Fatalf("first rollback returned error: %v", err)
	}

	_, err := service.RollbackOne(context.Background(), record.ID)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second rollback, got %v", err)
	}
}

func TestRollbackOneFailsWhenUpdateTargetMissing(t *testing.T) {
	plants := newStubPlantRepo()
	records := newStubHistoryRepo()
	service := NewService(records, plants)

	gone := domain.NewPlant("Salvia", nil, "", uuid.New(), nil, nil, nil)
	record := seedUpdateRecord(t, records, gone)

	_, err := service.RollbackOne(context.Background(), record.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing target, got %v", err)
	}
	if records.records[record.ID].Action != domain.HistoryActionUpdate {
		t.Fatalf("record must stay unconsumed when the rollback fails")
	}
}

func TestRollbackManySkipsConsumedAndMissing(t *testing.T) {
	plants := newStubPlantRepo()
	records := newStubHistoryRepo()
	service := NewService(records, plants)

	plant := domain.NewPlant("Acer", nil, "before", uuid.New(), nil, nil, nil)
	plants.plants[plant.ID] = plant
	fresh := seedUpdateRecord(t, records, plant)

	consumed := seedUpdateRecord(t, records, plant)
	stored := records.records[consumed.ID]
	stored.Action = domain.HistoryActionRollback
	records.records[consumed.ID] = stored

	restored, err := service.RollbackMany(context.Background(), []uuid.UUID{uuid.New(), consumed.ID, fresh.ID})
	if err != nil {
		t.Fatalf("rollback many returned error: %v", err)
	}

	if len(restored) != 1 {
		t.Fatalf("expected one restored plant, got %d", len(restored))
	}
}

func TestRollbackManyFailsWhenNothingMatches(t *testing.T) {
	service := NewService(newStubHistoryRepo(), newStubPlantRepo())

	_, err := service.RollbackMany(context.Background(), []uuid.UUID{uuid.New(), uuid.New()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordUpdateSetsAfterReference(t *testing.T) {
	records := newStubHistoryRepo()
	service := NewService(records, newStubPlantRepo())

	plantID := uuid.New()
	actorID := uuid.New()
	if err := service.RecordUpdate(context.Background(), plantID, []byte(`{}`), actorID, nil); err != nil {
		t.Fatalf("record update returned error: %v", err)
	}

	if len(records.records) != 1 {
		t.Fatalf("expected one record, got %d", len(records.records))
	}
	for _, record := range records.records {
		if record.AfterID == nil || *record.AfterID != plantID {
			t.Fatalf("expected after reference %s, got %v", plantID, record.AfterID)
		}
		if record.ActorID == nil || *record.ActorID != actorID {
			t.Fatalf("expected actor %s, got %v", actorID, record.ActorID)
		}
	}
}

func TestDiffAgainstLivePlant(t *testing.T) {
	plants := newStubPlantRepo()
	records := newStubHistoryRepo()
	service := NewService(records, plants)

	original := domain.NewPlant("Rosa canina", nil, "before", uuid.New(), nil, nil, nil)
	record := seedUpdateRecord(t, records, original)

	mutated := original
	mutated.Description = "after"
	plants.plants[original.ID] = mutated

	diff, err := service.Diff(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("diff returned error: %v", err)
	}

	if !strings.Contains(diff, `-description: "before"`) || !strings.Contains(diff, `+description: "after"`) {
		t.Fatalf("unexpected diff:\n%s", diff)
	}
}
