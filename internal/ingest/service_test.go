package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/catalog"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/taxonomy"
)

type stubCatalog struct {
	created []catalog.CreateParams
	names   map[string]bool
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{names: map[string]bool{}}
}

func (s *stubCatalog) Create(_ context.Context, params catalog.CreateParams, _ [][]byte) (domain.Plant, error) {
	if s.names[params.ScientificName] {
		return domain.Plant{}, fmt.Errorf("failed to create plant: %w", domain.ErrConflict)
	}
	s.names[params.ScientificName] = true
	s.created = append(s.created, params)
	return domain.NewPlant(params.ScientificName, params.CommonNames, params.Description,
		params.FamilyID, params.AttributeIDs, params.Images, params.SpeciesDescription), nil
}

func (s *stubCatalog) Get(_ context.Context, _ uuid.UUID) (domain.Plant, error) {
	return domain.Plant{}, fmt.Errorf("failed to get plant: %w", domain.ErrNotFound)
}

func (s *stubCatalog) Update(_ context.Context, _ uuid.UUID, _ domain.PlantPatch, _ uuid.UUID, _ *uuid.UUID, _ [][]byte) (domain.Plant, error) {
	return domain.Plant{}, fmt.Errorf("failed to get plant: %w", domain.ErrNotFound)
}

type stubResolver struct {
	families   map[string]uuid.UUID
	attributes map[string]uuid.UUID
}

func newStubResolver() *stubResolver {
	return &stubResolver{families: map[string]uuid.UUID{}, attributes: map[string]uuid.UUID{}}
}

func (s *stubResolver) ResolveFamily(_ context.Context, nameOrID string, mode taxonomy.ResolveMode) (uuid.UUID, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return uuid.Nil, fmt.Errorf("%w: family is required", domain.ErrValidation)
	}
	if id, ok := s.families[nameOrID]; ok {
		return id, nil
	}
	if mode != taxonomy.CreateOnMiss {
		return uuid.Nil, fmt.Errorf("failed to resolve family %q: %w", nameOrID, domain.ErrNotFound)
	}
	id := uuid.New()
	s.families[nameOrID] = id
	return id, nil
}

func (s *stubResolver) ResolveAttributes(_ context.Context, namesOrIDs []string, _ taxonomy.ResolveMode) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(namesOrIDs))
	for _, nameOrID := range namesOrIDs {
		id, ok := s.attributes[nameOrID]
		if !ok {
			id = uuid.New()
			s.attributes[nameOrID] = id
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func TestImportCreatesPlantsFromCSV(t *testing.T) {
	cat := newStubCatalog()
	resolver := newStubResolver()
	service := NewService(cat, resolver)

	data := `scientific_name,family,common_names,description,attributes
Rosa canina,Rosaceae,dog rose; wild rose,a climbing rose,fragrant; thorny
Quercus robur,Fagaceae,English oak,a large oak,
`
	summary, err := service.Import(context.Background(), Request{FileName: "plants.csv", Data: strings.NewReader(data)})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if summary.TotalRows != 2 || summary.Created != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(cat.created) != 2 {
		t.Fatalf("expected 2 plants created, got %d", len(cat.created))
	}

	first := cat.created[0]
	if first.ScientificName != "Rosa canina" {
		t.Fatalf("unexpected first plant: %+v", first)
	}
	if len(first.CommonNames) != 2 || first.CommonNames[1] != "wild rose" {
		t.Fatalf("common names not split: %v", first.CommonNames)
	}
	if len(first.AttributeIDs) != 2 {
		t.Fatalf("attributes not resolved: %v", first.AttributeIDs)
	}
	if first.FamilyID != resolver.families["Rosaceae"] {
		t.Fatalf("family not resolved through create-on-miss")
	}
}

func TestImportReportsBadRowsAndKeepsGoing(t *testing.T) {
	cat := newStubCatalog()
	service := NewService(cat, newStubResolver())

	data := `scientific_name,family
Rosa canina,Rosaceae
,Rosaceae
Rosa canina,Rosaceae
Mentha,Lamiaceae
`
	summary, err := service.Import(context.Background(), Request{FileName: "plants.csv", Data: strings.NewReader(data)})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if summary.TotalRows != 4 || summary.Created != 2 || summary.Failed != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", summary.Errors)
	}
	if summary.Errors[0].Row != 3 {
		t.Fatalf("expected first failure on row 3, got %d", summary.Errors[0].Row)
	}
	if summary.Errors[1].Row != 4 {
		t.Fatalf("expected duplicate failure on row 4, got %d", summary.Errors[1].Row)
	}
}

func TestImportRequiresMandatoryColumns(t *testing.T) {
	service := NewService(newStubCatalog(), newStubResolver())

	data := "name,family\nRosa,Rosaceae\n"
	_, err := service.Import(context.Background(), Request{FileName: "plants.csv", Data: strings.NewReader(data)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing column, got %v", err)
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	service := NewService(newStubCatalog(), newStubResolver())

	_, err := service.Import(context.Background(), Request{FileName: "plants.pdf", Data: strings.NewReader("x")})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImportStripsByteOrderMark(t *testing.T) {
	cat := newStubCatalog()
	service := NewService(cat, newStubResolver())

	data := "\xEF\xBB\xBFscientific_name,family\nRosa canina,Rosaceae\n"
	summary, err := service.Import(context.Background(), Request{FileName: "plants.csv", Data: strings.NewReader(data)})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if summary.Created != 1 {
		t.Fatalf("expected one plant created, got %+v", summary)
	}
}
