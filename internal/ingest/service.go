package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verdantlabs/herbarium/internal/catalog"
	"github.com/verdantlabs/herbarium/internal/contribution"
	"github.com/verdantlabs/herbarium/internal/domain"
	"github.com/verdantlabs/herbarium/internal/taxonomy"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// listSeparator splits multi-valued cells (common names, attributes).
const listSeparator = ";"

// Service bulk-imports plants from tabular files through the canonical
// entity store. Reference names are resolved in create-on-first-use mode
// since imports are an admin entry path.
type Service struct {
	catalog  contribution.Catalog
	resolver contribution.ReferenceResolver
}

// NewService creates a new import service.
func NewService(cat contribution.Catalog, resolver contribution.ReferenceResolver) *Service {
	return &Service{catalog: cat, resolver: resolver}
}

// Request describes the import input.
type Request struct {
	FileName string
	Data     io.Reader
}

// RowError reports one rejected row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary reports the import outcome. Valid rows commit even when other
// rows fail.
type Summary struct {
	TotalRows int        `json:"totalRows"`
	Created   int        `json:"created"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Import parses the file and creates one plant per data row.
func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	rows, err := readRows(req.FileName, req.Data)
	if err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, fmt.Errorf("%w: file has no rows", domain.ErrValidation)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{}
	for i, row := range rows[1:] {
		rowNumber := i + 2 // 1-based, after the header
		summary.TotalRows++

		if err := s.importRow(ctx, columns, row); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		summary.Created++
	}

	return summary, nil
}

type columnMap struct {
	scientificName int
	family         int
	commonNames    int
	description    int
	attributes     int
}

func mapColumns(header []string) (columnMap, error) {
	columns := columnMap{scientificName: -1, family: -1, commonNames: -1, description: -1, attributes: -1}

	for idx, label := range header {
		switch normalizeHeader(label) {
		case "scientific_name":
			columns.scientificName = idx
		case "family":
			columns.family = idx
		case "common_names":
			columns.commonNames = idx
		case "description":
			columns.description = idx
		case "attributes":
			columns.attributes = idx
		}
	}

	if columns.scientificName == -1 {
		return columnMap{}, fmt.Errorf("%w: missing scientific_name column", domain.ErrValidation)
	}
	if columns.family == -1 {
		return columnMap{}, fmt.Errorf("%w: missing family column", domain.ErrValidation)
	}

	return columns, nil
}

func normalizeHeader(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.ReplaceAll(label, " ", "_")
}

func (s *Service) importRow(ctx context.Context, columns columnMap, row []string) error {
	scientificName := cell(row, columns.scientificName)
	if scientificName == "" {
		return fmt.Errorf("%w: empty scientific_name", domain.ErrValidation)
	}

	familyID, err := s.resolver.ResolveFamily(ctx, cell(row, columns.family), taxonomy.CreateOnMiss)
	if err != nil {
		return err
	}

	params := catalog.CreateParams{
		ScientificName: scientificName,
		CommonNames:    splitList(cell(row, columns.commonNames)),
		Description:    cell(row, columns.description),
		FamilyID:       familyID,
	}

	if attributes := splitList(cell(row, columns.attributes)); len(attributes) > 0 {
		attributeIDs, err := s.resolver.ResolveAttributes(ctx, attributes, taxonomy.CreateOnMiss)
		if err != nil {
			return err
		}
		params.AttributeIDs = attributeIDs
	}

	_, err = s.catalog.Create(ctx, params, nil)
	return err
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, listSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readRows(fileName string, data io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return readCSV(data)
	case ".xlsx":
		return readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

func readCSV(data io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, byteOrderMark)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

func readXLSX(data io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrValidation)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
