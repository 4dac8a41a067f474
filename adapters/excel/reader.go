package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"croprotation/domain/crop"
	"croprotation/internal"

	"github.com/xuri/excelize/v2"
)

// CatalogReader reads a crop catalog from an .xlsx (Sheet1) or .csv file.
// The first row holds headers; header matching ignores case, spaces,
// underscores and dashes so "Nutrient Requirement" and "nutrientRequirement"
// both resolve.
type CatalogReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewCatalogReader creates a reader for the given file
func NewCatalogReader(filePath string) *CatalogReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &CatalogReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.With("catalog"),
	}
}

// ReadSheet reads the raw rows of the file
func (r *CatalogReader) ReadSheet() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s file read in %.2fms (%d rows)", strings.ToUpper(r.fileType),
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	return processRows(rows), nil
}

func (r *CatalogReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *CatalogReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// normalizeHeader maps "Nutrient Requirement", "nutrient_requirement" and
// "nutrientRequirement" to the same key
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func processRows(rows [][]string) *SheetData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = normalizeHeader(header)
	}

	data := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		data = append(data, rowData)
	}
	return &SheetData{Headers: headers, Rows: data}
}

// ReadCrops converts every catalog row into a crop. Rows that cannot be
// converted are reported and skipped; blank rows are ignored.
func (r *CatalogReader) ReadCrops() ([]crop.Crop, []RowError, error) {
	sheet, err := r.ReadSheet()
	if err != nil {
		return nil, nil, err
	}
	if !containsHeader(sheet.Headers, "name") {
		return nil, nil, fmt.Errorf("catalog is missing a name column")
	}

	var (
		crops   []crop.Crop
		rowErrs []RowError
	)
	for i, row := range sheet.Rows {
		if row["name"] == "" {
			continue
		}
		c, err := rowToCrop(row)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 2, Name: row["name"], Reason: err.Error()})
			continue
		}
		crops = append(crops, c)
	}

	r.logger.Info("Catalog %s: %d crops parsed, %d rows rejected", filepath.Base(r.filePath), len(crops), len(rowErrs))
	return crops, rowErrs, nil
}

func containsHeader(headers []string, want string) bool {
	for _, h := range headers {
		if h == want {
			return true
		}
	}
	return false
}

func rowToCrop(row RawRowData) (crop.Crop, error) {
	c := crop.Crop{
		Name:                row["name"],
		ScientificName:      row["scientificname"],
		Family:              parseFamily(row["family"]),
		NutrientRequirement: crop.NutrientRequirement(strings.ToLower(row["nutrientrequirement"])),
		Season:              crop.ParseSeasons(row["season"]),
		SoilTypes:           splitCell(row["soiltype"]),
		IsActive:            true,
	}

	var err error
	if c.WaterRequirement, err = parseFloatCell(row, "waterrequirement", 5); err != nil {
		return c, err
	}
	if c.GrowthDuration, err = parseIntCell(row, "growthduration", 0); err != nil {
		return c, err
	}
	if c.Acidity, err = parseIntCell(row, "acidity", 0); err != nil {
		return c, err
	}
	if raw := row["nitrogenfixer"]; raw != "" {
		switch strings.ToLower(raw) {
		case "yes", "y":
			c.NitrogenFixer = true
		case "no", "n":
		default:
			if c.NitrogenFixer, err = strconv.ParseBool(raw); err != nil {
				return c, fmt.Errorf("invalid nitrogen_fixer value %q", raw)
			}
		}
	}
	return c, nil
}

// parseFamily matches a family name case-insensitively; unknown names map to
// Other
func parseFamily(raw string) crop.Family {
	if raw == "" {
		return ""
	}
	for _, f := range crop.Families {
		if strings.EqualFold(string(f), raw) {
			return f
		}
	}
	return crop.FamilyOther
}

func splitCell(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloatCell(row RawRowData, key string, def float64) (float64, error) {
	raw := row[key]
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return v, nil
}

func parseIntCell(row RawRowData, key string, def int) (int, error) {
	raw := row[key]
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != float64(int(v)) {
		return 0, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return int(v), nil
}
