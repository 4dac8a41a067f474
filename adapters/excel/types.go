package excel

import "fmt"

// RawRowData represents a row of raw sheet data keyed by normalized header
type RawRowData map[string]string

// SheetData represents the complete sheet
type SheetData struct {
	Headers []string     // Normalized column headers
	Rows    []RawRowData // Data rows
}

// RowError describes a catalog row that could not be converted to a crop
type RowError struct {
	Row    int    `json:"row"` // 1-based, header is row 1
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("row %d (%s): %s", e.Row, e.Name, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
