package kb

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSV column order of the seed interventions file.
const (
	colID = iota
	colIssueKeywords
	colRoadTypes
	colEnvironmentTags
	colIntervention
	colReference
	colRationale
	colPriority
	csvColumns
)

// defaultAssumptions qualifies every seed recommendation; the seed catalogue
// does not carry per-record assumptions.
const defaultAssumptions = "Material-only cost; excludes labor and taxes."

// LoadCSV reads intervention records from a seed CSV file and builds a store.
func LoadCSV(path string) (*Store, error) {
	records, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return NewStore(records)
}

// ReadCSV reads intervention records from a seed CSV file.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open kb source: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV parses intervention records from CSV. The first row is a header.
// List-valued columns accept either a JSON-style array ("['a', 'b']") or a
// semicolon-delimited string ("a; b").
func ParseCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("malformed csv: %v", err)}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Reason: "empty csv source"}
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		rec, err := parseCSVRow(row)
		if err != nil {
			return nil, &LoadError{Reason: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCSVRow(row []string) (Record, error) {
	id, err := strconv.Atoi(strings.TrimSpace(row[colID]))
	if err != nil {
		return Record{}, fmt.Errorf("invalid id %q", row[colID])
	}

	priority, err := ParsePriority(row[colPriority])
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:              id,
		IssueKeywords:   parseListField(row[colIssueKeywords]),
		RoadTypes:       parseListField(row[colRoadTypes]),
		EnvironmentTags: parseListField(row[colEnvironmentTags]),
		Intervention:    row[colIntervention],
		Reference:       row[colReference],
		Rationale:       row[colRationale],
		Priority:        priority,
		Assumptions:     defaultAssumptions,
	}, nil
}

// parseListField decodes a list-valued CSV cell. The seed catalogue stores
// lists as Python-style arrays with single quotes; exports may use
// semicolons instead.
func parseListField(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	if strings.HasPrefix(field, "[") {
		var items []string
		if err := json.Unmarshal([]byte(strings.ReplaceAll(field, "'", `"`)), &items); err == nil {
			return items
		}
		// Fall through: treat the bracketed text as a single value.
	}
	if strings.Contains(field, ";") {
		return strings.Split(field, ";")
	}
	return []string{field}
}
