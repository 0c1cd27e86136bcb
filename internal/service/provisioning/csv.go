package provisioning

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/errors"
	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
)

// Column synonyms accepted in a header row, lowercased.
var headerSynonyms = map[string]string{
	"phone":     "phone",
	"telefono":  "phone",
	"teléfono":  "phone",
	"number":    "phone",
	"name":      "name",
	"nombre":    "name",
	"email":     "email",
	"correo":    "email",
	"mail":      "email",
	"region":    "region",
	"región":    "region",
	"state":     "region",
	"country":   "country",
	"pais":      "country",
	"país":      "country",
}

// Positional fallback when no header row is detected.
var positionalColumns = []string{"phone", "name", "email", "region", "country"}

// ParseRecords reads contact rows from CSV into RawRecords. The first row is
// treated as a header when at least two of its cells match known column
// names; otherwise fields are taken positionally as
// phone,name,email,region,country. Rows shorter than the column set are
// padded with empty fields rather than rejected.
func ParseRecords(r io.Reader) ([]numbering.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewValidationError("MALFORMED_CSV", "could not parse CSV input").WithCause(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns, hasHeader := detectHeader(rows[0])
	if hasHeader {
		rows = rows[1:]
	} else {
		columns = positionalColumns
	}

	records := make([]numbering.RawRecord, 0, len(rows))
	for _, row := range rows {
		var rec numbering.RawRecord
		for i, field := range row {
			if i >= len(columns) {
				break
			}
			field = strings.TrimSpace(field)
			switch columns[i] {
			case "phone":
				rec.Phone = field
			case "name":
				rec.Name = field
			case "email":
				rec.Email = field
			case "region":
				rec.Region = field
			case "country":
				rec.Country = field
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// detectHeader maps the first row's cells to canonical column names. The row
// counts as a header when at least two cells are recognized.
func detectHeader(row []string) ([]string, bool) {
	columns := make([]string, len(row))
	matched := 0
	for i, cell := range row {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canon, ok := headerSynonyms[key]; ok {
			columns[i] = canon
			matched++
		}
	}
	return columns, matched >= 2
}
