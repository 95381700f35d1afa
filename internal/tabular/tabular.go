// Package tabular adapts raw CSV exports into string-keyed records and
// resolves logical fields against the many header spellings seen in the wild.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Record is one parsed table row, keyed by the header cell verbatim.
type Record map[string]string

// ParseCSV reads an entire CSV document using the first row as header.
// Rows shorter than the header are padded with empty values; rows longer
// are truncated. Cell values are trimmed.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		record := make(Record, len(header))
		for i, name := range header {
			var value string
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			record[strings.TrimSpace(name)] = value
		}
		records = append(records, record)
	}

	return records, nil
}

// Field is a logical column with its accepted header spellings. Matching is
// case-insensitive and ignores spaces, underscores and hyphens; the first
// declared synonym found in the record wins.
type Field struct {
	Name     string
	Synonyms []string
}

// Lookup returns the record value for the field, resolving header synonyms.
func (f Field) Lookup(record Record) (string, bool) {
	normalized := make(map[string]string, len(record))
	for key, value := range record {
		norm := normalizeHeader(key)
		if _, exists := normalized[norm]; !exists {
			normalized[norm] = value
		}
	}

	for _, synonym := range f.Synonyms {
		if value, ok := normalized[normalizeHeader(synonym)]; ok {
			return value, true
		}
	}
	return "", false
}

// Value is Lookup without the presence flag.
func (f Field) Value(record Record) string {
	value, _ := f.Lookup(record)
	return value
}

func normalizeHeader(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '_', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
