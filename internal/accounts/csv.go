package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	numFields = 2
	colNumber = 0
	colName   = 1
)

// ReadCSV reads an account map CSV with the header account_number,display_name.
func ReadCSV(r io.Reader) (*Map, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	m := NewMap(nil)
	if len(records) == 0 {
		return m, nil
	}

	for i, rec := range records[1:] {
		number := strings.TrimSpace(rec[colNumber])
		name := strings.TrimSpace(rec[colName])
		if number == "" || name == "" {
			return nil, fmt.Errorf("row %d: account number and name are required", i+2)
		}
		if err := m.Add(number, name); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return m, nil
}

// WriteCSV writes m as CSV, sorted by account number.
func WriteCSV(w io.Writer, m *Map) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_number", "display_name"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, number := range m.Numbers() {
		name, _ := m.DisplayName(number)
		if err := cw.Write([]string{number, name}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
