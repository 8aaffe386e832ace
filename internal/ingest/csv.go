package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"energy_dashboard/internal/model"
)

const utf8BOM = "\uFEFF"

// CSVParser parses energy exports whose first line is the header row.
//
// Expected format:
//
//	SendDate,Solar Power (kW),Solar energy Generation  (kWh),consumptionValue (kW)
//	2024-01-01 10:00,2.5,1.2,0.8
//
// Structural problems never fail the parse: a short line yields a row with
// the trailing columns absent, extra fields are ignored, and a line the CSV
// reader cannot make sense of yields an empty row. Only read errors from the
// underlying reader are returned.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil && !isParseError(err) {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows []model.RawRow
	lineNum := 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if isParseError(err) {
				rows = append(rows, model.RawRow{})
				continue
			}
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		rows = append(rows, rowFromRecord(header, record))
	}

	return rows, nil
}

// ParseText parses in-memory CSV text and hands the rows to complete. The
// callback fires exactly once, before ParseText returns.
func (p *CSVParser) ParseText(text string, complete func([]model.RawRow)) {
	rows, _ := p.Parse(strings.NewReader(text))
	complete(rows)
}

func rowFromRecord(header, record []string) model.RawRow {
	row := make(model.RawRow, len(header))
	for i, col := range header {
		if i >= len(record) {
			break
		}
		row[col] = record[i]
	}
	return row
}

func isParseError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}
