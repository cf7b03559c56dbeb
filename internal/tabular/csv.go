package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is a header-keyed record. Absent columns read as "".
type Row map[string]string

// Table is a decoded sheet: its header and the non-blank data rows.
type Table struct {
	Header []string
	Rows   []Row
}

// HasColumn reports whether col is present in the header.
func (t Table) HasColumn(col string) bool {
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// WriteCSV writes header followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile replaces path atomically.
func WriteCSVFile(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, header, rows); err != nil {
		return fmt.Errorf("tabular: encode csv %s: %w", path, err)
	}
	return writeAtomic(path, buf.Bytes())
}

// ReadCSV reads a header line followed by data lines. Short lines are padded with "".
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("tabular: read csv: %w", err)
	}
	return toTable(records), nil
}

func ReadCSVFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func toTable(records [][]string) Table {
	if len(records) == 0 {
		return Table{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
