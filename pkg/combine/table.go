// SPDX-License-Identifier: Apache-2.0

package combine

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
)

// Column names shared by every run row. Metric columns are discovered at
// parse time and differ across rows.
const (
	ColMachine    = "machine"
	ColCompiler   = "compiler"
	ColRepetition = "repetition"
	ColQuery      = "query"
	ColEngine     = "engine"
	ColThreads    = "threads"
	ColQueryLabel = "query_label"
	ColTime       = "time"
)

var baseColumns = []string{
	ColMachine,
	ColCompiler,
	ColRepetition,
	ColQuery,
	ColEngine,
	ColThreads,
	ColQueryLabel,
	ColTime,
}

// Row is one benchmark execution. Cell values are string, int or float64;
// an absent cell is either missing from the map or nil.
type Row map[string]any

// Table is an ordered collection of rows with a sparse column set. The
// column set is the union over all rows; cells absent from a row are
// written as empty fields.
type Table struct {
	rows []Row
}

func NewTable(rows ...Row) *Table {
	return &Table{rows: rows}
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Rows() []Row {
	return t.rows
}

func (t *Table) Append(rows ...Row) {
	t.rows = append(t.rows, rows...)
}

// Concat appends all rows of other. Columns present in only one of the
// two tables simply stay absent in the other's rows.
func (t *Table) Concat(other *Table) {
	t.rows = append(t.rows, other.rows...)
}

// Columns returns the union of all column names: the shared run columns
// first, in their canonical order, then the metric columns sorted by name.
func (t *Table) Columns() []string {
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		for name := range row {
			seen[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for _, name := range baseColumns {
		if _, ok := seen[name]; ok {
			columns = append(columns, name)
			delete(seen, name)
		}
	}

	extra := slices.Collect(maps.Keys(seen))
	slices.Sort(extra)
	return append(columns, extra...)
}

// Sort orders rows ascending by (machine, query, threads, repetition).
// Cells loaded back from a CSV are strings, so the comparison is numeric
// whenever both sides parse as numbers and lexicographic otherwise.
func (t *Table) Sort() {
	keys := []string{ColMachine, ColQuery, ColThreads, ColRepetition}
	slices.SortStableFunc(t.rows, func(a, b Row) int {
		for _, key := range keys {
			if c := compareCells(a[key], b[key]); c != 0 {
				return c
			}
		}
		return 0
	})
}

// WriteCSV writes the table with a header row and no index column.
func (t *Table) WriteCSV(w io.Writer) error {
	columns := t.Columns()

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range t.rows {
		for i, name := range columns {
			record[i] = formatCell(row[name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile persists the table to path, replacing any existing file.
func (t *Table) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := t.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}

// ReadCSV loads a table previously written by WriteCSV. A syntactically
// empty input yields an empty table, not an error. All cells are loaded
// as strings; Sort compares them numerically where possible.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := NewTable()
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i >= len(record) || record[i] == "" {
				continue
			}
			row[name] = record[i]
		}
		t.Append(row)
	}

	return t, nil
}

// ReadCSVFile loads a table from path.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// compareCells orders two cell values; absent cells sort first.
func compareCells(a, b any) int {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		}
		if a == nil {
			return -1
		}
		return 1
	}

	af, aNum := cellFloat(a)
	bf, bNum := cellFloat(b)
	if aNum && bNum {
		return cmp.Compare(af, bf)
	}
	return cmp.Compare(formatCell(a), formatCell(b))
}

func cellFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
