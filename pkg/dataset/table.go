package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Table is an in-memory tabular dataset with ordered, named columns.
// Cells are stored as strings, as read from CSV; numeric access goes through
// FloatColumn. A Table is not safe for concurrent mutation.
type Table struct {
	columns []string
	cells   map[string][]string
	numRows int
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}

	t := &Table{
		columns: append([]string(nil), columns...),
		cells:   make(map[string][]string, len(columns)),
	}
	for _, c := range columns {
		t.cells[c] = nil
	}
	return t, nil
}

// AppendRow adds one record. The value count must match the column count.
func (t *Table) AppendRow(values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	for i, c := range t.columns {
		t.cells[c] = append(t.cells[c], values[i])
	}
	t.numRows++
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// NumRows returns the record count.
func (t *Table) NumRows() int {
	return t.numRows
}

// NumColumns returns the feature count.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Row returns the values of record i in column order.
func (t *Table) Row(i int) ([]string, error) {
	if i < 0 || i >= t.numRows {
		return nil, fmt.Errorf("row %d out of range, table has %d rows", i, t.numRows)
	}
	out := make([]string, len(t.columns))
	for j, c := range t.columns {
		out[j] = t.cells[c][i]
	}
	return out, nil
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cells[name]
	return ok
}

// Column returns the raw string values of one column.
func (t *Table) Column(name string) ([]string, error) {
	vals, ok := t.cells[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, nil
}

// FloatColumn parses one column as float64 values.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	vals, ok := t.cells[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]float64, len(vals))
	for i, s := range vals {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		out[i] = f
	}
	return out, nil
}

// SetColumn replaces (or appends) a column. The value count must match the
// current row count unless the table is empty.
func (t *Table) SetColumn(name string, values []string) error {
	if t.numRows > 0 && len(values) != t.numRows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.numRows)
	}
	if _, exists := t.cells[name]; !exists {
		t.columns = append(t.columns, name)
	}
	t.cells[name] = append([]string(nil), values...)
	if t.numRows == 0 {
		t.numRows = len(values)
	}
	return nil
}

// SetFloatColumn replaces (or appends) a column from numeric values,
// formatted with the shortest representation that round-trips.
func (t *Table) SetFloatColumn(name string, values []float64) error {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return t.SetColumn(name, strs)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		cells:   make(map[string][]string, len(t.columns)),
		numRows: t.numRows,
	}
	for c, vals := range t.cells {
		out.cells[c] = append([]string(nil), vals...)
	}
	return out
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, len(t.columns))
	for i := 0; i < t.numRows; i++ {
		for j, c := range t.columns {
			record[j] = t.cells[c][i]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table as a CSV file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses CSV content with a header row into a table.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	table, err := NewTable(header)
	if err != nil {
		return nil, err
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		if err := table.AppendRow(record); err != nil {
			return nil, err
		}
	}
	return table, nil
}
