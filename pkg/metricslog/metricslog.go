// Package metricslog accumulates per-model metric values into a single
// comparison table.
//
// A Log is an ordered, append-only table keyed by model name. The column set
// is fixed by the first insertion; later insertions must supply exactly the
// same metric names. Re-adding an existing model overwrites its values in
// place without changing its position.
//
// A Log is not safe for concurrent use; callers sharing one across goroutines
// must serialize access themselves.
package metricslog

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for log operations.
var (
	// ErrEmptyLog indicates a read or render was requested on a log with no entries.
	ErrEmptyLog = errors.New("metricslog: log has no entries")
	// ErrSchemaMismatch indicates an insertion whose metric names differ from
	// the column set established by the first insertion.
	ErrSchemaMismatch = errors.New("metricslog: metric names do not match the established columns")
)

// Row is one model's entry in the log.
type Row struct {
	Name    string
	Metrics map[string]float64
}

// Log is the accumulating comparison table.
type Log struct {
	columns []string
	order   []string
	values  map[string]map[string]float64
}

// New returns an empty log. Columns are established by the first Add.
func New() *Log {
	return &Log{values: make(map[string]map[string]float64)}
}

// Add inserts or overwrites the row keyed by name.
//
// The first call fixes the column set from the metric names (stored in sorted
// order, since map iteration order is not stable). Every later call must
// supply exactly the same names or Add fails with ErrSchemaMismatch and the
// log is left unchanged. An empty metric map is rejected outright, before any
// schema comparison. Overwriting an existing name keeps its original
// insertion position.
func (l *Log) Add(metrics map[string]float64, name string) error {
	if len(metrics) == 0 {
		return fmt.Errorf("metricslog: no metric values for %q", name)
	}

	if l.columns == nil {
		l.columns = make([]string, 0, len(metrics))
		for k := range metrics {
			l.columns = append(l.columns, k)
		}
		sort.Strings(l.columns)
	} else if err := l.checkSchema(metrics, name); err != nil {
		return err
	}

	row := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		row[k] = v
	}

	if _, exists := l.values[name]; !exists {
		l.order = append(l.order, name)
	}
	l.values[name] = row
	return nil
}

func (l *Log) checkSchema(metrics map[string]float64, name string) error {
	if len(metrics) != len(l.columns) {
		return fmt.Errorf("%w: %q has %d metrics, table has %d columns", ErrSchemaMismatch, name, len(metrics), len(l.columns))
	}
	for _, col := range l.columns {
		if _, ok := metrics[col]; !ok {
			return fmt.Errorf("%w: %q is missing column %q", ErrSchemaMismatch, name, col)
		}
	}
	return nil
}

// Len returns the number of rows.
func (l *Log) Len() int {
	return len(l.order)
}

// Columns returns the column names fixed by the first insertion, or nil for
// an empty log.
func (l *Log) Columns() []string {
	if l.columns == nil {
		return nil
	}
	out := make([]string, len(l.columns))
	copy(out, l.columns)
	return out
}

// Rows returns every entry in insertion order. Metric maps are copies, so
// mutating them does not affect the log.
func (l *Log) Rows() []Row {
	rows := make([]Row, 0, len(l.order))
	for _, name := range l.order {
		metrics := make(map[string]float64, len(l.columns))
		for k, v := range l.values[name] {
			metrics[k] = v
		}
		rows = append(rows, Row{Name: name, Metrics: metrics})
	}
	return rows
}

// Column returns one metric's values across all models in insertion order;
// pair them with ModelNames for labels. Fails with ErrEmptyLog on an empty
// log and ErrSchemaMismatch for an unknown column.
func (l *Log) Column(name string) ([]float64, error) {
	if l.Len() == 0 {
		return nil, ErrEmptyLog
	}

	found := false
	for _, col := range l.columns {
		if col == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: unknown column %q", ErrSchemaMismatch, name)
	}

	out := make([]float64, 0, len(l.order))
	for _, model := range l.order {
		out = append(out, l.values[model][name])
	}
	return out, nil
}

// ModelNames returns the row keys in insertion order.
func (l *Log) ModelNames() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}
