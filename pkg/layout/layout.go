// Package layout computes subplot grid layouts for multi-panel figures.
//
// Given a number of panels and a maximum column count, Plan picks a
// (rows, columns) shape, and CellForIndex maps a flat panel index onto a
// grid cell in row-major order. The planner is pure computation with no
// rendering dependencies; the render package consumes its output.
package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for layout planning.
var (
	// ErrInvalidArgument indicates a non-positive plot count or column limit.
	ErrInvalidArgument = errors.New("layout: plot count and max columns must be positive")
	// ErrIndexOutOfRange indicates a panel index outside [0, plot count).
	ErrIndexOutOfRange = errors.New("layout: panel index out of range")
)

// Cell is a single grid position. Row and Col are zero-based.
type Cell struct {
	Row int
	Col int
}

// GridPlan is the chosen grid shape for a fixed number of panels.
// Rows*Columns is always at least the panel count; trailing cells beyond the
// last panel are never addressed by CellForIndex and are the renderer's
// responsibility to leave blank.
type GridPlan struct {
	Rows    int
	Columns int

	plotCount int
}

// Plan computes the grid shape for plotCount panels constrained to at most
// maxColumns columns. Columns is the smaller of plotCount and maxColumns;
// rows grow as needed to fit every panel.
func Plan(plotCount, maxColumns int) (GridPlan, error) {
	if plotCount <= 0 || maxColumns <= 0 {
		return GridPlan{}, fmt.Errorf("%w: got plotCount=%d, maxColumns=%d", ErrInvalidArgument, plotCount, maxColumns)
	}

	columns := plotCount
	if plotCount >= maxColumns {
		columns = maxColumns
	}

	rows := plotCount / columns
	if plotCount%columns != 0 {
		rows++
	}

	return GridPlan{Rows: rows, Columns: columns, plotCount: plotCount}, nil
}

// PlotCount returns the number of panels the plan was built for.
func (p GridPlan) PlotCount() int {
	return p.plotCount
}

// CellForIndex maps a flat panel index onto its grid cell.
//
// The mapping is row-major: left-to-right, top-to-bottom. Degenerate shapes
// are handled explicitly so callers always get a uniform (row, col) pair:
// a 1x1 grid maps index 0 to (0,0), a single-row grid maps index i to (0,i),
// and a single-column grid maps index i to (i,0). For every valid index the
// cell lies within [0, Rows) x [0, Columns), and no two indices share a cell.
func (p GridPlan) CellForIndex(index int) (Cell, error) {
	if index < 0 || index >= p.plotCount {
		return Cell{}, fmt.Errorf("%w: index %d with %d panels", ErrIndexOutOfRange, index, p.plotCount)
	}

	switch {
	case p.Rows == 1 && p.Columns == 1:
		return Cell{Row: 0, Col: 0}, nil
	case p.Rows == 1:
		return Cell{Row: 0, Col: index}, nil
	case p.Columns == 1:
		return Cell{Row: index, Col: 0}, nil
	default:
		return Cell{Row: index / p.Columns, Col: index % p.Columns}, nil
	}
}
