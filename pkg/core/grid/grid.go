// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package grid defines Grid, the dense 2-D array of float64 values transformed by
// package ops, its Shape, and a Parser that builds a Grid from loosely typed tabular
// input (decoded JSON, CSV records, Go slices).
//
// A Grid is immutable: every transformation produces a new Grid. Accessors that
// return slices return copies.
//
// ## Glossary
//
//   - Shape: the number of rows (H) and columns (W) of a Grid. A Grid with 0 rows
//     always has 0 columns.
//   - Cell: one value of the Grid, addressed by (row, col).
//   - Kernel: a (small) Grid of weights, used by ops.Convolve.
package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Shape of a Grid: number of rows and columns.
type Shape struct {
	Rows, Cols int
}

// MakeShape returns the Shape for the given dimensions, normalizing a 0-rows shape
// to 0 columns.
//
// It panics if any of the dimensions is negative.
func MakeShape(rows, cols int) Shape {
	if rows < 0 || cols < 0 {
		exceptions.Panicf("grid.MakeShape(%d, %d): dimensions must be >= 0", rows, cols)
	}
	if rows == 0 {
		cols = 0
	}
	return Shape{Rows: rows, Cols: cols}
}

// Size returns the number of cells.
func (s Shape) Size() int { return s.Rows * s.Cols }

// IsZeroSize returns whether the shape holds no cells.
func (s Shape) IsZeroSize() bool { return s.Size() == 0 }

// Memory returns the number of bytes used to store the cells of a Grid of this shape.
func (s Shape) Memory() uintptr { return uintptr(s.Size()) * 8 }

// String implements fmt.Stringer. E.g.: "(2x3)".
func (s Shape) String() string { return fmt.Sprintf("(%dx%d)", s.Rows, s.Cols) }

// MarshalJSON encodes the shape as `[rows, cols]`.
func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Rows, s.Cols})
}

// UnmarshalJSON decodes a shape encoded as `[rows, cols]`.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var dims [2]int
	if err := json.Unmarshal(data, &dims); err != nil {
		return errors.Wrapf(err, "grid.Shape must be encoded as [rows, cols], got %s", data)
	}
	if dims[0] < 0 || dims[1] < 0 {
		return errors.Errorf("grid.Shape can't have negative dimensions, got %v", dims)
	}
	*s = Shape{Rows: dims[0], Cols: dims[1]}
	return nil
}

// Grid is a rectangular, row-major 2-D array of float64 values.
//
// Create it with New, Full, FromRows or with a Parser. The zero value is an empty (0x0) Grid.
type Grid struct {
	shape Shape
	data  []float64 // len(data) == shape.Size()
}

// New returns a zero-filled Grid with the given dimensions.
//
// It panics if any of the dimensions is negative.
func New(rows, cols int) *Grid {
	shape := MakeShape(rows, cols)
	return &Grid{shape: shape, data: make([]float64, shape.Size())}
}

// Full returns a Grid with the given dimensions, with all cells set to value.
func Full(rows, cols int, value float64) *Grid {
	g := New(rows, cols)
	for ii := range g.data {
		g.data[ii] = value
	}
	return g
}

// FromFlat creates a Grid of the given shape that takes ownership of data, which must be
// laid out row-major. The caller must not modify data afterward.
func FromFlat(shape Shape, data []float64) (*Grid, error) {
	if shape.Rows < 0 || shape.Cols < 0 || (shape.Rows == 0 && shape.Cols != 0) {
		return nil, errors.Wrapf(ErrInvalidParameter, "grid.FromFlat: invalid shape %s", shape)
	}
	if len(data) != shape.Size() {
		return nil, errors.Wrapf(ErrInvalidMatrixFormat,
			"grid.FromFlat: shape %s requires %d values, got %d", shape, shape.Size(), len(data))
	}
	return &Grid{shape: shape, data: data}, nil
}

// FromRows creates a Grid from a well-formed rectangular [][]T, copying the values.
//
// Ragged rows are reported as ErrInvalidMatrixFormat: use a Parser to accept free-form input.
func FromRows[T constraints.Integer | constraints.Float](rows [][]T) (*Grid, error) {
	numCols := 0
	if len(rows) > 0 {
		numCols = len(rows[0])
	}
	g := New(len(rows), numCols)
	for rowIdx, row := range rows {
		if len(row) != numCols {
			return nil, errors.Wrapf(ErrInvalidMatrixFormat,
				"grid.FromRows: row %d has %d columns, but row 0 has %d", rowIdx, len(row), numCols)
		}
		for colIdx, v := range row {
			g.data[rowIdx*numCols+colIdx] = float64(v)
		}
	}
	return g, nil
}

// MustFromRows is like FromRows, but panics on error.
//
// Mostly useful for tests and examples with literal values.
func MustFromRows[T constraints.Integer | constraints.Float](rows [][]T) *Grid {
	g, err := FromRows(rows)
	if err != nil {
		exceptions.Panicf("grid.MustFromRows: %+v", err)
	}
	return g
}

// Shape returns the shape of the grid.
func (g *Grid) Shape() Shape { return g.shape }

// Rows returns the number of rows (H).
func (g *Grid) Rows() int { return g.shape.Rows }

// Cols returns the number of columns (W).
func (g *Grid) Cols() int { return g.shape.Cols }

// At returns the value at (row, col). It panics if out of range.
func (g *Grid) At(row, col int) float64 {
	if row < 0 || row >= g.shape.Rows || col < 0 || col >= g.shape.Cols {
		exceptions.Panicf("grid.At(%d, %d) out of range for shape %s", row, col, g.shape)
	}
	return g.data[row*g.shape.Cols+col]
}

// Row returns a copy of the values of the given row.
func (g *Grid) Row(row int) []float64 {
	if row < 0 || row >= g.shape.Rows {
		exceptions.Panicf("grid.Row(%d) out of range for shape %s", row, g.shape)
	}
	start := row * g.shape.Cols
	return slices.Clone(g.data[start : start+g.shape.Cols])
}

// Flat returns a copy of the values in row-major order.
func (g *Grid) Flat() []float64 { return slices.Clone(g.data) }

// Values returns a copy of the values as a [][]float64.
func (g *Grid) Values() [][]float64 {
	values := make([][]float64, g.shape.Rows)
	for row := range values {
		values[row] = g.Row(row)
	}
	return values
}

// Clone returns a copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{shape: g.shape, data: slices.Clone(g.data)}
}

// Range returns the smallest and largest values of the grid. Both are 0 for an empty grid.
func (g *Grid) Range() (minValue, maxValue float64) {
	if len(g.data) == 0 {
		return
	}
	minValue, maxValue = g.data[0], g.data[0]
	for _, v := range g.data[1:] {
		minValue = min(minValue, v)
		maxValue = max(maxValue, v)
	}
	return
}

// Equal returns whether both grids have the same shape and exactly the same values.
func (g *Grid) Equal(other *Grid) bool {
	return g.InDelta(other, 0)
}

// InDelta returns whether both grids have the same shape and each pair of values is within delta.
func (g *Grid) InDelta(other *Grid, delta float64) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.shape != other.shape {
		return false
	}
	for ii, v := range g.data {
		if math.Abs(v-other.data[ii]) > delta {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the grid as nested arrays: `[[1, 2], [3, 4]]`.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Values())
}

// UnmarshalJSON decodes a grid encoded as nested arrays of numbers.
// It requires well-formed data: use a Parser for free-form input.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return errors.Wrapf(ErrInvalidMatrixFormat, "grid.UnmarshalJSON: %v", err)
	}
	decoded, err := FromRows(rows)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}

// String implements fmt.Stringer, see Summary.
func (g *Grid) String() string { return g.Summary(4) }

// Summary returns a one-line (for 1 row) or multi-line description of the grid contents,
// with the values formatted with the given precision. Large grids are elided with "...".
func (g *Grid) Summary(precision int) string {
	var buf bytes.Buffer
	w := func(format string, args ...any) { _, _ = fmt.Fprintf(&buf, format, args...) }
	w("[%d][%d]float64", g.shape.Rows, g.shape.Cols)
	if g.shape.Rows == 0 {
		w("{}")
		return buf.String()
	}

	printRow := func(row int) {
		w("{")
		cols := g.shape.Cols
		for col := 0; col < cols; col++ {
			if cols > 6 && col == 3 {
				w(", ...")
				col = cols - 3
			}
			if col > 0 {
				w(", ")
			}
			w("%.*g", precision, g.data[row*cols+col])
		}
		w("}")
	}

	w("{")
	if g.shape.Rows > 1 {
		w("\n ")
	}
	for row := 0; row < g.shape.Rows; row++ {
		if g.shape.Rows > 6 && row == 3 {
			w(",\n ...")
			row = g.shape.Rows - 3
		}
		if row > 0 {
			w(",\n ")
		}
		printRow(row)
	}
	w("}")
	return buf.String()
}
