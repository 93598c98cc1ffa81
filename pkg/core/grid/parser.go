// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package grid

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parser converts loosely typed tabular input into a Grid.
//
// The input is traversed as a sequence of rows, each a sequence of cells: `[]any` (as
// decoded from JSON), `[][]string` (e.g. CSV records), `[][]float32`, arrays, etc.
// The number of rows is the outer length, and the number of columns is the length of
// the first row.
//
// Cells that can't be converted to a finite number, and cells missing from rows shorter
// than the first one, are replaced by the default value (0 unless configured otherwise).
// Extra cells in rows longer than the first one are ignored.
//
// Only a structure that can't be traversed as rows is an error (ErrInvalidMatrixFormat).
//
// Create it with NewParser, configure it and then call Parse:
//
//	g, err := grid.NewParser().MaxDims(256, 256).Parse(raw)
type Parser struct {
	defaultValue     float64
	maxRows, maxCols int
}

// NewParser returns a Parser with default value 0 and no dimension limits.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses raw with a default Parser. See Parser for details.
func Parse(raw any) (*Grid, error) {
	return NewParser().Parse(raw)
}

// Default sets the value used for cells that can't be converted to a number. Default is 0.
//
// It returns the modified Parser, so calls can be cascaded.
func (p *Parser) Default(value float64) *Parser {
	p.defaultValue = value
	return p
}

// MaxDims sets the maximum number of rows and columns accepted. A value <= 0 means unlimited.
// Larger inputs are rejected with ErrInvalidParameter before any allocation.
//
// It returns the modified Parser, so calls can be cascaded.
func (p *Parser) MaxDims(maxRows, maxCols int) *Parser {
	p.maxRows, p.maxCols = maxRows, maxCols
	return p
}

// Parse converts raw into a Grid. See Parser for details.
func (p *Parser) Parse(raw any) (*Grid, error) {
	switch typed := raw.(type) {
	case *Grid:
		if typed == nil {
			return nil, errors.Wrapf(ErrInvalidMatrixFormat, "matrix is nil")
		}
		if err := p.checkDims(typed.Rows(), typed.Cols()); err != nil {
			return nil, err
		}
		return typed, nil
	case [][]float64:
		return p.parseFloat64(typed)
	}

	rows, numCols, err := traverse(raw)
	if err != nil {
		return nil, err
	}
	if err := p.checkDims(len(rows), numCols); err != nil {
		return nil, err
	}
	g := New(len(rows), numCols)
	for rowIdx, row := range rows {
		numCells := row.Len()
		for colIdx := range numCols {
			value := p.defaultValue
			if colIdx < numCells {
				if cell, ok := coerceCell(row.Index(colIdx)); ok {
					value = cell
				}
			}
			g.data[rowIdx*numCols+colIdx] = value
		}
	}
	return g, nil
}

// parseFloat64 is the fast path for [][]float64 input.
func (p *Parser) parseFloat64(rows [][]float64) (*Grid, error) {
	numCols := 0
	if len(rows) > 0 {
		numCols = len(rows[0])
	}
	if err := p.checkDims(len(rows), numCols); err != nil {
		return nil, err
	}
	g := New(len(rows), numCols)
	for rowIdx, row := range rows {
		for colIdx := range numCols {
			value := p.defaultValue
			if colIdx < len(row) && isFinite(row[colIdx]) {
				value = row[colIdx]
			}
			g.data[rowIdx*numCols+colIdx] = value
		}
	}
	return g, nil
}

func (p *Parser) checkDims(numRows, numCols int) error {
	if p.maxRows > 0 && numRows > p.maxRows {
		return errors.Wrapf(ErrInvalidParameter, "matrix has %d rows, at most %d are accepted", numRows, p.maxRows)
	}
	if p.maxCols > 0 && numCols > p.maxCols {
		return errors.Wrapf(ErrInvalidParameter, "matrix has %d columns, at most %d are accepted", numCols, p.maxCols)
	}
	return nil
}

// Dims returns the dimensions Parse would produce for raw, without converting any cell.
//
// A nil raw has dimensions (0, 0). It returns ErrInvalidMatrixFormat if raw can't be
// traversed as rows.
func Dims(raw any) (rows, cols int, err error) {
	if raw == nil {
		return 0, 0, nil
	}
	if g, ok := raw.(*Grid); ok && g != nil {
		return g.Rows(), g.Cols(), nil
	}
	rowValues, numCols, err := traverse(raw)
	if err != nil {
		return 0, 0, err
	}
	return len(rowValues), numCols, nil
}

// traverse checks that raw is a sequence of sequences, and returns the rows and the
// number of columns (the length of the first row).
func traverse(raw any) (rows []reflect.Value, numCols int, err error) {
	outer, ok := asSequence(reflect.ValueOf(raw))
	if !ok {
		return nil, 0, errors.Wrapf(ErrInvalidMatrixFormat, "matrix must be a sequence of rows, got %T", raw)
	}
	rows = make([]reflect.Value, outer.Len())
	for rowIdx := range rows {
		row, ok := asSequence(outer.Index(rowIdx))
		if !ok {
			return nil, 0, errors.Wrapf(ErrInvalidMatrixFormat,
				"row %d must be a sequence of cells, got %s", rowIdx, describe(outer.Index(rowIdx)))
		}
		rows[rowIdx] = row
	}
	if len(rows) > 0 {
		numCols = rows[0].Len()
	}
	return rows, numCols, nil
}

// asSequence dereferences interfaces and pointers, and returns the value if it is a
// slice or an array. Strings are not sequences.
func asSequence(v reflect.Value) (reflect.Value, bool) {
	v = indirect(v)
	if !v.IsValid() {
		return v, false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v, true
	default:
		return v, false
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func describe(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return "null"
	}
	return v.Type().String()
}

// coerceCell converts a cell to a finite float64.
// json.Number is a string kind, so it is handled with the other strings.
func coerceCell(v reflect.Value) (float64, bool) {
	v = indirect(v)
	if !v.IsValid() {
		return 0, false
	}
	var value float64
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value = float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		value = float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		value = v.Float()
	case reflect.Bool:
		if v.Bool() {
			value = 1
		}
	case reflect.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	return value, isFinite(value)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
