// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package grid

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeJSON decodes the raw JSON the same way the request decoder does.
func decodeJSON(t *testing.T, data string) any {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var raw any
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestParse(t *testing.T) {
	// Malformed cells are replaced by 0.
	g, err := Parse([]any{[]any{"x", 2}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 2}}, g.Values())

	// Decoded JSON, with numbers as json.Number and as strings.
	g, err = Parse(decodeJSON(t, `[[1, "2.5", " 3 "], [true, null, {"a": 1}], [[7], "nan", "1e500"]]`))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2.5, 3}, {1, 0, 0}, {0, 0, 0}}, g.Values())

	// Ragged input: short rows are padded with the default value, long rows are truncated.
	g, err = Parse([][]int{{1, 2, 3}, {4}, {5, 6, 7, 8}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 0, 0}, {5, 6, 7}}, g.Values())

	// Other typed inputs.
	g, err = Parse([][]string{{"1", "a"}, {"-3", "4"}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {-3, 4}}, g.Values())
	g, err = Parse([2][2]uint8{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, g.Values())
	g, err = Parse([][]float64{{1, math.Inf(1)}, {math.NaN()}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 0}}, g.Values())

	// Empty inputs.
	g, err = Parse([]any{})
	require.NoError(t, err)
	assert.Equal(t, MakeShape(0, 0), g.Shape())
	g, err = Parse([]any{[]any{}, []any{1}})
	require.NoError(t, err)
	assert.Equal(t, Shape{Rows: 2, Cols: 0}, g.Shape())
}

func TestParseIdempotent(t *testing.T) {
	rows := [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}}
	g, err := Parse(rows)
	require.NoError(t, err)
	assert.Equal(t, rows, g.Values())

	again, err := Parse(g.Values())
	require.NoError(t, err)
	assert.True(t, again.Equal(g))

	again, err = Parse(g)
	require.NoError(t, err)
	assert.True(t, again.Equal(g))

	var asJSON any = decodeJSON(t, `[[1,2,3,4],[5,6,7,8],[9,10,11,12],[13,14,15,16]]`)
	again, err = Parse(asJSON)
	require.NoError(t, err)
	assert.True(t, again.Equal(g))
}

func TestParseInvalidStructure(t *testing.T) {
	for _, raw := range []any{
		nil,
		5,
		"[[1, 2]]",
		map[string]any{"a": 1},
		[]any{[]any{1, 2}, 3},
		[]any{"12", "34"},
		[]any{nil},
		(*Grid)(nil),
	} {
		_, err := Parse(raw)
		require.Errorf(t, err, "Parse(%#v) should have failed", raw)
		assert.Truef(t, errors.Is(err, ErrInvalidMatrixFormat), "Parse(%#v) returned %v", raw, err)
	}
}

func TestParserOptions(t *testing.T) {
	g, err := NewParser().Default(-1).Parse([]any{[]any{"x", 2}, []any{3}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1, 2}, {3, -1}}, g.Values())

	g, err = NewParser().Default(7).Parse([][]float64{{1, 2}, {3}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 7}}, g.Values())

	parser := NewParser().MaxDims(2, 3)
	_, err = parser.Parse([][]int{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	_, err = parser.Parse([][]int{{1}, {2}, {3}})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = parser.Parse([][]float64{{1, 2, 3, 4}})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = parser.Parse(Full(1, 4, 0))
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestDims(t *testing.T) {
	rows, cols, err := Dims(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, []int{rows, cols})

	rows, cols, err = Dims([]any{[]any{1, 2, 3}, []any{}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, []int{rows, cols})

	rows, cols, err = Dims(New(4, 5))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, []int{rows, cols})

	_, _, err = Dims(3.0)
	assert.True(t, errors.Is(err, ErrInvalidMatrixFormat))
}

func TestReadCSV(t *testing.T) {
	g, err := ReadCSV(strings.NewReader("1,2,3\n4,x,6\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 0, 6}}, g.Values())

	g, err = NewParser().Default(9).ReadCSV(strings.NewReader("-1.5,\n2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1.5, 9}, {2, 3}}, g.Values())

	g, err = ReadCSV(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.True(t, g.Shape().IsZeroSize())

	_, err = ReadCSV(strings.NewReader("1,2,3\n4,5\n"))
	assert.True(t, errors.Is(err, ErrInvalidMatrixFormat))
}
