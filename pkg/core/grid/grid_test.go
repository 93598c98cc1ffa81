// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package grid

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := MakeShape(2, 3)
	assert.Equal(t, 6, s.Size())
	assert.Equal(t, "(2x3)", s.String())
	assert.Equal(t, uintptr(48), s.Memory())
	assert.False(t, s.IsZeroSize())

	// 0 rows always means 0 columns.
	assert.Equal(t, Shape{}, MakeShape(0, 5))
	assert.True(t, MakeShape(3, 0).IsZeroSize())
	assert.Panics(t, func() { MakeShape(-1, 2) })

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, "[2,3]", string(data))
	var decoded Shape
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)
	assert.Error(t, json.Unmarshal([]byte("[-1,2]"), &decoded))
}

func TestGrid(t *testing.T) {
	g := MustFromRows([][]int{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, MakeShape(2, 3), g.Shape())
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 6.0, g.At(1, 2))
	assert.Equal(t, []float64{4, 5, 6}, g.Row(1))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, g.Flat())
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, g.Values())
	assert.Panics(t, func() { g.At(2, 0) })
	assert.Panics(t, func() { g.At(0, -1) })

	minValue, maxValue := g.Range()
	assert.Equal(t, 1.0, minValue)
	assert.Equal(t, 6.0, maxValue)

	// Returned slices are copies.
	values := g.Values()
	values[0][0] = 100
	g.Row(0)[1] = 100
	g.Flat()[2] = 100
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, g.Values())

	clone := g.Clone()
	assert.True(t, clone.Equal(g))
	assert.False(t, g.Equal(Full(2, 3, 1)))
	assert.False(t, g.Equal(New(3, 2)))
	assert.True(t, g.InDelta(MustFromRows([][]float64{{1.05, 2, 3}, {4, 5, 6}}), 0.1))

	_, err := FromRows([][]float32{{1, 2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMatrixFormat))
	assert.Panics(t, func() { MustFromRows([][]float32{{1, 2}, {3}}) })

	empty := New(0, 0)
	assert.True(t, empty.Shape().IsZeroSize())
	assert.Equal(t, [][]float64{}, empty.Values())
	assert.Equal(t, "[0][0]float64{}", empty.String())
}

func TestFromFlat(t *testing.T) {
	g, err := FromFlat(MakeShape(2, 2), []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, g.Values())

	_, err = FromFlat(MakeShape(2, 2), []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalidMatrixFormat))
	_, err = FromFlat(Shape{Rows: 0, Cols: 2}, nil)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestGridJSON(t *testing.T) {
	g := MustFromRows([][]float64{{1, -2.5}, {0, 4}})
	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, "[[1,-2.5],[0,4]]", string(data))

	var decoded Grid
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(g))

	err = json.Unmarshal([]byte(`[[1,2],[3]]`), &decoded)
	assert.True(t, errors.Is(err, ErrInvalidMatrixFormat))
	err = json.Unmarshal([]byte(`{"a": 1}`), &decoded)
	assert.True(t, errors.Is(err, ErrInvalidMatrixFormat))

	data, err = json.Marshal(New(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "[1][2]float64{{0, 2}}", MustFromRows([][]float64{{0, 2}}).Summary(4))
	assert.Equal(t, "[2][2]float64{\n {-6, -6},\n {-6, -6}}", Full(2, 2, -6).String())
	assert.Equal(t, "[1][8]float64{{0, 1, 2, ..., 5, 6, 7}}",
		MustFromRows([][]int{{0, 1, 2, 3, 4, 5, 6, 7}}).Summary(4))
	assert.Equal(t, "[1][1]float64{{3.142}}", MustFromRows([][]float64{{3.14159}}).Summary(4))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "", KindOf(nil))
	assert.Equal(t, "", KindOf(errors.New("something else")))
	assert.Equal(t, "KernelSizeError", KindOf(errors.Wrapf(ErrKernelSize, "kernel %s", MakeShape(3, 3))))
	assert.Equal(t, "PoolWindowError", KindOf(errors.WithMessage(ErrPoolWindow, "pool")))
	assert.Equal(t, "InvalidPoolMode", KindOf(ErrInvalidPoolMode))
	assert.Equal(t, "InvalidParameter", KindOf(errors.Wrap(ErrInvalidParameter, "stride")))
	assert.Equal(t, "InvalidMatrixFormat", KindOf(errors.Wrap(ErrInvalidMatrixFormat, "rows")))
	assert.Equal(t, "InvalidRequest", KindOf(errors.Wrap(ErrInvalidRequest, "body")))
}
