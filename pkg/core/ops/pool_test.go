// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops_test

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/gridops/pkg/core/grid"
	. "github.com/gomlx/gridops/pkg/core/ops"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxPool(t *testing.T) {
	output, err := MaxPool(grid.Full(2, 2, -6)).Window(2).Stride(2).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-6}}, output.Values())

	// Stride defaults to the window size.
	output, err = MaxPool(iotaGrid(5, 5)).Window(2).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{7, 9}, {17, 19}}, output.Values())

	output, err = MaxPool(iotaGrid(4, 4)).Window(3).Stride(1).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{11, 12}, {15, 16}}, output.Values())

	output, err = MaxPool(grid.MustFromRows([][]float64{{-1, -5}, {-3, -2}})).Window(2).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1}}, output.Values())
}

func TestAvgPool(t *testing.T) {
	output, err := AvgPool(iotaGrid(4, 4)).Window(2).Stride(2).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3.5, 5.5}, {11.5, 13.5}}, output.Values())

	output, err = Pool(iotaGrid(3, 3), 3, 1, PoolModeAvg)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5}}, output.Values())
}

func TestMinPool(t *testing.T) {
	output, err := MinPool(iotaGrid(4, 4)).Window(2).Stride(2).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 3}, {9, 11}}, output.Values())

	output, err = MinPool(iotaGrid(3, 4)).Window(2).Stride(1).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {5, 6, 7}}, output.Values())
}

func TestPoolDisabled(t *testing.T) {
	input := iotaGrid(3, 3)
	output, err := Pool(input, 0, 2, PoolModeMax)
	require.NoError(t, err)
	assert.Same(t, input, output)

	shape, err := PoolOutputShape(input.Shape(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, input.Shape(), shape)
}

func TestPoolErrors(t *testing.T) {
	input := iotaGrid(3, 4)
	_, err := Pool(input, 4, 1, PoolModeMax)
	assert.True(t, errors.Is(err, grid.ErrPoolWindow), "got %v", err)
	_, err = Pool(iotaGrid(4, 3), 4, 1, PoolModeMin)
	assert.True(t, errors.Is(err, grid.ErrPoolWindow), "got %v", err)
	_, err = Pool(input, -1, 1, PoolModeMax)
	assert.True(t, errors.Is(err, grid.ErrInvalidParameter), "got %v", err)
	_, err = Pool(input, 2, 0, PoolModeMax)
	assert.True(t, errors.Is(err, grid.ErrInvalidParameter), "got %v", err)
	_, err = Pool(input, 2, 2, PoolMode(7))
	assert.True(t, errors.Is(err, grid.ErrInvalidPoolMode), "got %v", err)
	_, err = MaxPool(nil).Window(2).Done()
	assert.True(t, errors.Is(err, grid.ErrInvalidParameter), "got %v", err)
}

func TestAvgPoolOverflow(t *testing.T) {
	input := grid.Full(2, 2, 1e308)
	_, err := AvgPool(input).Window(2).Done()
	assert.True(t, errors.Is(err, grid.ErrInvalidParameter), "got %v", err)
	assert.ErrorContains(t, err, "value overflow")

	// Max and min of finite values never overflow.
	output, err := MaxPool(input).Window(2).Done()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1e308}}, output.Values())
}

func TestPoolParallel(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	input := randomGrid(rng, 90, 80)
	for _, mode := range PoolModeValues() {
		for _, window := range []int{1, 2, 3} {
			sequential, err := PoolWith(input, mode).Window(window).Stride(1).Parallelism(0).Done()
			require.NoError(t, err)
			parallel, err := PoolWith(input, mode).Window(window).Stride(1).Parallelism(3).Done()
			require.NoError(t, err)
			assert.Truef(t, sequential.Equal(parallel), "mode=%s, window=%d", mode, window)
		}
	}
}

func TestPoolMode(t *testing.T) {
	assert.Equal(t, []string{"max", "avg", "min"}, PoolModeStrings())
	assert.Equal(t, "avg", PoolModeAvg.String())
	assert.False(t, PoolMode(3).IsAPoolMode())

	for name, want := range map[string]PoolMode{"max": PoolModeMax, "avg": PoolModeAvg, "min": PoolModeMin} {
		mode, err := ParsePoolMode(name)
		require.NoError(t, err)
		assert.Equal(t, want, mode)
	}
	for _, name := range []string{"sum", "", "mean", "maximum", "MAX", "Max", "Avg"} {
		_, err := ParsePoolMode(name)
		assert.Truef(t, errors.Is(err, grid.ErrInvalidPoolMode), "ParsePoolMode(%q) returned %v", name, err)
	}

	data, err := json.Marshal(PoolModeMin)
	require.NoError(t, err)
	assert.Equal(t, `"min"`, string(data))
	var mode PoolMode
	require.NoError(t, json.Unmarshal([]byte(`"avg"`), &mode))
	assert.Equal(t, PoolModeAvg, mode)
	assert.Error(t, json.Unmarshal([]byte(`"sum"`), &mode))
}
