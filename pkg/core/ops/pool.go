// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/pkg/errors"
)

// PoolBuilder is a helper to build a pooling.
// Create it with {Max|Avg|Min}Pool or PoolWith, set the desired parameters and
// when set, call Done.
type PoolBuilder struct {
	x                  *grid.Grid
	mode               PoolMode
	windowSize, stride int
	strideSet          bool
	exec               execConfig
}

// MaxPool prepares a max pooling on x: each output cell is the maximum value of the
// corresponding window of x.
//
// The window size must be set with PoolBuilder.Window. The stride defaults to the window
// size (non-overlapping windows).
func MaxPool(x *grid.Grid) *PoolBuilder {
	return PoolWith(x, PoolModeMax)
}

// AvgPool prepares an average pooling on x: each output cell is the arithmetic mean of
// the corresponding window of x. See MaxPool for the defaults.
func AvgPool(x *grid.Grid) *PoolBuilder {
	return PoolWith(x, PoolModeAvg)
}

// MinPool prepares a min pooling on x: each output cell is the minimum value of the
// corresponding window of x. See MaxPool for the defaults.
func MinPool(x *grid.Grid) *PoolBuilder {
	return PoolWith(x, PoolModeMin)
}

// PoolWith prepares a pooling on x with the given reduction mode. See MaxPool for the defaults.
func PoolWith(x *grid.Grid, mode PoolMode) *PoolBuilder {
	return &PoolBuilder{x: x, mode: mode}
}

// Pool is a shortcut to PoolWith(x, mode).Window(windowSize).Stride(windowStride).Done().
//
// A windowSize of 0 disables pooling: x is returned as is.
func Pool(x *grid.Grid, windowSize, windowStride int, mode PoolMode) (*grid.Grid, error) {
	return PoolWith(x, mode).Window(windowSize).Stride(windowStride).Done()
}

// Window sets the size of the square window reduced into each output cell.
// A size of 0 disables pooling, Done then returns the input unchanged.
//
// It returns the modified PoolBuilder, so calls can be cascaded.
func (pool *PoolBuilder) Window(windowSize int) *PoolBuilder {
	pool.windowSize = windowSize
	return pool
}

// Stride sets the step, in cells, between successive windows, in both dimensions.
// It must be >= 1. If not set, it defaults to the window size.
//
// It returns the modified PoolBuilder, so calls can be cascaded.
func (pool *PoolBuilder) Stride(stride int) *PoolBuilder {
	pool.stride = stride
	pool.strideSet = true
	return pool
}

// Parallelism sets the maximum number of goroutines used to compute output rows: 0 computes
// everything in the calling goroutine, -1 is unlimited.
// By default, only large outputs are computed in parallel, with runtime.NumCPU() goroutines.
//
// It returns the modified PoolBuilder, so calls can be cascaded.
func (pool *PoolBuilder) Parallelism(maxParallelism int) *PoolBuilder {
	pool.exec.setParallelism(maxParallelism)
	return pool
}

func (pool *PoolBuilder) effectiveStride() int {
	if pool.strideSet {
		return pool.stride
	}
	return max(pool.windowSize, 1)
}

// OutputShape returns the shape the pooling will have, or an error if it is not valid.
func (pool *PoolBuilder) OutputShape() (grid.Shape, error) {
	if pool.x == nil {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "ops.Pool: input grid is nil")
	}
	outShape, err := PoolOutputShape(pool.x.Shape(), pool.windowSize, pool.effectiveStride())
	if err != nil {
		return grid.Shape{}, err
	}
	if pool.windowSize > 0 && !pool.mode.IsAPoolMode() {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidPoolMode,
			"pooling mode %s is not one of %v", pool.mode, PoolModeStrings())
	}
	return outShape, nil
}

// Done executes the pooling and returns its result.
//
// Averages whose sum overflows the float64 range are rejected with grid.ErrInvalidParameter.
func (pool *PoolBuilder) Done() (*grid.Grid, error) {
	outShape, err := pool.OutputShape()
	if err != nil {
		return nil, errors.WithMessagef(err, "%s pooling", pool.mode)
	}
	if pool.windowSize == 0 {
		return pool.x, nil
	}

	src, cols := pool.x.Flat(), pool.x.Cols()
	window, stride := pool.windowSize, pool.effectiveStride()
	reduce := reducers[pool.mode]
	out := make([]float64, outShape.Size())
	pool.exec.forEachRow(outShape, func(outRow int) {
		for outCol := range outShape.Cols {
			start := outRow*stride*cols + outCol*stride
			out[outRow*outShape.Cols+outCol] = reduce(src, start, cols, window)
		}
	})
	if err := checkFinite(outShape, out); err != nil {
		return nil, errors.WithMessagef(err, "%s pooling", pool.mode)
	}
	return grid.FromFlat(outShape, out)
}

// reducer reduces the window x window square of the row-major src (with cols columns)
// whose top-left corner is at the flat index start.
type reducer func(src []float64, start, cols, window int) float64

var reducers = map[PoolMode]reducer{
	PoolModeMax: func(src []float64, start, cols, window int) float64 {
		result := src[start]
		for row := range window {
			for _, v := range src[start+row*cols : start+row*cols+window] {
				result = max(result, v)
			}
		}
		return result
	},
	PoolModeAvg: func(src []float64, start, cols, window int) float64 {
		var sum float64
		for row := range window {
			for _, v := range src[start+row*cols : start+row*cols+window] {
				sum += v
			}
		}
		return sum / float64(window*window)
	},
	PoolModeMin: func(src []float64, start, cols, window int) float64 {
		result := src[start]
		for row := range window {
			for _, v := range src[start+row*cols : start+row*cols+window] {
				result = min(result, v)
			}
		}
		return result
	},
}
