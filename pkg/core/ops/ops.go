// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ops implements the transformations of a grid.Grid: zero-padding, convolution and pooling.
//
// Convolution here follows the machine learning convention: it is a cross-correlation, the kernel
// is slid over the input as is, it is never flipped.
//
// Both Conv and the {Max|Avg|Min}Pool functions return builders, to be configured and then
// executed with Done:
//
//	convolved, err := ops.Conv(input, kernel).Stride(1).Padding(1).Done()
//	pooled, err := ops.MaxPool(convolved).Window(2).Stride(2).Done()
//
// Convolve and Pool are shortcuts taking all the parameters at once.
//
// All operations are pure: inputs are never modified and a new grid.Grid is returned. Errors
// wrap the kinds defined in package grid (grid.ErrKernelSize, grid.ErrPoolWindow, etc.).
package ops

import (
	"math"

	"github.com/gomlx/gridops/internal/workerspool"
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/pkg/errors"
)

// minParallelCells is the output size from which rows are computed in parallel, unless
// the parallelism is configured explicitly in the builder.
const minParallelCells = 64 * 64

// defaultPool is shared by all operations that don't configure their own parallelism.
// It only bounds the number of goroutines, it holds no state about the operations.
var defaultPool = workerspool.New()

// execConfig selects how the rows of an output are computed.
type execConfig struct {
	pool *workerspool.Pool // If nil, defaultPool is used for large outputs.
}

// setParallelism configures a dedicated pool: 0 disables parallelism, -1 makes it unlimited.
func (e *execConfig) setParallelism(maxParallelism int) {
	e.pool = workerspool.NewWithParallelism(maxParallelism)
}

// forEachRow calls rowFn for each row of an output of the given shape, possibly in parallel.
// Each call must only write to its own row.
func (e *execConfig) forEachRow(shape grid.Shape, rowFn func(row int)) {
	pool := e.pool
	if pool == nil {
		if shape.Size() < minParallelCells {
			for row := range shape.Rows {
				rowFn(row)
			}
			return
		}
		pool = defaultPool
	}
	pool.ForEach(shape.Rows, rowFn)
}

// checkFinite returns grid.ErrInvalidParameter if some value computed by an operation overflowed
// the float64 range (or is otherwise not finite).
func checkFinite(shape grid.Shape, values []float64) error {
	for ii, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return errors.Wrapf(grid.ErrInvalidParameter, "value overflow: output cell (%d, %d) is %g",
				ii/shape.Cols, ii%shape.Cols, v)
		}
	}
	return nil
}
