// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"math"

	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/pkg/errors"
)

// PaddedShape returns the shape of input after adding padding rows/columns on every side.
//
// It returns grid.ErrInvalidParameter for a negative padding, or if the padded grid would be too
// large to be addressed in memory.
func PaddedShape(input grid.Shape, padding int) (grid.Shape, error) {
	if padding < 0 {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "padding must be >= 0, got %d", padding)
	}
	if padding == 0 {
		return input, nil
	}
	if padding > (math.MaxInt-max(input.Rows, input.Cols))/2 {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "padding %d of input %s overflows the grid dimensions", padding, input)
	}
	rows, cols := input.Rows+2*padding, input.Cols+2*padding
	if rows > maxCells/cols {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter,
			"input %s padded by %d has %dx%d cells, too many to allocate", input, padding, rows, cols)
	}
	return grid.MakeShape(rows, cols), nil
}

// maxCells is the largest number of float64 cells whose size in bytes fits an int.
const maxCells = math.MaxInt / 8

// ConvOutputShape returns the output shape of the convolution of an input with a kernel,
// with the given stride and padding:
//
//	outRows = (inputRows + 2*padding - kernelRows) / stride + 1
//	outCols = (inputCols + 2*padding - kernelCols) / stride + 1
//
// It returns grid.ErrKernelSize if the kernel doesn't fit the padded input in some dimension,
// and grid.ErrInvalidParameter for an empty kernel, stride < 1 or padding < 0.
func ConvOutputShape(input, kernel grid.Shape, stride, padding int) (grid.Shape, error) {
	if stride < 1 {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "convolution stride must be >= 1, got %d", stride)
	}
	padded, err := PaddedShape(input, padding)
	if err != nil {
		return grid.Shape{}, err
	}
	if kernel.IsZeroSize() {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "convolution kernel is empty %s", kernel)
	}
	if kernel.Rows > padded.Rows || kernel.Cols > padded.Cols {
		return grid.Shape{}, errors.Wrapf(grid.ErrKernelSize,
			"kernel %s doesn't fit the input %s padded by %d to %s", kernel, input, padding, padded)
	}
	return grid.MakeShape(
		(padded.Rows-kernel.Rows)/stride+1,
		(padded.Cols-kernel.Cols)/stride+1), nil
}

// PoolOutputShape returns the output shape of pooling an input with a square window of
// windowSize on each side, moved by windowStride:
//
//	outRows = (inputRows - windowSize) / windowStride + 1
//	outCols = (inputCols - windowSize) / windowStride + 1
//
// A windowSize of 0 disables pooling, and the input shape is returned.
//
// It returns grid.ErrPoolWindow if the window doesn't fit the input in some dimension,
// and grid.ErrInvalidParameter for windowSize < 0 or windowStride < 1.
func PoolOutputShape(input grid.Shape, windowSize, windowStride int) (grid.Shape, error) {
	if windowSize < 0 {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "pooling window size must be >= 0, got %d", windowSize)
	}
	if windowStride < 1 {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "pooling stride must be >= 1, got %d", windowStride)
	}
	if windowSize == 0 {
		return input, nil
	}
	if windowSize > input.Rows || windowSize > input.Cols {
		return grid.Shape{}, errors.Wrapf(grid.ErrPoolWindow,
			"pooling window %dx%d doesn't fit the input %s", windowSize, windowSize, input)
	}
	return grid.MakeShape(
		(input.Rows-windowSize)/windowStride+1,
		(input.Cols-windowSize)/windowStride+1), nil
}
