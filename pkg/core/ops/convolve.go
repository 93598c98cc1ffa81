// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/pkg/errors"
)

// ConvBuilder is a helper to build a convolution.
// Create it with Conv, set the desired parameters and when set, call Done.
type ConvBuilder struct {
	x, kernel        *grid.Grid
	stride, padding  int
	maxRows, maxCols int
	exec             execConfig
}

// Conv prepares the convolution of x with kernel: each output cell is the sum of the
// element-wise product of the kernel with the window of x (after padding) at that position.
//
// The kernel is not flipped (this is a cross-correlation, as usual in machine learning).
//
// It defaults to stride 1 and no padding. Configure it with the ConvBuilder methods, and
// call ConvBuilder.Done to get the result.
func Conv(x, kernel *grid.Grid) *ConvBuilder {
	return &ConvBuilder{x: x, kernel: kernel, stride: 1}
}

// Convolve is a shortcut to Conv(x, kernel).Stride(stride).Padding(padding).Done().
func Convolve(x, kernel *grid.Grid, stride, padding int) (*grid.Grid, error) {
	return Conv(x, kernel).Stride(stride).Padding(padding).Done()
}

// Stride sets the step, in cells, between successive window positions, in both dimensions.
// It must be >= 1.
//
// It returns the modified ConvBuilder, so calls can be cascaded.
func (conv *ConvBuilder) Stride(stride int) *ConvBuilder {
	conv.stride = stride
	return conv
}

// Padding sets the number of rows/columns of zeros added to every side of x before
// the convolution. It must be >= 0.
//
// It returns the modified ConvBuilder, so calls can be cascaded.
func (conv *ConvBuilder) Padding(padding int) *ConvBuilder {
	conv.padding = padding
	return conv
}

// NoPadding is the same as Padding(0), the default.
func (conv *ConvBuilder) NoPadding() *ConvBuilder {
	return conv.Padding(0)
}

// MaxPaddedDims limits the dimensions of the padded input. A value <= 0 means unlimited.
// Larger padded inputs are rejected with grid.ErrInvalidParameter before any allocation.
//
// It returns the modified ConvBuilder, so calls can be cascaded.
func (conv *ConvBuilder) MaxPaddedDims(maxRows, maxCols int) *ConvBuilder {
	conv.maxRows, conv.maxCols = maxRows, maxCols
	return conv
}

// Parallelism sets the maximum number of goroutines used to compute output rows: 0 computes
// everything in the calling goroutine, -1 is unlimited.
// By default, only large outputs are computed in parallel, with runtime.NumCPU() goroutines.
//
// It returns the modified ConvBuilder, so calls can be cascaded.
func (conv *ConvBuilder) Parallelism(maxParallelism int) *ConvBuilder {
	conv.exec.setParallelism(maxParallelism)
	return conv
}

// OutputShape returns the shape the convolution will have, or an error if it is not valid.
func (conv *ConvBuilder) OutputShape() (grid.Shape, error) {
	if conv.x == nil || conv.kernel == nil {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter, "ops.Conv: input and kernel must be non-nil")
	}
	padded, err := PaddedShape(conv.x.Shape(), conv.padding)
	if err != nil {
		return grid.Shape{}, err
	}
	if (conv.maxRows > 0 && padded.Rows > conv.maxRows) || (conv.maxCols > 0 && padded.Cols > conv.maxCols) {
		return grid.Shape{}, errors.Wrapf(grid.ErrInvalidParameter,
			"input %s padded by %d is %s, larger than the limit (%dx%d)",
			conv.x.Shape(), conv.padding, padded, conv.maxRows, conv.maxCols)
	}
	return ConvOutputShape(conv.x.Shape(), conv.kernel.Shape(), conv.stride, conv.padding)
}

// Done executes the convolution and returns its result.
//
// Sums that overflow the float64 range are rejected with grid.ErrInvalidParameter.
func (conv *ConvBuilder) Done() (*grid.Grid, error) {
	outShape, err := conv.OutputShape()
	if err != nil {
		return nil, errors.WithMessage(err, "convolution")
	}
	padded, err := Pad(conv.x, conv.padding)
	if err != nil {
		return nil, errors.WithMessage(err, "convolution")
	}
	src, paddedCols := padded.Flat(), padded.Cols()
	weights := conv.kernel.Flat()
	kernelRows, kernelCols := conv.kernel.Rows(), conv.kernel.Cols()
	stride := conv.stride

	out := make([]float64, outShape.Size())
	conv.exec.forEachRow(outShape, func(outRow int) {
		for outCol := range outShape.Cols {
			srcRow0, srcCol0 := outRow*stride, outCol*stride
			var sum float64
			for kRow := range kernelRows {
				srcStart := (srcRow0+kRow)*paddedCols + srcCol0
				kStart := kRow * kernelCols
				for kCol := range kernelCols {
					sum += src[srcStart+kCol] * weights[kStart+kCol]
				}
			}
			out[outRow*outShape.Cols+outCol] = sum
		}
	})
	if err := checkFinite(outShape, out); err != nil {
		return nil, errors.WithMessage(err, "convolution")
	}
	return grid.FromFlat(outShape, out)
}
