// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package pipeline chains the parsing of a raw matrix with an optional convolution and an
// optional pooling, and returns the trace of every executed stage.
//
// Example:
//
//	cfg := pipeline.DefaultConfig()
//	cfg.Matrix = [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
//	cfg.Kernel = [][]float64{{1, 0}, {0, -1}}
//	cfg.PoolSize = 2
//	result, err := pipeline.Run(cfg)
//
// Run is safe for concurrent use: it keeps no state across calls.
package pipeline

import (
	"time"

	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/core/ops"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Run validates cfg, parses its matrix and executes the configured stages in order:
// the convolution if a non-empty kernel is given, then the pooling if cfg.PoolSize > 0.
//
// It aborts on the first error, in which case no partial Result is returned. Errors wrap
// one of the kinds defined in package grid, see grid.KindOf.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limits := cfg.Limits

	start := time.Now()
	input, err := grid.NewParser().MaxDims(limits.MaxRows, limits.MaxCols).Parse(cfg.Matrix)
	if err != nil {
		return nil, errors.WithMessage(err, "matrix")
	}
	klog.V(2).Infof("pipeline: parsed matrix %s in %s", input.Shape(), time.Since(start))

	result := &Result{
		InputGrid:  input,
		InputShape: input.Shape(),
		Operations: []OperationRecord{},
	}
	current := input

	hasKernel, err := cfg.HasKernel()
	if err != nil {
		return nil, err
	}
	if hasKernel {
		start = time.Now()
		kernel, err := grid.NewParser().MaxDims(limits.MaxKernel, limits.MaxKernel).Parse(cfg.Kernel)
		if err != nil {
			return nil, errors.WithMessage(err, "kernel")
		}
		conv := ops.Conv(current, kernel).Stride(cfg.Stride).Padding(cfg.Padding)
		if limits.MaxPadding > 0 {
			conv.MaxPaddedDims(paddedLimit(limits.MaxRows, limits.MaxPadding), paddedLimit(limits.MaxCols, limits.MaxPadding))
		}
		output, err := conv.Done()
		if err != nil {
			return nil, err
		}
		klog.V(2).Infof("pipeline: convolution %s * %s (stride=%d, padding=%d) -> %s in %s",
			current.Shape(), kernel.Shape(), cfg.Stride, cfg.Padding, output.Shape(), time.Since(start))
		result.Operations = append(result.Operations, &ConvolutionRecord{
			Kernel:  kernel,
			Stride:  cfg.Stride,
			Padding: cfg.Padding,
			Output:  output,
		})
		current = output
	}

	if cfg.PoolSize > 0 {
		start = time.Now()
		mode, err := ops.ParsePoolMode(cfg.PoolMode)
		if err != nil {
			return nil, err
		}
		output, err := ops.PoolWith(current, mode).Window(cfg.PoolSize).Stride(cfg.PoolStride).Done()
		if err != nil {
			return nil, err
		}
		klog.V(2).Infof("pipeline: %s pooling %s (window=%d, stride=%d) -> %s in %s",
			mode, current.Shape(), cfg.PoolSize, cfg.PoolStride, output.Shape(), time.Since(start))
		result.Operations = append(result.Operations, &PoolingRecord{
			Mode:         mode,
			WindowSize:   cfg.PoolSize,
			WindowStride: cfg.PoolStride,
			Output:       output,
		})
	}
	return result, nil
}

// paddedLimit returns the limit of a padded dimension, 0 (unlimited) if the dimension itself is unlimited.
func paddedLimit(maxDim, maxPadding int) int {
	if maxDim <= 0 {
		return 0
	}
	return maxDim + 2*maxPadding
}
