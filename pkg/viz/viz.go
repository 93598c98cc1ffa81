// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package viz renders the stages of a pipeline.Result: as terminal tables (lipgloss), as Plotly
// heatmap figures, as labelled PNG heatmaps (gonum/plot) and as upscaled pixel images.
//
// All renderers work on the list returned by Stages: the input grid followed by the output of
// each executed operation.
package viz

import (
	"fmt"
	"regexp"

	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
)

// Stage is one grid of a pipeline run, with a human-readable description.
type Stage struct {
	// Index of the stage: 0 for the input, 1 for the first operation, etc.
	Index int

	// Name is "input" or the type of the operation ("convolution", "pooling").
	Name string

	// Params describes the parameters of the operation, empty for the input.
	Params string

	Grid *grid.Grid
}

// Title returns a one-line title for the stage, e.g. "#1 convolution (2x2): kernel=(3x3), stride=1, padding=0".
func (s Stage) Title() string {
	title := fmt.Sprintf("#%d %s %s", s.Index, s.Name, s.Grid.Shape())
	if s.Params != "" {
		title += ": " + s.Params
	}
	return title
}

var reInvalidFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// FileName returns a base file name (without extension) for the stage, e.g. "01_convolution".
func (s Stage) FileName() string {
	return fmt.Sprintf("%02d_%s", s.Index, reInvalidFileChars.ReplaceAllString(s.Name, "_"))
}

// Stages returns the input grid of the result followed by the output of each operation, in order.
func Stages(result *pipeline.Result) []Stage {
	stages := make([]Stage, 0, len(result.Operations)+1)
	stages = append(stages, Stage{Index: 0, Name: "input", Grid: result.InputGrid})
	for ii, op := range result.Operations {
		stages = append(stages, Stage{
			Index:  ii + 1,
			Name:   op.Type(),
			Params: describeOperation(op),
			Grid:   op.Result(),
		})
	}
	return stages
}

func describeOperation(op pipeline.OperationRecord) string {
	switch typed := op.(type) {
	case *pipeline.ConvolutionRecord:
		return fmt.Sprintf("kernel=%s, stride=%d, padding=%d", typed.Kernel.Shape(), typed.Stride, typed.Padding)
	case *pipeline.PoolingRecord:
		return fmt.Sprintf("mode=%s, pool_size=%d, pool_stride=%d", typed.Mode, typed.WindowSize, typed.WindowStride)
	}
	return ""
}
