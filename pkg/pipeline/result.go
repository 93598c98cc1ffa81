// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"

	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/core/ops"
)

// Operation types, as reported in the "type" field of the JSON encoding of an OperationRecord.
const (
	TypeConvolution = "convolution"
	TypePooling     = "pooling"
)

// OperationRecord describes one executed stage: its parameters and result.
//
// It is implemented by *ConvolutionRecord and *PoolingRecord only.
type OperationRecord interface {
	// Type returns TypeConvolution or TypePooling.
	Type() string

	// Result returns the output grid of the stage.
	Result() *grid.Grid

	// ResultShape returns the shape of the output grid of the stage.
	ResultShape() grid.Shape

	isOperationRecord()
}

// ConvolutionRecord is the trace of the convolution stage.
type ConvolutionRecord struct {
	Kernel  *grid.Grid
	Stride  int
	Padding int
	Output  *grid.Grid
}

var _ OperationRecord = (*ConvolutionRecord)(nil)

func (r *ConvolutionRecord) Type() string            { return TypeConvolution }
func (r *ConvolutionRecord) Result() *grid.Grid      { return r.Output }
func (r *ConvolutionRecord) ResultShape() grid.Shape { return r.Output.Shape() }
func (r *ConvolutionRecord) isOperationRecord()      {}

// MarshalJSON implements json.Marshaler.
func (r *ConvolutionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string     `json:"type"`
		Kernel      *grid.Grid `json:"kernel"`
		Stride      int        `json:"stride"`
		Padding     int        `json:"padding"`
		Result      *grid.Grid `json:"result"`
		ResultShape grid.Shape `json:"result_shape"`
	}{r.Type(), r.Kernel, r.Stride, r.Padding, r.Output, r.ResultShape()})
}

// PoolingRecord is the trace of the pooling stage.
type PoolingRecord struct {
	Mode         ops.PoolMode
	WindowSize   int
	WindowStride int
	Output       *grid.Grid
}

var _ OperationRecord = (*PoolingRecord)(nil)

func (r *PoolingRecord) Type() string            { return TypePooling }
func (r *PoolingRecord) Result() *grid.Grid      { return r.Output }
func (r *PoolingRecord) ResultShape() grid.Shape { return r.Output.Shape() }
func (r *PoolingRecord) isOperationRecord()      {}

// MarshalJSON implements json.Marshaler.
func (r *PoolingRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string       `json:"type"`
		PoolSize    int          `json:"pool_size"`
		PoolStride  int          `json:"pool_stride"`
		Mode        ops.PoolMode `json:"mode"`
		Result      *grid.Grid   `json:"result"`
		ResultShape grid.Shape   `json:"result_shape"`
	}{r.Type(), r.WindowSize, r.WindowStride, r.Mode, r.Output, r.ResultShape()})
}

// Result of a pipeline run: the parsed input and the records of the executed stages, in order.
type Result struct {
	InputGrid  *grid.Grid
	InputShape grid.Shape
	Operations []OperationRecord
}

// Final returns the output of the last executed stage, or the input grid if no stage was executed.
func (r *Result) Final() *grid.Grid {
	if len(r.Operations) == 0 {
		return r.InputGrid
	}
	return r.Operations[len(r.Operations)-1].Result()
}

// MarshalJSON implements json.Marshaler, with the layout of the service response:
//
//	{"input_matrix": [[...]], "input_shape": [H, W], "operations": [{"type": "convolution", ...}, ...]}
func (r *Result) MarshalJSON() ([]byte, error) {
	operations := r.Operations
	if operations == nil {
		operations = []OperationRecord{}
	}
	return json.Marshal(struct {
		InputMatrix *grid.Grid        `json:"input_matrix"`
		InputShape  grid.Shape        `json:"input_shape"`
		Operations  []OperationRecord `json:"operations"`
	}{r.InputGrid, r.InputShape, operations})
}
