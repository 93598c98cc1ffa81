// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/core/ops"
	"github.com/pkg/errors"
)

// Limits bound the sizes accepted by Run, so a request can't ask for arbitrarily large
// allocations. Violations are rejected with grid.ErrInvalidParameter.
//
// A value <= 0 means unlimited. With MaxPadding unlimited, the padded input is not bounded
// either, whatever MaxRows and MaxCols.
type Limits struct {
	// MaxRows and MaxCols bound the input matrix.
	MaxRows, MaxCols int

	// MaxKernel bounds both dimensions of the kernel.
	MaxKernel int

	// MaxPadding bounds the convolution padding.
	MaxPadding int
}

// DefaultLimits used by DefaultConfig.
var DefaultLimits = Limits{MaxRows: 256, MaxCols: 256, MaxKernel: 32, MaxPadding: 32}

// Config of one pipeline run: the raw matrix and kernel, and the stage parameters.
//
// It is also the request payload of the service, see DecodeRequest.
type Config struct {
	// Matrix is the raw input: a sequence of rows of cells, see grid.Parser. Required.
	Matrix any `json:"matrix"`

	// Kernel is the raw convolution kernel. If nil or empty (no rows, or an empty first row)
	// the convolution is skipped.
	Kernel any `json:"kernel,omitempty"`

	// Stride (>= 1) and Padding (>= 0) of the convolution.
	Stride  int `json:"stride"`
	Padding int `json:"padding"`

	// PoolSize is the pooling window size: 0 disables pooling.
	PoolSize int `json:"pool_size"`

	// PoolStride (>= 1) of the pooling windows.
	PoolStride int `json:"pool_stride"`

	// PoolMode is one of "max", "avg" or "min". Only checked if pooling is enabled.
	PoolMode string `json:"pool_mode"`

	// Limits are set by the owner of the pipeline, never by the request.
	Limits Limits `json:"-"`
}

// DefaultConfig returns a Config with the default parameters: stride 1, no padding,
// pooling disabled (with stride 2 and mode "max" once enabled) and DefaultLimits.
func DefaultConfig() Config {
	return Config{
		Stride:     1,
		PoolStride: 2,
		PoolMode:   ops.PoolModeMax.String(),
		Limits:     DefaultLimits,
	}
}

// HasKernel returns whether a non-empty kernel was given, that is, with at least one row and
// a non-empty first row. It returns grid.ErrInvalidMatrixFormat if the kernel is not nil and
// can't be traversed as rows.
func (c *Config) HasKernel() (bool, error) {
	if c.Kernel == nil {
		return false, nil
	}
	rows, cols, err := grid.Dims(c.Kernel)
	if err != nil {
		return false, errors.WithMessage(err, "kernel")
	}
	return rows > 0 && cols > 0, nil
}

// Validate checks the parameters, without parsing the matrix or the kernel.
func (c *Config) Validate() error {
	if c.Matrix == nil {
		return errors.Wrapf(grid.ErrInvalidMatrixFormat, "matrix is required")
	}
	if c.Stride < 1 {
		return errors.Wrapf(grid.ErrInvalidParameter, "stride must be >= 1, got %d", c.Stride)
	}
	if c.Padding < 0 {
		return errors.Wrapf(grid.ErrInvalidParameter, "padding must be >= 0, got %d", c.Padding)
	}
	if c.Limits.MaxPadding > 0 && c.Padding > c.Limits.MaxPadding {
		return errors.Wrapf(grid.ErrInvalidParameter, "padding must be <= %d, got %d", c.Limits.MaxPadding, c.Padding)
	}
	if c.PoolSize < 0 {
		return errors.Wrapf(grid.ErrInvalidParameter, "pool_size must be >= 0, got %d", c.PoolSize)
	}
	if c.PoolStride < 1 {
		return errors.Wrapf(grid.ErrInvalidParameter, "pool_stride must be >= 1, got %d", c.PoolStride)
	}
	if c.PoolSize > 0 {
		if _, err := ops.ParsePoolMode(c.PoolMode); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRequest decodes a JSON request payload into a Config, starting from DefaultConfig,
// so fields absent from the payload keep their default values. Numbers in the matrix and
// kernel are kept as json.Number, and converted by the grid.Parser.
//
// The integer parameters (stride, padding, pool_size, pool_stride) also accept integral
// numbers written as floats (2.0) and strings holding an integer ("2").
//
// A payload that is not a JSON object with the expected field types is a grid.ErrInvalidRequest.
func DecodeRequest(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode((*request)(&cfg)); err != nil {
		return cfg, errors.Wrapf(grid.ErrInvalidRequest, "failed to decode request: %v", err)
	}
	return cfg, nil
}

// request decodes a Config from the JSON payload of a request.
type request Config

// UnmarshalJSON implements json.Unmarshaler.
func (req *request) UnmarshalJSON(data []byte) error {
	type plain Config
	payload := struct {
		*plain
		Stride     *intParam `json:"stride"`
		Padding    *intParam `json:"padding"`
		PoolSize   *intParam `json:"pool_size"`
		PoolStride *intParam `json:"pool_stride"`
	}{
		plain:      (*plain)(req),
		Stride:     (*intParam)(&req.Stride),
		Padding:    (*intParam)(&req.Padding),
		PoolSize:   (*intParam)(&req.PoolSize),
		PoolStride: (*intParam)(&req.PoolStride),
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(&payload)
}

// intParam is an integer parameter of a request.
type intParam int

// UnmarshalJSON implements json.Unmarshaler.
func (p *intParam) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return errors.Errorf("expected an integer, got %s", data)
	}
	if value, err := strconv.Atoi(text); err == nil {
		*p = intParam(value)
		return nil
	}
	if _, isString := raw.(string); !isString {
		value, err := strconv.ParseFloat(text, 64)
		if err == nil && value == math.Trunc(value) && math.Abs(value) <= 1<<53 {
			*p = intParam(value)
			return nil
		}
	}
	return errors.Errorf("expected an integer, got %s", data)
}
