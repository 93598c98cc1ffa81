// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package grid

import (
	"github.com/pkg/errors"
)

// Error kinds returned by the parser, the ops stages and the pipeline.
//
// They are always returned wrapped with context (see github.com/pkg/errors), so match them
// with errors.Is.
var (
	// ErrInvalidMatrixFormat is returned when the input can't be traversed as a sequence of rows.
	// Bad individual cells are never an error: they are replaced by the parser's default value.
	ErrInvalidMatrixFormat = errors.New("invalid matrix format")

	// ErrInvalidParameter is returned for a stride < 1, a negative padding, window size or
	// window stride, or for dimensions above the configured limits.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrKernelSize is returned when the kernel doesn't fit the (padded) input in some dimension.
	ErrKernelSize = errors.New("kernel larger than input")

	// ErrPoolWindow is returned when the pooling window doesn't fit the input in some dimension.
	ErrPoolWindow = errors.New("pooling window larger than input")

	// ErrInvalidPoolMode is returned for a pooling mode other than max, avg or min.
	ErrInvalidPoolMode = errors.New("invalid pooling mode")

	// ErrInvalidRequest is returned when a request can't be decoded at all.
	ErrInvalidRequest = errors.New("invalid request")
)

var errorKinds = []struct {
	name string
	err  error
}{
	{"InvalidMatrixFormat", ErrInvalidMatrixFormat},
	{"InvalidParameter", ErrInvalidParameter},
	{"KernelSizeError", ErrKernelSize},
	{"PoolWindowError", ErrPoolWindow},
	{"InvalidPoolMode", ErrInvalidPoolMode},
	{"InvalidRequest", ErrInvalidRequest},
}

// KindOf returns the name of the error kind of err (e.g. "KernelSizeError"), or "" if err
// is nil or not one of the kinds defined in this package.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind.err) {
			return kind.name
		}
	}
	return ""
}
