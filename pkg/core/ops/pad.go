// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/pkg/errors"
)

// Pad returns x surrounded by padding rows and columns of zeros on every side.
// The result has shape (rows+2*padding)x(cols+2*padding), and its interior equals x.
//
// With padding 0 it returns x itself.
func Pad(x *grid.Grid, padding int) (*grid.Grid, error) {
	if x == nil {
		return nil, errors.Wrapf(grid.ErrInvalidParameter, "ops.Pad: input grid is nil")
	}
	shape, err := PaddedShape(x.Shape(), padding)
	if err != nil {
		return nil, err
	}
	if padding == 0 {
		return x, nil
	}
	data := make([]float64, shape.Size())
	src := x.Flat()
	cols := x.Cols()
	for row := range x.Rows() {
		dstStart := (row+padding)*shape.Cols + padding
		copy(data[dstStart:dstStart+cols], src[row*cols:(row+1)*cols])
	}
	return grid.FromFlat(shape, data)
}
