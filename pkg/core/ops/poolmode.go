// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/pkg/errors"
)

// PoolMode is the reduction applied to each pooling window.
type PoolMode int

const (
	// PoolModeMax takes the maximum value of the window.
	PoolModeMax PoolMode = iota

	// PoolModeAvg takes the arithmetic mean of the window.
	PoolModeAvg

	// PoolModeMin takes the minimum value of the window.
	PoolModeMin
)

//go:generate go tool enumer -type=PoolMode -trimprefix=PoolMode -transform=snake -values -text -json -output=gen_poolmode_enumer.go poolmode.go

// ParsePoolMode converts a mode name ("max", "avg" or "min") to a PoolMode.
// Names are case-sensitive: any other name, "MAX" included, is a grid.ErrInvalidPoolMode.
func ParsePoolMode(name string) (PoolMode, error) {
	mode, err := PoolModeString(name)
	if err != nil || mode.String() != name {
		return mode, errors.Wrapf(grid.ErrInvalidPoolMode, "pooling mode %q is not one of %v", name, PoolModeStrings())
	}
	return mode, nil
}
