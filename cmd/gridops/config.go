// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/pkg/errors"
)

// loadConfig reads the request file, if given, and applies the flags set in the command line.
func loadConfig(requestPath string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if requestPath != "" {
		f, err := os.Open(requestPath)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to open request file")
		}
		defer func() { _ = f.Close() }()
		cfg, err = pipeline.DecodeRequest(f)
		if err != nil {
			return cfg, errors.WithMessagef(err, "request file %q", requestPath)
		}
	}
	if err := applyFlags(&cfg, setFlags()); err != nil {
		return cfg, err
	}
	if cfg.Matrix == nil {
		return cfg, errors.New("missing input matrix: use -matrix, -matrix_csv or -request, see 'gridops -help'")
	}
	return cfg, nil
}

// setFlags returns the names of the flags explicitly set in the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags overrides the configuration with the flags that were set.
func applyFlags(cfg *pipeline.Config, set map[string]bool) (err error) {
	switch {
	case *flagMatrix != "":
		cfg.Matrix, err = parseInline(*flagMatrix)
	case *flagMatrixCSV != "":
		cfg.Matrix, err = readCSVFile(*flagMatrixCSV)
	}
	if err != nil {
		return errors.WithMessage(err, "matrix")
	}
	switch {
	case *flagKernel != "":
		cfg.Kernel, err = parseInline(*flagKernel)
	case *flagKernelCSV != "":
		cfg.Kernel, err = readCSVFile(*flagKernelCSV)
	}
	if err != nil {
		return errors.WithMessage(err, "kernel")
	}
	if set["stride"] {
		cfg.Stride = *flagStride
	}
	if set["padding"] {
		cfg.Padding = *flagPadding
	}
	if set["pool_size"] {
		cfg.PoolSize = *flagPoolSize
	}
	if set["pool_stride"] {
		cfg.PoolStride = *flagPoolStride
	}
	if set["pool_mode"] {
		cfg.PoolMode = *flagPoolMode
	}
	return nil
}

// parseInline decodes a matrix given as JSON in the command line. Cells are converted later
// by the pipeline, with the same rules as the service.
func parseInline(value string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(value))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrapf(grid.ErrInvalidMatrixFormat, "failed to parse %q as JSON: %v", value, err)
	}
	return raw, nil
}

func readCSVFile(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file")
	}
	defer func() { _ = f.Close() }()
	g, err := grid.ReadCSV(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "CSV file %q", path)
	}
	return g, nil
}
