// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/gomlx/gridops/pkg/viz"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// batchEntry is the outcome of one request file of the batch.
type batchEntry struct {
	path   string
	result *pipeline.Result
	err    error
}

// runBatch runs the pipeline on each request file, with a progress bar, and prints a summary table.
// It returns false if any of the requests failed.
func runBatch(requestPaths []string) bool {
	bar := progressbar.NewOptions(len(requestPaths),
		progressbar.OptionSetDescription("gridops"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("requests"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionClearOnFinish(),
	)
	entries := make([]batchEntry, 0, len(requestPaths))
	for _, path := range requestPaths {
		entry := batchEntry{path: path}
		cfg, err := loadConfig(path)
		if err == nil {
			entry.result, err = pipeline.Run(cfg)
		}
		entry.err = err
		if err != nil {
			klog.V(1).Infof("%s: %+v", path, err)
		} else {
			writeFiles(entry.result, subDir(*flagPNGDir, path), subDir(*flagPlotlyDir, path))
		}
		entries = append(entries, entry)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Println(batchSummary(entries, *flagPrecision))
	var numFailed, numCells int
	var memory uintptr
	for _, entry := range entries {
		if entry.err != nil {
			numFailed++
			continue
		}
		for _, stage := range viz.Stages(entry.result) {
			numCells += stage.Grid.Shape().Size()
			memory += stage.Grid.Shape().Memory()
		}
	}
	fmt.Printf("%s requests, %s failed, %s cells computed (%s)\n",
		humanize.Comma(int64(len(entries))), humanize.Comma(int64(numFailed)),
		humanize.Comma(int64(numCells)), humanize.Bytes(uint64(memory)))
	return numFailed == 0
}

// subDir returns the directory where the files of the request are written, or "" if dir is not set.
func subDir(dir, requestPath string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, strings.TrimSuffix(filepath.Base(requestPath), filepath.Ext(requestPath)))
}

// batchSummary returns a table with one row per request file.
func batchSummary(entries []batchEntry, precision int) string {
	table := viz.NewTable([]string{"Request", "Input", "Operations", "Output", "Min", "Max", "Status"},
		lipgloss.Left, lipgloss.Right, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Right, lipgloss.Left)
	for _, entry := range entries {
		if entry.err != nil {
			kind := grid.KindOf(entry.err)
			if kind == "" {
				kind = "error"
			}
			table.Row(entry.path, "", "", "", "", "", kind)
			continue
		}
		opTypes := make([]string, 0, len(entry.result.Operations))
		for _, op := range entry.result.Operations {
			opTypes = append(opTypes, op.Type())
		}
		final := entry.result.Final()
		minValue, maxValue := final.Range()
		table.Row(entry.path, entry.result.InputShape.String(), strings.Join(opTypes, ", "),
			final.Shape().String(), viz.FormatValue(minValue, precision), viz.FormatValue(maxValue, precision),
			"ok ("+strconv.Itoa(len(opTypes))+" ops)")
	}
	return table.String()
}
