// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// gridops runs the convolution and pooling pipeline on a matrix and displays every stage.
//
// Usage:
//
//	gridops -matrix '[[1,2,3],[4,5,6],[7,8,9]]' -kernel '[[1,0],[0,-1]]' -pool_size 2 -pool_stride 1
//	gridops -request request.json -json
//	gridops -pool_size 2 requests/*.json   # Batch mode.
//
// The request files use the same JSON format as the service. The flags override the values
// in the request files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/gomlx/gridops/pkg/viz"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"k8s.io/klog/v2"
)

var (
	flagRequest   = flag.String("request", "", "JSON file with the request. The other flags override its values.")
	flagMatrix    = flag.String("matrix", "", "Input matrix as JSON, e.g. '[[1,2],[3,4]]'.")
	flagMatrixCSV = flag.String("matrix_csv", "", "CSV file with the input matrix, one row per line.")
	flagKernel    = flag.String("kernel", "", "Convolution kernel as JSON, e.g. '[[1,0],[0,1]]'. If empty, there is no convolution.")
	flagKernelCSV = flag.String("kernel_csv", "", "CSV file with the convolution kernel, one row per line.")

	flagStride     = flag.Int("stride", 1, "Stride of the convolution, >= 1.")
	flagPadding    = flag.Int("padding", 0, "Zero padding added around the matrix before the convolution, >= 0.")
	flagPoolSize   = flag.Int("pool_size", 0, "Pooling window size. 0 disables pooling.")
	flagPoolStride = flag.Int("pool_stride", 2, "Stride of the pooling windows, >= 1.")
	flagPoolMode   = flag.String("pool_mode", "max", "Pooling mode: max, avg or min.")

	flagJSON      = flag.Bool("json", false, "Print the result as JSON instead of tables.")
	flagPNGDir    = flag.String("png_dir", "", "If set, a heatmap and a pixel image of each stage are saved as PNG files in this directory.")
	flagPlotlyDir = flag.String("plotly_dir", "", "If set, a Plotly figure of each stage is saved as JSON in this directory, plus an index.html page.")
	flagPrecision = flag.Int("precision", 4, "Maximum number of decimal digits displayed in the tables.")
	flagNoColor   = flag.Bool("no_color", false, "Disable colors and styles in the terminal output.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if args := flag.Args(); len(args) > 0 {
		if *flagRequest != "" {
			klog.Exitf("-request can't be used with positional request files, see 'gridops -help'")
		}
		if !runBatch(args) {
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(*flagRequest)
	if err != nil {
		klog.Exitf("%v", err)
	}
	result, err := pipeline.Run(cfg)
	if err != nil {
		klog.V(1).Infof("%+v", err)
		klog.Exitf("pipeline failed (%s): %v", grid.KindOf(err), err)
	}

	if *flagJSON {
		fmt.Println(string(must.M1(json.MarshalIndent(result, "", "  "))))
	} else {
		must.M(viz.RenderResult(os.Stdout, result, *flagPrecision))
	}
	writeFiles(result, *flagPNGDir, *flagPlotlyDir)
}

// writeFiles saves the images and figures of the result, if the directories are set.
func writeFiles(result *pipeline.Result, pngDir, plotlyDir string) {
	var paths []string
	if pngDir != "" {
		paths = append(paths, must.M1(viz.WriteImages(pngDir, result))...)
	}
	if plotlyDir != "" {
		paths = append(paths, must.M1(viz.WriteFigures(plotlyDir, result))...)
	}
	if len(paths) == 0 {
		return
	}
	var totalSize int64
	for _, path := range paths {
		totalSize += must.M1(os.Stat(path)).Size()
	}
	klog.Infof("Wrote %s files (%s)", humanize.Comma(int64(len(paths))), humanize.Bytes(uint64(totalSize)))
	for _, path := range paths {
		klog.V(1).Infof("\t%s", path)
	}
}
