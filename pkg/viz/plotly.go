// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package viz

import (
	"encoding/base64"
	"encoding/json"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/gomlx/gridops/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// PlotlySrc is the URL of the Plotly.js library used by the HTML pages.
const PlotlySrc = "https://cdn.plot.ly/plotly-2.34.0.min.js"

// Figure returns a Plotly heatmap of the stage grid.
//
// Plotly draws the first row at the bottom of a heatmap, so rows are given in reverse order,
// and the y-axis is labelled accordingly, to display the grid as it is printed.
func Figure(stage Stage) *grob.Fig {
	g := stage.Grid
	numRows := g.Rows()
	z := make([][]float64, numRows)
	yLabels := make([]string, numRows)
	for row := range numRows {
		z[numRows-1-row] = g.Row(row)
		yLabels[numRows-1-row] = strconv.Itoa(row)
	}
	xLabels := make([]string, g.Cols())
	for col := range xLabels {
		xLabels[col] = strconv.Itoa(col)
	}

	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: ptypes.S(stage.Title()),
			},
			Xaxis: &grob.LayoutXaxis{
				Showgrid: ptypes.B(false),
				Type:     grob.LayoutXaxisTypeCategory,
			},
			Yaxis: &grob.LayoutYaxis{
				Showgrid: ptypes.B(false),
				Type:     grob.LayoutYaxisTypeCategory,
			},
		},
	}
	fig.Data = append(fig.Data, &grob.Heatmap{
		Name: ptypes.S(stage.Name),
		X:    ptypes.DataArray(xLabels),
		Y:    ptypes.DataArray(yLabels),
		Z:    ptypes.DataArray(z),
	})
	return fig
}

// Figures returns one Plotly heatmap per stage of the result.
func Figures(result *pipeline.Result) []*grob.Fig {
	stages := Stages(result)
	figs := make([]*grob.Fig, len(stages))
	for ii, stage := range stages {
		figs[ii] = Figure(stage)
	}
	return figs
}

var (
	singleFileHTML = `<!DOCTYPE html>
	<head>
		<meta charset="utf-8">
		<script src="{{ .CDN }}"></script>
	</head>
	<body>
{{- range $i, $f := .Figures }}
		<div id="plot{{ $i }}"></div>
{{- end }}
	<script>
{{- range $i, $f := .Figures }}
		data = JSON.parse(atob('{{ $f }}'))
		Plotly.newPlot('plot{{ $i }}', data);
{{- end }}
	</script>
	</body>
</html>`
	singleFileHTMLTmpl = template.Must(template.New("plotly").Parse(singleFileHTML))
)

// WriteHTML renders the Plotly figures to an HTML page.
func WriteHTML(w io.Writer, figs ...*grob.Fig) error {
	data := &struct {
		CDN     string
		Figures []string
	}{CDN: PlotlySrc}
	for _, fig := range figs {
		figAsJSON, err := json.Marshal(fig)
		if err != nil {
			return errors.Wrap(err, "failed to marshal plotly figure")
		}
		data.Figures = append(data.Figures, base64.StdEncoding.EncodeToString(figAsJSON))
	}
	if err := singleFileHTMLTmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render plotly")
	}
	return nil
}

// WriteFigures writes the figure of each stage to dir as "<stage file name>.json", plus an
// "index.html" page displaying all of them. The directory is created if needed, see fsutil.OutputDir.
//
// It returns the paths of the files written.
func WriteFigures(dir string, result *pipeline.Result) ([]string, error) {
	dir, err := fsutil.OutputDir(dir)
	if err != nil {
		return nil, err
	}
	stages := Stages(result)
	figs := make([]*grob.Fig, 0, len(stages))
	paths := make([]string, 0, len(stages)+1)
	for _, stage := range stages {
		fig := Figure(stage)
		figs = append(figs, fig)
		figAsJSON, err := json.MarshalIndent(fig, "", "  ")
		if err != nil {
			return paths, errors.Wrapf(err, "failed to marshal plotly figure for stage %q", stage.Name)
		}
		filePath := filepath.Join(dir, stage.FileName()+".json")
		if err := os.WriteFile(filePath, figAsJSON, 0o644); err != nil {
			return paths, errors.Wrapf(err, "failed to write %q", filePath)
		}
		paths = append(paths, filePath)
	}

	htmlPath := filepath.Join(dir, "index.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return paths, errors.Wrapf(err, "failed to create file %q", htmlPath)
	}
	if err = WriteHTML(f, figs...); err != nil {
		_ = f.Close()
		return paths, err
	}
	if err = f.Close(); err != nil {
		return paths, errors.Wrapf(err, "failed to close file %q", htmlPath)
	}
	paths = append(paths, htmlPath)
	return paths, nil
}
