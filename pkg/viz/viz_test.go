// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package viz

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func runScenario(t *testing.T) *pipeline.Result {
	cfg := pipeline.DefaultConfig()
	cfg.Matrix = [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}}
	cfg.Kernel = [][]float64{{1, 0, -1}, {1, 0, -1}, {1, 0, -1}}
	cfg.PoolSize = 2
	result, err := pipeline.Run(cfg)
	require.NoError(t, err)
	return result
}

func TestStages(t *testing.T) {
	stages := Stages(runScenario(t))
	require.Len(t, stages, 3)
	assert.Equal(t, "input", stages[0].Name)
	assert.Equal(t, "#0 input (4x4)", stages[0].Title())
	assert.Equal(t, "00_input", stages[0].FileName())
	assert.Equal(t, "#1 convolution (2x2): kernel=(3x3), stride=1, padding=0", stages[1].Title())
	assert.Equal(t, "01_convolution", stages[1].FileName())
	assert.Equal(t, "#2 pooling (1x1): mode=max, pool_size=2, pool_stride=2", stages[2].Title())
	assert.Equal(t, [][]float64{{-6}}, stages[2].Grid.Values())
}

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResult(&buf, runScenario(t), 4))
	out := buf.String()
	for _, want := range []string{"#0 input (4x4)", "#1 convolution (2x2)", "#2 pooling (1x1)", "Summary", "-6", "16"} {
		assert.Contains(t, out, want)
	}

	table := StageTable(Stage{Name: "input", Grid: grid.MustFromRows([][]float64{{0.123456, 2}})}, 3).String()
	assert.Contains(t, table, "0.123")
	assert.NotContains(t, table, "0.1234")

	buf.Reset()
	require.NoError(t, RenderResult(&buf, &pipeline.Result{InputGrid: grid.New(0, 0)}, 4))
	assert.Contains(t, buf.String(), "(empty)")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-6", FormatValue(-6, 4))
	assert.Equal(t, "3.5", FormatValue(3.5, 4))
	assert.Equal(t, "0.3333", FormatValue(1.0/3.0, 4))
}

func TestFigures(t *testing.T) {
	figs := Figures(runScenario(t))
	require.Len(t, figs, 3)
	data, err := json.Marshal(figs[0])
	require.NoError(t, err)
	var decoded struct {
		Data []struct {
			Type string      `json:"type"`
			Z    [][]float64 `json:"z"`
		} `json:"data"`
		Layout struct {
			Title struct {
				Text string `json:"text"`
			} `json:"title"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Data, 1)
	assert.Equal(t, "heatmap", decoded.Data[0].Type)
	assert.Equal(t, "#0 input (4x4)", decoded.Layout.Title.Text)
	// Rows are reversed, so the first row is displayed at the top.
	assert.Equal(t, []float64{13, 14, 15, 16}, decoded.Data[0].Z[0])
	assert.Equal(t, []float64{1, 2, 3, 4}, decoded.Data[0].Z[3])
}

func TestWriteFigures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	paths, err := WriteFigures(dir, runScenario(t))
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, filepath.Join(dir, "01_convolution.json"), paths[1])
	assert.Equal(t, filepath.Join(dir, "index.html"), paths[3])
	html, err := os.ReadFile(paths[3])
	require.NoError(t, err)
	assert.Contains(t, string(html), PlotlySrc)
	assert.Equal(t, 3, strings.Count(string(html), "Plotly.newPlot"))
}

func TestWriteFiguresErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "index.html"), 0o755))
	paths, err := WriteFigures(dir, runScenario(t))
	require.Error(t, err)
	assert.Len(t, paths, 3, "only the figures written before the failure are returned")
	assert.NotContains(t, paths, filepath.Join(dir, "index.html"))
}

func TestWriteImages(t *testing.T) {
	dir := t.TempDir()
	result := runScenario(t)
	paths, err := WriteImages(dir, result)
	require.NoError(t, err)
	require.Len(t, paths, 6)
	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), path)
	}

	f, err := os.Open(filepath.Join(dir, "00_input_pixels.png"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4*PixelScale, img.Bounds().Dx())
	assert.Equal(t, 4*PixelScale, img.Bounds().Dy())

	_, err = HeatMap(Stage{Name: "empty", Grid: grid.New(0, 0)})
	assert.Error(t, err)
}

func TestImage(t *testing.T) {
	img := Image(grid.MustFromRows([][]float64{{0, 5}, {10, 10}}))
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(127), img.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(0, 1).Y)

	img = Image(grid.Full(2, 3, 7))
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, uint8(128), img.GrayAt(2, 1).Y)
}
