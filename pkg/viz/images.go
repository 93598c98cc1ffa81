// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package viz

import (
	"image"
	"image/color"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/gomlx/gridops/pkg/support/fsutil"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HeatMapSize is the width and height of the images saved by SaveHeatMap.
var HeatMapSize = 4 * vg.Inch

// PixelScale is the number of pixels per cell, in each dimension, of the images saved by SavePixels.
var PixelScale = 32

// gridXYZ adapts a grid.Grid to plotter.GridXYZ. The first row of the grid is displayed at the top.
type gridXYZ struct {
	g *grid.Grid
}

var _ plotter.GridXYZ = gridXYZ{}

func (xyz gridXYZ) Dims() (c, r int) { return xyz.g.Cols(), xyz.g.Rows() }
func (xyz gridXYZ) Z(c, r int) float64 {
	return xyz.g.At(xyz.g.Rows()-1-r, c)
}
func (xyz gridXYZ) X(c int) float64 { return float64(c) }
func (xyz gridXYZ) Y(r int) float64 { return float64(r) }

// indexTicks labels the cells of an axis with their indices, reversed if requested.
type indexTicks struct {
	n        int
	reversed bool
}

// Ticks implements plot.Ticker.
func (it indexTicks) Ticks(_, _ float64) []plot.Tick {
	step := max(1, it.n/10)
	ticks := make([]plot.Tick, 0, it.n/step+1)
	for idx := 0; idx < it.n; idx += step {
		pos := idx
		if it.reversed {
			pos = it.n - 1 - idx
		}
		ticks = append(ticks, plot.Tick{Value: float64(pos), Label: strconv.Itoa(idx)})
	}
	return ticks
}

// HeatMap returns a gonum plot of the stage grid. The grid must not be empty.
func HeatMap(stage Stage) (*plot.Plot, error) {
	g := stage.Grid
	if g.Shape().IsZeroSize() {
		return nil, errors.Errorf("can't plot empty grid of stage %q", stage.Name)
	}
	p := plot.New()
	p.Title.Text = stage.Title()
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	p.X.Tick.Marker = indexTicks{n: g.Cols()}
	p.Y.Tick.Marker = indexTicks{n: g.Rows(), reversed: true}

	h := plotter.NewHeatMap(gridXYZ{g}, palette.Heat(12, 1))
	if h.Min == h.Max {
		// Constant grid.
		h.Max = h.Min + 1
	}
	p.Add(h)
	return p, nil
}

// SaveHeatMap saves the HeatMap of the stage to filePath. The format is taken from the extension.
func SaveHeatMap(stage Stage, filePath string) error {
	p, err := HeatMap(stage)
	if err != nil {
		return err
	}
	if err := p.Save(HeatMapSize, HeatMapSize, filePath); err != nil {
		return errors.Wrapf(err, "failed to save heatmap to %q", filePath)
	}
	return nil
}

// Image returns the grid as a grayscale image, one pixel per cell, with values linearly mapped
// from the grid range to [0, 255]. A constant grid is rendered mid-gray.
func Image(g *grid.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols(), g.Rows()))
	minValue, maxValue := g.Range()
	for row := range g.Rows() {
		for col, value := range g.Row(row) {
			level := uint8(128)
			if maxValue > minValue {
				level = uint8((value - minValue) / (maxValue - minValue) * 255)
			}
			img.SetGray(col, row, color.Gray{Y: level})
		}
	}
	return img
}

// SavePixels saves the grid of the stage as an image with PixelScale x PixelScale pixels per cell.
// The format is taken from the extension.
func SavePixels(stage Stage, filePath string) error {
	g := stage.Grid
	if g.Shape().IsZeroSize() {
		return errors.Errorf("can't save empty grid of stage %q", stage.Name)
	}
	img := imaging.Resize(Image(g), g.Cols()*PixelScale, g.Rows()*PixelScale, imaging.NearestNeighbor)
	if err := imaging.Save(img, filePath); err != nil {
		return errors.Wrapf(err, "failed to save image to %q", filePath)
	}
	return nil
}

// WriteImages writes, for each non-empty stage of the result, a heatmap "<stage file name>_heatmap.png"
// and a pixel image "<stage file name>_pixels.png" to dir. The directory is created if needed, see fsutil.OutputDir.
//
// It returns the paths of the files written.
func WriteImages(dir string, result *pipeline.Result) ([]string, error) {
	dir, err := fsutil.OutputDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, stage := range Stages(result) {
		if stage.Grid.Shape().IsZeroSize() {
			continue
		}
		heatMapPath := filepath.Join(dir, stage.FileName()+"_heatmap.png")
		if err := SaveHeatMap(stage, heatMapPath); err != nil {
			return paths, err
		}
		paths = append(paths, heatMapPath)
		pixelsPath := filepath.Join(dir, stage.FileName()+"_pixels.png")
		if err := SavePixels(stage, pixelsPath); err != nil {
			return paths, err
		}
		paths = append(paths, pixelsPath)
	}
	return paths, nil
}
