// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package viz

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/pkg/errors"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	indexColumnStyle = lipgloss.NewStyle().Bold(true).
				PaddingLeft(1).PaddingRight(1).Align(lipgloss.Right)
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "12", Dark: "86"})
	borderColor = lipgloss.Color("99")
)

// NewTable returns a table with the given headers, alternating row styles and the given column
// alignments. If there are fewer alignments than columns, the last one is repeated.
func NewTable(headers []string, alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			return s.Align(alignment)
		})
}

// FormatValue formats a cell value with at most precision decimal digits, trailing zeros removed.
func FormatValue(value float64, precision int) string {
	return humanize.FtoaWithDigits(value, precision)
}

// StageTable renders the grid of the stage as a table, with the row and column indices.
func StageTable(stage Stage, precision int) *lgtable.Table {
	g := stage.Grid
	headers := make([]string, g.Cols()+1)
	for col := range g.Cols() {
		headers[col+1] = strconv.Itoa(col)
	}
	table := NewTable(headers, lipgloss.Right)
	table.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == lgtable.HeaderRow:
			return headerRowStyle
		case col == 0:
			return indexColumnStyle
		case row%2 == 0:
			return oddRowStyle.Align(lipgloss.Right)
		default:
			return evenRowStyle.Align(lipgloss.Right)
		}
	})
	for row := range g.Rows() {
		cells := make([]string, g.Cols()+1)
		cells[0] = strconv.Itoa(row)
		for col, value := range g.Row(row) {
			cells[col+1] = FormatValue(value, precision)
		}
		table.Row(cells...)
	}
	return table
}

// SummaryTable returns one row per stage, with its shape, parameters and value range.
func SummaryTable(result *pipeline.Result, precision int) *lgtable.Table {
	table := NewTable([]string{"#", "Stage", "Shape", "Parameters", "Min", "Max"},
		lipgloss.Right, lipgloss.Left, lipgloss.Right, lipgloss.Left, lipgloss.Right)
	for _, stage := range Stages(result) {
		minValue, maxValue := stage.Grid.Range()
		table.Row(strconv.Itoa(stage.Index), stage.Name, stage.Grid.Shape().String(), stage.Params,
			FormatValue(minValue, precision), FormatValue(maxValue, precision))
	}
	return table
}

// RenderResult writes a titled table for each stage of the result, followed by the summary table.
func RenderResult(w io.Writer, result *pipeline.Result, precision int) error {
	for _, stage := range Stages(result) {
		if _, err := fmt.Fprintln(w, titleStyle.Render(stage.Title())); err != nil {
			return errors.Wrap(err, "failed to render result")
		}
		if stage.Grid.Shape().IsZeroSize() {
			if _, err := fmt.Fprintln(w, "(empty)"); err != nil {
				return errors.Wrap(err, "failed to render result")
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", StageTable(stage, precision)); err != nil {
			return errors.Wrap(err, "failed to render result")
		}
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render("Summary"), SummaryTable(result, precision)); err != nil {
		return errors.Wrap(err, "failed to render result")
	}
	return nil
}
