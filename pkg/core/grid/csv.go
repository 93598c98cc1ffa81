// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package grid

import (
	"bytes"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
)

// ReadCSV reads a CSV table (no header) with a default Parser. See Parser.ReadCSV.
func ReadCSV(r io.Reader) (*Grid, error) {
	return NewParser().ReadCSV(r)
}

// ReadCSV reads a CSV table without a header line, and converts its records with Parse,
// so cells that are not numbers take the default value.
//
// All records must have the same number of fields, otherwise ErrInvalidMatrixFormat is returned.
// An empty input yields an empty Grid.
func (p *Parser) ReadCSV(r io.Reader) (*Grid, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read CSV matrix")
	}
	if len(bytes.TrimSpace(contents)) == 0 {
		return New(0, 0), nil
	}
	df := dataframe.ReadCSV(bytes.NewReader(contents),
		dataframe.HasHeader(false), dataframe.DetectTypes(false))
	if df.Err != nil {
		return nil, errors.Wrapf(ErrInvalidMatrixFormat, "failed to parse CSV matrix: %v", df.Err)
	}
	// Records always starts with the column names, generated since there is no header.
	records := df.Records()
	if len(records) > 0 {
		records = records[1:]
	}
	return p.Parse(records)
}
