// Copyright 2025 latrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dataset holds sparse user-item interaction data and iterates it in
// shuffled mini-batches for training.
package dataset

import (
	"github.com/juju/errors"
)

var (
	// ErrLengthMismatch reports coordinate arrays of unequal length.
	ErrLengthMismatch = errors.New("row, column and value arrays must have the same length")
	// ErrIndexOutOfRange reports a row, column or entry index outside its declared range.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrShapeMismatch reports train and test matrices that disagree on shape.
	ErrShapeMismatch = errors.New("train and test matrices disagree on shape")
	// ErrNoTestSplit reports access to an absent test split.
	ErrNoTestSplit = errors.New("no test split")
)

// Matrix is a sparse user-item matrix in coordinate form: parallel arrays of
// row indices, column indices and values, plus a declared shape. Duplicate
// coordinates are kept as separate entries, matching the coordinate-form
// conversion of the usual sparse constructors. A Matrix is immutable after
// construction.
type Matrix struct {
	numRows int
	numCols int
	rows    []int32
	cols    []int32
	values  []float32
}

// NewMatrix creates a coordinate-form sparse matrix with a declared shape.
// Every row index must lie in [0, numRows) and every column index in
// [0, numCols).
func NewMatrix(numRows, numCols int, rows, cols []int32, values []float32) (*Matrix, error) {
	if len(rows) != len(cols) || len(rows) != len(values) {
		return nil, errors.Trace(ErrLengthMismatch)
	}
	for i := range rows {
		if rows[i] < 0 || int(rows[i]) >= numRows {
			return nil, errors.Annotatef(ErrIndexOutOfRange, "row %d at entry %d with %d rows declared", rows[i], i, numRows)
		}
		if cols[i] < 0 || int(cols[i]) >= numCols {
			return nil, errors.Annotatef(ErrIndexOutOfRange, "column %d at entry %d with %d columns declared", cols[i], i, numCols)
		}
	}
	return &Matrix{
		numRows: numRows,
		numCols: numCols,
		rows:    rows,
		cols:    cols,
		values:  values,
	}, nil
}

// Reshape returns a matrix with the same entries and a new declared shape.
// The new shape must cover every stored coordinate.
func (m *Matrix) Reshape(numRows, numCols int) (*Matrix, error) {
	reshaped, err := NewMatrix(numRows, numCols, m.rows, m.cols, m.values)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return reshaped, nil
}

// NumRows returns the declared number of rows.
func (m *Matrix) NumRows() int {
	return m.numRows
}

// NumCols returns the declared number of columns.
func (m *Matrix) NumCols() int {
	return m.numCols
}

// NNZ returns the number of recorded entries.
func (m *Matrix) NNZ() int {
	return len(m.values)
}

// Get returns the i-th recorded entry.
func (m *Matrix) Get(i int) (row, col int32, value float32, err error) {
	if i < 0 || i >= len(m.values) {
		return 0, 0, 0, errors.Annotatef(ErrIndexOutOfRange, "entry %d of %d", i, len(m.values))
	}
	return m.rows[i], m.cols[i], m.values[i], nil
}
