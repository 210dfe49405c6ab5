/*
Copyright 2018 Iguazio Systems Ltd.

Licensed under the Apache License, Version 2.0 (the "License") with
an addition restriction as set forth herein. You may not use this
file except in compliance with the License. You may obtain a copy of
the License at http://www.apache.org/licenses/LICENSE-2.0.

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing
permissions and limitations under the License.

In addition, you may not use the software for any purposes that are
illegal under applicable law, and the grant of the foregoing license
under the Apache 2.0 license is conditioned upon your compliance with
such restriction.
*/

package tabular

import (
	"sort"

	"github.com/pkg/errors"
)

// frameImpl is a frame implementation
type frameImpl struct {
	columns []Column
	byName  map[string]int // name -> index in columns
}

// NewFrame returns a new Frame. Columns must have equal length and unique
// names.
func NewFrame(columns []Column) (Frame, error) {
	if err := checkEqualLen(columns); err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, ok := byName[col.Name()]; ok {
			return nil, errors.Wrapf(ErrDuplicateColumn, "%q", col.Name())
		}
		byName[col.Name()] = i
	}

	frame := &frameImpl{
		columns: columns,
		byName:  byName,
	}

	return frame, nil
}

// NewFrameFromMap returns a new Frame from a map of name -> slice data (see
// NewSliceColumn). Columns are ordered by names, or sorted if names is empty.
func NewFrameFromMap(data map[string]interface{}, names []string) (Frame, error) {
	if len(names) == 0 {
		names = sortedKeys(data)
	}

	if len(names) != len(data) {
		return nil, errors.Errorf("%d names for %d columns", len(names), len(data))
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		values, ok := data[name]
		if !ok {
			return nil, errors.Wrapf(ErrColumnNotFound, "%q", name)
		}

		column, err := NewSliceColumn(name, values)
		if err != nil {
			return nil, errors.Wrapf(err, "can't create column %q", name)
		}
		columns[i] = column
	}

	return NewFrame(columns)
}

// NewFrameFromRows creates a new frame from rows. Columns are ordered by
// names, or sorted if names is empty. Missing values are nulls.
func NewFrameFromRows(rows []map[string]interface{}, names []string) (Frame, error) {
	if len(names) == 0 {
		seen := make(map[string]interface{})
		for _, row := range rows {
			for name := range row {
				seen[name] = nil
			}
		}
		names = sortedKeys(seen)
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		values := make([]interface{}, len(rows))
		for rowNum, row := range rows {
			values[rowNum] = row[name]
		}

		column, err := columnFromValues(name, values)
		if err != nil {
			return nil, err
		}
		columns[i] = column
	}

	return NewFrame(columns)
}

// Names returns the column names
func (mf *frameImpl) Names() []string {
	names := make([]string, len(mf.columns))

	for i := 0; i < len(mf.columns); i++ {
		names[i] = mf.columns[i].Name()
	}

	return names
}

// Len is the number of rows
func (mf *frameImpl) Len() int {
	if len(mf.columns) > 0 {
		return mf.columns[0].Len()
	}

	return 0
}

// Column gets a column by name
func (mf *frameImpl) Column(name string) (Column, error) {
	i, ok := mf.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q", name)
	}

	return mf.columns[i], nil
}

// Columns returns the frame columns
func (mf *frameImpl) Columns() []Column {
	columns := make([]Column, len(mf.columns))
	copy(columns, mf.columns)
	return columns
}

// Select returns a frame with the named columns, in the given order
func (mf *frameImpl) Select(names ...string) (Frame, error) {
	columns := make([]Column, len(names))
	for i, name := range names {
		col, err := mf.Column(name)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}

	return NewFrame(columns)
}

// WithColumn returns a frame with column appended, or replacing the column
// with the same name
func (mf *frameImpl) WithColumn(column Column) (Frame, error) {
	if len(mf.columns) > 0 && column.Len() != mf.Len() {
		return nil, errors.Wrapf(ErrRowCountMismatch, "%q has %d rows, frame has %d", column.Name(), column.Len(), mf.Len())
	}

	columns := mf.Columns()
	if i, ok := mf.byName[column.Name()]; ok {
		columns[i] = column
	} else {
		columns = append(columns, column)
	}

	return NewFrame(columns)
}

// Drop returns a frame without the named columns
func (mf *frameImpl) Drop(names ...string) (Frame, error) {
	dropped := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := mf.byName[name]; !ok {
			return nil, errors.Wrapf(ErrColumnNotFound, "can't drop %q", name)
		}
		dropped[name] = true
	}

	columns := make([]Column, 0, len(mf.columns))
	for _, col := range mf.columns {
		if !dropped[col.Name()] {
			columns = append(columns, col)
		}
	}

	return NewFrame(columns)
}

// Slice return a new Frame with a copy of rows [start, end)
func (mf *frameImpl) Slice(start int, end int) (Frame, error) {
	if err := validateSlice(start, end, mf.Len()); err != nil {
		return nil, err
	}

	colSlices, err := sliceCols(mf.columns, start, end)
	if err != nil {
		return nil, err
	}

	return NewFrame(colSlices)
}

// IterRows returns iterator over rows
func (mf *frameImpl) IterRows() RowIterator {
	return newRowIterator(mf)
}

func validateSlice(start int, end int, size int) error {
	if start < 0 || end < 0 {
		return errors.New("negative indexing not supported")
	}

	if end < start {
		return errors.Errorf("end < start (%d < %d)", end, start)
	}

	if end > size {
		return errors.Errorf("end out of bounds (%d > %d)", end, size)
	}

	return nil
}

func checkEqualLen(columns []Column) error {
	size := -1
	for _, col := range columns {
		if size == -1 { // first column
			size = col.Len()
			continue
		}

		if colSize := col.Len(); colSize != size {
			return errors.Wrapf(ErrRowCountMismatch, "%q column size mismatch (%d != %d)", col.Name(), colSize, size)
		}
	}

	return nil
}

func sliceCols(columns []Column, start int, end int) ([]Column, error) {
	slices := make([]Column, len(columns))
	for i, col := range columns {
		slice, err := col.Slice(start, end)
		if err != nil {
			return nil, errors.Wrapf(err, "can't get slice from %q", col.Name())
		}

		slices[i] = slice
	}

	return slices, nil
}

func sortedKeys(data map[string]interface{}) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
