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

package transform

import (
	"github.com/pkg/errors"

	"github.com/v3io/tabular"
)

// Transpose returns one Record per frame row holding the values of columns
// at that row, in columns order. A frame without rows gives no records.
func Transpose(frame tabular.Frame, columns []string) ([]Record, error) {
	selected, err := selectColumns(frame, columns)
	if err != nil {
		return nil, err
	}

	numRows, numFields := frame.Len(), len(selected)
	records := make([]Record, numRows)

	// one backing array for all records, filled column by column
	fields := make([]Field, numRows*numFields)
	for rowNum := range records {
		start := rowNum * numFields
		records[rowNum] = Record(fields[start : start+numFields : start+numFields])
	}

	for colNum, col := range selected {
		name := col.Name()
		for rowNum := 0; rowNum < numRows; rowNum++ {
			value, err := valueAt(col, rowNum)
			if err != nil {
				return nil, errors.Wrapf(err, "can't read %q at row %d", name, rowNum)
			}

			fields[rowNum*numFields+colNum] = Field{Name: name, Value: value}
		}
	}

	return records, nil
}

func selectColumns(frame tabular.Frame, names []string) ([]tabular.Column, error) {
	if len(names) == 0 {
		return nil, errors.Wrap(tabular.ErrEmptyInputList, "no columns selected")
	}

	seen := make(map[string]bool, len(names))
	columns := make([]tabular.Column, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, errors.Wrapf(tabular.ErrDuplicateColumn, "%q selected twice", name)
		}
		seen[name] = true

		col, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}

	return columns, nil
}
