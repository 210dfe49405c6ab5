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

// Union stacks the rows of frames in order. Columns are matched by name and
// come in the order of the first frame, every frame must have the same set
// of names. Column types are promoted with Supertype.
func Union(frames []tabular.Frame) (tabular.Frame, error) {
	if len(frames) == 0 {
		return nil, errors.Wrap(tabular.ErrEmptyInputList, "no frames to union")
	}

	names := frames[0].Names()
	dtypes := make([]tabular.DType, len(names))
	numRows := 0
	for i, frame := range frames {
		if len(frame.Names()) != len(names) {
			return nil, errors.Wrapf(tabular.ErrIncompatibleSchema, "frame %d has %d columns, expected %d", i, len(frame.Names()), len(names))
		}

		for colNum, name := range names {
			col, err := frame.Column(name)
			if err != nil {
				return nil, errors.Wrapf(tabular.ErrIncompatibleSchema, "frame %d has no %q", i, name)
			}

			dtype, ok := Supertype(dtypes[colNum], col.DType())
			if !ok {
				return nil, errors.Wrapf(tabular.ErrIncompatibleSchema, "%q: no common type for %s and %s", name, dtypes[colNum], col.DType())
			}
			dtypes[colNum] = dtype
		}

		numRows += frame.Len()
	}

	columns := make([]tabular.Column, len(names))
	for colNum, name := range names {
		builder := tabular.NewSliceColumnBuilder(name, dtypes[colNum], numRows)
		for i, frame := range frames {
			col, err := frame.Column(name)
			if err != nil {
				return nil, err
			}

			for rowNum := 0; rowNum < col.Len(); rowNum++ {
				value, err := valueAt(col, rowNum)
				if err != nil {
					return nil, errors.Wrapf(err, "frame %d", i)
				}

				native, err := convertValue(value, dtypes[colNum])
				if err != nil {
					return nil, errors.Wrapf(err, "frame %d, %q row %d", i, name, rowNum)
				}

				if err := builder.Append(native); err != nil {
					return nil, errors.Wrapf(err, "frame %d, %q row %d", i, name, rowNum)
				}
			}
		}
		columns[colNum] = builder.Finish()
	}

	return tabular.NewFrame(columns)
}
