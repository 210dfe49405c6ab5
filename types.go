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
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DType is data type
type DType int

// Possible data types
const (
	NullType DType = iota
	IntType
	FloatType
	StringType
	BoolType
	TimeType
	BytesType
)

var dtypeNames = []string{
	NullType:   "null",
	IntType:    "int",
	FloatType:  "float",
	StringType: "string",
	BoolType:   "bool",
	TimeType:   "time",
	BytesType:  "bytes",
}

func (dtype DType) String() string {
	if dtype < 0 || int(dtype) >= len(dtypeNames) {
		return "unknown"
	}

	return dtypeNames[dtype]
}

// DTypeFromString parses the output of DType.String
func DTypeFromString(name string) (DType, error) {
	for i, dtypeName := range dtypeNames {
		if strings.EqualFold(name, dtypeName) {
			return DType(i), nil
		}
	}

	return NullType, errors.Wrapf(ErrUnsupportedType, "no dtype named %q", name)
}

// Column is a data column
type Column interface {
	Len() int                                 // Number of elements
	Name() string                             // Column name
	DType() DType                             // Data type (e.g. IntType, FloatType ...)
	IsNull(i int) bool                        // Is value at index i absent
	ValueAt(i int) (interface{}, error)       // Value at index i, nil if absent
	Ints() ([]int64, error)                   // Data as []int64
	IntAt(i int) (int64, error)               // Int value at index i
	Floats() ([]float64, error)               // Data as []float64
	FloatAt(i int) (float64, error)           // Float value at index i
	Strings() []string                        // Data as []string
	StringAt(i int) (string, error)           // String value at index i
	Bools() ([]bool, error)                   // Data as []bool
	BoolAt(i int) (bool, error)               // bool value at index i
	Times() ([]time.Time, error)              // Data as []time.Time
	TimeAt(i int) (time.Time, error)          // time.Time value at index i
	Bytes() ([][]byte, error)                 // Data as [][]byte
	BytesAt(i int) ([]byte, error)            // []byte value at index i
	Slice(start int, end int) (Column, error) // Copy of rows [start, end)
	CopyWithName(newName string) Column       // Same data under a new name
}

// Frame is an ordered collection of equal length, uniquely named columns.
// Frames are never modified in place, operations return new frames that may
// share (read only) columns with their source.
type Frame interface {
	Names() []string                          // Column names
	Len() int                                 // Number of rows
	Column(name string) (Column, error)       // Column by name
	Columns() []Column                        // All columns, in order
	Select(names ...string) (Frame, error)    // Projection
	WithColumn(column Column) (Frame, error)  // Append or replace a column
	Drop(names ...string) (Frame, error)      // Frame without the named columns
	Slice(start int, end int) (Frame, error)  // Copy of rows [start, end)
	IterRows() RowIterator                    // Iterate over rows
}

// RowIterator is an iterator over frame rows
type RowIterator interface {
	Next() bool                  // Advance to next row
	Row() map[string]interface{} // Row as map of name->value
	RowNum() int                 // Current row number
	Err() error                  // Iteration error
}

// ColumnBuilder is interface for building columns
type ColumnBuilder interface {
	Append(value interface{}) error
	AppendNull()
	At(index int) (interface{}, error)
	Set(index int, value interface{}) error
	Finish() Column
}
