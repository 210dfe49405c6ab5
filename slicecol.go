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
	"encoding/base64"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SliceColumn is a column with slice data and an optional null mask
type SliceColumn struct {
	name  string
	dtype DType
	data  interface{} // nil for NullType
	nulls []bool      // nil when there are no nulls
	size  int
}

// NewSliceColumn return a new SliceColumn. Accepted data types are []int64,
// []int, []float64, []string, []bool, []time.Time, [][]byte and
// []interface{} (element type is inferred, nil elements are nulls).
// Typed slices are not copied and must not be modified afterwards.
func NewSliceColumn(name string, data interface{}) (*SliceColumn, error) {
	switch typedData := data.(type) {
	case []int64:
		return newSliceColumn(name, IntType, typedData, nil, len(typedData)), nil
	case []int:
		ints := make([]int64, len(typedData))
		for i, val := range typedData {
			ints[i] = int64(val)
		}
		return newSliceColumn(name, IntType, ints, nil, len(ints)), nil
	case []float64:
		return newSliceColumn(name, FloatType, typedData, nil, len(typedData)), nil
	case []string:
		return newSliceColumn(name, StringType, typedData, nil, len(typedData)), nil
	case []bool:
		return newSliceColumn(name, BoolType, typedData, nil, len(typedData)), nil
	case []time.Time:
		return newSliceColumn(name, TimeType, typedData, nil, len(typedData)), nil
	case [][]byte:
		return newSliceColumn(name, BytesType, typedData, nil, len(typedData)), nil
	case []interface{}:
		return columnFromValues(name, typedData)
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "can't create column %q from %T", name, data)
}

// NewNullColumn returns a column of size absent values
func NewNullColumn(name string, size int) (*SliceColumn, error) {
	if size < 0 {
		return nil, errors.Wrapf(ErrRowCountMismatch, "null column %q with negative size %d", name, size)
	}

	return newSliceColumn(name, NullType, nil, nil, size), nil
}

func newSliceColumn(name string, dtype DType, data interface{}, nulls []bool, size int) *SliceColumn {
	if !anyTrue(nulls) {
		nulls = nil
	}

	return &SliceColumn{
		name:  name,
		dtype: dtype,
		data:  data,
		nulls: nulls,
		size:  size,
	}
}

func columnFromValues(name string, values []interface{}) (*SliceColumn, error) {
	dtype := NullType
	for _, value := range values {
		if value == nil {
			continue
		}

		valueType, err := InferDType(value)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", name)
		}

		switch {
		case dtype == NullType, dtype == valueType:
			dtype = valueType
		case dtype == IntType && valueType == FloatType, dtype == FloatType && valueType == IntType:
			dtype = FloatType
		default:
			return nil, errors.Wrapf(ErrUnsupportedType, "column %q mixes %s and %s", name, dtype, valueType)
		}
	}

	builder := NewSliceColumnBuilder(name, dtype, len(values))
	for i, value := range values {
		if err := builder.Append(value); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", name, i)
		}
	}

	return builder.Finish().(*SliceColumn), nil
}

// InferDType returns the column type that can hold value
func InferDType(value interface{}) (DType, error) {
	switch value.(type) {
	case nil:
		return NullType, nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return IntType, nil
	case float32, float64:
		return FloatType, nil
	case string:
		return StringType, nil
	case bool:
		return BoolType, nil
	case time.Time:
		return TimeType, nil
	case []byte:
		return BytesType, nil
	}

	return NullType, errors.Wrapf(ErrUnsupportedType, "%T", value)
}

// Name returns the column name
func (sc *SliceColumn) Name() string {
	return sc.name
}

// Len returns the number of elements
func (sc *SliceColumn) Len() int {
	return sc.size
}

// DType returns the data type
func (sc *SliceColumn) DType() DType {
	return sc.dtype
}

// IsNull returns true if there's no value at index i
func (sc *SliceColumn) IsNull(i int) bool {
	if sc.dtype == NullType {
		return true
	}

	return sc.nulls != nil && i >= 0 && i < len(sc.nulls) && sc.nulls[i]
}

// ValueAt returns the value at index i, nil for nulls
func (sc *SliceColumn) ValueAt(i int) (interface{}, error) {
	if err := sc.checkIndex(i); err != nil {
		return nil, err
	}

	if sc.IsNull(i) {
		return nil, nil
	}

	switch typedCol := sc.data.(type) {
	case []int64:
		return typedCol[i], nil
	case []float64:
		return typedCol[i], nil
	case []string:
		return typedCol[i], nil
	case []bool:
		return typedCol[i], nil
	case []time.Time:
		return typedCol[i], nil
	case [][]byte:
		return typedCol[i], nil
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%s: unknown dtype %s", sc.name, sc.dtype)
}

// Ints returns data as []int64
func (sc *SliceColumn) Ints() ([]int64, error) {
	typedCol, ok := sc.data.([]int64)
	if !ok {
		return nil, sc.typeError(IntType)
	}

	return typedCol, nil
}

// IntAt returns int value at index i
func (sc *SliceColumn) IntAt(i int) (int64, error) {
	if err := sc.checkIndex(i); err != nil {
		return 0, err
	}

	typedCol, err := sc.Ints()
	if err != nil {
		return 0, err
	}

	return typedCol[i], nil
}

// Floats returns data as []float64
func (sc *SliceColumn) Floats() ([]float64, error) {
	typedCol, ok := sc.data.([]float64)
	if !ok {
		return nil, sc.typeError(FloatType)
	}

	return typedCol, nil
}

// FloatAt returns float64 value at index i
func (sc *SliceColumn) FloatAt(i int) (float64, error) {
	if err := sc.checkIndex(i); err != nil {
		return 0, err
	}

	typedCol, err := sc.Floats()
	if err != nil {
		return 0, err
	}

	return typedCol[i], nil
}

// Strings returns data as []string, non string columns are formatted and
// nulls are empty strings
func (sc *SliceColumn) Strings() []string {
	typedCol, ok := sc.data.([]string)
	if ok {
		return typedCol
	}

	typedCol = make([]string, sc.Len())
	for i := range typedCol {
		typedCol[i] = sc.formatAt(i)
	}

	return typedCol
}

// StringAt returns string value at index i
func (sc *SliceColumn) StringAt(i int) (string, error) {
	if err := sc.checkIndex(i); err != nil {
		return "", err
	}

	if typedCol, ok := sc.data.([]string); ok {
		return typedCol[i], nil
	}

	return sc.formatAt(i), nil
}

// Bools returns data as []bool
func (sc *SliceColumn) Bools() ([]bool, error) {
	typedCol, ok := sc.data.([]bool)
	if !ok {
		return nil, sc.typeError(BoolType)
	}

	return typedCol, nil
}

// BoolAt returns bool value at index i
func (sc *SliceColumn) BoolAt(i int) (bool, error) {
	if err := sc.checkIndex(i); err != nil {
		return false, err
	}

	typedCol, err := sc.Bools()
	if err != nil {
		return false, err
	}

	return typedCol[i], nil
}

// Times returns data as []time.Time
func (sc *SliceColumn) Times() ([]time.Time, error) {
	typedCol, ok := sc.data.([]time.Time)
	if !ok {
		return nil, sc.typeError(TimeType)
	}

	return typedCol, nil
}

// TimeAt returns time.Time value at index i
func (sc *SliceColumn) TimeAt(i int) (time.Time, error) {
	if err := sc.checkIndex(i); err != nil {
		return time.Time{}, err
	}

	typedCol, err := sc.Times()
	if err != nil {
		return time.Time{}, err
	}

	return typedCol[i], nil
}

// Bytes returns data as [][]byte
func (sc *SliceColumn) Bytes() ([][]byte, error) {
	typedCol, ok := sc.data.([][]byte)
	if !ok {
		return nil, sc.typeError(BytesType)
	}

	return typedCol, nil
}

// BytesAt returns []byte value at index i
func (sc *SliceColumn) BytesAt(i int) ([]byte, error) {
	if err := sc.checkIndex(i); err != nil {
		return nil, err
	}

	typedCol, err := sc.Bytes()
	if err != nil {
		return nil, err
	}

	return typedCol[i], nil
}

// Slice returns a Column with a copy of rows [start, end)
func (sc *SliceColumn) Slice(start int, end int) (Column, error) {
	if err := validateSlice(start, end, sc.Len()); err != nil {
		return nil, errors.Wrapf(err, "can't slice %q", sc.name)
	}

	var nulls []bool
	if sc.nulls != nil {
		nulls = append([]bool(nil), sc.nulls[start:end]...)
	}

	var slice interface{}
	switch typedCol := sc.data.(type) {
	case []int64:
		slice = append(make([]int64, 0, end-start), typedCol[start:end]...)
	case []float64:
		slice = append(make([]float64, 0, end-start), typedCol[start:end]...)
	case []string:
		slice = append(make([]string, 0, end-start), typedCol[start:end]...)
	case []bool:
		slice = append(make([]bool, 0, end-start), typedCol[start:end]...)
	case []time.Time:
		slice = append(make([]time.Time, 0, end-start), typedCol[start:end]...)
	case [][]byte:
		byteSlices := make([][]byte, end-start)
		for i, val := range typedCol[start:end] {
			if val != nil {
				byteSlices[i] = append([]byte{}, val...)
			}
		}
		slice = byteSlices
	}

	return newSliceColumn(sc.name, sc.dtype, slice, nulls, end-start), nil
}

// CopyWithName returns a column sharing data with sc under a new name
func (sc *SliceColumn) CopyWithName(newName string) Column {
	return newSliceColumn(newName, sc.dtype, sc.data, sc.nulls, sc.size)
}

func (sc *SliceColumn) formatAt(i int) string {
	if sc.IsNull(i) {
		return ""
	}

	switch typedCol := sc.data.(type) {
	case []int64:
		return strconv.FormatInt(typedCol[i], 10)
	case []float64:
		return formatFloat(typedCol[i])
	case []bool:
		return strconv.FormatBool(typedCol[i])
	case []time.Time:
		return typedCol[i].Format(time.RFC3339Nano)
	case [][]byte:
		return base64.StdEncoding.EncodeToString(typedCol[i])
	}

	return ""
}

func (sc *SliceColumn) checkIndex(i int) error {
	if i < 0 || i >= sc.size {
		return errors.Errorf("%s: index %d out of bounds [0:%d]", sc.name, i, sc.size)
	}

	return nil
}

func (sc *SliceColumn) typeError(dtype DType) error {
	return errors.Errorf("%s: wrong type (type is %s, not %s)", sc.name, sc.dtype, dtype)
}

func formatFloat(val float64) string {
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return strconv.FormatFloat(val, 'g', -1, 64)
	}

	return strconv.FormatFloat(val, 'f', -1, 64)
}

func anyTrue(flags []bool) bool {
	for _, flag := range flags {
		if flag {
			return true
		}
	}

	return false
}
