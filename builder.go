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
	"math"
	"time"

	"github.com/pkg/errors"
)

// NewSliceColumnBuilder return a builder for SliceColumn. size is a capacity
// hint, the builder grows as needed. Positions skipped by Set are nulls.
func NewSliceColumnBuilder(name string, dtype DType, size int) ColumnBuilder {
	if size < 0 {
		size = 0
	}

	b := &sliceColumBuilder{
		name:  name,
		dtype: dtype,
		nulls: make([]bool, 0, size),
	}

	switch dtype {
	case IntType:
		b.ints = make([]int64, 0, size)
	case FloatType:
		b.floats = make([]float64, 0, size)
	case StringType:
		b.strings = make([]string, 0, size)
	case BoolType:
		b.bools = make([]bool, 0, size)
	case TimeType:
		b.times = make([]time.Time, 0, size)
	case BytesType:
		b.bytes = make([][]byte, 0, size)
	}

	return b
}

type sliceColumBuilder struct {
	name  string
	dtype DType
	size  int
	nulls []bool

	ints    []int64
	floats  []float64
	strings []string
	bools   []bool
	times   []time.Time
	bytes   [][]byte
}

func (b *sliceColumBuilder) Append(value interface{}) error {
	return b.Set(b.size, value)
}

func (b *sliceColumBuilder) AppendNull() {
	b.resize(b.size + 1)
}

func (b *sliceColumBuilder) At(index int) (interface{}, error) {
	if index < 0 || index >= b.size {
		return nil, errors.Errorf("%s: index out of bounds %d > %d", b.name, index, b.size-1)
	}

	if b.nulls[index] {
		return nil, nil
	}

	switch b.dtype {
	case IntType:
		return b.ints[index], nil
	case FloatType:
		return b.floats[index], nil
	case StringType:
		return b.strings[index], nil
	case BoolType:
		return b.bools[index], nil
	case TimeType:
		return b.times[index], nil
	case BytesType:
		return b.bytes[index], nil
	}

	return nil, nil
}

func (b *sliceColumBuilder) Set(index int, value interface{}) error {
	if index < 0 {
		return errors.Errorf("%s: negative index %d", b.name, index)
	}

	if index >= b.size {
		b.resize(index + 1)
	}

	if value == nil {
		b.nulls[index] = true
		return nil
	}

	var err error
	switch b.dtype {
	case IntType:
		err = b.setInt(index, value)
	case FloatType:
		err = b.setFloat(index, value)
	case StringType:
		err = b.setString(index, value)
	case BoolType:
		err = b.setBool(index, value)
	case TimeType:
		err = b.setTime(index, value)
	case BytesType:
		err = b.setBytes(index, value)
	default:
		err = b.typeError(value)
	}

	if err != nil {
		return err
	}

	b.nulls[index] = false
	return nil
}

func (b *sliceColumBuilder) setInt(index int, value interface{}) error {
	switch typedVal := value.(type) {
	case int64:
		b.ints[index] = typedVal
	case int:
		b.ints[index] = int64(typedVal)
	case int8:
		b.ints[index] = int64(typedVal)
	case int16:
		b.ints[index] = int64(typedVal)
	case int32:
		b.ints[index] = int64(typedVal)
	case uint8:
		b.ints[index] = int64(typedVal)
	case uint16:
		b.ints[index] = int64(typedVal)
	case uint32:
		b.ints[index] = int64(typedVal)
	case uint64:
		if typedVal > math.MaxInt64 {
			return errors.Errorf("%s: %d overflows int64", b.name, typedVal)
		}
		b.ints[index] = int64(typedVal)
	default:
		return b.typeError(value)
	}

	return nil
}

func (b *sliceColumBuilder) setFloat(index int, value interface{}) error {
	switch typedVal := value.(type) {
	case float64:
		b.floats[index] = typedVal
	case float32:
		b.floats[index] = float64(typedVal)
	case int64:
		b.floats[index] = float64(typedVal)
	case int:
		b.floats[index] = float64(typedVal)
	case int32:
		b.floats[index] = float64(typedVal)
	default:
		return b.typeError(value)
	}

	return nil
}

func (b *sliceColumBuilder) setString(index int, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return b.typeError(value)
	}

	b.strings[index] = s
	return nil
}

func (b *sliceColumBuilder) setBool(index int, value interface{}) error {
	bval, ok := value.(bool)
	if !ok {
		return b.typeError(value)
	}

	b.bools[index] = bval
	return nil
}

func (b *sliceColumBuilder) setTime(index int, value interface{}) error {
	switch typedVal := value.(type) {
	case time.Time:
		b.times[index] = typedVal
	case int64:
		b.times[index] = time.Unix(0, typedVal).UTC()
	default:
		return b.typeError(value)
	}

	return nil
}

func (b *sliceColumBuilder) setBytes(index int, value interface{}) error {
	data, ok := value.([]byte)
	if !ok {
		return b.typeError(value)
	}

	b.bytes[index] = data
	return nil
}

func (b *sliceColumBuilder) typeError(value interface{}) error {
	return errors.Wrapf(ErrUnsupportedType, "%s column %q can't hold %T", b.dtype, b.name, value)
}

// resize grows to size, new positions are nulls until set
func (b *sliceColumBuilder) resize(size int) {
	for b.size < size {
		b.nulls = append(b.nulls, true)
		switch b.dtype {
		case IntType:
			b.ints = append(b.ints, 0)
		case FloatType:
			b.floats = append(b.floats, 0)
		case StringType:
			b.strings = append(b.strings, "")
		case BoolType:
			b.bools = append(b.bools, false)
		case TimeType:
			b.times = append(b.times, time.Time{})
		case BytesType:
			b.bytes = append(b.bytes, nil)
		}
		b.size++
	}
}

func (b *sliceColumBuilder) Finish() Column {
	var data interface{}
	switch b.dtype {
	case IntType:
		data = b.ints
	case FloatType:
		data = b.floats
	case StringType:
		data = b.strings
	case BoolType:
		data = b.bools
	case TimeType:
		data = b.times
	case BytesType:
		data = b.bytes
	}

	return newSliceColumn(b.name, b.dtype, data, b.nulls, b.size)
}
