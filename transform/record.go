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
	"time"

	"github.com/pkg/errors"

	"github.com/v3io/tabular"
)

// Value is a single tagged cell value. Kind is tabular.NullType for absent
// values.
type Value struct {
	Kind  tabular.DType
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Time  time.Time
	Bytes []byte
}

// IsNull returns true for absent values
func (v Value) IsNull() bool {
	return v.Kind == tabular.NullType
}

// Interface returns the value as a Go native type, nil for absent values
func (v Value) Interface() interface{} {
	switch v.Kind {
	case tabular.IntType:
		return v.Int
	case tabular.FloatType:
		return v.Float
	case tabular.StringType:
		return v.Str
	case tabular.BoolType:
		return v.Bool
	case tabular.TimeType:
		return v.Time
	case tabular.BytesType:
		return v.Bytes
	}

	return nil
}

// Field is a named value
type Field struct {
	Name  string
	Value Value
}

// Record is one row of selected columns, fields are in selection order
type Record []Field

// Get returns the value of the named field
func (r Record) Get(name string) (Value, bool) {
	for _, field := range r {
		if field.Name == name {
			return field.Value, true
		}
	}

	return Value{}, false
}

// Names returns the field names in order
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, field := range r {
		names[i] = field.Name
	}

	return names
}

// valueAt reads a typed value from col at row i
func valueAt(col tabular.Column, i int) (Value, error) {
	if col.IsNull(i) {
		return Value{Kind: tabular.NullType}, nil
	}

	value := Value{Kind: col.DType()}
	var err error
	switch value.Kind {
	case tabular.IntType:
		value.Int, err = col.IntAt(i)
	case tabular.FloatType:
		value.Float, err = col.FloatAt(i)
	case tabular.StringType:
		value.Str, err = col.StringAt(i)
	case tabular.BoolType:
		value.Bool, err = col.BoolAt(i)
	case tabular.TimeType:
		value.Time, err = col.TimeAt(i)
	case tabular.BytesType:
		value.Bytes, err = col.BytesAt(i)
	default:
		err = errors.Wrapf(tabular.ErrUnsupportedType, "%s:%d - unknown dtype %s", col.Name(), i, value.Kind)
	}

	if err != nil {
		return Value{}, err
	}

	return value, nil
}
