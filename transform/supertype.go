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
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/v3io/tabular"
)

// Supertype returns the type that can hold values of both a and b, false if
// there is none
func Supertype(a tabular.DType, b tabular.DType) (tabular.DType, bool) {
	if a == b {
		return a, true
	}

	if a == tabular.NullType {
		return b, true
	}

	if b == tabular.NullType {
		return a, true
	}

	if rank(a) > rank(b) {
		a, b = b, a
	}

	switch {
	case a == tabular.BoolType && b == tabular.IntType:
		return tabular.IntType, true
	case (a == tabular.BoolType || a == tabular.IntType) && b == tabular.FloatType:
		return tabular.FloatType, true
	case a != tabular.BytesType && b == tabular.StringType:
		return tabular.StringType, true
	}

	return tabular.NullType, false
}

// rank orders types so Supertype only looks at one argument order
func rank(dtype tabular.DType) int {
	switch dtype {
	case tabular.BoolType:
		return 1
	case tabular.IntType:
		return 2
	case tabular.FloatType:
		return 3
	case tabular.TimeType:
		return 4
	case tabular.StringType:
		return 5
	case tabular.BytesType:
		return 6
	}

	return 0
}

// convertValue returns value as a Go native of dtype, which must be a
// Supertype of value.Kind. nil for nulls.
func convertValue(value Value, dtype tabular.DType) (interface{}, error) {
	if value.IsNull() {
		return nil, nil
	}

	if value.Kind == dtype {
		return value.Interface(), nil
	}

	switch dtype {
	case tabular.IntType:
		if value.Kind == tabular.BoolType {
			if value.Bool {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case tabular.FloatType:
		switch value.Kind {
		case tabular.IntType:
			return float64(value.Int), nil
		case tabular.BoolType:
			if value.Bool {
				return 1.0, nil
			}
			return 0.0, nil
		}
	case tabular.StringType:
		switch value.Kind {
		case tabular.IntType:
			return strconv.FormatInt(value.Int, 10), nil
		case tabular.FloatType:
			return strconv.FormatFloat(value.Float, 'f', -1, 64), nil
		case tabular.BoolType:
			return strconv.FormatBool(value.Bool), nil
		case tabular.TimeType:
			return value.Time.Format(time.RFC3339Nano), nil
		}
	}

	return nil, errors.Wrapf(tabular.ErrIncompatibleSchema, "can't convert %s to %s", value.Kind, dtype)
}
