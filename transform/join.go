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
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/v3io/tabular"
)

// JoinHow is the join mode
type JoinHow int

// Join modes
const (
	InnerJoin JoinHow = iota
	LeftJoin
	CrossJoin
)

// RightSuffix is added to right side column names that already exist on the
// left side
const RightSuffix = "_right"

func (how JoinHow) String() string {
	switch how {
	case LeftJoin:
		return "left"
	case CrossJoin:
		return "cross"
	}

	return "inner"
}

// ParseJoinHow returns the join mode named by how, unknown names are inner
func ParseJoinHow(how string) JoinHow {
	switch strings.ToLower(strings.TrimSpace(how)) {
	case "left":
		return LeftJoin
	case "cross":
		return CrossJoin
	}

	return InnerJoin
}

// Join joins frames left to right on the keys columns. Key columns appear
// once in the result (cross join keeps the right ones, suffixed). Inputs are
// not modified.
func Join(frames []tabular.Frame, keys []string, how JoinHow) (tabular.Frame, error) {
	if len(frames) == 0 {
		return nil, errors.Wrap(tabular.ErrEmptyInputList, "no frames to join")
	}

	if len(keys) == 0 && how != CrossJoin {
		return nil, errors.Wrapf(tabular.ErrKeyColumnMissing, "%s join without keys", how)
	}

	for i, frame := range frames {
		for _, key := range keys {
			if _, err := frame.Column(key); err != nil {
				return nil, errors.Wrapf(tabular.ErrKeyColumnMissing, "frame %d has no %q", i, key)
			}
		}
	}

	result := frames[0]
	for i, right := range frames[1:] {
		var err error
		result, err = joinPair(result, right, keys, how)
		if err != nil {
			return nil, errors.Wrapf(err, "can't join frame %d", i+1)
		}
	}

	return result, nil
}

func joinPair(left tabular.Frame, right tabular.Frame, keys []string, how JoinHow) (tabular.Frame, error) {
	var leftRows, rightRows []int
	if how == CrossJoin {
		leftRows, rightRows = crossRows(left.Len(), right.Len())
	} else {
		leftKey, rightKey, err := newKeyEncoders(left, right, keys)
		if err != nil {
			return nil, err
		}

		leftRows, rightRows = matchRows(leftKey, left.Len(), rightKey, right.Len(), how)
	}

	isKey := make(map[string]bool, len(keys))
	for _, key := range keys {
		isKey[key] = true
	}

	taken := make(map[string]bool)
	var columns []tabular.Column
	for _, col := range left.Columns() {
		newCol, err := take(col, col.Name(), leftRows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, newCol)
		taken[col.Name()] = true
	}

	for _, col := range right.Columns() {
		if isKey[col.Name()] && how != CrossJoin {
			continue
		}

		name := uniqueName(col.Name(), RightSuffix, taken)
		newCol, err := take(col, name, rightRows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, newCol)
		taken[name] = true
	}

	return tabular.NewFrame(columns)
}

func crossRows(numLeft int, numRight int) ([]int, []int) {
	leftRows := make([]int, 0, numLeft*numRight)
	rightRows := make([]int, 0, numLeft*numRight)
	for i := 0; i < numLeft; i++ {
		for j := 0; j < numRight; j++ {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
		}
	}

	return leftRows, rightRows
}

// matchRows returns the row pairs of a hash equi-join, right row -1 is an
// unmatched left row
func matchRows(leftKey keyEncoder, numLeft int, rightKey keyEncoder, numRight int, how JoinHow) ([]int, []int) {
	index := make(map[string][]int, numRight)
	for j := 0; j < numRight; j++ {
		if key, ok := rightKey(j); ok {
			index[key] = append(index[key], j)
		}
	}

	var leftRows, rightRows []int
	for i := 0; i < numLeft; i++ {
		var matches []int
		if key, ok := leftKey(i); ok {
			matches = index[key]
		}

		if len(matches) == 0 {
			if how == LeftJoin {
				leftRows = append(leftRows, i)
				rightRows = append(rightRows, -1)
			}
			continue
		}

		for _, j := range matches {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
		}
	}

	return leftRows, rightRows
}

// keyEncoder returns the hash key of a row, false if a key value is null
type keyEncoder func(row int) (string, bool)

func newKeyEncoders(left tabular.Frame, right tabular.Frame, keys []string) (keyEncoder, keyEncoder, error) {
	leftCols := make([]tabular.Column, len(keys))
	rightCols := make([]tabular.Column, len(keys))
	kinds := make([]tabular.DType, len(keys))
	for i, key := range keys {
		leftCol, err := left.Column(key)
		if err != nil {
			return nil, nil, errors.Wrapf(tabular.ErrKeyColumnMissing, "left side has no %q", key)
		}

		rightCol, err := right.Column(key)
		if err != nil {
			return nil, nil, errors.Wrapf(tabular.ErrKeyColumnMissing, "right side has no %q", key)
		}

		kind, err := keyKind(leftCol.DType(), rightCol.DType())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "key %q", key)
		}

		leftCols[i], rightCols[i], kinds[i] = leftCol, rightCol, kind
	}

	return columnsKey(leftCols, kinds), columnsKey(rightCols, kinds), nil
}

// keyKind is the type both sides of a key are compared as
func keyKind(left tabular.DType, right tabular.DType) (tabular.DType, error) {
	switch {
	case left == right:
		return left, nil
	case left == tabular.NullType:
		return right, nil
	case right == tabular.NullType:
		return left, nil
	case isNumeric(left) && isNumeric(right):
		return tabular.FloatType, nil
	}

	return tabular.NullType, errors.Wrapf(tabular.ErrIncompatibleSchema, "can't compare %s to %s", left, right)
}

func isNumeric(dtype tabular.DType) bool {
	return dtype == tabular.IntType || dtype == tabular.FloatType
}

func columnsKey(columns []tabular.Column, kinds []tabular.DType) keyEncoder {
	return func(row int) (string, bool) {
		var sb strings.Builder
		for i, col := range columns {
			value, err := valueAt(col, row)
			if err != nil || value.IsNull() {
				return "", false
			}

			part, ok := encodeKeyValue(value, kinds[i])
			if !ok {
				return "", false
			}

			// length prefix keeps multi column keys unambiguous
			sb.WriteString(strconv.Itoa(len(part)))
			sb.WriteByte(':')
			sb.WriteString(part)
		}

		return sb.String(), true
	}
}

func encodeKeyValue(value Value, kind tabular.DType) (string, bool) {
	switch value.Kind {
	case tabular.IntType:
		if kind == tabular.FloatType {
			return encodeFloatKey(float64(value.Int))
		}
		return strconv.FormatInt(value.Int, 10), true
	case tabular.FloatType:
		return encodeFloatKey(value.Float)
	case tabular.StringType:
		return value.Str, true
	case tabular.BoolType:
		return strconv.FormatBool(value.Bool), true
	case tabular.TimeType:
		return strconv.FormatInt(value.Time.UnixNano(), 10), true
	case tabular.BytesType:
		return string(value.Bytes), true
	}

	return "", false
}

// NaN equals nothing, -0 equals 0
func encodeFloatKey(val float64) (string, bool) {
	if math.IsNaN(val) {
		return "", false
	}

	if val == 0 {
		val = 0
	}

	return strconv.FormatFloat(val, 'g', -1, 64), true
}
