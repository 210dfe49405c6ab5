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

package test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/v3io/tabular"
)

// IntCol returns a column of 0..size-1 plus offset
func IntCol(t testing.TB, name string, size int, offset int64) tabular.Column {
	ints := make([]int64, size)
	for i := range ints {
		ints[i] = int64(i) + offset
	}

	col, err := tabular.NewSliceColumn(name, ints)
	if err != nil {
		t.Fatal(err)
	}

	return col
}

// FloatCol returns a column of random floats
func FloatCol(t testing.TB, name string, size int) tabular.Column {
	random := rand.New(rand.NewSource(time.Now().Unix()))
	floats := make([]float64, size)
	for i := range floats {
		floats[i] = random.Float64()
	}

	col, err := tabular.NewSliceColumn(name, floats)
	if err != nil {
		t.Fatal(err)
	}

	return col
}

// StringCol returns a column of "val-<row>" values
func StringCol(t testing.TB, name string, size int) tabular.Column {
	strings := make([]string, size)
	for i := range strings {
		strings[i] = fmt.Sprintf("val-%d", i)
	}

	col, err := tabular.NewSliceColumn(name, strings)
	if err != nil {
		t.Fatal(err)
	}
	return col
}

// BoolCol returns a column alternating true and false
func BoolCol(t testing.TB, name string, size int) tabular.Column {
	bools := make([]bool, size)
	for i := range bools {
		bools[i] = i%2 == 0
	}

	col, err := tabular.NewSliceColumn(name, bools)
	if err != nil {
		t.Fatal(err)
	}
	return col
}

// TimeCol returns a column of hourly UTC times
func TimeCol(t testing.TB, name string, size int) tabular.Column {
	times := make([]time.Time, size)
	now := time.Now().UTC().Truncate(time.Second)
	for i := range times {
		times[i] = now.Add(time.Duration(i) * time.Hour)
	}

	col, err := tabular.NewSliceColumn(name, times)
	if err != nil {
		t.Fatal(err)
	}
	return col
}

// Column returns a column from data, see tabular.NewSliceColumn
func Column(t testing.TB, name string, data interface{}) tabular.Column {
	col, err := tabular.NewSliceColumn(name, data)
	if err != nil {
		t.Fatal(err)
	}
	return col
}

// Frame returns a frame of columns
func Frame(t testing.TB, columns ...tabular.Column) tabular.Frame {
	frame, err := tabular.NewFrame(columns)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

// MixedFrame returns a frame with an "id" column and a column of every non
// null type
func MixedFrame(t testing.TB, size int) tabular.Frame {
	return Frame(t,
		IntCol(t, "id", size, 0),
		FloatCol(t, "float", size),
		StringCol(t, "string", size),
		BoolCol(t, "bool", size),
		TimeCol(t, "time", size),
	)
}

// RequireFramesEqual fails t if a and b differ in names, types or values
func RequireFramesEqual(t testing.TB, a tabular.Frame, b tabular.Frame) {
	if diff := cmp.Diff(a.Names(), b.Names()); diff != "" {
		t.Fatalf("names mismatch (-a +b):\n%s", diff)
	}

	if a.Len() != b.Len() {
		t.Fatalf("length mismatch: %d != %d", a.Len(), b.Len())
	}

	for _, name := range a.Names() {
		colA, _ := a.Column(name)
		colB, _ := b.Column(name)
		if colA.DType() != colB.DType() {
			t.Fatalf("%q: type mismatch: %s != %s", name, colA.DType(), colB.DType())
		}
	}

	itA, itB := a.IterRows(), b.IterRows()
	for itA.Next() {
		if !itB.Next() {
			t.Fatalf("%d: missing row - %v", itA.RowNum(), itB.Err())
		}

		rowA, rowB := itA.Row(), itB.Row()
		for _, name := range a.Names() {
			if !valuesEqual(rowA[name], rowB[name]) {
				t.Fatalf("%q:%d: %v != %v", name, itA.RowNum(), rowA[name], rowB[name])
			}
		}
	}

	if err := itA.Err(); err != nil {
		t.Fatalf("can't iterate - %v", err)
	}

	if itB.Next() || itB.Err() != nil {
		t.Fatalf("extra row or error - %v", itB.Err())
	}
}

func valuesEqual(a interface{}, b interface{}) bool {
	switch typedA := a.(type) {
	case time.Time:
		typedB, ok := b.(time.Time)
		return ok && typedA.Equal(typedB)
	case []byte:
		typedB, ok := b.([]byte)
		return ok && string(typedA) == string(typedB)
	}

	return a == b
}
