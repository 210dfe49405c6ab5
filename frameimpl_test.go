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
	"fmt"
	"testing"
)

func TestFrameNew(t *testing.T) {
	nCols, size := 3, 10
	cols := newIntCols(t, nCols, size)

	frame, err := NewFrame(cols)
	if err != nil {
		t.Fatalf("can't create frame - %s", err)
	}

	names := frame.Names()
	if len(names) != len(cols) {
		t.Fatalf("# of columns mismatch - %d != %d", len(names), len(cols))
	}

	for i, name := range names {
		if cols[i].Name() != name {
			t.Fatalf("%d: name mismatch - %q != %q", i, cols[i].Name(), name)
		}
	}

	if frame.Len() != size {
		t.Fatalf("length mismatch - %d != %d", frame.Len(), size)
	}
}

func TestFrameNewErrors(t *testing.T) {
	short, _ := NewSliceColumn("short", []int64{1})
	long, _ := NewSliceColumn("long", []int64{1, 2})
	if _, err := NewFrame([]Column{short, long}); !IsKind(err, ErrRowCountMismatch) {
		t.Fatalf("bad error for mismatched lengths - %v", err)
	}

	if _, err := NewFrame([]Column{short, short}); !IsKind(err, ErrDuplicateColumn) {
		t.Fatalf("bad error for duplicate names - %v", err)
	}
}

func TestFrameSlice(t *testing.T) {
	nCols, size := 7, 10
	frame, err := NewFrame(newIntCols(t, nCols, size))
	if err != nil {
		t.Fatalf("can't create frame - %s", err)
	}

	start, end := 2, 7
	frame2, err := frame.Slice(start, end)
	if err != nil {
		t.Fatalf("can't create slice - %s", err)
	}

	if frame2.Len() != end-start {
		t.Fatalf("bad # of rows in slice - %d != %d", frame2.Len(), end-start)
	}

	names2 := frame2.Names()
	if len(names2) != nCols {
		t.Fatalf("# of columns mismatch - %d != %d", len(names2), nCols)
	}

	col, err := frame2.Column("col3")
	if err != nil {
		t.Fatal(err)
	}

	val, err := col.IntAt(0)
	if err != nil || val != 3*100+int64(start) {
		t.Fatalf("bad value - %v, %v", val, err)
	}

	if _, err := frame.Slice(0, size+1); err == nil {
		t.Fatal("sliced out of bounds")
	}

	if _, err := frame.Slice(size, size); err != nil {
		t.Fatalf("can't get empty tail slice - %s", err)
	}
}

func TestFrameSelectDrop(t *testing.T) {
	frame, err := NewFrame(newIntCols(t, 4, 3))
	if err != nil {
		t.Fatal(err)
	}

	selected, err := frame.Select("col2", "col0")
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(selected.Names()) != "[col2 col0]" {
		t.Fatalf("bad selection - %v", selected.Names())
	}

	if _, err := frame.Select("col9"); !IsKind(err, ErrColumnNotFound) {
		t.Fatalf("bad error for missing column - %v", err)
	}

	dropped, err := frame.Drop("col1", "col3")
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(dropped.Names()) != "[col0 col2]" {
		t.Fatalf("bad drop - %v", dropped.Names())
	}

	if _, err := frame.Drop("col9"); !IsKind(err, ErrColumnNotFound) {
		t.Fatalf("bad error for dropping missing column - %v", err)
	}

	// original is untouched
	if len(frame.Names()) != 4 {
		t.Fatalf("frame modified - %v", frame.Names())
	}
}

func TestFrameWithColumn(t *testing.T) {
	frame, err := NewFrame(newIntCols(t, 2, 3))
	if err != nil {
		t.Fatal(err)
	}

	scol, _ := NewSliceColumn("col0", []string{"a", "b", "c"})
	replaced, err := frame.WithColumn(scol)
	if err != nil {
		t.Fatal(err)
	}

	col, _ := replaced.Column("col0")
	if col.DType() != StringType || fmt.Sprint(replaced.Names()) != "[col0 col1]" {
		t.Fatalf("column not replaced in place - %v", replaced.Names())
	}

	ncol, _ := NewSliceColumn("new", []bool{true, false, true})
	appended, err := frame.WithColumn(ncol)
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(appended.Names()) != "[col0 col1 new]" {
		t.Fatalf("column not appended - %v", appended.Names())
	}

	short, _ := NewSliceColumn("short", []int64{1})
	if _, err := frame.WithColumn(short); !IsKind(err, ErrRowCountMismatch) {
		t.Fatalf("bad error for short column - %v", err)
	}
}

func TestFrameFromMap(t *testing.T) {
	data := map[string]interface{}{
		"b": []string{"x", "y"},
		"a": []int64{1, 2},
	}

	frame, err := NewFrameFromMap(data, nil)
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(frame.Names()) != "[a b]" {
		t.Fatalf("bad names - %v", frame.Names())
	}

	frame, err = NewFrameFromMap(data, []string{"b", "a"})
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(frame.Names()) != "[b a]" {
		t.Fatalf("bad names - %v", frame.Names())
	}
}

func TestFrameFromRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"id": 1, "name": "foo"},
		{"id": 2},
	}

	frame, err := NewFrameFromRows(rows, []string{"id", "name"})
	if err != nil {
		t.Fatal(err)
	}

	if frame.Len() != 2 {
		t.Fatalf("bad length - %d", frame.Len())
	}

	col, err := frame.Column("name")
	if err != nil {
		t.Fatal(err)
	}

	if col.IsNull(0) || !col.IsNull(1) {
		t.Fatal("bad nulls")
	}
}

func newIntCols(t *testing.T, numCols int, size int) []Column {
	var cols []Column

	for i := 0; i < numCols; i++ {
		data := make([]int64, size)
		for j := range data {
			data[j] = int64(i*100 + j)
		}

		col, err := NewSliceColumn(fmt.Sprintf("col%d", i), data)
		if err != nil {
			t.Fatalf("can't create column - %s", err)
		}

		cols = append(cols, col)
	}

	return cols
}
