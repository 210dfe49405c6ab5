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
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack"
)

func TestMarshalFrame(t *testing.T) {
	frame := createFrame(t)

	msg, err := MarshalFrame(frame)
	if err != nil {
		t.Fatal(err)
	}

	if len(msg.Columns) != len(frame.Columns()) {
		t.Fatal("wrong number of columns")
	}

	if msg.Columns[0].DType != "int" || len(msg.Columns[0].IntData) != frame.Len() {
		t.Fatalf("bad int column - %+v", msg.Columns[0])
	}
}

func TestRoundTrip(t *testing.T) {
	frame := createFrame(t)

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 2; i++ {
		if err := enc.Encode(frame); err != nil {
			t.Fatal(err)
		}
	}

	dec := NewDecoder(&buf)
	frames, err := dec.DecodeAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(frames) != 2 {
		t.Fatalf("wrong number of frames - %d", len(frames))
	}

	out := frames[1]
	if out.Len() != frame.Len() {
		t.Fatalf("length mismatch - %d != %d", out.Len(), frame.Len())
	}

	for i, name := range frame.Names() {
		if out.Names()[i] != name {
			t.Fatalf("%d: name mismatch - %q != %q", i, out.Names()[i], name)
		}

		col, _ := frame.Column(name)
		outCol, _ := out.Column(name)
		if col.DType() != outCol.DType() {
			t.Fatalf("%q: type mismatch - %s != %s", name, col.DType(), outCol.DType())
		}

		for row := 0; row < col.Len(); row++ {
			if col.IsNull(row) != outCol.IsNull(row) {
				t.Fatalf("%s:%d null mismatch", name, row)
			}

			val, _ := col.ValueAt(row)
			outVal, _ := outCol.ValueAt(row)
			switch typedVal := val.(type) {
			case time.Time:
				if !typedVal.Equal(outVal.(time.Time)) {
					t.Fatalf("%s:%d: %v != %v", name, row, val, outVal)
				}
			case []byte:
				if !bytes.Equal(typedVal, outVal.([]byte)) {
					t.Fatalf("%s:%d: %v != %v", name, row, val, outVal)
				}
			default:
				if val != outVal {
					t.Fatalf("%s:%d: %v != %v", name, row, val, outVal)
				}
			}
		}
	}

	if _, err := dec.Decode(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestUnmarshalBadSize(t *testing.T) {
	msg := &FrameMessage{
		Columns: []*ColumnMessage{
			{Name: "i", DType: "int", Size: 3, IntData: []int64{1, 2}},
		},
	}

	if _, err := UnmarshalFrame(msg); !IsKind(err, ErrRowCountMismatch) {
		t.Fatalf("bad error for short column - %v", err)
	}

	msg.Columns[0].DType = "complex"
	if _, err := UnmarshalFrame(msg); !IsKind(err, ErrUnsupportedType) {
		t.Fatalf("bad error for unknown type - %v", err)
	}
}

func TestUnmarshalBadNullSize(t *testing.T) {
	msg := &FrameMessage{
		Columns: []*ColumnMessage{
			{Name: "n", DType: "null", Size: -1},
		},
	}

	if _, err := UnmarshalFrame(msg); !IsKind(err, ErrRowCountMismatch) {
		t.Fatalf("bad error for negative size - %v", err)
	}

	// a declared size costs nothing on the wire, so the decoder bounds it
	msg.Columns[0].Size = 1 << 40
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(msg); err != nil {
		t.Fatal(err)
	}

	_, err := NewDecoder(&buf).WithMaxRows(1000).Decode()
	if !IsKind(err, ErrRowCountMismatch) {
		t.Fatalf("bad error for huge size - %v", err)
	}

	msg.Columns[0].Size = 1000
	buf.Reset()
	if err := msgpack.NewEncoder(&buf).Encode(msg); err != nil {
		t.Fatal(err)
	}

	frame, err := NewDecoder(&buf).WithMaxRows(1000).Decode()
	if err != nil {
		t.Fatal(err)
	}

	if frame.Len() != 1000 {
		t.Fatalf("wrong length - %d", frame.Len())
	}
}

func createFrame(t *testing.T) Frame {
	var (
		columns []Column
		col     Column
		err     error
	)

	col, err = NewSliceColumn("icol", []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	columns = append(columns, col)
	col, err = NewSliceColumn("fcol", []interface{}{1.0, nil, 3.0})
	if err != nil {
		t.Fatal(err)
	}

	columns = append(columns, col)
	col, err = NewSliceColumn("scol", []string{"1", "2", "3"})
	if err != nil {
		t.Fatal(err)
	}

	columns = append(columns, col)
	col, err = NewSliceColumn("tcol", []time.Time{time.Now(), time.Now(), time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	columns = append(columns, col)
	col, err = NewSliceColumn("bcol", [][]byte{[]byte("a"), nil, {0xff}})
	if err != nil {
		t.Fatal(err)
	}

	columns = append(columns, col)
	col, err = NewNullColumn("ncol", 3)
	if err != nil {
		t.Fatal(err)
	}

	columns = append(columns, col)
	frame, err := NewFrame(columns)
	if err != nil {
		t.Fatal(err)
	}

	return frame
}
