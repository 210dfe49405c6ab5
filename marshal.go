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
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

// Marshaler is interface for writing native data
type Marshaler interface {
	Marshal() (interface{}, error) // Marshal to native type
}

// ColumnMessage is a column over-the-wire message.
// We encode this way and not have single `Data interface{}` since msgpack
// then will packs []int64 to int8, int16 ...
type ColumnMessage struct {
	Name       string    `msgpack:"name"`
	DType      string    `msgpack:"dtype"`
	Size       int       `msgpack:"size"`
	IntData    []int64   `msgpack:"ints,omitempty"`
	FloatData  []float64 `msgpack:"floats,omitempty"`
	StringData []string  `msgpack:"strings,omitempty"`
	BoolData   []bool    `msgpack:"bools,omitempty"`
	BytesData  [][]byte  `msgpack:"bytes,omitempty"`
	// Times are sent as epoch nanoseconds so non Go peers can read them
	NSTimeData []int64 `msgpack:"ns_times,omitempty"`
	Nulls      []bool  `msgpack:"nulls,omitempty"`
}

// FrameMessage is over-the-wire frame data
type FrameMessage struct {
	Columns []*ColumnMessage `msgpack:"columns"`
}

// Marshal marshals to native type
func (sc *SliceColumn) Marshal() (interface{}, error) {
	msg := &ColumnMessage{
		Name:  sc.Name(),
		DType: sc.DType().String(),
		Size:  sc.Len(),
		Nulls: sc.nulls,
	}

	switch typedCol := sc.data.(type) {
	case []int64:
		msg.IntData = typedCol
	case []float64:
		msg.FloatData = typedCol
	case []string:
		msg.StringData = typedCol
	case []bool:
		msg.BoolData = typedCol
	case []time.Time:
		msg.NSTimeData = make([]int64, len(typedCol))
		for i, t := range typedCol {
			msg.NSTimeData[i] = t.UnixNano()
		}
	case [][]byte:
		msg.BytesData = typedCol
	case nil:
		// null column, size is enough
	default:
		return nil, errors.Errorf("can't marshal column of type %s", sc.DType())
	}

	return msg, nil
}

// MarshalFrame converts a frame to its wire message
func MarshalFrame(frame Frame) (*FrameMessage, error) {
	columns := frame.Columns()
	msg := &FrameMessage{
		Columns: make([]*ColumnMessage, len(columns)),
	}

	for i, col := range columns {
		marshaler, ok := col.(Marshaler)
		if !ok {
			return nil, errors.Errorf("column %q is not Marshaler", col.Name())
		}

		colMsg, err := marshaler.Marshal()
		if err != nil {
			return nil, errors.Wrapf(err, "can't marshal %q", col.Name())
		}

		msg.Columns[i] = colMsg.(*ColumnMessage)
	}

	return msg, nil
}

// UnmarshalFrame converts a wire message to a frame
func UnmarshalFrame(msg *FrameMessage) (Frame, error) {
	return unmarshalFrame(msg, 0)
}

// unmarshalFrame converts msg, maxRows > 0 bounds the declared column sizes
func unmarshalFrame(msg *FrameMessage, maxRows int) (Frame, error) {
	columns := make([]Column, len(msg.Columns))
	for i, colMsg := range msg.Columns {
		col, err := unmarshalColumn(colMsg, maxRows)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", i)
		}
		columns[i] = col
	}

	return NewFrame(columns)
}

func unmarshalColumn(msg *ColumnMessage, maxRows int) (Column, error) {
	dtype, err := DTypeFromString(msg.DType)
	if err != nil {
		return nil, err
	}

	if msg.Size < 0 {
		return nil, errors.Wrapf(ErrRowCountMismatch, "%q: negative size %d", msg.Name, msg.Size)
	}

	if maxRows > 0 && msg.Size > maxRows {
		return nil, errors.Wrapf(ErrRowCountMismatch, "%q: size %d is over the limit of %d rows", msg.Name, msg.Size, maxRows)
	}

	if msg.Nulls != nil && len(msg.Nulls) != msg.Size {
		return nil, errors.Wrapf(ErrRowCountMismatch, "%q: %d nulls for %d values", msg.Name, len(msg.Nulls), msg.Size)
	}

	var data interface{}
	var size int
	switch dtype {
	case NullType:
		col, err := NewNullColumn(msg.Name, msg.Size)
		if err != nil {
			return nil, err
		}
		return col, nil
	case IntType:
		if msg.IntData == nil {
			msg.IntData = []int64{}
		}
		data, size = msg.IntData, len(msg.IntData)
	case FloatType:
		if msg.FloatData == nil {
			msg.FloatData = []float64{}
		}
		data, size = msg.FloatData, len(msg.FloatData)
	case StringType:
		if msg.StringData == nil {
			msg.StringData = []string{}
		}
		data, size = msg.StringData, len(msg.StringData)
	case BoolType:
		if msg.BoolData == nil {
			msg.BoolData = []bool{}
		}
		data, size = msg.BoolData, len(msg.BoolData)
	case TimeType:
		times := make([]time.Time, len(msg.NSTimeData))
		for i, ns := range msg.NSTimeData {
			times[i] = time.Unix(0, ns).UTC()
		}
		data, size = times, len(times)
	case BytesType:
		if msg.BytesData == nil {
			msg.BytesData = [][]byte{}
		}
		data, size = msg.BytesData, len(msg.BytesData)
	}

	if size != msg.Size {
		return nil, errors.Wrapf(ErrRowCountMismatch, "%q: got %d values, expected %d", msg.Name, size, msg.Size)
	}

	return newSliceColumn(msg.Name, dtype, data, msg.Nulls, size), nil
}

// Encoder encodes frames
type Encoder struct {
	encoder *msgpack.Encoder
}

// NewEncoder returns a new message encoder
func NewEncoder(writer io.Writer) *Encoder {
	return &Encoder{
		encoder: msgpack.NewEncoder(writer),
	}
}

// Encode encodes a frame
func (e *Encoder) Encode(frame Frame) error {
	msg, err := MarshalFrame(frame)
	if err != nil {
		return errors.Wrap(err, "can't marshal frame")
	}

	if err := e.encoder.Encode(msg); err != nil {
		return errors.Wrap(err, "can't encode data")
	}

	return nil
}

// Decoder decodes message
type Decoder struct {
	decoder *msgpack.Decoder
	maxRows int
}

// NewDecoder returns a new decoder
func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{
		decoder: msgpack.NewDecoder(reader),
	}
}

// WithMaxRows makes the decoder reject columns declaring more than maxRows
// rows, 0 means no limit
func (d *Decoder) WithMaxRows(maxRows int) *Decoder {
	d.maxRows = maxRows
	return d
}

// Decode decodes a frame, returns io.EOF when there are no more frames
func (d *Decoder) Decode() (Frame, error) {
	msg := &FrameMessage{}
	if err := d.decoder.Decode(msg); err != nil {
		return nil, err
	}

	return unmarshalFrame(msg, d.maxRows)
}

// DecodeAll decodes frames until the end of input
func (d *Decoder) DecodeAll() ([]Frame, error) {
	var frames []Frame
	for {
		frame, err := d.Decode()
		if err == io.EOF {
			return frames, nil
		}

		if err != nil {
			return nil, err
		}

		frames = append(frames, frame)
	}
}
