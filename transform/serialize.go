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
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"math"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/v3io/tabular"
	"github.com/v3io/tabular/repeatingtask"
)

// Serializer turns records into JSON object strings. Keys keep the record
// field order so equal records always give equal strings.
type Serializer struct {
	binaryEncoding string
	pool           *repeatingtask.Pool
	parallel       int
	threshold      int
}

// NewSerializer returns a sequential serializer, binaryEncoding is one of
// tabular.Base64Encoding (also used when empty), tabular.HexEncoding or
// tabular.NoEncoding (bytes values fail to serialize)
func NewSerializer(binaryEncoding string) (*Serializer, error) {
	switch binaryEncoding {
	case "":
		binaryEncoding = tabular.Base64Encoding
	case tabular.Base64Encoding, tabular.HexEncoding, tabular.NoEncoding:
	default:
		return nil, errors.Errorf("unknown binary encoding - %q", binaryEncoding)
	}

	return &Serializer{binaryEncoding: binaryEncoding}, nil
}

// WithPool returns a copy of s that serializes on pool, using up to parallel
// workers, once there are at least threshold records
func (s *Serializer) WithPool(pool *repeatingtask.Pool, parallel int, threshold int) *Serializer {
	parallelSerializer := *s
	parallelSerializer.pool = pool
	parallelSerializer.parallel = parallel
	parallelSerializer.threshold = threshold
	return &parallelSerializer
}

// Serialize returns record as a JSON object
func (s *Serializer) Serialize(record Record) (string, error) {
	var buf bytes.Buffer
	if err := s.encodeRecord(&buf, record); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// SerializeAll serializes records, result i is records[i]. On failure the
// error of the first failing record is returned.
func (s *Serializer) SerializeAll(records []Record) ([]string, error) {
	out := make([]string, len(records))
	if s.pool == nil || s.parallel < 2 || len(records) < s.threshold || len(records) < 2 {
		if err := s.serializeRange(records, out, 0, len(records)); err != nil {
			return nil, err
		}

		return out, nil
	}

	numBatches := s.parallel * 4
	if numBatches > len(records) {
		numBatches = len(records)
	}
	batchSize := (len(records) + numBatches - 1) / numBatches
	numBatches = (len(records) + batchSize - 1) / batchSize

	task := &repeatingtask.Task{
		NumRepetitions: numBatches,
		MaxParallel:    s.parallel,
		MaxNumErrors:   repeatingtask.InfiniteFailures,
		Handler: func(cookie interface{}, batch int) error {
			start := batch * batchSize
			end := start + batchSize
			if end > len(records) {
				end = len(records)
			}

			return s.serializeRange(records, out, start, end)
		},
	}

	// a busy or stopped pool doesn't fail the call, serialize here instead
	if err := s.pool.SubmitTask(task); err != nil {
		if err := s.serializeRange(records, out, 0, len(records)); err != nil {
			return nil, err
		}

		return out, nil
	}

	// every batch runs to its first error, so the lowest failed batch holds
	// the lowest failed row
	taskErrors := task.Wait()
	if err := taskErrors.First(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Serializer) serializeRange(records []Record, out []string, start int, end int) error {
	var buf bytes.Buffer
	for i := start; i < end; i++ {
		buf.Reset()
		if err := s.encodeRecord(&buf, records[i]); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		out[i] = buf.String()
	}

	return nil
}

func (s *Serializer) encodeRecord(buf *bytes.Buffer, record Record) error {
	buf.WriteByte('{')
	for i, field := range record {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(field.Name)
		if err != nil {
			return errors.Wrapf(tabular.ErrSerialization, "field name %q - %s", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		if err := s.encodeValue(buf, field.Value); err != nil {
			return errors.Wrapf(err, "field %q", field.Name)
		}
	}
	buf.WriteByte('}')

	return nil
}

func (s *Serializer) encodeValue(buf *bytes.Buffer, value Value) error {
	var native interface{}
	switch value.Kind {
	case tabular.NullType:
		buf.WriteString("null")
		return nil
	case tabular.IntType:
		native = value.Int
	case tabular.FloatType:
		if math.IsNaN(value.Float) || math.IsInf(value.Float, 0) {
			return errors.Wrapf(tabular.ErrSerialization, "%v has no JSON representation", value.Float)
		}
		native = value.Float
	case tabular.StringType:
		native = value.Str
	case tabular.BoolType:
		native = value.Bool
	case tabular.TimeType:
		native = value.Time.Format(time.RFC3339Nano)
	case tabular.BytesType:
		switch s.binaryEncoding {
		case tabular.Base64Encoding:
			native = base64.StdEncoding.EncodeToString(value.Bytes)
		case tabular.HexEncoding:
			native = hex.EncodeToString(value.Bytes)
		default:
			return errors.Wrap(tabular.ErrSerialization, "binary value without encoding")
		}
	default:
		return errors.Wrapf(tabular.ErrSerialization, "no JSON representation for %s", value.Kind)
	}

	data, err := json.Marshal(native)
	if err != nil {
		return errors.Wrapf(tabular.ErrSerialization, "%v - %s", native, err)
	}
	buf.Write(data)

	return nil
}
