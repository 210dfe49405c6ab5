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
	"github.com/pkg/errors"

	"github.com/v3io/tabular"
)

type options struct {
	dest        string
	serializer  *Serializer
	rejectEmpty bool
}

// Option changes TransposeToJSON behaviour
type Option func(*options)

// WithDestination sets the name of the JSON column (tabular.DefaultJSONColumn
// when not given)
func WithDestination(name string) Option {
	return func(o *options) {
		o.dest = name
	}
}

// WithSerializer sets the serializer, a sequential base64 one is used when
// not given
func WithSerializer(serializer *Serializer) Option {
	return func(o *options) {
		o.serializer = serializer
	}
}

// WithRejectEmpty makes TransposeToJSON fail with tabular.ErrEmptyTable on a
// frame without rows instead of returning an empty frame
func WithRejectEmpty() Option {
	return func(o *options) {
		o.rejectEmpty = true
	}
}

// TransposeToJSON collapses columns into one column holding a JSON object
// per row. The returned frame has the same rows, without columns and with
// the JSON column. On error frame is left as is.
func TransposeToJSON(frame tabular.Frame, columns []string, opts ...Option) (tabular.Frame, error) {
	o := &options{
		dest: tabular.DefaultJSONColumn,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.serializer == nil {
		o.serializer = &Serializer{binaryEncoding: tabular.Base64Encoding}
	}

	if o.rejectEmpty && frame.Len() == 0 {
		return nil, errors.Wrap(tabular.ErrEmptyTable, "nothing to transpose")
	}

	records, err := Transpose(frame, columns)
	if err != nil {
		return nil, errors.Wrap(err, "can't transpose")
	}

	values, err := o.serializer.SerializeAll(records)
	if err != nil {
		return nil, errors.Wrap(err, "can't serialize")
	}

	return Materialize(frame, values, o.dest, columns)
}
