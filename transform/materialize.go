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

// Materialize returns frame without the sources columns and with values as a
// new string column named dest. dest goes last unless it names a surviving
// column, which is then replaced in place. frame is not modified.
func Materialize(frame tabular.Frame, values []string, dest string, sources []string) (tabular.Frame, error) {
	if len(values) != frame.Len() {
		return nil, errors.Wrapf(tabular.ErrRowCountMismatch, "%d values for %d rows", len(values), frame.Len())
	}

	if dest == "" {
		dest = tabular.DefaultJSONColumn
	}

	for _, name := range sources {
		if _, err := frame.Column(name); err != nil {
			return nil, errors.Wrap(err, "missing source column")
		}
	}

	col, err := tabular.NewSliceColumn(dest, values)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create %q", dest)
	}

	remaining, err := frame.Drop(sources...)
	if err != nil {
		return nil, err
	}

	// with every column dropped the new one alone defines the row count
	return remaining.WithColumn(col)
}
