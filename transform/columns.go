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

// take returns a column with col values at indices, -1 is a null
func take(col tabular.Column, name string, indices []int) (tabular.Column, error) {
	builder := tabular.NewSliceColumnBuilder(name, col.DType(), len(indices))
	for _, i := range indices {
		if i < 0 || col.IsNull(i) {
			builder.AppendNull()
			continue
		}

		value, err := col.ValueAt(i)
		if err != nil {
			return nil, errors.Wrapf(err, "can't read %q at row %d", col.Name(), i)
		}

		if err := builder.Append(value); err != nil {
			return nil, errors.Wrapf(err, "can't copy %q row %d", col.Name(), i)
		}
	}

	return builder.Finish(), nil
}

// uniqueName returns name, or name with suffix added until it's not in taken
func uniqueName(name string, suffix string, taken map[string]bool) string {
	for taken[name] {
		name += suffix
	}

	return name
}
