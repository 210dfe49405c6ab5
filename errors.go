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
	"github.com/pkg/errors"
)

// Error kinds. Operations wrap these with context, use errors.Cause (or
// errors.Is) to get the kind back.
var (
	ErrColumnNotFound     = errors.New("column not found")
	ErrEmptyTable         = errors.New("empty table")
	ErrRowCountMismatch   = errors.New("row count mismatch")
	ErrSerialization      = errors.New("serialization error")
	ErrInvalidChunkSize   = errors.New("invalid chunk size")
	ErrEmptyInputList     = errors.New("empty input list")
	ErrKeyColumnMissing   = errors.New("key column missing")
	ErrIncompatibleSchema = errors.New("incompatible schema")
	ErrDuplicateColumn    = errors.New("duplicate column")
	ErrUnsupportedType    = errors.New("unsupported type")
)

// IsKind returns true if err was built from kind
func IsKind(err error, kind error) bool {
	return err != nil && errors.Cause(err) == kind
}

var errorKinds = []error{
	ErrColumnNotFound,
	ErrEmptyTable,
	ErrRowCountMismatch,
	ErrSerialization,
	ErrInvalidChunkSize,
	ErrEmptyInputList,
	ErrKeyColumnMissing,
	ErrIncompatibleSchema,
	ErrDuplicateColumn,
	ErrUnsupportedType,
}

// KindOf returns the error kind err was built from, nil if it's not one of
// the kinds above
func KindOf(err error) error {
	cause := errors.Cause(err)
	for _, kind := range errorKinds {
		if cause == kind {
			return kind
		}
	}

	return nil
}

// KindFromString returns the kind whose message is name, nil if none
func KindFromString(name string) error {
	for _, kind := range errorKinds {
		if kind.Error() == name {
			return kind
		}
	}

	return nil
}
