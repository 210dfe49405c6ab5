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

type chunkBounds struct {
	start, end int
}

// chunksOf splits [0, numRows) into ranges of at most size rows. No rows
// give one empty range.
func chunksOf(numRows int, size int) ([]chunkBounds, error) {
	if size <= 0 {
		return nil, errors.Wrapf(tabular.ErrInvalidChunkSize, "%d", size)
	}

	if numRows == 0 {
		return []chunkBounds{{0, 0}}, nil
	}

	bounds := make([]chunkBounds, 0, (numRows+size-1)/size)
	for start := 0; start < numRows; start += size {
		end := start + size
		if end > numRows {
			end = numRows
		}
		bounds = append(bounds, chunkBounds{start, end})
	}

	return bounds, nil
}

// Partition splits frame into consecutive chunks of size rows, the last one
// may be shorter. Chunks are copies and don't share data with frame.
func Partition(frame tabular.Frame, size int) ([]tabular.Frame, error) {
	bounds, err := chunksOf(frame.Len(), size)
	if err != nil {
		return nil, err
	}

	chunks := make([]tabular.Frame, len(bounds))
	for i, b := range bounds {
		chunks[i], err = frame.Slice(b.start, b.end)
		if err != nil {
			return nil, errors.Wrapf(err, "can't slice chunk %d", i)
		}
	}

	return chunks, nil
}
