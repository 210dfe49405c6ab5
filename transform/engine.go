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
	"context"
	"time"

	"github.com/nuclio/logger"
	"github.com/pkg/errors"

	"github.com/v3io/tabular"
	"github.com/v3io/tabular/repeatingtask"
)

// Engine runs transformations with configured defaults, on a worker pool
// when more than one worker is configured
type Engine struct {
	logger     logger.Logger
	config     *tabular.Config
	pool       *repeatingtask.Pool
	serializer *Serializer
	cancel     context.CancelFunc
}

// NewEngine returns a new engine, cfg defaults are filled in place. The
// workers stop when ctx is done or on Close.
func NewEngine(ctx context.Context, parentLogger logger.Logger, cfg *tabular.Config) (*Engine, error) {
	if cfg == nil {
		cfg = tabular.NewConfig()
	}

	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "bad configuration")
	}

	serializer, err := NewSerializer(cfg.BinaryEncoding)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	engine := &Engine{
		logger:     parentLogger.GetChild("engine"),
		config:     cfg,
		serializer: serializer,
		cancel:     cancel,
	}

	if cfg.Workers > 1 {
		engine.pool, err = repeatingtask.NewPool(ctx, cfg.MaxTasks, cfg.Workers)
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "can't create worker pool")
		}
		engine.serializer = serializer.WithPool(engine.pool, cfg.Workers, cfg.ParallelThreshold)
	}

	engine.logger.InfoWith("Engine created",
		"workers", cfg.Workers,
		"parallelThreshold", cfg.ParallelThreshold,
		"jsonColumn", cfg.JSONColumn,
		"binaryEncoding", cfg.BinaryEncoding)

	return engine, nil
}

// Config returns the engine configuration
func (e *Engine) Config() *tabular.Config {
	return e.config
}

// TransposeToJSON collapses columns into a JSON column named dest, the
// configured JSON column when dest is empty
func (e *Engine) TransposeToJSON(frame tabular.Frame, columns []string, dest string) (tabular.Frame, error) {
	if dest == "" {
		dest = e.config.JSONColumn
	}

	start := time.Now()
	out, err := TransposeToJSON(frame, columns, WithDestination(dest), WithSerializer(e.serializer))
	if err != nil {
		e.logger.DebugWith("Transpose failed", "columns", columns, "err", err)
		return nil, err
	}

	e.logger.DebugWith("Transposed",
		"rows", frame.Len(),
		"columns", columns,
		"dest", dest,
		"duration", time.Since(start).String())

	return out, nil
}

// Partition splits frame into chunks of size rows, slicing chunks in
// parallel
func (e *Engine) Partition(frame tabular.Frame, size int) ([]tabular.Frame, error) {
	bounds, err := chunksOf(frame.Len(), size)
	if err != nil {
		return nil, err
	}

	if e.pool == nil || len(bounds) < 2 {
		return Partition(frame, size)
	}

	start := time.Now()
	chunks := make([]tabular.Frame, len(bounds))
	task := &repeatingtask.Task{
		NumRepetitions: len(bounds),
		MaxParallel:    e.config.Workers,
		MaxNumErrors:   0,
		Handler: func(cookie interface{}, chunkIdx int) error {
			var err error
			b := bounds[chunkIdx]
			chunks[chunkIdx], err = frame.Slice(b.start, b.end)
			if err != nil {
				return errors.Wrapf(err, "can't slice chunk %d", chunkIdx)
			}
			return nil
		},
	}

	if err := e.pool.SubmitTask(task); err != nil {
		e.logger.DebugWith("Pool busy, partitioning sequentially", "err", err.Error())
		return Partition(frame, size)
	}

	taskErrors := task.Wait()
	if err := taskErrors.First(); err != nil {
		return nil, err
	}

	e.logger.DebugWith("Partitioned",
		"rows", frame.Len(),
		"size", size,
		"chunks", len(chunks),
		"duration", time.Since(start).String())

	return chunks, nil
}

// Join joins frames left to right on keys
func (e *Engine) Join(frames []tabular.Frame, keys []string, how JoinHow) (tabular.Frame, error) {
	start := time.Now()
	out, err := Join(frames, keys, how)
	if err != nil {
		return nil, err
	}

	e.logger.DebugWith("Joined",
		"frames", len(frames),
		"keys", keys,
		"how", how.String(),
		"rows", out.Len(),
		"duration", time.Since(start).String())

	return out, nil
}

// Union stacks the rows of frames
func (e *Engine) Union(frames []tabular.Frame) (tabular.Frame, error) {
	start := time.Now()
	out, err := Union(frames)
	if err != nil {
		return nil, err
	}

	e.logger.DebugWith("Unioned",
		"frames", len(frames),
		"rows", out.Len(),
		"duration", time.Since(start).String())

	return out, nil
}

// Close stops the engine workers
func (e *Engine) Close() {
	e.cancel()
}
