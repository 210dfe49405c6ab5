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

package repeatingtask

import (
	"context"
	"sync/atomic"
)

type worker struct {
	pool *Pool
	ctx  context.Context
}

func newWorker(ctx context.Context, pool *Pool) (*worker, error) {
	newWorker := worker{
		pool: pool,
		ctx:  ctx,
	}

	go newWorker.handleTasks() // nolint: errcheck

	return &newWorker, nil
}

func (w *worker) handleTasks() error {
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case task := <-w.pool.taskChan:

			// keep our instance of the task until its repetitions run out. tasks never go
			// back into the channel, a full channel would block every worker
			for w.handleTask(task) {
				if err := w.ctx.Err(); err != nil {
					return err
				}
			}
		}
	}
}

// handleTask runs one repetition, returns false once the task has nothing left to run
func (w *worker) handleTask(task *Task) bool {

	// increment repetition count and check if we passed it. if we did, don't handle the task
	repetitionIndex := atomic.AddUint64(&task.repetitionIndex, 1)
	if int(repetitionIndex) > task.NumRepetitions {
		return false
	}

	// the index the user wants to see is 0 based
	repetitionIndex--

	// skip (but count) repetitions once the task errored out
	if !task.tooManyErrors() {
		if err := task.Handler(task.Cookie, int(repetitionIndex)); err != nil {
			task.ErrorsChan <- &TaskError{
				Repetition: int(repetitionIndex),
				Error:      err,
			}
		}
	}

	// signal once every repetition was either run or skipped, so no handler
	// is still running after Wait returns
	if int(atomic.AddUint64(&task.numCompletions, 1)) == task.NumRepetitions {
		w.signalTaskComplete(task)
		return false
	}

	return true
}

func (w *worker) signalTaskComplete(task *Task) {
	task.once.Do(func() {
		task.OnCompleteChan <- struct{}{}
	})
}
