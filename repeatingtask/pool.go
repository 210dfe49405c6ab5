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

	"github.com/nuclio/errors"
)

// ErrPoolFull is returned by SubmitTask when there's no room for another task
var ErrPoolFull = errors.New("Failed to submit task - enlarge the pool max # of tasks")

// Pool runs tasks on a fixed number of workers. Workers stop when the pool
// context is done.
type Pool struct {
	ctx      context.Context
	taskChan chan *Task
	workers  []*worker
}

func NewPool(ctx context.Context, maxTasks int, numWorkers int) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, errors.Errorf("Bad number of workers - %d", numWorkers)
	}

	if maxTasks < numWorkers {
		return nil, errors.Errorf("Max # of tasks (%d) is less than # of workers (%d)", maxTasks, numWorkers)
	}

	newPool := Pool{ctx: ctx}
	newPool.taskChan = make(chan *Task, maxTasks)

	// create workers
	for workerIdx := 0; workerIdx < numWorkers; workerIdx++ {
		newWorker, err := newWorker(ctx, &newPool)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create worker")
		}

		newPool.workers = append(newPool.workers, newWorker)
	}

	return &newPool, nil
}

// NumWorkers returns the number of workers in the pool
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}

func (p *Pool) SubmitTaskAndWait(task *Task) TaskErrors {
	if err := p.SubmitTask(task); err != nil {
		return TaskErrors{
			taskErrors: []*TaskError{
				{Error: errors.Wrap(err, "Failed to submit task")},
			},
		}
	}

	return task.Wait()
}

func (p *Pool) SubmitTask(task *Task) error {
	if err := p.ctx.Err(); err != nil {
		return errors.Wrap(err, "Pool is stopped")
	}

	if err := task.initialize(); err != nil {
		return errors.Wrap(err, "Failed to initialize channel")
	}
	task.ctx = p.ctx

	// nothing to run, complete right away
	if task.NumRepetitions == 0 {
		task.OnCompleteChan <- struct{}{}
		return nil
	}

	for parallelIdx := 0; parallelIdx < task.MaxParallel; parallelIdx++ {
		select {
		case p.taskChan <- task:
		default:
			if parallelIdx > 0 {

				// at least one instance is in, it runs every remaining repetition
				return nil
			}
			return ErrPoolFull
		}
	}

	return nil
}
