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
	"fmt"
	"sort"
	"sync"

	"github.com/nuclio/errors"
)

const (
	// InfiniteFailures lets a task run all repetitions regardless of errors
	InfiniteFailures = -1
)

type TaskError struct {
	Repetition int
	Error      error
}

type TaskErrors struct {
	taskErrors  []*TaskError
	stringValue string
}

func (te *TaskErrors) String() string {
	if te.stringValue != "" {
		return te.stringValue
	}

	errorString := ""

	for _, taskError := range te.sorted() {
		errorString += fmt.Sprintf("%d: %s\n",
			taskError.Repetition,
			errors.GetErrorStackString(taskError.Error, 10))
	}

	te.stringValue = errorString

	return te.stringValue
}

func (te *TaskErrors) Error() error {
	if len(te.taskErrors) == 0 {
		return nil
	}

	return errors.New(te.String())
}

// First returns the error of the lowest failed repetition, nil if none failed
func (te *TaskErrors) First() error {
	if len(te.taskErrors) == 0 {
		return nil
	}

	return te.sorted()[0].Error
}

// Len returns the number of failed repetitions
func (te *TaskErrors) Len() int {
	return len(te.taskErrors)
}

func (te *TaskErrors) sorted() []*TaskError {
	sort.SliceStable(te.taskErrors, func(i, j int) bool {
		return te.taskErrors[i].Repetition < te.taskErrors[j].Repetition
	})

	return te.taskErrors
}

// Task calls Handler NumRepetitions times with repetition index 0..N-1, at
// most MaxParallel at a time. Once more than MaxNumErrors repetitions failed
// the remaining ones are skipped.
type Task struct {
	NumRepetitions int
	MaxParallel    int
	Handler        func(interface{}, int) error
	OnCompleteChan chan struct{}
	ErrorsChan     chan *TaskError
	MaxNumErrors   int
	Cookie         interface{}

	ctx             context.Context
	repetitionIndex uint64
	numCompletions  uint64
	once            sync.Once
}

func (t *Task) initialize() error {
	if t.Handler == nil {
		return errors.New("Task has no handler")
	}

	if t.NumRepetitions < 0 {
		return errors.Errorf("Bad # of repetitions - %d", t.NumRepetitions)
	}

	if t.MaxParallel <= 0 {
		t.MaxParallel = 1
	}

	if t.MaxNumErrors == InfiniteFailures {
		t.MaxNumErrors = t.NumRepetitions
	}

	t.OnCompleteChan = make(chan struct{}, 1)
	t.ErrorsChan = make(chan *TaskError, t.NumRepetitions)

	return nil
}

func (t *Task) tooManyErrors() bool {
	return len(t.ErrorsChan) > t.MaxNumErrors
}

// Wait blocks until the task completes or its pool is stopped
func (t *Task) Wait() TaskErrors {
	var taskErrors TaskErrors

	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-t.OnCompleteChan:
	case <-ctx.Done():
		select {
		case <-t.OnCompleteChan:
		default:
			taskErrors.taskErrors = append(taskErrors.taskErrors, &TaskError{
				Repetition: t.NumRepetitions,
				Error:      errors.Wrap(ctx.Err(), "Pool stopped before task completed"),
			})
		}
	}

	// read errors
	done := false

	for !done {
		select {
		case taskError := <-t.ErrorsChan:
			taskErrors.taskErrors = append(taskErrors.taskErrors, taskError)
		default:
			done = true
		}
	}

	return taskErrors
}
