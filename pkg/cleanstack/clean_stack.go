/*
Copyright © 2025-2026 SUSE LLC
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cleanstack sequences the lock-release / subvolume-teardown steps
// that StartWrite and StartRead must unwind if a later step in the same
// call fails. Only the error-only rollback shape the transaction manager
// needs is kept here.
package cleanstack

import "errors"

// Task is one rollback step.
type Task func() error

// CleanStack is a LIFO stack of rollback tasks, run only when the
// operation they guard ultimately fails.
type CleanStack struct {
	tasks []Task
}

// NewCleanStack returns an empty stack.
func NewCleanStack() *CleanStack {
	return &CleanStack{}
}

// PushErrorOnly adds a task that Cleanup runs only if called with a
// non-nil error, in last-pushed-first-run order.
func (clean *CleanStack) PushErrorOnly(task Task) {
	clean.tasks = append(clean.tasks, task)
}

// Cleanup runs every pushed task, last to first, if err is non-nil; it is
// a no-op otherwise. It returns err joined with any error a rollback task
// itself produces.
func (clean *CleanStack) Cleanup(err error) error {
	if err == nil {
		return nil
	}
	for i := len(clean.tasks) - 1; i >= 0; i-- {
		if taskErr := clean.tasks[i](); taskErr != nil {
			err = errors.Join(err, taskErr)
		}
	}
	return err
}
