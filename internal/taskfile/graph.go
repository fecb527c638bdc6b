// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTaskNotFound reports a task name that is not in the table.
var ErrTaskNotFound = errors.New("task not found")

// CycleError reports a prerequisite cycle in the task table.
type CycleError struct {
	// Cycle lists the task names forming the loop, first repeated last.
	Cycle []string
}

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	return fmt.Sprintf("task dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// ExecutionOrder resolves the tasks to run for the named task, with
// every prerequisite ordered before its dependents. The requested task
// comes last. A prerequisite cycle yields a CycleError.
func (tf *Taskfile) ExecutionOrder(name string) ([]*Task, error) {
	root, ok := tf.Find(name)
	if !ok {
		return nil, fmt.Errorf("task %q: %w", name, ErrTaskNotFound)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make(map[string]int, len(tf.Tasks))
	var order []*Task
	var stack []string

	var visit func(t *Task) error
	visit = func(t *Task) error {
		switch state[t.Name] {
		case done:
			return nil
		case visiting:
			// Trim the stack back to the first occurrence to report the loop.
			start := 0
			for i, n := range stack {
				if n == t.Name {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, stack[start:]...), t.Name)
			return &CycleError{Cycle: cycle}
		}

		state[t.Name] = visiting
		stack = append(stack, t.Name)

		for _, dep := range t.Deps {
			depTask, ok := tf.Find(dep)
			if !ok {
				return fmt.Errorf("task %q depends on undefined task %q", t.Name, dep)
			}
			if err := visit(depTask); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[t.Name] = done
		order = append(order, t)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	return order, nil
}
