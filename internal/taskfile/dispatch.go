// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"ragkit/internal/runner"

	"github.com/charmbracelet/log"
)

// Dispatcher runs tasks with their prerequisite chains.
type Dispatcher struct {
	// DefaultRuntime is used for tasks that do not declare one.
	DefaultRuntime string
	// Logger receives per-task progress; nil disables logging.
	Logger *log.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the named task after its prerequisites. Positional args
// are passed to the requested task only, never to prerequisites. The
// returned exit code is the first non-zero status in the chain; later
// tasks do not run after a failure.
func (d *Dispatcher) Run(ctx context.Context, tf *Taskfile, name string, args []string) (int, error) {
	order, err := tf.ExecutionOrder(name)
	if err != nil {
		return 1, err
	}

	baseDir := filepath.Dir(tf.FilePath)

	for _, task := range order {
		rtName := task.Runtime
		if rtName == "" {
			rtName = d.DefaultRuntime
		}
		if rtName == "" {
			rtName = runner.RuntimeNative
		}

		rt, err := runner.New(rtName)
		if err != nil {
			return 1, fmt.Errorf("task %q: %w", task.Name, err)
		}
		if !rt.Available() {
			return 1, fmt.Errorf("task %q: runtime %q is not available on this host", task.Name, rtName)
		}

		workDir := baseDir
		if task.WorkDir != "" {
			if filepath.IsAbs(task.WorkDir) {
				workDir = task.WorkDir
			} else {
				workDir = filepath.Join(baseDir, task.WorkDir)
			}
		}

		var taskArgs []string
		if task.Name == name {
			taskArgs = args
		}

		if d.Logger != nil {
			d.Logger.Debug("running task", "task", task.Name, "runtime", rtName)
		}

		result := rt.Execute(&runner.ExecutionContext{
			Context: ctx,
			Script:  task.Script,
			WorkDir: workDir,
			Env:     task.Env,
			Args:    taskArgs,
			Stdin:   d.Stdin,
			Stdout:  d.Stdout,
			Stderr:  d.Stderr,
		})
		if result.Error != nil {
			return 1, fmt.Errorf("task %q: %w", task.Name, result.Error)
		}
		if result.ExitCode != 0 {
			if d.Logger != nil {
				d.Logger.Error("task failed", "task", task.Name, "exit_code", result.ExitCode)
			}
			return result.ExitCode, nil
		}
	}

	return 0, nil
}
