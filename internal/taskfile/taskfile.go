// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ragkit/internal/cueutil"
)

// FileName is the task table file expected at the project root.
const FileName = "ragkit.cue"

// ErrNotFound reports that the project root has no task table file.
var ErrNotFound = errors.New("taskfile not found")

//go:embed taskfile_schema.cue
var taskfileSchema string

// Task is one named entry in the task table.
type Task struct {
	// Name is the unique task name used on the command line.
	Name string `json:"name"`
	// Description is a one-line summary for task listings.
	Description string `json:"description,omitempty"`
	// Script is the shell script to execute.
	Script string `json:"script"`
	// Deps names tasks that must run first.
	Deps []string `json:"deps,omitempty"`
	// Runtime selects "native" or "virtual"; empty uses the configured default.
	Runtime string `json:"runtime,omitempty"`
	// Env holds extra environment variables for the script.
	Env map[string]string `json:"env,omitempty"`
	// WorkDir is the working directory, relative to the taskfile location.
	WorkDir string `json:"workdir,omitempty"`
}

// Taskfile is the decoded task table.
type Taskfile struct {
	Tasks []Task `json:"tasks"`

	// FilePath is where the taskfile was loaded from. Not part of the
	// CUE document.
	FilePath string `json:"-"`
}

// Load reads and validates the task table in the given project root.
func Load(root string) (*Taskfile, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no %s in %s", ErrNotFound, FileName, root)
		}
		return nil, fmt.Errorf("failed to read taskfile: %w", err)
	}

	return Parse(data, path)
}

// Parse decodes taskfile content against the embedded schema and applies
// the Go-level validations CUE cannot express.
func Parse(data []byte, path string) (*Taskfile, error) {
	tf, err := cueutil.Decode[Taskfile](taskfileSchema, data, "#Taskfile", cueutil.DecodeOptions{
		Filename: path,
		Concrete: true,
	})
	if err != nil {
		return nil, err
	}

	tf.FilePath = path
	if err := tf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tf, nil
}

// validate checks constraints the schema cannot express: unique task
// names and prerequisite references to defined tasks.
func (tf *Taskfile) validate() error {
	seen := make(map[string]int, len(tf.Tasks))
	for i, task := range tf.Tasks {
		if first, dup := seen[task.Name]; dup {
			return fmt.Errorf("tasks[%d]: duplicate task name %q (same as tasks[%d])", i, task.Name, first)
		}
		seen[task.Name] = i
	}

	for i, task := range tf.Tasks {
		for _, dep := range task.Deps {
			if dep == task.Name {
				return fmt.Errorf("tasks[%d]: task %q depends on itself", i, task.Name)
			}
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("tasks[%d]: task %q depends on undefined task %q", i, task.Name, dep)
			}
		}
	}

	return nil
}

// Find returns the named task.
func (tf *Taskfile) Find(name string) (*Task, bool) {
	for i := range tf.Tasks {
		if tf.Tasks[i].Name == name {
			return &tf.Tasks[i], true
		}
	}
	return nil, false
}

// Names returns the task names in declaration order.
func (tf *Taskfile) Names() []string {
	names := make([]string, len(tf.Tasks))
	for i, task := range tf.Tasks {
		names[i] = task.Name
	}
	return names
}
