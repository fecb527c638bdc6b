// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"testing"

	"ragkit/internal/install"
	"ragkit/internal/issue"
	"ragkit/internal/taskfile"
)

func TestInstallIssueId(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"python missing", fmt.Errorf("step check-python: %w", install.ErrPythonNotFound), issue.PythonNotFoundId},
		{"python too old", fmt.Errorf("step check-python: %w", install.ErrPythonTooOld), issue.PythonTooOldId},
		{"manifest missing", fmt.Errorf("step install-deps: %w", install.ErrManifestNotFound), issue.ManifestNotFoundId},
		{"venv broken", fmt.Errorf("step check-activation: %w", install.ErrVenvActivateMissing), issue.VenvActivateMissingId},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := installIssueId(tc.err)
			if !ok || id != tc.want {
				t.Errorf("installIssueId() = %v, %v; want %v, true", id, ok, tc.want)
			}
			if issue.Get(id) == nil {
				t.Errorf("no catalog card for id %v", id)
			}
		})
	}

	if _, ok := installIssueId(fmt.Errorf("pip exploded")); ok {
		t.Error("installIssueId matched an unrelated error")
	}
}

func TestTaskLoadIssueId(t *testing.T) {
	notFound := fmt.Errorf("%w: no %s in .", taskfile.ErrNotFound, taskfile.FileName)
	if got := taskLoadIssueId(notFound); got != issue.TaskfileNotFoundId {
		t.Errorf("taskLoadIssueId(not found) = %v, want TaskfileNotFoundId", got)
	}
	if got := taskLoadIssueId(fmt.Errorf("expected string, found int")); got != issue.TaskfileParseErrorId {
		t.Errorf("taskLoadIssueId(parse error) = %v, want TaskfileParseErrorId", got)
	}
}

func TestTaskRunIssueId(t *testing.T) {
	missing := fmt.Errorf("task %q: %w", "ghost", taskfile.ErrTaskNotFound)
	if id, ok := taskRunIssueId(missing); !ok || id != issue.TaskNotFoundId {
		t.Errorf("taskRunIssueId(missing task) = %v, %v; want TaskNotFoundId, true", id, ok)
	}

	cycle := &taskfile.CycleError{Cycle: []string{"a", "b", "a"}}
	if id, ok := taskRunIssueId(fmt.Errorf("resolve: %w", cycle)); !ok || id != issue.TaskCycleId {
		t.Errorf("taskRunIssueId(cycle) = %v, %v; want TaskCycleId, true", id, ok)
	}

	if _, ok := taskRunIssueId(fmt.Errorf("script failed")); ok {
		t.Error("taskRunIssueId matched an unrelated error")
	}
}
