// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"ragkit/internal/install"
	"ragkit/internal/issue"
	"ragkit/internal/taskfile"
)

// renderIssue prints the catalog card for the given id to stderr. Cards
// carry the remediation steps a one-line error cannot.
func renderIssue(id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// installIssueId maps an install failure onto its catalog card.
func installIssueId(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, install.ErrPythonNotFound):
		return issue.PythonNotFoundId, true
	case errors.Is(err, install.ErrPythonTooOld):
		return issue.PythonTooOldId, true
	case errors.Is(err, install.ErrManifestNotFound):
		return issue.ManifestNotFoundId, true
	case errors.Is(err, install.ErrVenvActivateMissing):
		return issue.VenvActivateMissingId, true
	}
	return 0, false
}

// taskLoadIssueId maps a taskfile load failure onto its catalog card.
// Anything other than a missing file is a parse problem.
func taskLoadIssueId(err error) issue.Id {
	if errors.Is(err, taskfile.ErrNotFound) {
		return issue.TaskfileNotFoundId
	}
	return issue.TaskfileParseErrorId
}

// taskRunIssueId maps a dispatch failure onto its catalog card.
func taskRunIssueId(err error) (issue.Id, bool) {
	var cycleErr *taskfile.CycleError
	switch {
	case errors.Is(err, taskfile.ErrTaskNotFound):
		return issue.TaskNotFoundId, true
	case errors.As(err, &cycleErr):
		return issue.TaskCycleId, true
	}
	return 0, false
}
