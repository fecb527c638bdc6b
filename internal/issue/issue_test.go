// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	for _, id := range []Id{
		PythonNotFoundId, ManifestNotFoundId, TaskfileNotFoundId,
		TaskCycleId, ContainerEngineNotFoundId, ModelNotFoundId,
	} {
		iss := Get(id)
		if iss == nil {
			t.Fatalf("Get(%d) returned nil", id)
		}
		if iss.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, iss.Id())
		}
		if iss.MarkdownMsg() == "" {
			t.Errorf("issue %d has an empty message", id)
		}
	}
}

func TestValuesCoversCatalog(t *testing.T) {
	if len(Values()) != len(issues) {
		t.Errorf("Values() returned %d issues, catalog has %d", len(Values()), len(issues))
	}
}

func TestActionableErrorMessage(t *testing.T) {
	cause := errors.New("exit status 1")
	ae := NewErrorContext().
		WithOperation("install python dependencies").
		WithResource("requirements.txt").
		WithSuggestion("Check your network connection").
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil for a complete context")
	}

	msg := ae.Error()
	if !strings.Contains(msg, "failed to install python dependencies") {
		t.Errorf("Error() = %q, missing operation", msg)
	}
	if !strings.Contains(msg, "requirements.txt") {
		t.Errorf("Error() = %q, missing resource", msg)
	}

	if !errors.Is(ae, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestActionableErrorFormat(t *testing.T) {
	ae := NewErrorContext().
		WithOperation("create virtual environment").
		WithSuggestion("Delete the venv directory and retry").
		Wrap(errors.New("permission denied")).
		Build()

	plain := ae.Format(false)
	if !strings.Contains(plain, "• Delete the venv directory and retry") {
		t.Errorf("Format(false) should include suggestions, got: %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := ae.Format(true)
	if !strings.Contains(verbose, "Error chain") {
		t.Error("Format(true) should include the error chain")
	}
}

func TestBuildRequiresOperation(t *testing.T) {
	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation should return nil, got %v", got)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation should return nil error, got %v", err)
	}
}

func TestWrapHelpers(t *testing.T) {
	if WrapWithOperation(nil, "anything") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}

	err := WrapWithContext(errors.New("boom"), "probe disk space", "/var")
	if err == nil || !strings.Contains(err.Error(), "/var") {
		t.Errorf("WrapWithContext() = %v, want resource in message", err)
	}
}
