// SPDX-License-Identifier: MPL-2.0

// Integration tests that exercise the engine abstraction against a real
// container daemon. They require Docker or Podman to be available.
package container

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
// Returns true if containers are available, false otherwise.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func integrationEngine(t *testing.T) Engine {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Check via our own engine detection first; testcontainers-go's
	// detection can panic on some hosts.
	engine, err := AutoDetectEngine()
	if err != nil {
		t.Skipf("skipping container integration tests: no container engine available: %v", err)
	}
	if !engine.Available() {
		t.Skip("skipping container integration tests: container engine not available")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration tests: testcontainers provider not available")
	}
	return engine
}

func TestEngineIntegration(t *testing.T) {
	engine := integrationEngine(t)

	t.Run("ForegroundRun", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var stdout, stderr bytes.Buffer
		result, err := engine.Run(ctx, RunOptions{
			Image:   "alpine:latest",
			Command: []string{"echo", "hello from alpine"},
			Remove:  true,
			Stdout:  &stdout,
			Stderr:  &stderr,
		})
		if err != nil {
			t.Fatalf("Run() error = %v, stderr: %s", err, stderr.String())
		}
		if result.ExitCode != 0 {
			t.Errorf("Run() exit code = %d, want 0", result.ExitCode)
		}
		if got := strings.TrimSpace(stdout.String()); got != "hello from alpine" {
			t.Errorf("Run() output = %q", got)
		}
	})

	t.Run("ExitCodePassthrough", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := engine.Run(ctx, RunOptions{
			Image:   "alpine:latest",
			Command: []string{"sh", "-c", "exit 42"},
			Remove:  true,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.ExitCode != 42 {
			t.Errorf("Run() exit code = %d, want 42", result.ExitCode)
		}
	})

	t.Run("DetachedLifecycle", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		name := "ragkit-it-" + strings.ToLower(t.Name()[strings.LastIndex(t.Name(), "/")+1:])
		id, err := engine.Start(ctx, RunOptions{
			Image:   "alpine:latest",
			Name:    name,
			Command: []string{"sh", "-c", "echo started; sleep 60"},
		})
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if id == "" {
			t.Error("Start() returned an empty container ID")
		}
		defer engine.Remove(context.Background(), name, true)

		var logs bytes.Buffer
		// The log line can lag the start call briefly.
		deadline := time.Now().Add(30 * time.Second)
		for {
			logs.Reset()
			if err := engine.Logs(ctx, LogsOptions{Container: name, Stdout: &logs, Stderr: &logs}); err != nil {
				t.Fatalf("Logs() error = %v", err)
			}
			if strings.Contains(logs.String(), "started") || time.Now().After(deadline) {
				break
			}
			time.Sleep(250 * time.Millisecond)
		}
		if !strings.Contains(logs.String(), "started") {
			t.Errorf("Logs() output = %q, want it to contain 'started'", logs.String())
		}

		if err := engine.Stop(ctx, name); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
}
