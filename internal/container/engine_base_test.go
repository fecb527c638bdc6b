// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

// mockExec records every invocation and substitutes a no-op command.
type mockExec struct {
	calls [][]string
}

func (m *mockExec) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	m.calls = append(m.calls, append([]string{name}, args...))
	return exec.CommandContext(ctx, "true")
}

func (m *mockExec) last() []string {
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func newMockEngine() (*BaseCLIEngine, *mockExec) {
	mock := &mockExec{}
	return NewBaseCLIEngine("docker", "docker", WithExecCommand(mock.command)), mock
}

func TestBuildArgs(t *testing.T) {
	e, _ := newMockEngine()

	args := e.BuildArgs(BuildOptions{
		ContextDir: "/proj",
		Dockerfile: "Dockerfile",
		Tag:        "ragkit-app:latest",
		NoCache:    true,
		BuildArgs:  map[string]string{"B": "2", "A": "1"},
	})

	want := []string{
		"build",
		"-f", "/proj/Dockerfile",
		"-t", "ragkit-app:latest",
		"--no-cache",
		"--build-arg", "A=1",
		"--build-arg", "B=2",
		"/proj",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("BuildArgs() = %v, want %v", args, want)
	}
}

func TestRunArgsDetached(t *testing.T) {
	e, _ := newMockEngine()

	args := e.RunArgs(RunOptions{
		Image:   "ragkit-app:latest",
		Name:    "ragkit-app",
		Remove:  true,
		EnvFile: ".env",
		Env:     map[string]string{"LOG_LEVEL": "INFO"},
		Volumes: []string{"/data:/app/data"},
		Ports:   []string{"7860:7860"},
	}, true)

	want := []string{
		"run", "-d", "--rm",
		"--name", "ragkit-app",
		"--env-file", ".env",
		"-e", "LOG_LEVEL=INFO",
		"-v", "/data:/app/data",
		"-p", "7860:7860",
		"ragkit-app:latest",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("RunArgs() = %v, want %v", args, want)
	}
}

func TestRunArgsForegroundCommand(t *testing.T) {
	e, _ := newMockEngine()

	args := e.RunArgs(RunOptions{
		Image:   "ragkit-app:latest",
		Command: []string{"python", "cli.py"},
	}, false)

	if args[0] != "run" {
		t.Fatalf("args start with %q, want run", args[0])
	}
	for _, a := range args {
		if a == "-d" {
			t.Error("foreground run included -d")
		}
	}
	got := strings.Join(args, " ")
	if !strings.HasSuffix(got, "ragkit-app:latest python cli.py") {
		t.Errorf("args = %v, want image then command last", args)
	}
}

func TestLogsArgs(t *testing.T) {
	e, _ := newMockEngine()

	args := e.LogsArgs(LogsOptions{Container: "ragkit-app", Follow: true, Tail: 50})
	want := []string{"logs", "-f", "--tail", "50", "ragkit-app"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("LogsArgs() = %v, want %v", args, want)
	}
}

func TestStopInvokesCLI(t *testing.T) {
	e, mock := newMockEngine()

	if err := e.Stop(context.Background(), "ragkit-app"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	want := []string{"docker", "stop", "ragkit-app"}
	if !reflect.DeepEqual(mock.last(), want) {
		t.Errorf("Stop() invoked %v, want %v", mock.last(), want)
	}
}

func TestRemoveForce(t *testing.T) {
	e, mock := newMockEngine()

	if err := e.Remove(context.Background(), "ragkit-app", true); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	want := []string{"docker", "rm", "-f", "ragkit-app"}
	if !reflect.DeepEqual(mock.last(), want) {
		t.Errorf("Remove() invoked %v, want %v", mock.last(), want)
	}
}

func TestRemoveImage(t *testing.T) {
	e, mock := newMockEngine()

	if err := e.RemoveImage(context.Background(), "ragkit-app:latest", false); err != nil {
		t.Fatalf("RemoveImage() error = %v", err)
	}
	want := []string{"docker", "rmi", "ragkit-app:latest"}
	if !reflect.DeepEqual(mock.last(), want) {
		t.Errorf("RemoveImage() invoked %v, want %v", mock.last(), want)
	}
}

func TestRunNonZeroExitCaptured(t *testing.T) {
	mock := &mockExec{}
	failing := func(ctx context.Context, name string, args ...string) *exec.Cmd {
		mock.calls = append(mock.calls, append([]string{name}, args...))
		return exec.CommandContext(ctx, "sh", "-c", "exit 5")
	}
	e := NewBaseCLIEngine("docker", "docker", WithExecCommand(failing))

	result, err := e.Run(context.Background(), RunOptions{Image: "ragkit-app:latest"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 5 {
		t.Errorf("exit code = %d, want 5", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("result.Error = %v, want nil for plain non-zero exit", result.Error)
	}
}

func TestAddSELinuxLabelPassthrough(t *testing.T) {
	// Mounts with explicit options are never relabeled, regardless of host.
	got := addSELinuxLabel("/data:/app/data:ro")
	if got != "/data:/app/data:ro" {
		t.Errorf("addSELinuxLabel() = %q, want passthrough of optioned mount", got)
	}
}
