// SPDX-License-Identifier: MPL-2.0

package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"ragkit/internal/config"
	"ragkit/internal/platform"
	"ragkit/internal/workspace"

	"github.com/charmbracelet/log"
)

// fakePython writes an executable script that reports a fixed version.
func fakePython(t *testing.T, version string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter script needs a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "python3")
	script := fmt.Sprintf("#!/bin/sh\necho \"Python %s\"\n", version)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// recorder captures external command invocations and simulates venv
// creation so later steps find the activation script and pip.
type recorder struct {
	root  string
	cfg   *config.Config
	calls []string
	fail  map[string]error
}

func (r *recorder) run(_ context.Context, _, name string, args ...string) error {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)

	for prefix, err := range r.fail {
		if strings.Contains(call, prefix) {
			return err
		}
	}

	if len(args) >= 2 && args[0] == "-m" && args[1] == "venv" {
		bin := filepath.Join(r.root, r.cfg.Workspace.VenvDir, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			return err
		}
		for _, f := range []string{"activate", "pip", "python"} {
			if err := os.WriteFile(filepath.Join(bin, f), []byte("#!/bin/sh\n"), 0o755); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *recorder) called(substr string) bool {
	for _, call := range r.calls {
		if strings.Contains(call, substr) {
			return true
		}
	}
	return false
}

type fakePrompt struct {
	answer bool
	asked  []string
}

func (p *fakePrompt) Confirm(question string) (bool, error) {
	p.asked = append(p.asked, question)
	return p.answer, nil
}

func newTestSequencer(t *testing.T, opts Options) (*Sequencer, *recorder) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Python.Interpreter = fakePython(t, "3.11.4")

	if opts.Root == "" {
		opts.Root = t.TempDir()
	}
	if err := os.WriteFile(filepath.Join(opts.Root, cfg.Workspace.Manifest), []byte("requests\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(cfg, log.New(io.Discard), nil, opts)
	rec := &recorder{root: opts.Root, cfg: cfg}
	s.runCmd = rec.run
	s.freeDisk = func(string) (platform.DiskSpace, error) {
		return platform.DiskSpace{FreeBytes: 100 << 30, TotalBytes: 200 << 30}, nil
	}
	s.euid = func() int { return 1000 }
	return s, rec
}

func TestRunFreshInstall(t *testing.T) {
	s, rec := newTestSequencer(t, Options{})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !rec.called("-m venv") {
		t.Error("venv was not created")
	}
	if !rec.called("install --upgrade pip") {
		t.Error("pip was not upgraded")
	}
	if !rec.called("install -r requirements.txt") {
		t.Error("dependencies were not installed")
	}

	layout := workspace.NewLayout(s.opts.Root)
	if missing := layout.MissingDirs(); len(missing) != 0 {
		t.Errorf("working directories missing after install: %v", missing)
	}
	env, err := layout.LoadSettings()
	if err != nil {
		t.Fatalf("settings not materialized: %v", err)
	}
	if env[workspace.KeyServerPort] != "7860" {
		t.Errorf("settings port = %q, want 7860", env[workspace.KeyServerPort])
	}

	// No setup.py and no tests dir: entry points must not be invoked.
	if rec.called("setup.py") || rec.called("pytest") {
		t.Error("entry points invoked without being present")
	}
}

func TestRunIdempotent(t *testing.T) {
	s, _ := newTestSequencer(t, Options{AssumeYes: true})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
}

func TestManifestMissingFatalBeforePip(t *testing.T) {
	s, rec := newTestSequencer(t, Options{})
	if err := os.Remove(filepath.Join(s.opts.Root, s.cfg.Workspace.Manifest)); err != nil {
		t.Fatal(err)
	}

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() succeeded without manifest, want error")
	}
	if !strings.Contains(err.Error(), "step install-deps") {
		t.Errorf("error = %v, want install-deps step label", err)
	}
	if !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("error = %v, want ErrManifestNotFound in chain", err)
	}
	if rec.called("pip install") {
		t.Error("pip was invoked despite missing manifest")
	}
}

func TestSkipFlagsNeverInvokeEntryPoints(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "setup.py"), []byte("print('setup')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "tests"), 0o755); err != nil {
		t.Fatal(err)
	}

	s, rec := newTestSequencer(t, Options{Root: root, SkipSetup: true, SkipTests: true})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.called("setup.py") {
		t.Error("setup entry point ran despite --skip-setup")
	}
	if rec.called("pytest") {
		t.Error("test entry point ran despite --skip-tests")
	}
}

func TestEntryPointsRunWhenPresent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "setup.py"), []byte("print('setup')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "tests"), 0o755); err != nil {
		t.Fatal(err)
	}

	s, rec := newTestSequencer(t, Options{Root: root})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !rec.called("setup.py") {
		t.Error("setup entry point did not run")
	}
	if !rec.called("pytest") {
		t.Error("test entry point did not run")
	}
}

func TestVenvReusedWhenUnattended(t *testing.T) {
	root := t.TempDir()
	s, rec := newTestSequencer(t, Options{Root: root, AssumeYes: true})

	bin := filepath.Join(root, s.cfg.Workspace.VenvDir, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"activate", "pip", "python"} {
		if err := os.WriteFile(filepath.Join(bin, f), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.called("-m venv") {
		t.Error("existing venv recreated in unattended mode")
	}
}

func TestVenvRecreatedOnConfirm(t *testing.T) {
	root := t.TempDir()
	s, rec := newTestSequencer(t, Options{Root: root})
	prompt := &fakePrompt{answer: true}
	s.prompt = prompt

	marker := filepath.Join(root, s.cfg.Workspace.VenvDir, "old-marker")
	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(marker, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !rec.called("-m venv") {
		t.Error("venv was not recreated after confirmation")
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("old venv contents survived recreation")
	}
	if len(prompt.asked) == 0 {
		t.Error("recreate prompt was never shown")
	}
}

func TestPythonTooOld(t *testing.T) {
	s, _ := newTestSequencer(t, Options{})
	s.cfg.Python.Interpreter = fakePython(t, "3.5.2")

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() accepted Python 3.5, want error")
	}
	if !strings.Contains(err.Error(), "step check-python") {
		t.Errorf("error = %v, want check-python step label", err)
	}
	if !errors.Is(err, ErrPythonTooOld) {
		t.Errorf("error = %v, want ErrPythonTooOld in chain", err)
	}
}

func TestLowDiskWarnsAndContinues(t *testing.T) {
	s, _ := newTestSequencer(t, Options{})
	prompt := &fakePrompt{answer: false}
	s.prompt = prompt
	var buf bytes.Buffer
	s.logger = log.New(&buf)
	s.freeDisk = func(string) (platform.DiskSpace, error) {
		return platform.DiskSpace{FreeBytes: 1 << 30, TotalBytes: 200 << 30}, nil
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want warn-and-continue on low disk", err)
	}
	if !strings.Contains(buf.String(), "low disk space") {
		t.Error("low disk warning was not logged")
	}
	if len(prompt.asked) != 0 {
		t.Errorf("prompts asked on low disk: %v, want none", prompt.asked)
	}
}

func TestAbsentEntryPointsWarn(t *testing.T) {
	s, rec := newTestSequencer(t, Options{})
	var buf bytes.Buffer
	s.logger = log.New(&buf)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.called("setup.py") || rec.called("pytest") {
		t.Error("entry points invoked without being present")
	}
	if !strings.Contains(buf.String(), "setup.py not found") {
		t.Error("no warning for the absent setup entry point")
	}
	if !strings.Contains(buf.String(), "tests directory not found") {
		t.Error("no warning for the absent test entry point")
	}
}

func TestRootInstallAbortsWhenDeclined(t *testing.T) {
	s, _ := newTestSequencer(t, Options{})
	s.euid = func() int { return 0 }
	s.prompt = &fakePrompt{answer: false}

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() continued as root after decline, want error")
	}
	if !strings.Contains(err.Error(), "root") {
		t.Errorf("error = %v, want root-install message", err)
	}
}

func TestRootInstallContinuesWhenUnattended(t *testing.T) {
	s, _ := newTestSequencer(t, Options{AssumeYes: true})
	s.euid = func() int { return 0 }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want root warning only", err)
	}
}
