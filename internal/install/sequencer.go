// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"ragkit/internal/config"
	"ragkit/internal/issue"
	"ragkit/internal/platform"
	"ragkit/internal/workspace"

	"github.com/charmbracelet/log"
)

// Well-known failure causes, exposed so the CLI can pick the matching
// catalog card for display.
var (
	ErrPythonNotFound      = errors.New("python interpreter not found")
	ErrPythonTooOld        = errors.New("python version too old")
	ErrManifestNotFound    = errors.New("dependency manifest not found")
	ErrVenvActivateMissing = errors.New("activation script not found")
)

// Options controls a single install run.
type Options struct {
	// Root is the project directory the install operates on.
	Root string
	// SkipSetup skips the optional setup entry point.
	SkipSetup bool
	// SkipTests skips the optional test entry point.
	SkipTests bool
	// AssumeYes answers every prompt with its non-destructive default:
	// continue a root install and reuse an existing virtual environment.
	AssumeYes bool
}

// Prompter asks the user yes/no questions during interactive installs.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// step is one named unit of the install sequence.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// Sequencer drives the install steps in order.
type Sequencer struct {
	cfg    *config.Config
	logger *log.Logger
	prompt Prompter
	opts   Options

	// runCmd executes an external command; swapped out in tests.
	runCmd func(ctx context.Context, dir, name string, args ...string) error
	// freeDisk reports free disk space; swapped out in tests.
	freeDisk func(path string) (platform.DiskSpace, error)
	// euid reports the effective user id; swapped out in tests.
	euid func() int
}

// New creates a Sequencer for one install run.
func New(cfg *config.Config, logger *log.Logger, prompt Prompter, opts Options) *Sequencer {
	s := &Sequencer{
		cfg:      cfg,
		logger:   logger,
		prompt:   prompt,
		opts:     opts,
		freeDisk: platform.FreeDiskSpace,
		euid:     os.Geteuid,
	}
	s.runCmd = s.execCommand
	return s
}

// Run executes the install sequence. The returned error names the step
// that failed.
func (s *Sequencer) Run(ctx context.Context) error {
	steps := []step{
		{"check-python", s.checkPython},
		{"check-system-deps", s.checkSystemDeps},
		{"check-disk-space", s.checkDiskSpace},
		{"create-venv", s.createVenv},
		{"check-activation", s.checkActivation},
		{"install-deps", s.installDeps},
		{"create-dirs", s.createDirs},
		{"create-settings", s.createSettings},
		{"run-entry-points", s.runEntryPoints},
	}

	if err := s.confirmIfRoot(); err != nil {
		return err
	}

	for _, st := range steps {
		s.logger.Info("step", "name", st.name)
		if err := st.run(ctx); err != nil {
			return fmt.Errorf("step %s: %w", st.name, err)
		}
	}

	s.logger.Info("install complete", "root", s.opts.Root)
	return nil
}

// confirmIfRoot prompts before a root install; interactive runs abort
// unless the user explicitly continues. Unattended runs continue with a
// warning, since containers routinely install as root.
func (s *Sequencer) confirmIfRoot() error {
	if s.euid() != 0 {
		return nil
	}
	s.logger.Warn("running as root; installed files will be owned by root")

	ok, err := s.confirm("Continue installing as root?", true)
	if err != nil {
		return err
	}
	if !ok {
		return issue.NewErrorContext().
			WithOperation("confirm root install").
			WithSuggestion("Re-run as a regular user").
			Wrap(fmt.Errorf("declined by user")).
			BuildError()
	}
	return nil
}

func (s *Sequencer) checkPython(ctx context.Context) error {
	version, err := platform.DetectPython(ctx, s.cfg.Python.Interpreter)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("detect Python interpreter").
			WithResource(s.cfg.Python.Interpreter).
			WithSuggestion("Install Python 3 from https://www.python.org/downloads/").
			WithSuggestion("Set python.interpreter in config.cue if it lives elsewhere").
			Wrap(fmt.Errorf("%w: %w", ErrPythonNotFound, err)).
			BuildError()
	}

	major, minor, ok := splitMinVersion(s.cfg.Python.MinVersion)
	if !ok {
		return fmt.Errorf("invalid python.min_version %q", s.cfg.Python.MinVersion)
	}
	if !version.AtLeast(major, minor) {
		return issue.NewErrorContext().
			WithOperation("check Python version").
			WithResource(s.cfg.Python.Interpreter).
			WithSuggestion(fmt.Sprintf("Install Python %s or newer", s.cfg.Python.MinVersion)).
			Wrap(fmt.Errorf("%w: found %s, need at least %s", ErrPythonTooOld, version, s.cfg.Python.MinVersion)).
			BuildError()
	}

	s.logger.Info("python ok", "version", version.String())
	return nil
}

// checkSystemDeps probes optional system tools. Missing tools produce
// warnings with per-platform install hints, never failures: OCR and
// GPU support degrade gracefully at runtime.
func (s *Sequencer) checkSystemDeps(context.Context) error {
	for _, tool := range []platform.Tool{
		platform.CompilerTool(),
		platform.OCRTool(),
		platform.GPUTool(),
	} {
		status := platform.Probe(tool)
		if status.Found {
			s.logger.Info("found "+tool.Name, "path", status.Path)
			continue
		}
		s.logger.Warn("missing "+tool.Name, "purpose", tool.Purpose, "hint", status.Hint())
	}
	return nil
}

func (s *Sequencer) checkDiskSpace(context.Context) error {
	space, err := s.freeDisk(s.opts.Root)
	if err != nil {
		s.logger.Warn("could not determine free disk space", "err", err)
		return nil
	}

	// Low space is a warning, not a prompt: models and indexes can live
	// on another volume, and the install itself needs far less.
	if space.Low() {
		s.logger.Warn("low disk space; models and the vector store need about 10 GB",
			"free", platform.FormatBytes(space.FreeBytes))
		return nil
	}

	s.logger.Info("disk space ok", "free", platform.FormatBytes(space.FreeBytes))
	return nil
}

func (s *Sequencer) createVenv(ctx context.Context) error {
	venv := s.venvPath()

	if info, err := os.Stat(venv); err == nil && info.IsDir() {
		recreate, err := s.confirm("Virtual environment exists. Recreate it?", false)
		if err != nil {
			return err
		}
		if !recreate {
			s.logger.Info("reusing existing virtual environment", "path", venv)
			return nil
		}
		if err := os.RemoveAll(venv); err != nil {
			return fmt.Errorf("failed to remove existing venv: %w", err)
		}
	}

	if err := s.runCmd(ctx, s.opts.Root, s.cfg.Python.Interpreter, "-m", "venv", s.cfg.Workspace.VenvDir); err != nil {
		return issue.NewErrorContext().
			WithOperation("create virtual environment").
			WithResource(venv).
			WithSuggestion("Check that the venv module is available (python3 -m venv --help)").
			WithSuggestion("On Debian/Ubuntu: sudo apt install python3-venv").
			Wrap(err).
			BuildError()
	}

	s.logger.Info("virtual environment created", "path", venv)
	return nil
}

func (s *Sequencer) checkActivation(context.Context) error {
	activate := s.activationPath()
	if _, err := os.Stat(activate); err != nil {
		return issue.NewErrorContext().
			WithOperation("verify virtual environment").
			WithResource(activate).
			WithSuggestion("Remove the venv directory and re-run the install").
			Wrap(ErrVenvActivateMissing).
			BuildError()
	}
	return nil
}

func (s *Sequencer) installDeps(ctx context.Context) error {
	manifest := filepath.Join(s.opts.Root, s.cfg.Workspace.Manifest)
	if _, err := os.Stat(manifest); err != nil {
		return issue.NewErrorContext().
			WithOperation("install dependencies").
			WithResource(manifest).
			WithSuggestion("Create the dependency manifest before installing").
			WithSuggestion("Run the install from the project root directory").
			Wrap(ErrManifestNotFound).
			BuildError()
	}

	pip := s.pipPath()
	if err := s.runCmd(ctx, s.opts.Root, pip, "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("failed to upgrade pip: %w", err)
	}
	if err := s.runCmd(ctx, s.opts.Root, pip, "install", "-r", s.cfg.Workspace.Manifest); err != nil {
		return issue.NewErrorContext().
			WithOperation("install dependencies").
			WithResource(manifest).
			WithSuggestion("Check network connectivity to the package index").
			WithSuggestion("Re-run the install; pip resumes from its cache").
			Wrap(err).
			BuildError()
	}

	s.logger.Info("dependencies installed", "manifest", s.cfg.Workspace.Manifest)
	return nil
}

func (s *Sequencer) createDirs(context.Context) error {
	layout := workspace.NewLayout(s.opts.Root)
	if err := layout.Scaffold(); err != nil {
		return err
	}
	if err := layout.WriteSampleReadme(); err != nil {
		return err
	}
	s.logger.Info("workspace directories ready", "dirs", strings.Join(workspace.Dirs(), ", "))
	return nil
}

func (s *Sequencer) createSettings(context.Context) error {
	layout := workspace.NewLayout(s.opts.Root)
	source, err := layout.MaterializeSettings()
	if err != nil {
		return err
	}
	s.logger.Info("settings file ready", "source", source)

	if source == "default" {
		s.logger.Warn("add your HUGGINGFACE_TOKEN to .env before downloading gated models")
	}
	return nil
}

// runEntryPoints invokes the project's optional setup and test entry
// points. Both only run when present and not skipped; a missing entry
// point is skipped with a warning, never an error.
func (s *Sequencer) runEntryPoints(ctx context.Context) error {
	python := s.venvPython()

	if s.opts.SkipSetup {
		s.logger.Info("skipping setup entry point")
	} else if fileExists(filepath.Join(s.opts.Root, "setup.py")) {
		if err := s.runCmd(ctx, s.opts.Root, python, "setup.py"); err != nil {
			return fmt.Errorf("setup entry point failed: %w", err)
		}
	} else {
		s.logger.Warn("setup.py not found; skipping setup entry point")
	}

	if s.opts.SkipTests {
		s.logger.Info("skipping test entry point")
	} else if dirExists(filepath.Join(s.opts.Root, "tests")) {
		if err := s.runCmd(ctx, s.opts.Root, python, "-m", "pytest", "tests", "-q"); err != nil {
			return fmt.Errorf("test entry point failed: %w", err)
		}
	} else {
		s.logger.Warn("tests directory not found; skipping test entry point")
	}

	return nil
}

// confirm asks the prompter, or returns the default answer when the
// run is unattended (--yes or no prompter wired).
func (s *Sequencer) confirm(question string, defaultAnswer bool) (bool, error) {
	if s.opts.AssumeYes || s.prompt == nil {
		return defaultAnswer, nil
	}
	return s.prompt.Confirm(question)
}

func (s *Sequencer) execCommand(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (s *Sequencer) venvPath() string {
	return filepath.Join(s.opts.Root, s.cfg.Workspace.VenvDir)
}

func (s *Sequencer) activationPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(s.venvPath(), "Scripts", "activate")
	}
	return filepath.Join(s.venvPath(), "bin", "activate")
}

func (s *Sequencer) pipPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(s.venvPath(), "Scripts", "pip.exe")
	}
	return filepath.Join(s.venvPath(), "bin", "pip")
}

func (s *Sequencer) venvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(s.venvPath(), "Scripts", "python.exe")
	}
	return filepath.Join(s.venvPath(), "bin", "python")
}

// splitMinVersion parses "MAJOR.MINOR" into its parts.
func splitMinVersion(v string) (major, minor int, ok bool) {
	parts := strings.SplitN(v, ".", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
