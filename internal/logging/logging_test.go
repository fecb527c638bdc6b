// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv(EnvLevel, "")

	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
	if logger.GetPrefix() != "ragkit" {
		t.Errorf("prefix = %q, want %q", logger.GetPrefix(), "ragkit")
	}
}

func TestNewLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")

	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}

func TestNewUnknownEnvLevelFallsBack(t *testing.T) {
	t.Setenv(EnvLevel, "chatty")

	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info fallback", logger.GetLevel())
	}
}

func TestNewVerboseWinsOverEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")

	logger, err := New(Options{Verbose: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug when verbose", logger.GetLevel())
	}
}

func TestNewTeesToLogFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Options{LogDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello from test")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("log dir has %d entries, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("log file is empty after Info()")
	}
}

func TestNewMissingLogDirFallsBack(t *testing.T) {
	logger, err := New(Options{LogDir: filepath.Join(t.TempDir(), "absent")})
	if err == nil {
		t.Error("New() with missing log dir returned nil error, want file error")
	}
	if logger == nil {
		t.Fatal("New() returned nil logger, want stderr fallback")
	}
}
