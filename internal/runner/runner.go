// SPDX-License-Identifier: MPL-2.0

// Package runner executes task scripts through pluggable runtimes.
//
// The native runtime shells out to the system's default shell, while
// the virtual runtime interprets POSIX shell scripts in-process via
// mvdan/sh. Both report the script's exit status through Result so
// callers can pass it through unchanged.
package runner

import (
	"context"
	"fmt"
	"io"
	"sort"
)

const (
	// RuntimeNative runs scripts in the host system shell.
	RuntimeNative = "native"
	// RuntimeVirtual runs scripts in the embedded shell interpreter.
	RuntimeVirtual = "virtual"
)

// ExecutionContext carries everything a runtime needs to run one script.
type ExecutionContext struct {
	// Context cancels the script when done.
	Context context.Context
	// Script is the shell script content to execute.
	Script string
	// WorkDir is the working directory; empty means the process cwd.
	WorkDir string
	// Env holds extra variables layered over the inherited environment.
	Env map[string]string
	// Args are positional arguments exposed to the script ($1, $2, ...).
	Args []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result reports the outcome of a script execution.
type Result struct {
	// ExitCode is the script's exit status.
	ExitCode int
	// Output and ErrOutput are populated by ExecuteCapture only.
	Output    string
	ErrOutput string
	// Error is set when execution failed before the script could report
	// an exit status (e.g. no shell found). A non-zero exit from the
	// script itself is not an Error.
	Error error
}

// Runtime executes task scripts.
type Runtime interface {
	// Name returns the runtime name.
	Name() string
	// Available reports whether the runtime can execute on this host.
	Available() bool
	// Execute runs a script with the context's I/O streams.
	Execute(ctx *ExecutionContext) *Result
	// ExecuteCapture runs a script and captures its output.
	ExecuteCapture(ctx *ExecutionContext) *Result
}

// New returns the runtime registered under the given name.
func New(name string) (Runtime, error) {
	switch name {
	case RuntimeNative:
		return NewNativeRuntime(), nil
	case RuntimeVirtual:
		return NewVirtualRuntime(), nil
	default:
		return nil, fmt.Errorf("unknown runtime %q (valid: %s, %s)", name, RuntimeNative, RuntimeVirtual)
	}
}

// EnvToSlice converts an env map to KEY=VALUE form in sorted key order
// for deterministic process environments.
func EnvToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
