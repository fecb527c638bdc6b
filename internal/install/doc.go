// SPDX-License-Identifier: MPL-2.0

// Package install implements the guided environment setup sequence.
//
// The sequencer walks a fixed list of named steps: interpreter and
// system checks, virtual environment creation, dependency install,
// workspace scaffolding, settings materialization, and the optional
// setup and test entry points. Any step failure aborts the run with an
// error labeled by the step that produced it; re-running a completed
// or partially completed install is safe.
package install
