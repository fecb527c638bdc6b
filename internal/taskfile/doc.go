// SPDX-License-Identifier: MPL-2.0

// Package taskfile parses and dispatches the project task table.
//
// Tasks live in a ragkit.cue file at the project root. Each task names
// a shell script, optional prerequisite tasks, and the runtime to
// execute under. Dispatch runs prerequisites before the requested task
// and passes the first non-zero exit status through unchanged.
package taskfile
