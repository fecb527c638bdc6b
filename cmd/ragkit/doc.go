// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for ragkit.
//
// This package implements the Cobra command hierarchy for the ragkit CLI:
// the installer, the task runner, workspace management, container image
// operations, model fetching and the status server.
package cmd
