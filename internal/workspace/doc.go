// SPDX-License-Identifier: MPL-2.0

// Package workspace manages the on-disk project layout: the working
// directories the application expects, the settings file materialized
// from defaults, backups of derived state, and log retention.
package workspace
