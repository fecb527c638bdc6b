// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the ragkit configuration file.
//
// Configuration lives in a CUE file resolved from platform-specific
// directories (XDG on Linux, Application Support on macOS, APPDATA on
// Windows), with a project-local config.cue taking precedence when
// present. User files are validated against an embedded CUE schema
// before being merged over the compiled-in defaults.
package config
