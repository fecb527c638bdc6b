// SPDX-License-Identifier: MPL-2.0

// Package provision renders the container build definition for the
// application image. The generated Dockerfile uses a two-stage build:
// a builder stage with the compiler toolchain installs the Python
// dependencies into a virtualenv, and a slim runtime stage copies the
// virtualenv in and carries only the native libraries the application
// needs at run time.
package provision
