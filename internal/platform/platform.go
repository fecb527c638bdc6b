// SPDX-License-Identifier: MPL-2.0

// Package platform answers questions about the host system: which OS we are
// on, which optional tools are installed, how old the Python interpreter is,
// and how much disk space is left.
package platform

import (
	goruntime "runtime"
)

// OS identifies the host operating system family.
type OS string

const (
	Linux   OS = "linux"
	MacOS   OS = "macos"
	Windows OS = "windows"
)

// Host returns the current operating system.
// Unknown systems are treated as Linux, the most permissive default.
func Host() OS {
	switch goruntime.GOOS {
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	default:
		return Linux
	}
}

// String returns the lowercase OS name.
func (o OS) String() string {
	return string(o)
}
