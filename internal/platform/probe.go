// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Tool is an optional external binary the workspace benefits from.
type Tool struct {
	// Name is the binary probed on PATH.
	Name string
	// Purpose is a short human explanation shown in doctor output.
	Purpose string
	// Hints maps each OS to an install hint shown when the tool is missing.
	Hints map[OS]string
}

// ToolStatus is the result of probing a single tool.
type ToolStatus struct {
	Tool  Tool
	Found bool
	// Path is the resolved binary path when Found.
	Path string
}

// CompilerTool probes for a C toolchain, needed to build llama-cpp wheels
// from source when no prebuilt one matches the host.
func CompilerTool() Tool {
	return Tool{
		Name:    "cc",
		Purpose: "C toolchain for building native Python wheels",
		Hints: map[OS]string{
			Linux:   "Ubuntu/Debian: sudo apt-get install build-essential | CentOS/RHEL: sudo yum groupinstall 'Development Tools'",
			MacOS:   "xcode-select --install",
			Windows: "Install the Visual Studio Build Tools",
		},
	}
}

// OCRTool probes for the tesseract OCR engine used on scanned PDFs.
func OCRTool() Tool {
	return Tool{
		Name:    "tesseract",
		Purpose: "OCR engine for scanned PDF ingestion",
		Hints: map[OS]string{
			Linux:   "Ubuntu/Debian: sudo apt-get install tesseract-ocr | CentOS/RHEL: sudo yum install tesseract",
			MacOS:   "brew install tesseract",
			Windows: "Download from https://github.com/tesseract-ocr/tesseract",
		},
	}
}

// GPUTool probes for nvidia-smi. Absence only means CPU inference.
func GPUTool() Tool {
	return Tool{
		Name:    "nvidia-smi",
		Purpose: "NVIDIA GPU detection (CPU mode is used when absent)",
	}
}

// Probe looks the tool up on PATH. For the compiler probe, common alternative
// names are tried before giving up.
func Probe(tool Tool) ToolStatus {
	names := []string{tool.Name}
	if tool.Name == "cc" {
		names = append(names, "gcc", "clang")
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return ToolStatus{Tool: tool, Found: true, Path: path}
		}
	}
	return ToolStatus{Tool: tool, Found: false}
}

// Hint returns the install hint for the current host, or empty when none.
func (s ToolStatus) Hint() string {
	return s.Tool.Hints[Host()]
}

// PythonVersion is the parsed major.minor.patch of an interpreter.
type PythonVersion struct {
	Major int
	Minor int
	Patch int
}

// String formats the version as "3.11.4".
func (v PythonVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v >= major.minor.
func (v PythonVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

var pythonVersionRe = regexp.MustCompile(`Python\s+(\d+)\.(\d+)(?:\.(\d+))?`)

// DetectPython runs the interpreter with --version and parses the result.
// Some interpreters report the version on stderr, so both streams are read.
func DetectPython(ctx context.Context, interpreter string) (PythonVersion, error) {
	path, err := exec.LookPath(interpreter)
	if err != nil {
		return PythonVersion{}, fmt.Errorf("python interpreter %q not found on PATH: %w", interpreter, err)
	}

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return PythonVersion{}, fmt.Errorf("failed to run %s --version: %w", path, err)
	}

	return ParsePythonVersion(string(out))
}

// ParsePythonVersion extracts the version from "--version" output such as
// "Python 3.11.4".
func ParsePythonVersion(output string) (PythonVersion, error) {
	m := pythonVersionRe.FindStringSubmatch(strings.TrimSpace(output))
	if m == nil {
		return PythonVersion{}, fmt.Errorf("unrecognized python version output: %q", strings.TrimSpace(output))
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch := 0
	if m[3] != "" {
		patch, _ = strconv.Atoi(m[3])
	}

	return PythonVersion{Major: major, Minor: minor, Patch: patch}, nil
}
