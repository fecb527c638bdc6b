// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"ragkit/internal/container"
	"ragkit/internal/issue"
	"ragkit/internal/platform"
	"ragkit/internal/workspace"
)

// doctorCmd checks the environment without changing anything.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment for problems",
	Long: `Check the environment for problems.

Probes the Python interpreter, system tools, disk space, the container
engine and the workspace layout. Nothing is modified; each finding is
reported with a hint where one applies.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println(TitleStyle.Render("ragkit doctor"))
	fmt.Println()

	problems := 0

	// Python interpreter
	ver, err := platform.DetectPython(cmd.Context(), appConfig.Python.Interpreter)
	if err != nil {
		reportBad(fmt.Sprintf("python: %s not found", appConfig.Python.Interpreter))
		problems++
	} else {
		reportGood(fmt.Sprintf("python: %s (%s)", appConfig.Python.Interpreter, ver))
	}

	// System tools
	for _, tool := range []platform.Tool{platform.CompilerTool(), platform.OCRTool(), platform.GPUTool()} {
		status := platform.Probe(tool)
		if status.Found {
			reportGood(fmt.Sprintf("%s: found at %s", tool.Name, status.Path))
			continue
		}
		reportWarn(fmt.Sprintf("%s: not found", tool.Name))
		if hint := status.Hint(); hint != "" {
			fmt.Println("      " + SubtitleStyle.Render(hint))
		}
	}

	// Disk space
	if disk, err := platform.FreeDiskSpace(projectRoot); err == nil {
		msg := fmt.Sprintf("disk: %s free of %s", platform.FormatBytes(disk.FreeBytes), platform.FormatBytes(disk.TotalBytes))
		if disk.Low() {
			reportWarn(msg + " (below " + platform.FormatBytes(platform.LowDiskThreshold) + ")")
			renderIssue(issue.LowDiskSpaceId)
		} else {
			reportGood(msg)
		}
	}

	// Container engine
	if engine, err := container.NewEngine(container.EngineType(appConfig.ContainerEngine)); err != nil {
		reportWarn("container engine: " + err.Error())
	} else {
		version, verr := engine.Version(cmd.Context())
		if verr != nil {
			version = "unknown version"
		}
		reportGood(fmt.Sprintf("container engine: %s (%s)", engine.Name(), version))
	}

	// Dependency manifest
	manifest := filepath.Join(projectRoot, appConfig.Workspace.Manifest)
	if fileExists(manifest) {
		reportGood("manifest: " + appConfig.Workspace.Manifest + " present")
	} else {
		reportBad("manifest: " + appConfig.Workspace.Manifest + " not found")
		problems++
	}

	// Virtual environment
	activate := filepath.Join(projectRoot, appConfig.Workspace.VenvDir, "bin", "activate")
	if runtime.GOOS == "windows" {
		activate = filepath.Join(projectRoot, appConfig.Workspace.VenvDir, "Scripts", "activate")
	}
	if fileExists(activate) {
		reportGood("venv: " + appConfig.Workspace.VenvDir + " ready")
	} else {
		reportWarn("venv: not set up (run 'ragkit install')")
	}

	// Workspace layout
	layout := workspace.NewLayout(projectRoot)
	if missing := layout.MissingDirs(); len(missing) > 0 {
		reportWarn(fmt.Sprintf("workspace: missing directories %v (run 'ragkit init')", missing))
	} else {
		reportGood("workspace: all working directories present")
	}
	if fileExists(layout.SettingsPath()) {
		if missing, err := layout.MissingSettingsKeys(); err != nil {
			reportWarn("settings: " + err.Error())
			renderIssue(issue.SettingsInvalidId)
		} else if len(missing) > 0 {
			reportWarn(fmt.Sprintf("settings: missing keys %v", missing))
		}
	}

	fmt.Println()
	if problems > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d problem(s) found", problems)}
	}
	fmt.Println(SuccessStyle.Render("No blocking problems found"))
	return nil
}

func reportGood(msg string) { fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), msg) }
func reportWarn(msg string) { fmt.Printf("  %s %s\n", WarningStyle.Render("!"), msg) }
func reportBad(msg string)  { fmt.Printf("  %s %s\n", ErrorStyle.Render("✗"), msg) }
