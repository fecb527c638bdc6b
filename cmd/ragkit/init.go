// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragkit/internal/taskfile"
	"ragkit/internal/workspace"
)

var (
	initForce bool

	// initCmd scaffolds a new project directory.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a starter taskfile and workspace layout",
		Long: `Create a starter taskfile and workspace layout in the project directory.

This generates a 'ragkit.cue' with the common tasks (install, run,
test, lint, image operations), creates the working directories and
writes the default settings files.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing taskfile")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(projectRoot, taskfile.FileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", path)
	}

	content := taskfile.GenerateStarter(appConfig.Image.Name, appConfig.Image.Port)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write taskfile: %w", err)
	}

	layout := workspace.NewLayout(projectRoot)
	if err := layout.Scaffold(); err != nil {
		return err
	}
	if err := layout.WriteSampleReadme(); err != nil {
		return err
	}
	if _, err := layout.MaterializeSettings(); err != nil {
		return err
	}

	absPath, _ := filepath.Abs(path)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Run 'ragkit install' to set up the Python environment")
	fmt.Println("  2. Run 'ragkit task' to see available tasks")
	fmt.Println("  3. Add documents to the data directory")
	return nil
}
