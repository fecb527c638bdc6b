// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragkit/internal/install"
)

var (
	installSkipSetup bool
	installSkipTests bool
	installYes       bool

	// installCmd sets up the Python environment and workspace.
	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Set up the Python environment and workspace",
		Long: `Set up the Python environment and workspace.

The install sequence checks the Python interpreter and system tools,
creates or reuses a virtual environment, installs the dependency
manifest, scaffolds the working directories and writes default
settings. Optional setup and test entry points run at the end when
the project provides them.

Each step is labeled; a failure reports the step it happened in.`,
		RunE: runInstall,
	}
)

func init() {
	installCmd.Flags().BoolVar(&installSkipSetup, "skip-setup", false, "skip the setup entry point")
	installCmd.Flags().BoolVar(&installSkipTests, "skip-tests", false, "skip the test entry point")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "answer prompts with their non-destructive defaults")
}

func runInstall(cmd *cobra.Command, args []string) error {
	seq := install.New(appConfig, logger, newStdinPrompter(), install.Options{
		Root:      projectRoot,
		SkipSetup: installSkipSetup,
		SkipTests: installSkipTests,
		AssumeYes: installYes,
	})

	if err := seq.Run(cmd.Context()); err != nil {
		if id, ok := installIssueId(err); ok {
			renderIssue(id)
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Install failed: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Printf("%s Installation complete\n", SuccessStyle.Render("✓"))
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Add documents to the data directory")
	fmt.Println("  2. Run 'ragkit model fetch' to download model weights")
	fmt.Println("  3. Run 'ragkit task run' to start the application")
	return nil
}
