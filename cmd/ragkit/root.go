// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"ragkit/internal/config"
	"ragkit/internal/issue"
	"ragkit/internal/logging"
	"ragkit/internal/workspace"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// projectRoot is the directory ragkit operates on
	projectRoot string

	// appConfig is the loaded configuration, available to all commands
	// after initRootConfig runs.
	appConfig *config.Config
	// logger is the shared application logger.
	logger *log.Logger

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "ragkit",
		Short: "Operational tooling for a local RAG assistant",
		Long: TitleStyle.Render("ragkit") + SubtitleStyle.Render(" - Operational tooling for a local RAG assistant") + `

ragkit installs, runs and maintains a Python document-assistant project:
it sequences the environment setup, dispatches project tasks defined in
a 'ragkit.cue' file, builds the container image, fetches model weights
and reports workspace health.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'ragkit init' in your project directory
  2. Run 'ragkit install' to set up the Python environment
  3. Run 'ragkit task run' to start the application

` + SubtitleStyle.Render("Examples:") + `
  ragkit install            Set up venv, dependencies and workspace
  ragkit task               List available tasks
  ragkit task test          Run the 'test' task
  ragkit image build        Build the container image
  ragkit model fetch        Download model weights
  ragkit doctor             Check the environment`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ragkit/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "dir", "C", ".", "project directory to operate on")

	// Add subcommands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig loads the configuration and builds the shared logger.
func initRootConfig() {
	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	if !verbose {
		verbose = cfg.UI.Verbose
	}

	// Tee into the workspace logs directory once the project is
	// scaffolded; unscaffolded projects log to stderr only.
	logOpts := logging.Options{Verbose: verbose}
	if logsDir := workspace.NewLayout(projectRoot).Path(workspace.DirLogs); dirExists(logsDir) {
		logOpts.LogDir = logsDir
	}
	logger, _ = logging.New(logOpts)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
