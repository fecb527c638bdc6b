// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragkit/internal/config"
)

// configCmd manages the ragkit configuration file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ragkit configuration",
	Long: `Manage ragkit configuration.

Configuration is stored in:
  - Linux: ~/.config/ragkit/config.cue
  - macOS: ~/Library/Application Support/ragkit/config.cue
  - Windows: %APPDATA%\ragkit\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Print(config.GenerateCUE(appConfig))
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the default configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.CreateDefaultConfig(); err != nil {
					return err
				}
				dir, err := config.ConfigDir()
				if err != nil {
					return err
				}
				fmt.Printf("%s Configuration at %s\n", SuccessStyle.Render("✓"),
					filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := config.ConfigDir()
				if err != nil {
					return err
				}
				fmt.Println(filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
				return nil
			},
		},
	)

	rootCmd.AddCommand(configCmd)
}
