// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"ragkit/internal/platform"
	"ragkit/internal/workspace"
)

var (
	cleanLogsRetention time.Duration

	// workspaceCmd groups workspace maintenance operations.
	workspaceCmd = &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Inspect and maintain the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	cleanLogsCmd := &cobra.Command{
		Use:   "clean-logs",
		Short: "Delete log files older than the retention period",
		RunE:  runCleanLogs,
	}
	cleanLogsCmd.Flags().DurationVar(&cleanLogsRetention, "retention", 7*24*time.Hour, "age past which log files are deleted")

	workspaceCmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Summarize the working directories",
			RunE:  runWorkspaceInfo,
		},
		&cobra.Command{
			Use:   "backup",
			Short: "Archive the vector store and processed data",
			RunE:  runWorkspaceBackup,
		},
		&cobra.Command{
			Use:   "restore <archive>",
			Short: "Restore a backup archive into the workspace",
			Args:  cobra.ExactArgs(1),
			RunE:  runWorkspaceRestore,
		},
		cleanLogsCmd,
	)
}

func runWorkspaceInfo(cmd *cobra.Command, args []string) error {
	layout := workspace.NewLayout(projectRoot)
	infos, err := layout.Scan()
	if err != nil {
		return err
	}

	var md strings.Builder
	md.WriteString("# Workspace\n\n")
	fmt.Fprintf(&md, "Root: `%s`\n\n", layout.Root)
	md.WriteString("| Directory | Files | Documents | Size |\n")
	md.WriteString("|-----------|-------|-----------|------|\n")
	for _, info := range infos {
		if !info.Exists {
			fmt.Fprintf(&md, "| %s | missing | | |\n", info.Name)
			continue
		}
		docs := ""
		if info.Name == workspace.DirData {
			docs = fmt.Sprintf("%d", info.DocumentCount)
		}
		fmt.Fprintf(&md, "| %s | %d | %s | %s |\n",
			info.Name, info.FileCount, docs, platform.FormatBytes(uint64(info.TotalBytes)))
	}
	if disk, err := platform.FreeDiskSpace(layout.Root); err == nil {
		fmt.Fprintf(&md, "\nDisk: %s free of %s\n",
			platform.FormatBytes(disk.FreeBytes), platform.FormatBytes(disk.TotalBytes))
	}

	rendered, err := glamour.Render(md.String(), "auto")
	if err != nil {
		// Fall back to the raw markdown when the terminal renderer fails.
		fmt.Print(md.String())
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func runWorkspaceBackup(cmd *cobra.Command, args []string) error {
	layout := workspace.NewLayout(projectRoot)
	path, err := layout.Backup(time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("%s Backup written to %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func runWorkspaceRestore(cmd *cobra.Command, args []string) error {
	layout := workspace.NewLayout(projectRoot)
	if err := layout.Restore(args[0]); err != nil {
		return err
	}
	fmt.Printf("%s Restored %s\n", SuccessStyle.Render("✓"), args[0])
	return nil
}

func runCleanLogs(cmd *cobra.Command, args []string) error {
	layout := workspace.NewLayout(projectRoot)
	removed, err := layout.CleanLogs(time.Now(), cleanLogsRetention)
	if err != nil {
		return err
	}
	fmt.Printf("%s Removed %d log file(s)\n", SuccessStyle.Render("✓"), removed)
	return nil
}
