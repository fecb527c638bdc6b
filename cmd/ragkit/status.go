// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragkit/internal/platform"
	"ragkit/internal/statusserver"
	"ragkit/internal/workspace"
)

var (
	statusServe bool
	statusAddr  string

	// statusCmd reports workspace health, optionally over HTTP.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Report workspace health",
		Long: `Report workspace health.

By default prints the health verdict to the terminal. With --serve,
runs an HTTP server exposing /health and /status; the container
health check probes the same /health endpoint.`,
		RunE: runStatus,
	}
)

func init() {
	statusCmd.Flags().BoolVar(&statusServe, "serve", false, "serve health and status over HTTP")
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "listen address for --serve (default: configured image port)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	layout := workspace.NewLayout(projectRoot)

	if statusServe {
		addr := statusAddr
		if addr == "" {
			addr = fmt.Sprintf(":%d", appConfig.Image.Port)
		}
		srv := statusserver.New(appConfig, layout, logger)
		return srv.Serve(cmd.Context(), addr)
	}

	infos, err := layout.Scan()
	if err != nil {
		return err
	}
	for _, info := range infos {
		if !info.Exists {
			fmt.Printf("  %s %s: missing\n", WarningStyle.Render("!"), info.Name)
			continue
		}
		fmt.Printf("  %s %s: %d file(s), %s\n", SuccessStyle.Render("✓"),
			info.Name, info.FileCount, platform.FormatBytes(uint64(info.TotalBytes)))
	}
	if disk, err := platform.FreeDiskSpace(layout.Root); err == nil {
		fmt.Printf("  disk: %s free of %s\n",
			platform.FormatBytes(disk.FreeBytes), platform.FormatBytes(disk.TotalBytes))
	}

	if missing := layout.MissingDirs(); len(missing) > 0 {
		fmt.Printf("%s degraded: missing directories %v\n", WarningStyle.Render("!"), missing)
		return &ExitError{Code: 1, Err: fmt.Errorf("workspace degraded")}
	}
	fmt.Printf("%s ok\n", SuccessStyle.Render("✓"))
	return nil
}
