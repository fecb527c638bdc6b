// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragkit/internal/container"
	"ragkit/internal/issue"
	"ragkit/internal/provision"
	"ragkit/internal/workspace"
)

var (
	imageNoCache  bool
	imageFollow   bool
	imageTailLine int

	// imageCmd groups container image operations.
	imageCmd = &cobra.Command{
		Use:   "image",
		Short: "Build and run the application container image",
		Long: `Build and run the application container image.

The image is a two-stage build: dependencies are installed into a
virtualenv in a builder stage, and a slim runtime stage carries only
the virtualenv and the native libraries the application needs. The
running container exposes the application port and answers the
health check on /health.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the container image",
		RunE:  runImageBuild,
	}
	buildCmd.Flags().BoolVar(&imageNoCache, "no-cache", false, "build without the layer cache")

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show application container logs",
		RunE:  runImageLogs,
	}
	logsCmd.Flags().BoolVarP(&imageFollow, "follow", "f", false, "follow the log stream")
	logsCmd.Flags().IntVar(&imageTailLine, "tail", 0, "limit output to the last N lines")

	imageCmd.AddCommand(
		&cobra.Command{
			Use:   "render",
			Short: "Write the Dockerfile without building",
			RunE:  runImageRender,
		},
		buildCmd,
		&cobra.Command{
			Use:   "up",
			Short: "Start the application container detached",
			RunE:  runImageUp,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Stop and remove the application container",
			RunE:  runImageDown,
		},
		logsCmd,
	)
}

// imageRef is the full image reference from the configuration.
func imageRef() string {
	return appConfig.Image.Name + ":" + appConfig.Image.Tag
}

// containerName is the fixed name for the application container, so that
// up, down and logs address the same instance.
func containerName() string {
	return appConfig.Image.Name
}

func newConfiguredEngine() (container.Engine, error) {
	engine, err := container.NewEngine(container.EngineType(appConfig.ContainerEngine))
	if err != nil {
		var notAvailable *container.ErrEngineNotAvailable
		if errors.As(err, &notAvailable) {
			renderIssue(issue.ContainerEngineNotFoundId)
		}
	}
	return engine, err
}

func runImageRender(cmd *cobra.Command, args []string) error {
	path, err := provision.WriteDockerfile(projectRoot, provision.OptionsFromConfig(appConfig))
	if err != nil {
		return err
	}
	fmt.Printf("%s Wrote %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func runImageBuild(cmd *cobra.Command, args []string) error {
	if _, err := provision.WriteDockerfile(projectRoot, provision.OptionsFromConfig(appConfig)); err != nil {
		return err
	}

	engine, err := newConfiguredEngine()
	if err != nil {
		return err
	}

	logger.Info("building image", "engine", engine.Name(), "tag", imageRef())
	err = engine.Build(cmd.Context(), container.BuildOptions{
		ContextDir: projectRoot,
		Dockerfile: provision.DockerfileName,
		Tag:        imageRef(),
		NoCache:    imageNoCache,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s Built %s\n", SuccessStyle.Render("✓"), imageRef())
	return nil
}

func runImageUp(cmd *cobra.Command, args []string) error {
	engine, err := newConfiguredEngine()
	if err != nil {
		return err
	}

	layout := workspace.NewLayout(projectRoot)
	port := appConfig.Image.Port

	opts := container.RunOptions{
		Image: imageRef(),
		Name:  containerName(),
		Ports: []string{fmt.Sprintf("%d:%d", port, port)},
		Volumes: []string{
			layout.Path(workspace.DirData) + ":/app/data",
			layout.Path(workspace.DirModels) + ":/app/models",
			layout.Path(workspace.DirVectorStore) + ":/app/vector_store",
			layout.Path(workspace.DirProcessedData) + ":/app/processed_data",
		},
	}
	if settings := layout.SettingsPath(); fileExists(settings) {
		opts.EnvFile = settings
	}

	id, err := engine.Start(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Printf("%s Started %s (%s)\n", SuccessStyle.Render("✓"), containerName(), shortID(id))
	fmt.Println(SubtitleStyle.Render(fmt.Sprintf("  http://localhost:%d  (health: /health)", port)))
	return nil
}

func runImageDown(cmd *cobra.Command, args []string) error {
	engine, err := newConfiguredEngine()
	if err != nil {
		return err
	}

	if err := engine.Stop(cmd.Context(), containerName()); err != nil {
		return err
	}
	if err := engine.Remove(cmd.Context(), containerName(), false); err != nil {
		return err
	}

	fmt.Printf("%s Stopped %s\n", SuccessStyle.Render("✓"), containerName())
	return nil
}

func runImageLogs(cmd *cobra.Command, args []string) error {
	engine, err := newConfiguredEngine()
	if err != nil {
		return err
	}

	return engine.Logs(cmd.Context(), container.LogsOptions{
		Container: containerName(),
		Follow:    imageFollow,
		Tail:      imageTailLine,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	})
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
