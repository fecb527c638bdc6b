// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragkit/internal/assets"
	"ragkit/internal/issue"
	"ragkit/internal/platform"
	"ragkit/internal/workspace"
)

var (
	modelRepo string
	modelFile string

	// modelCmd manages model weights in the workspace.
	modelCmd = &cobra.Command{
		Use:   "model",
		Short: "Manage model weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	modelFetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Download model weights from the Hugging Face hub",
		Long: `Download model weights from the Hugging Face hub into the models
directory.

The repository and file come from the configuration (model.repo,
model.file) unless overridden by flags. When no file is pinned, a GGUF
quantization is picked automatically, preferring q4_k_m. Set
HUGGINGFACE_TOKEN for gated repositories. Already-downloaded files are
not fetched again.`,
		RunE: runModelFetch,
	}
)

func init() {
	modelFetchCmd.Flags().StringVar(&modelRepo, "repo", "", "hub repository (overrides model.repo)")
	modelFetchCmd.Flags().StringVar(&modelFile, "file", "", "file within the repository (overrides model.file)")
	modelCmd.AddCommand(modelFetchCmd)
	modelCmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show configured and downloaded model weights",
		RunE:  runModelInfo,
	})
}

func runModelInfo(cmd *cobra.Command, args []string) error {
	fmt.Println(TitleStyle.Render("Model configuration:"))
	if appConfig.Model.Repo == "" {
		fmt.Println("  " + SubtitleStyle.Render("no repository configured (set model.repo)"))
	} else {
		fmt.Printf("  repo: %s\n", appConfig.Model.Repo)
		if appConfig.Model.File != "" {
			fmt.Printf("  file: %s (pinned)\n", appConfig.Model.File)
		} else {
			fmt.Println("  file: " + SubtitleStyle.Render("auto (quantization preference)"))
		}
	}

	layout := workspace.NewLayout(projectRoot)
	modelsDir := layout.Path(workspace.DirModels)
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println()
			fmt.Println(SubtitleStyle.Render("No models directory. Run 'ragkit init' first."))
			return nil
		}
		return err
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Downloaded:"))
	found := false
	for _, e := range entries {
		if e.IsDir() || !workspace.IsModelFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Printf("  %s (%s)\n", e.Name(), platform.FormatBytes(uint64(info.Size())))
		found = true
	}
	if !found {
		fmt.Println("  " + SubtitleStyle.Render("none; run 'ragkit model fetch'"))
	}
	return nil
}

func runModelFetch(cmd *cobra.Command, args []string) error {
	repo := appConfig.Model.Repo
	if modelRepo != "" {
		repo = modelRepo
	}
	if repo == "" {
		return fmt.Errorf("no model repository configured; set model.repo or pass --repo")
	}

	file := appConfig.Model.File
	if modelFile != "" {
		file = modelFile
	}

	layout := workspace.NewLayout(projectRoot)
	if err := layout.Scaffold(); err != nil {
		return err
	}

	fetcher := assets.NewFetcher(logger)

	files, err := fetcher.ListFiles(cmd.Context(), repo)
	if err != nil {
		return err
	}
	selected, err := assets.SelectGGUF(files, file)
	if err != nil {
		renderIssue(issue.ModelNotFoundId)
		return err
	}

	dest, err := fetcher.Fetch(cmd.Context(), layout, repo, selected)
	if err != nil {
		return err
	}

	fmt.Printf("%s Model ready at %s\n", SuccessStyle.Render("✓"), dest)
	return nil
}
