// SPDX-License-Identifier: MPL-2.0

package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"

	"ragkit/internal/issue"
	"ragkit/internal/workspace"
)

// DefaultHubURL is the Hugging Face hub endpoint.
const DefaultHubURL = "https://huggingface.co"

// TokenEnvVar names the environment variable holding the hub access token.
// Public repositories work without one.
const TokenEnvVar = "HUGGINGFACE_TOKEN"

// quantPreference orders GGUF quantization levels from most to least
// preferred when the configuration does not pin an exact file.
var quantPreference = []string{"q4_k_m", "q4_0", "q5_k_m", "q8_0"}

// RepoFile is one entry of a hub repository tree listing.
type RepoFile struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Fetcher downloads files from the Hugging Face hub.
type Fetcher struct {
	client *retryablehttp.Client
	logger *log.Logger

	// HubURL overrides the hub endpoint, for tests.
	HubURL string
	// Token authenticates requests to gated repositories.
	Token string
}

// NewFetcher creates a Fetcher with retrying HTTP transport. The token is
// taken from the environment when present.
func NewFetcher(logger *log.Logger) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Fetcher{
		client: client,
		logger: logger,
		HubURL: DefaultHubURL,
		Token:  os.Getenv(TokenEnvVar),
	}
}

// ListFiles returns the file paths of the repository's main branch.
func (f *Fetcher) ListFiles(ctx context.Context, repo string) ([]string, error) {
	url := fmt.Sprintf("%s/api/models/%s/tree/main", f.HubURL, repo)

	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("list model repository files").
			WithResource(repo).
			WithSuggestion("Check the repository name and your network connection").
			Wrap(err).
			BuildError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, issue.NewErrorContext().
			WithOperation("list model repository files").
			WithResource(repo).
			WithSuggestion(fmt.Sprintf("Set %s if the repository is gated", TokenEnvVar)).
			Wrap(fmt.Errorf("hub returned status %d", resp.StatusCode)).
			BuildError()
	}

	var entries []RepoFile
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding repository tree: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type == "file" {
			files = append(files, e.Path)
		}
	}
	return files, nil
}

// SelectGGUF picks the GGUF file to download. A non-empty preferred name
// wins when present in the listing; otherwise quantization levels are
// tried in order of preference, falling back to the first GGUF file.
func SelectGGUF(files []string, preferred string) (string, error) {
	var gguf []string
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f), ".gguf") {
			gguf = append(gguf, f)
		}
	}
	if len(gguf) == 0 {
		return "", issue.NewErrorContext().
			WithOperation("select model file").
			WithSuggestion("Point model.repo at a repository with GGUF weights").
			Wrap(fmt.Errorf("no GGUF files in repository listing")).
			BuildError()
	}

	if preferred != "" {
		for _, f := range gguf {
			if f == preferred {
				return f, nil
			}
		}
		return "", issue.NewErrorContext().
			WithOperation("select model file").
			WithResource(preferred).
			WithSuggestion("Remove model.file from the configuration to pick a quantization automatically").
			Wrap(fmt.Errorf("file not present in repository")).
			BuildError()
	}

	for _, quant := range quantPreference {
		for _, f := range gguf {
			if strings.Contains(strings.ToLower(f), quant) {
				return f, nil
			}
		}
	}
	return gguf[0], nil
}

// Fetch downloads one repository file into the workspace models directory
// and returns its local path. An already present file is left untouched.
func (f *Fetcher) Fetch(ctx context.Context, layout workspace.Layout, repo, file string) (string, error) {
	dest := filepath.Join(layout.Path(workspace.DirModels), filepath.Base(file))
	if _, err := os.Stat(dest); err == nil {
		f.logger.Info("model already present", "file", dest)
		return dest, nil
	}

	url := fmt.Sprintf("%s/%s/resolve/main/%s", f.HubURL, repo, file)
	f.logger.Info("downloading model", "repo", repo, "file", file)

	resp, err := f.get(ctx, url)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("download model file").
			WithResource(file).
			Wrap(err).
			BuildError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", issue.NewErrorContext().
			WithOperation("download model file").
			WithResource(file).
			WithSuggestion(fmt.Sprintf("Set %s if the repository is gated", TokenEnvVar)).
			Wrap(fmt.Errorf("hub returned status %d", resp.StatusCode)).
			BuildError()
	}

	// Download to a temp file in the same directory so the final rename
	// is atomic and a crash never leaves a truncated model behind.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing model file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalizing model file: %w", err)
	}

	f.logger.Info("model downloaded", "file", dest, "bytes", written)
	return dest, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}
	return f.client.Do(req)
}
