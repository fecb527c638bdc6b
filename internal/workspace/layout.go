// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirData holds source documents to be ingested.
	DirData = "data"
	// DirModels holds downloaded model weights.
	DirModels = "models"
	// DirVectorStore holds the persisted vector index.
	DirVectorStore = "vector_store"
	// DirProcessedData holds intermediate ingestion artifacts.
	DirProcessedData = "processed_data"
	// DirLogs holds application log files.
	DirLogs = "logs"

	// markerFile keeps otherwise-empty directories under version control.
	markerFile = ".gitkeep"
)

// Dirs returns the working directories in scaffold order.
func Dirs() []string {
	return []string{DirData, DirModels, DirVectorStore, DirProcessedData, DirLogs}
}

// Layout resolves workspace paths relative to a project root.
type Layout struct {
	Root string
}

// NewLayout creates a Layout rooted at the given project directory.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// Path returns the absolute path of a named working directory.
func (l Layout) Path(dir string) string {
	return filepath.Join(l.Root, dir)
}

// SettingsPath returns the path of the settings file.
func (l Layout) SettingsPath() string {
	return filepath.Join(l.Root, settingsFile)
}

// SettingsTemplatePath returns the path of the optional settings template.
func (l Layout) SettingsTemplatePath() string {
	return filepath.Join(l.Root, settingsTemplateFile)
}

// Scaffold creates every working directory plus its marker file. The
// operation is idempotent: existing directories and markers are left
// untouched, so re-running after a partial failure completes the layout.
func (l Layout) Scaffold() error {
	for _, dir := range Dirs() {
		path := l.Path(dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		marker := filepath.Join(path, markerFile)
		if _, err := os.Stat(marker); os.IsNotExist(err) {
			if err := os.WriteFile(marker, nil, 0o644); err != nil {
				return fmt.Errorf("failed to create marker in %s: %w", dir, err)
			}
		}
	}

	return nil
}

// Exists reports whether a named working directory is present.
func (l Layout) Exists(dir string) bool {
	info, err := os.Stat(l.Path(dir))
	return err == nil && info.IsDir()
}

// MissingDirs returns the names of working directories that do not exist.
func (l Layout) MissingDirs() []string {
	var missing []string
	for _, dir := range Dirs() {
		if !l.Exists(dir) {
			missing = append(missing, dir)
		}
	}
	return missing
}

// WriteSampleReadme places a short orientation file into the data
// directory when it holds no documents yet. Existing files are never
// overwritten.
func (l Layout) WriteSampleReadme() error {
	path := filepath.Join(l.Path(DirData), "README.md")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	content := `# Data Directory

Place your source documents here. Supported formats:

- PDF (.pdf)
- Word (.docx)
- Plain text (.txt)
- Markdown (.md)

Files in this directory are ingested into the vector store on the next
indexing run.
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write sample readme: %w", err)
	}
	return nil
}
