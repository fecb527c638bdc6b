// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// documentExtensions are the ingestable source document formats.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// DirInfo summarizes the contents of one working directory.
type DirInfo struct {
	Name      string
	Path      string
	Exists    bool
	FileCount int
	// DocumentCount counts only ingestable document formats. It is zero
	// for directories other than the data directory.
	DocumentCount int
	TotalBytes    int64
}

// Scan walks every working directory and summarizes its contents.
// Marker files are not counted. Missing directories are reported with
// Exists set to false rather than as errors.
func (l Layout) Scan() ([]DirInfo, error) {
	infos := make([]DirInfo, 0, len(Dirs()))

	for _, dir := range Dirs() {
		info := DirInfo{Name: dir, Path: l.Path(dir), Exists: l.Exists(dir)}
		if !info.Exists {
			infos = append(infos, info)
			continue
		}

		err := filepath.WalkDir(info.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() == markerFile {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				return err
			}
			info.FileCount++
			info.TotalBytes += fi.Size()
			if dir == DirData && documentExtensions[strings.ToLower(filepath.Ext(path))] {
				info.DocumentCount++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// IsDocument reports whether the file name has an ingestable extension.
func IsDocument(name string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsModelFile reports whether the file name looks like model weights.
func IsModelFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".gguf"
}
