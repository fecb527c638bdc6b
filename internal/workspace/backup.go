// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// backupDirs are the derived-state directories captured by Backup.
// Source documents and model weights are reproducible and excluded.
var backupDirs = []string{DirVectorStore, DirProcessedData}

// BackupDir is where archives are written, relative to the project root.
const BackupDir = "backups"

// Backup archives the vector store and processed data into a
// timestamped tar.gz under the backups directory and returns the
// archive path.
func (l Layout) Backup(now time.Time) (string, error) {
	outDir := filepath.Join(l.Root, BackupDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("ragkit_backup_%s.tar.gz", now.Format("20060102_150405"))
	outPath := filepath.Join(outDir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup archive: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	for _, dir := range backupDirs {
		root := l.Path(dir)
		if !l.Exists(dir) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(l.Root, path)
			if err != nil {
				return err
			}
			return addToArchive(tw, path, filepath.ToSlash(rel))
		})
		if err != nil {
			return "", fmt.Errorf("failed to archive %s: %w", dir, err)
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	return outPath, nil
}

func addToArchive(tw *tar.Writer, path, name string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Restore extracts a backup archive into the project root. Entries that
// would escape the root or fall outside the backed-up directories are
// rejected.
func (l Layout) Restore(archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read backup archive: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read backup archive: %w", err)
		}

		if err := validateArchiveEntry(hdr.Name); err != nil {
			return err
		}

		dst := filepath.Join(l.Root, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return fmt.Errorf("failed to restore %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("failed to restore %s: %w", hdr.Name, err)
			}
			out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return fmt.Errorf("failed to restore %s: %w", hdr.Name, err)
			}
			if _, err := io.Copy(out, tr); err != nil { //nolint:gosec // entries are validated against backupDirs
				out.Close()
				return fmt.Errorf("failed to restore %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("failed to restore %s: %w", hdr.Name, err)
			}
		default:
			return fmt.Errorf("unsupported archive entry type for %s", hdr.Name)
		}
	}

	return nil
}

// validateArchiveEntry rejects absolute paths, traversal sequences, and
// entries outside the backed-up directories.
func validateArchiveEntry(name string) error {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("archive entry %q escapes the project root", name)
	}

	for _, dir := range backupDirs {
		if clean == dir || strings.HasPrefix(clean, dir+"/") {
			return nil
		}
	}
	return fmt.Errorf("archive entry %q is outside the backed-up directories", name)
}

// CleanLogs removes log files older than the retention window and
// returns how many were deleted. The marker file is always kept.
func (l Layout) CleanLogs(now time.Time, retention time.Duration) (int, error) {
	dir := l.Path(DirLogs)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read logs directory: %w", err)
	}

	cutoff := now.Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == markerFile {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			return removed, err
		}
		if fi.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}

	return removed, nil
}
