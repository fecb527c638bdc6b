// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackupAndRestore(t *testing.T) {
	src := NewLayout(t.TempDir())
	if err := src.Scaffold(); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(DirVectorStore, "index.bin"):           "vectors",
		filepath.Join(DirProcessedData, "chunks", "c1.json"): `{"id":1}`,
	}
	for rel, content := range files {
		path := filepath.Join(src.Root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Data files are reproducible and must not be archived.
	if err := os.WriteFile(filepath.Join(src.Path(DirData), "doc.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	archive, err := src.Backup(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if filepath.Base(archive) != "ragkit_backup_20260828_120000.tar.gz" {
		t.Errorf("archive name = %s, want timestamped ragkit_backup file", filepath.Base(archive))
	}

	dst := NewLayout(t.TempDir())
	if err := dst.Restore(archive); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	for rel, content := range files {
		data, err := os.ReadFile(filepath.Join(dst.Root, rel))
		if err != nil {
			t.Errorf("restored file %s: %v", rel, err)
			continue
		}
		if string(data) != content {
			t.Errorf("restored %s = %q, want %q", rel, data, content)
		}
	}
	if _, err := os.Stat(filepath.Join(dst.Path(DirData), "doc.pdf")); !os.IsNotExist(err) {
		t.Error("data file leaked into backup archive")
	}
}

func TestRestoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")

	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	content := []byte("pwned")
	if err := tw.WriteHeader(&tar.Header{
		Name: "../escape.txt", Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	l := NewLayout(t.TempDir())
	if err := l.Restore(archive); err == nil {
		t.Fatal("Restore() accepted a traversal entry, want error")
	}
}

func TestRestoreRejectsForeignEntry(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "foreign.tar.gz")

	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	content := []byte("nope")
	if err := tw.WriteHeader(&tar.Header{
		Name: "venv/bin/activate", Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	l := NewLayout(t.TempDir())
	if err := l.Restore(archive); err == nil {
		t.Fatal("Restore() accepted an entry outside backed-up dirs, want error")
	}
}

func TestCleanLogs(t *testing.T) {
	l := NewLayout(t.TempDir())
	if err := l.Scaffold(); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	old := filepath.Join(l.Path(DirLogs), "ragkit_old.log")
	fresh := filepath.Join(l.Path(DirLogs), "ragkit_fresh.log")
	for _, path := range []string{old, fresh} {
		if err := os.WriteFile(path, []byte("log"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(old, now.Add(-10*24*time.Hour), now.Add(-10*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	removed, err := l.CleanLogs(now, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanLogs() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log survived cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh log removed by cleanup")
	}
	if _, err := os.Stat(filepath.Join(l.Path(DirLogs), ".gitkeep")); err != nil {
		t.Error("marker file removed by cleanup")
	}
}

func TestCleanLogsMissingDir(t *testing.T) {
	l := NewLayout(t.TempDir())

	removed, err := l.CleanLogs(time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("CleanLogs() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
