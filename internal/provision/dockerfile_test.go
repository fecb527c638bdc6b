// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragkit/internal/config"
)

func TestRenderTwoStages(t *testing.T) {
	out := Render(Options{})

	var fromLines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "FROM ") {
			fromLines = append(fromLines, line)
		}
	}
	if len(fromLines) != 2 {
		t.Fatalf("expected 2 FROM lines, got %d: %v", len(fromLines), fromLines)
	}
	if !strings.HasSuffix(fromLines[0], " AS builder") {
		t.Errorf("first stage not named builder: %q", fromLines[0])
	}

	base := config.DefaultConfig().Image.BaseImage
	for i, line := range fromLines {
		if !strings.Contains(line, base) {
			t.Errorf("FROM line %d does not use base image %q: %q", i, base, line)
		}
	}
}

func TestRenderRuntimeStageHasNoToolchain(t *testing.T) {
	out := Render(Options{})

	idx := strings.LastIndex(out, "FROM ")
	if idx < 0 {
		t.Fatal("no FROM line in output")
	}
	runtime := out[idx:]

	for _, tok := range []string{"build-essential", "git", "pip install"} {
		if strings.Contains(runtime, tok) {
			t.Errorf("runtime stage contains builder token %q", tok)
		}
	}
	for _, tok := range []string{"tesseract-ocr", "tesseract-ocr-eng", "poppler-utils", "libgl1", "libglib2.0-0"} {
		if !strings.Contains(runtime, tok) {
			t.Errorf("runtime stage missing package %q", tok)
		}
	}
	if !strings.Contains(runtime, "COPY --from=builder /opt/venv /opt/venv") {
		t.Error("runtime stage does not copy the virtualenv from the builder")
	}
}

func TestRenderHealthcheck(t *testing.T) {
	out := Render(Options{Port: 9090})

	if !strings.Contains(out, "HEALTHCHECK --interval=30s --timeout=10s --start-period=60s --retries=3") {
		t.Error("healthcheck parameters not rendered as expected")
	}
	if !strings.Contains(out, "curl -f http://localhost:9090/health || exit 1") {
		t.Error("healthcheck probe does not hit /health on the configured port")
	}
	if !strings.Contains(out, "EXPOSE 9090\n") {
		t.Error("configured port not exposed")
	}
}

func TestRenderRunsAsNonRoot(t *testing.T) {
	out := Render(Options{})

	userIdx := strings.Index(out, "USER appuser")
	cmdIdx := strings.Index(out, "CMD [\"python\", \"app.py\"]")
	if userIdx < 0 {
		t.Fatal("no USER directive")
	}
	if cmdIdx < 0 {
		t.Fatal("no CMD directive")
	}
	if userIdx > cmdIdx {
		t.Error("USER directive must precede CMD")
	}
	if !strings.Contains(out, "chown -R appuser:appuser /app") {
		t.Error("application directory not chowned to the runtime user")
	}
	if strings.Count(out, "\nCMD ") != 1 {
		t.Errorf("expected a single CMD, got %d", strings.Count(out, "\nCMD "))
	}
}

func TestRenderUsesManifest(t *testing.T) {
	out := Render(Options{Manifest: "deps/requirements.txt"})

	if !strings.Contains(out, "COPY deps/requirements.txt .") {
		t.Error("manifest not copied into the builder stage")
	}
	if !strings.Contains(out, "pip install --no-cache-dir -r requirements.txt") {
		t.Error("pip install does not reference the manifest basename")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Image.BaseImage = "python:3.12-slim"
	cfg.Image.Port = 8080
	cfg.Workspace.Manifest = "reqs.txt"

	opts := OptionsFromConfig(cfg)
	if opts.BaseImage != "python:3.12-slim" || opts.Port != 8080 || opts.Manifest != "reqs.txt" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestWriteDockerfile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDockerfile(dir, Options{})
	if err != nil {
		t.Fatalf("WriteDockerfile() error = %v", err)
	}
	if path != filepath.Join(dir, DockerfileName) {
		t.Errorf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dockerfile: %v", err)
	}
	if string(data) != Render(Options{}) {
		t.Error("written content does not match rendered output")
	}

	ignore, err := os.ReadFile(filepath.Join(dir, DockerignoreName))
	if err != nil {
		t.Fatalf("reading dockerignore: %v", err)
	}
	for _, entry := range []string{"vector_store/", "models/", ".env"} {
		if !strings.Contains(string(ignore), entry+"\n") {
			t.Errorf("dockerignore missing entry %q", entry)
		}
	}
}

func TestWriteDockerfileKeepsExistingDockerignore(t *testing.T) {
	dir := t.TempDir()
	ignorePath := filepath.Join(dir, DockerignoreName)
	if err := os.WriteFile(ignorePath, []byte("custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteDockerfile(dir, Options{}); err != nil {
		t.Fatalf("WriteDockerfile() error = %v", err)
	}

	data, err := os.ReadFile(ignorePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "custom\n" {
		t.Errorf("existing dockerignore was overwritten: %q", data)
	}
}
