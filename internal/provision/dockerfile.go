// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ragkit/internal/config"
	"ragkit/internal/issue"
)

// DockerfileName is the filename Render output is written to by default.
const DockerfileName = "Dockerfile"

// DockerignoreName is the filename for the build context exclusion list.
const DockerignoreName = ".dockerignore"

const (
	venvPath    = "/opt/venv"
	appDir      = "/app"
	runtimeUser = "appuser"
)

// Options control Dockerfile rendering. Zero values fall back to the
// corresponding config defaults.
type Options struct {
	// BaseImage is the image both stages build from.
	BaseImage string
	// Port is the port the application listens on; it is exposed and
	// probed by the health check.
	Port int
	// Manifest is the pip requirements file, relative to the build context.
	Manifest string
}

// OptionsFromConfig derives rendering options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseImage: cfg.Image.BaseImage,
		Port:      cfg.Image.Port,
		Manifest:  cfg.Workspace.Manifest,
	}
}

func (o Options) withDefaults() Options {
	def := config.DefaultConfig()
	if o.BaseImage == "" {
		o.BaseImage = def.Image.BaseImage
	}
	if o.Port == 0 {
		o.Port = def.Image.Port
	}
	if o.Manifest == "" {
		o.Manifest = def.Workspace.Manifest
	}
	return o
}

// Render produces the two-stage Dockerfile for the application image.
func Render(opts Options) string {
	opts = opts.withDefaults()

	var sb strings.Builder

	sb.WriteString("# syntax=docker/dockerfile:1\n\n")

	// Builder stage: compiler toolchain plus a virtualenv holding the
	// installed Python dependencies. Nothing from this stage ships in
	// the final image except the virtualenv itself.
	fmt.Fprintf(&sb, "FROM %s AS builder\n\n", opts.BaseImage)
	sb.WriteString("RUN apt-get update && apt-get install -y --no-install-recommends \\\n")
	sb.WriteString("        build-essential \\\n")
	sb.WriteString("        git \\\n")
	sb.WriteString("        curl \\\n")
	sb.WriteString("    && rm -rf /var/lib/apt/lists/*\n\n")
	fmt.Fprintf(&sb, "RUN python -m venv %s\n", venvPath)
	fmt.Fprintf(&sb, "ENV PATH=\"%s/bin:$PATH\"\n\n", venvPath)
	fmt.Fprintf(&sb, "WORKDIR %s\n", appDir)
	fmt.Fprintf(&sb, "COPY %s .\n", opts.Manifest)
	sb.WriteString("RUN pip install --upgrade pip && \\\n")
	fmt.Fprintf(&sb, "    pip install --no-cache-dir -r %s\n\n", filepath.Base(opts.Manifest))

	// Runtime stage: same base, no toolchain. Native libraries cover
	// OCR (tesseract with English data), PDF rendering (poppler) and
	// the graphics stack headless OpenCV links against. curl stays for
	// the health check probe.
	fmt.Fprintf(&sb, "FROM %s\n\n", opts.BaseImage)
	sb.WriteString("RUN apt-get update && apt-get install -y --no-install-recommends \\\n")
	sb.WriteString("        tesseract-ocr \\\n")
	sb.WriteString("        tesseract-ocr-eng \\\n")
	sb.WriteString("        poppler-utils \\\n")
	sb.WriteString("        libgl1 \\\n")
	sb.WriteString("        libglib2.0-0 \\\n")
	sb.WriteString("        curl \\\n")
	sb.WriteString("    && rm -rf /var/lib/apt/lists/*\n\n")
	fmt.Fprintf(&sb, "COPY --from=builder %s %s\n\n", venvPath, venvPath)
	sb.WriteString("ENV PYTHONUNBUFFERED=1 \\\n")
	sb.WriteString("    PYTHONDONTWRITEBYTECODE=1 \\\n")
	sb.WriteString("    PIP_NO_CACHE_DIR=1 \\\n")
	sb.WriteString("    PIP_DISABLE_PIP_VERSION_CHECK=1 \\\n")
	fmt.Fprintf(&sb, "    PATH=\"%s/bin:$PATH\"\n\n", venvPath)
	fmt.Fprintf(&sb, "RUN useradd --create-home --shell /bin/bash %s\n\n", runtimeUser)
	fmt.Fprintf(&sb, "WORKDIR %s\n", appDir)
	sb.WriteString("COPY . .\n")
	fmt.Fprintf(&sb, "RUN chown -R %s:%s %s\n\n", runtimeUser, runtimeUser, appDir)
	fmt.Fprintf(&sb, "USER %s\n\n", runtimeUser)
	fmt.Fprintf(&sb, "EXPOSE %d\n\n", opts.Port)
	sb.WriteString("HEALTHCHECK --interval=30s --timeout=10s --start-period=60s --retries=3 \\\n")
	fmt.Fprintf(&sb, "    CMD curl -f http://localhost:%d/health || exit 1\n\n", opts.Port)
	sb.WriteString("CMD [\"python\", \"app.py\"]\n")

	return sb.String()
}

// RenderDockerignore produces the build context exclusion list. Workspace
// state directories stay out of the image; their contents are mounted or
// rebuilt at run time.
func RenderDockerignore() string {
	var sb strings.Builder
	sb.WriteString(".git\n")
	sb.WriteString(".gitignore\n")
	sb.WriteString(".env\n")
	sb.WriteString("venv/\n")
	sb.WriteString("__pycache__/\n")
	sb.WriteString("*.pyc\n")
	sb.WriteString("data/\n")
	sb.WriteString("models/\n")
	sb.WriteString("vector_store/\n")
	sb.WriteString("processed_data/\n")
	sb.WriteString("logs/\n")
	sb.WriteString("backups/\n")
	sb.WriteString("Dockerfile\n")
	sb.WriteString(".dockerignore\n")
	return sb.String()
}

// WriteDockerfile renders the build definition into dir, alongside a
// .dockerignore when one does not already exist. Returns the Dockerfile
// path.
func WriteDockerfile(dir string, opts Options) (string, error) {
	path := filepath.Join(dir, DockerfileName)
	if err := os.WriteFile(path, []byte(Render(opts)), 0o644); err != nil {
		return "", issue.NewErrorContext().
			WithOperation("write container build definition").
			WithResource(path).
			Wrap(err).
			BuildError()
	}

	ignorePath := filepath.Join(dir, DockerignoreName)
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(ignorePath, []byte(RenderDockerignore()), 0o644); err != nil {
			return "", issue.NewErrorContext().
				WithOperation("write build context exclusion list").
				WithResource(ignorePath).
				Wrap(err).
				BuildError()
		}
	}
	return path, nil
}
