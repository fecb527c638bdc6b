// SPDX-License-Identifier: MPL-2.0

// Package statusserver exposes a small HTTP surface over the workspace:
// a liveness probe compatible with the container health check and a
// status report of the working directories.
package statusserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"ragkit/internal/config"
	"ragkit/internal/platform"
	"ragkit/internal/workspace"
)

// Server serves workspace health and status over HTTP.
type Server struct {
	cfg    *config.Config
	layout workspace.Layout
	logger *log.Logger

	// freeDisk is swappable for tests.
	freeDisk func(path string) (platform.DiskSpace, error)
}

// New creates a Server for the given workspace layout.
func New(cfg *config.Config, layout workspace.Layout, logger *log.Logger) *Server {
	return &Server{
		cfg:      cfg,
		layout:   layout,
		logger:   logger,
		freeDisk: platform.FreeDiskSpace,
	}
}

// Router builds the gin handler. Gin runs in release mode; request
// logging goes through the application logger instead of gin's default.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/status", s.handleStatus)
	return r
}

// handleHealth reports ok when every working directory exists, degraded
// with a 503 otherwise. The container HEALTHCHECK probes this endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	missing := s.layout.MissingDirs()
	if len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"missing": missing,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type dirReport struct {
	Name      string `json:"name"`
	Exists    bool   `json:"exists"`
	Files     int    `json:"files"`
	Documents int    `json:"documents,omitempty"`
	Size      string `json:"size"`
}

func (s *Server) handleStatus(c *gin.Context) {
	infos, err := s.layout.Scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dirs := make([]dirReport, 0, len(infos))
	for _, info := range infos {
		dirs = append(dirs, dirReport{
			Name:      info.Name,
			Exists:    info.Exists,
			Files:     info.FileCount,
			Documents: info.DocumentCount,
			Size:      platform.FormatBytes(uint64(info.TotalBytes)),
		})
	}

	resp := gin.H{
		"workspace": s.layout.Root,
		"dirs":      dirs,
		"config": gin.H{
			"container_engine": s.cfg.ContainerEngine.String(),
			"default_runtime":  s.cfg.DefaultRuntime.String(),
			"image":            s.cfg.Image.Name + ":" + s.cfg.Image.Tag,
			"port":             s.cfg.Image.Port,
		},
		"model": s.modelReport(),
	}
	if disk, err := s.freeDisk(s.layout.Root); err == nil {
		resp["disk"] = gin.H{
			"free":  platform.FormatBytes(disk.FreeBytes),
			"total": platform.FormatBytes(disk.TotalBytes),
			"low":   disk.Low(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// modelReport lists downloaded weight files in the models directory.
func (s *Server) modelReport() gin.H {
	var files []string
	entries, err := os.ReadDir(s.layout.Path(workspace.DirModels))
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && workspace.IsModelFile(e.Name()) {
				files = append(files, e.Name())
			}
		}
	}
	return gin.H{"present": len(files) > 0, "files": files}
}

// Serve runs the server until ctx is canceled, then shuts down with a
// short drain timeout.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}
