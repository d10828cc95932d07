// Copyright 2025 Umpire Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api defines the HTTP surface of the review service: the upload
// endpoint that runs a review, the health probe, and the static page. The
// handlers own upload validation and temp-file lifecycle; everything after a
// valid upload is delegated to the Reviewer.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/media"
)

// sniffLen is how many leading bytes are read for magic-byte MIME detection.
const sniffLen = 261

// Reviewer runs one review request end to end. Production wires the umpire
// review workflow; tests substitute fakes.
type Reviewer interface {
	Review(ctx context.Context, asset *model.VideoAsset, sportID string) (*model.Decision, error)
}

// Server holds the handler dependencies. Reviewer is nil when the model
// backend is not configured; uploads then fail with 503 while health and
// static content keep serving.
type Server struct {
	Config   *cloud.Config
	Reviewer Reviewer
}

// Routes registers all endpoints on the given engine.
func (s *Server) Routes(r *gin.Engine) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", s.health)
		apiGroup.POST("/upload-video", s.uploadVideo)
	}

	if s.Config.Runtime.StaticDir != "" {
		r.StaticFile("/", filepath.Join(s.Config.Runtime.StaticDir, "index.html"))
		r.Static("/static", s.Config.Runtime.StaticDir)
	}
}

// health reports liveness plus whether the model backend is configured. It
// never touches the backend itself.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"geminiConfigured": s.Config.GeminiConfigured(),
	})
}

// uploadVideo accepts a multipart upload ("video" file field plus an optional
// "sport" field), validates size and MIME type, stages the clip under a
// request-unique name, runs the review, and returns the structured decision.
// The staged upload is removed on every exit path.
func (s *Server) uploadVideo(c *gin.Context) {
	maxBytes := s.Config.Runtime.MaxUploadMB * 1024 * 1024

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video file field"})
		return
	}
	if maxBytes > 0 && file.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("upload exceeds the %d MB limit", s.Config.Runtime.MaxUploadMB),
		})
		return
	}

	sportID := rules.ProfileFor(c.DefaultPostForm("sport", rules.GeneralSportID)).ID

	// Stage under a timestamped request-unique name so concurrent uploads of
	// the same file never collide on disk or in the decision cache.
	baseName := fmt.Sprintf("upload_%d_%s%s",
		time.Now().Unix(), uuid.NewString()[:8], filepath.Ext(file.Filename))
	localPath := filepath.Join(s.uploadDir(), baseName)

	if err := c.SaveUploadedFile(file, localPath); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to stage upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(c.Request.Context(), "failed to remove staged upload",
				"path", localPath, "error", err)
		}
	}()

	mimeType, err := sniffUpload(localPath, file.Header.Get("Content-Type"))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to sniff upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to inspect upload"})
		return
	}
	if !media.AcceptedVideoType(mimeType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported media type %q; expected a video upload", mimeType),
		})
		return
	}

	if s.Reviewer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model backend is not configured"})
		return
	}

	asset := &model.VideoAsset{
		Path:      localPath,
		BaseName:  baseName,
		MIMEType:  mimeType,
		SizeBytes: file.Size,
	}

	decision, err := s.Reviewer.Review(c.Request.Context(), asset, sportID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "review failed",
			"video", baseName, "sport", sportID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "review failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"decision":  decision,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// uploadDir returns the staging directory for uploads, defaulting to the OS
// temp directory.
func (s *Server) uploadDir() string {
	if s.Config.Runtime.UploadDir != "" {
		return s.Config.Runtime.UploadDir
	}
	return os.TempDir()
}

// sniffUpload reads the staged file's leading bytes and resolves its MIME
// type, preferring magic bytes over the client-declared type.
func sniffUpload(path string, declared string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	return media.SniffMIMEType(head[:n], declared), nil
}
