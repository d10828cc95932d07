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

// Package media wraps the ffmpeg/ffprobe command-line tools behind the
// extraction contract the review pipeline consumes: probe technical metadata,
// sample a bounded ordered set of still frames at fixed time spacing, and
// inline-encode files for multimodal model calls. The pipeline depends only
// on the Extractor interface; tests substitute a fake.
package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
)

// Frame sampling bounds. Vision analysis uses the smaller cap because each
// frame costs one model call; generic key-frame extraction may go wider.
const (
	DefaultVisionFrameCap = 8
	DefaultKeyFrameCap    = 15
	defaultFrameRate      = 30.0
	framePattern          = "frame_%04d.jpg"
)

// Extractor is the media extraction contract consumed by the pipeline.
type Extractor interface {
	// Metadata probes the technical metadata of the video at path.
	Metadata(ctx context.Context, path string) (*model.VideoMetadata, error)

	// ExtractFrames samples up to maxFrames still images from the video at
	// fixed time spacing into dir and returns their paths in ascending
	// sample order.
	ExtractFrames(ctx context.Context, path string, dir string, maxFrames int) ([]string, error)

	// EncodeBase64 returns the file content base64-encoded for inline
	// model payloads.
	EncodeBase64(path string) (string, error)
}

// FFmpegExtractor shells out to ffmpeg and ffprobe.
type FFmpegExtractor struct {
	FFmpegPath  string // Path to the ffmpeg executable.
	FFprobePath string // Path to the ffprobe executable.
}

// NewFFmpegExtractor creates an extractor using the given executables,
// defaulting to the binaries on PATH when empty.
func NewFFmpegExtractor(ffmpegPath, ffprobePath string) *FFmpegExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegExtractor{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// probeOutput mirrors the subset of `ffprobe -print_format json` we read.
type probeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// Metadata probes duration, dimensions, frame rate, audio presence, container
// format and byte size. An unparsable frame rate falls back to 30.
func (e *FFmpegExtractor) Metadata(ctx context.Context, path string) (*model.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := &model.VideoMetadata{
		Format:    probe.Format.FormatName,
		FrameRate: defaultFrameRate,
	}
	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && d >= 0 {
		meta.DurationSeconds = d
	}
	if s, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
		meta.SizeBytes = s
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if meta.Width == 0 {
				meta.Width = stream.Width
				meta.Height = stream.Height
			}
			if fps, ok := parseFrameRate(stream.AvgFrameRate); ok {
				meta.FrameRate = fps
			}
		case "audio":
			meta.HasAudio = true
		}
	}
	return meta, nil
}

// parseFrameRate parses ffprobe's "num/den" rational frame rate.
func parseFrameRate(raw string) (float64, bool) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 || num <= 0 {
		return 0, false
	}
	return num / den, true
}

// ExtractFrames samples up to maxFrames stills at fixed wall-clock spacing
// (duration / maxFrames between samples, not content-aware) into dir. The
// returned paths are sorted in sample order; the caller owns dir and removes
// it when the request ends.
func (e *FFmpegExtractor) ExtractFrames(ctx context.Context, path string, dir string, maxFrames int) ([]string, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultVisionFrameCap
	}

	meta, err := e.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}

	// One frame per (duration/maxFrames) seconds. For very short or
	// zero-duration clips fall back to one frame per second.
	fpsFilter := "fps=1"
	if meta.DurationSeconds > 0 {
		interval := meta.DurationSeconds / float64(maxFrames)
		if interval > 0 {
			fpsFilter = fmt.Sprintf("fps=1/%.4f", interval)
		}
	}

	pattern := filepath.Join(dir, framePattern)
	cmd := exec.CommandContext(ctx, e.FFmpegPath,
		"-analyzeduration", "0",
		"-probesize", "5000000",
		"-y",
		"-hide_banner",
		"-i", path,
		"-vf", fpsFilter,
		"-vframes", strconv.Itoa(maxFrames),
		pattern,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction: %w, output: %s", err, string(out))
	}

	frames, err := filepath.Glob(filepath.Join(dir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", path)
	}
	sort.Strings(frames)
	if len(frames) > maxFrames {
		frames = frames[:maxFrames]
	}
	return frames, nil
}

// EncodeBase64 reads the file at path and returns its standard base64
// encoding for inline model payloads.
func (e *FFmpegExtractor) EncodeBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
