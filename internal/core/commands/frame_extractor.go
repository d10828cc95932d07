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

// Package commands provides the concrete Command implementations that make up
// the umpire review pipeline. This file defines the frame extraction step of
// Stage 0: it samples a bounded, ordered set of still frames into a
// request-scoped directory that the context removes when the request ends.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/media"
)

// FrameExtraction samples still frames from the uploaded video.
type FrameExtraction struct {
	cor.BaseCommand
	extractor media.Extractor
	maxFrames int
}

// NewFrameExtraction creates the frame extraction command. maxFrames bounds
// the number of sampled stills; values <= 0 use the vision default.
func NewFrameExtraction(name string, extractor media.Extractor, maxFrames int) *FrameExtraction {
	if maxFrames <= 0 {
		maxFrames = media.DefaultVisionFrameCap
	}
	return &FrameExtraction{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor, maxFrames: maxFrames}
}

// IsExecutable requires the video asset and the request work directory.
func (c *FrameExtraction) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.GetContext() != nil &&
		context.Get(GetVideoAssetParamName()) != nil &&
		context.Get(GetWorkDirParamName()) != nil
}

// Execute extracts the frames into a subdirectory of the work directory and
// stores the ordered frame paths. The frame directory is registered on the
// context for recursive removal.
func (c *FrameExtraction) Execute(context cor.Context) {
	asset := context.Get(GetVideoAssetParamName()).(*model.VideoAsset)
	workDir := context.Get(GetWorkDirParamName()).(string)

	frameDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(frameDir, 0o750); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create frame directory: %w", err))
		return
	}
	context.AddTempDir(frameDir)

	frames, err := c.extractor.ExtractFrames(context.GetContext(), asset.Path, frameDir, c.maxFrames)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to extract frames: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetFrameSetParamName(), frames)
	context.Add(c.GetOutputParam(), frames)
}
