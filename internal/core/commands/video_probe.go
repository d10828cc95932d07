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
// the umpire review pipeline. This file defines the metadata probe, the first
// half of Stage 0: it asks the media extraction collaborator for the clip's
// technical metadata (duration, resolution, frame rate, audio presence). A
// probe failure is fatal to the request.
package commands

import (
	"fmt"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/media"
)

// VideoProbe probes the uploaded video's technical metadata.
type VideoProbe struct {
	cor.BaseCommand
	extractor media.Extractor
}

// NewVideoProbe creates the metadata probe command.
func NewVideoProbe(name string, extractor media.Extractor) *VideoProbe {
	return &VideoProbe{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor}
}

// IsExecutable requires the video asset to be present in the context.
func (c *VideoProbe) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(GetVideoAssetParamName()) != nil
}

// Execute probes the metadata and stores it under the metadata key and the
// default output slot.
func (c *VideoProbe) Execute(context cor.Context) {
	asset := context.Get(GetVideoAssetParamName()).(*model.VideoAsset)

	meta, err := c.extractor.Metadata(context.GetContext(), asset.Path)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to probe video metadata: %w", err))
		return
	}
	if meta.SizeBytes == 0 {
		meta.SizeBytes = asset.SizeBytes
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetMetadataParamName(), meta)
	context.Add(c.GetOutputParam(), meta)
}
