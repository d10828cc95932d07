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
// the umpire review pipeline. This file defines the inline encoding step of
// Stage 0: the whole clip is base64-encoded so the full-video stage can send
// it as an inline multimodal payload. Payloads past the inline comfort zone
// produce a warning but are still attempted.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/media"
)

// encodedSizeWarnBytes is the encoded payload size past which inline
// transport becomes unreliable with Vertex request limits.
const encodedSizeWarnBytes = 20 * 1024 * 1024

// VideoInlineEncoder base64-encodes the uploaded video for inline model calls.
type VideoInlineEncoder struct {
	cor.BaseCommand
	extractor media.Extractor
}

// NewVideoInlineEncoder creates the inline encoding command.
func NewVideoInlineEncoder(name string, extractor media.Extractor) *VideoInlineEncoder {
	return &VideoInlineEncoder{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor}
}

// IsExecutable requires the video asset to be present in the context.
func (c *VideoInlineEncoder) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(GetVideoAssetParamName()) != nil
}

// Execute encodes the clip and stores the encoded payload.
func (c *VideoInlineEncoder) Execute(context cor.Context) {
	asset := context.Get(GetVideoAssetParamName()).(*model.VideoAsset)

	encoded, err := c.extractor.EncodeBase64(asset.Path)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to encode video: %w", err))
		return
	}

	if len(encoded) > encodedSizeWarnBytes {
		slog.WarnContext(context.GetContext(), "encoded video exceeds inline payload comfort zone",
			"video", asset.BaseName,
			"encoded_bytes", len(encoded))
	}

	out := &model.EncodedVideo{Data: encoded, MIMEType: asset.MIMEType}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetEncodedVideoParamName(), out)
	context.Add(c.GetOutputParam(), out)
}
