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
// the umpire review pipeline. This file defines Stage 2: the entire clip is
// sent inline to the full-video model for a temporal read of the play. Unlike
// Stage 1, a failure here is fatal to the request; the temporal analysis has
// no per-item granularity to degrade over.
package commands

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"text/template"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
	"go.opentelemetry.io/otel/metric"
)

// videoPromptParams feeds the full-video prompt template.
type videoPromptParams struct {
	Sport           string
	DurationSeconds float64
	HasAudio        bool
}

// FullVideoAnalyzer runs the temporal full-video model over the whole clip.
type FullVideoAnalyzer struct {
	cor.BaseCommand
	model              cloud.GenerativeModel
	promptTemplate     *template.Template
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
}

// NewFullVideoAnalyzer creates the Stage 2 command.
func NewFullVideoAnalyzer(name string, generativeModel cloud.GenerativeModel, promptTemplate *template.Template) *FullVideoAnalyzer {
	out := &FullVideoAnalyzer{
		BaseCommand:    *cor.NewBaseCommand(name),
		model:          generativeModel,
		promptTemplate: promptTemplate,
	}
	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.input", name))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.output", name))
	return out
}

// IsExecutable requires the encoded clip, the probed metadata, and the sport.
func (c *FullVideoAnalyzer) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.GetContext() != nil &&
		context.Get(GetEncodedVideoParamName()) != nil &&
		context.Get(GetMetadataParamName()) != nil &&
		context.Get(GetSportParamName()) != nil
}

// Execute sends the clip inline to the full-video model and stores the
// temporal analysis text.
func (c *FullVideoAnalyzer) Execute(context cor.Context) {
	encoded := context.Get(GetEncodedVideoParamName()).(*model.EncodedVideo)
	meta := context.Get(GetMetadataParamName()).(*model.VideoMetadata)
	sport := rules.ProfileFor(context.Get(GetSportParamName()).(string))

	var prompt bytes.Buffer
	if err := c.promptTemplate.Execute(&prompt, videoPromptParams{
		Sport:           sport.DisplayName,
		DurationSeconds: meta.DurationSeconds,
		HasAudio:        meta.HasAudio,
	}); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to render full-video prompt: %w", err))
		return
	}

	data, err := base64.StdEncoding.DecodeString(encoded.Data)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to decode inline video payload: %w", err))
		return
	}

	text, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.inputTokenCounter, c.outputTokenCounter,
		c.model,
		cloud.NewInlineMediaContent(prompt.String(), data, encoded.MIMEType))
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed full-video analysis: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVideoAnalysisParamName(), text)
	context.Add(c.GetOutputParam(), text)
}
