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
// the umpire review pipeline. This file defines Stage 3: the frame analyses,
// the temporal analysis, and the sport's rule text are synthesized into a
// single rule-grounded reading of the play. This is a text-only model call.
package commands

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
	"go.opentelemetry.io/otel/metric"
)

// synthesisPromptParams feeds the synthesis prompt template.
type synthesisPromptParams struct {
	Sport         string
	RuleText      string
	FrameAnalyses string
	VideoAnalysis string
}

// RuleSynthesizer merges the visual evidence with the sport's rules.
type RuleSynthesizer struct {
	cor.BaseCommand
	model              cloud.GenerativeModel
	promptTemplate     *template.Template
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
}

// NewRuleSynthesizer creates the Stage 3 command.
func NewRuleSynthesizer(name string, generativeModel cloud.GenerativeModel, promptTemplate *template.Template) *RuleSynthesizer {
	out := &RuleSynthesizer{
		BaseCommand:    *cor.NewBaseCommand(name),
		model:          generativeModel,
		promptTemplate: promptTemplate,
	}
	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.input", name))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.output", name))
	return out
}

// IsExecutable requires both analysis stages and the sport identifier.
func (c *RuleSynthesizer) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.GetContext() != nil &&
		context.Get(GetFrameAnalysesParamName()) != nil &&
		context.Get(GetVideoAnalysisParamName()) != nil &&
		context.Get(GetSportParamName()) != nil
}

// Execute renders the synthesis prompt and stores the model's rule-grounded
// reading of the play.
func (c *RuleSynthesizer) Execute(context cor.Context) {
	analyses := context.Get(GetFrameAnalysesParamName()).([]*model.FrameAnalysis)
	videoAnalysis := context.Get(GetVideoAnalysisParamName()).(string)
	sportID := context.Get(GetSportParamName()).(string)
	sport := rules.ProfileFor(sportID)

	var prompt bytes.Buffer
	if err := c.promptTemplate.Execute(&prompt, synthesisPromptParams{
		Sport:         sport.DisplayName,
		RuleText:      rules.FormatForPrompt(sportID),
		FrameAnalyses: formatFrameAnalyses(analyses),
		VideoAnalysis: videoAnalysis,
	}); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to render synthesis prompt: %w", err))
		return
	}

	text, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.inputTokenCounter, c.outputTokenCounter,
		c.model,
		cloud.NewTextContent(prompt.String()))
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed rule synthesis: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetSynthesisParamName(), text)
	context.Add(c.GetOutputParam(), text)
}

// formatFrameAnalyses renders the Stage 1 results in frame order, keeping the
// placeholders of failed frames visible to the model.
func formatFrameAnalyses(analyses []*model.FrameAnalysis) string {
	var b strings.Builder
	for _, a := range analyses {
		fmt.Fprintf(&b, "Frame %d: %s\n", a.Index, a.Text)
	}
	return b.String()
}
