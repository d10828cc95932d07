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
// the umpire review pipeline. This file defines Stage 4: the synthesis is
// handed to the final-decision model, which must commit to one of the sport's
// valid decisions and state its confidence. The raw decision text is stored
// for the assembler to parse.
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

// decisionPromptParams feeds the final-decision prompt template.
type decisionPromptParams struct {
	Sport           string
	ValidDecisions  string
	Synthesis       string
	DurationSeconds float64
}

// FinalDecisionMaker produces the committed umpire ruling text.
type FinalDecisionMaker struct {
	cor.BaseCommand
	model              cloud.GenerativeModel
	promptTemplate     *template.Template
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
}

// NewFinalDecisionMaker creates the Stage 4 command.
func NewFinalDecisionMaker(name string, generativeModel cloud.GenerativeModel, promptTemplate *template.Template) *FinalDecisionMaker {
	out := &FinalDecisionMaker{
		BaseCommand:    *cor.NewBaseCommand(name),
		model:          generativeModel,
		promptTemplate: promptTemplate,
	}
	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.input", name))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.output", name))
	return out
}

// IsExecutable requires the synthesis text, the probed metadata, and the
// sport identifier.
func (c *FinalDecisionMaker) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.GetContext() != nil &&
		context.Get(GetSynthesisParamName()) != nil &&
		context.Get(GetMetadataParamName()) != nil &&
		context.Get(GetSportParamName()) != nil
}

// Execute asks the final-decision model for the ruling and stores its raw
// text for verdict extraction. The clip duration rides along with the
// synthesis so the model can weigh how much of the play it is ruling on.
func (c *FinalDecisionMaker) Execute(context cor.Context) {
	synthesis := context.Get(GetSynthesisParamName()).(string)
	meta := context.Get(GetMetadataParamName()).(*model.VideoMetadata)
	sportID := context.Get(GetSportParamName()).(string)
	sport := rules.ProfileFor(sportID)

	var prompt bytes.Buffer
	if err := c.promptTemplate.Execute(&prompt, decisionPromptParams{
		Sport:           sport.DisplayName,
		ValidDecisions:  strings.Join(sport.ValidDecisions, ", "),
		Synthesis:       synthesis,
		DurationSeconds: meta.DurationSeconds,
	}); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to render final-decision prompt: %w", err))
		return
	}

	text, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.inputTokenCounter, c.outputTokenCounter,
		c.model,
		cloud.NewTextContent(prompt.String()))
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed final decision: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetDecisionTextParamName(), text)
	context.Add(c.GetOutputParam(), text)
}
