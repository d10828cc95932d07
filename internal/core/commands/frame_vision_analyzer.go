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
// the umpire review pipeline. This file defines Stage 1: every sampled frame
// is described by the frame-vision model. Frames are analyzed by a worker
// pool; a single frame failure is absorbed with a placeholder so one bad
// frame never sinks the request. Results are reassembled in frame order
// regardless of worker completion order.
package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"text/template"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
	"go.opentelemetry.io/otel/metric"
)

// FrameUnavailableText is the placeholder recorded for a frame whose model
// call failed. Downstream stages see it inline with the successful frames.
const FrameUnavailableText = "[frame analysis unavailable]"

// framePromptParams feeds the frame-vision prompt template.
type framePromptParams struct {
	FrameNumber int
	FrameCount  int
	Sport       string
}

type frameJob struct {
	index int
	path  string
}

// FrameVisionAnalyzer runs the per-frame vision model over the sampled frames.
type FrameVisionAnalyzer struct {
	cor.BaseCommand
	model              cloud.GenerativeModel
	promptTemplate     *template.Template
	threadCount        int
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
}

// NewFrameVisionAnalyzer creates the Stage 1 command. threadCount bounds the
// worker pool; values <= 0 run a single worker.
func NewFrameVisionAnalyzer(
	name string,
	generativeModel cloud.GenerativeModel,
	promptTemplate *template.Template,
	threadCount int) *FrameVisionAnalyzer {
	if threadCount <= 0 {
		threadCount = 1
	}
	out := &FrameVisionAnalyzer{
		BaseCommand:    *cor.NewBaseCommand(name),
		model:          generativeModel,
		promptTemplate: promptTemplate,
		threadCount:    threadCount,
	}
	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.input", name))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.tokens.output", name))
	return out
}

// IsExecutable requires the sampled frame set and the sport identifier.
func (c *FrameVisionAnalyzer) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.GetContext() != nil &&
		context.Get(GetFrameSetParamName()) != nil &&
		context.Get(GetSportParamName()) != nil
}

// Execute fans the frames out to the worker pool and reassembles the analyses
// in frame order. The command fails only when every frame failed; partial
// coverage is allowed through with placeholders.
func (c *FrameVisionAnalyzer) Execute(context cor.Context) {
	frames := context.Get(GetFrameSetParamName()).([]string)
	sport := rules.ProfileFor(context.Get(GetSportParamName()).(string))

	jobs := make(chan frameJob, len(frames))
	results := make([]*model.FrameAnalysis, 0, len(frames))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < c.threadCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				analysis := c.analyzeFrame(context, job, len(frames), sport.DisplayName)
				mu.Lock()
				results = append(results, analysis)
				mu.Unlock()
			}
		}()
	}

	for i, path := range frames {
		jobs <- frameJob{index: i, path: path}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	failed := 0
	for _, r := range results {
		if r.Failed {
			failed++
		}
	}
	if failed == len(results) {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("all %d frame analyses failed", len(results)))
		return
	}
	if failed > 0 {
		slog.WarnContext(context.GetContext(), "frame analysis completed with gaps",
			"failed", failed, "total", len(results))
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetFrameAnalysesParamName(), results)
	context.Add(c.GetOutputParam(), results)
}

// analyzeFrame runs a single frame through the vision model. Failures are
// converted into a placeholder result, never an error.
func (c *FrameVisionAnalyzer) analyzeFrame(context cor.Context, job frameJob, frameCount int, sportName string) *model.FrameAnalysis {
	out := &model.FrameAnalysis{Index: job.index + 1, SourceFrame: job.path}

	var prompt bytes.Buffer
	if err := c.promptTemplate.Execute(&prompt, framePromptParams{
		FrameNumber: job.index + 1,
		FrameCount:  frameCount,
		Sport:       sportName,
	}); err != nil {
		slog.WarnContext(context.GetContext(), "frame prompt rendering failed",
			"frame", job.index, "error", err)
		out.Failed = true
		out.Text = FrameUnavailableText
		return out
	}

	data, err := os.ReadFile(job.path)
	if err != nil {
		slog.WarnContext(context.GetContext(), "frame read failed",
			"frame", job.index, "error", err)
		out.Failed = true
		out.Text = FrameUnavailableText
		return out
	}

	text, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.inputTokenCounter, c.outputTokenCounter,
		c.model,
		cloud.NewInlineMediaContent(prompt.String(), data, "image/jpeg"))
	if err != nil {
		slog.WarnContext(context.GetContext(), "frame model call failed",
			"frame", job.index, "error", err)
		out.Failed = true
		out.Text = FrameUnavailableText
		return out
	}

	out.Text = text
	return out
}
