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
// the umpire review pipeline. This file defines the terminal step: the raw
// Stage 4 text is parsed into a structured Decision, the decision is cached,
// and it becomes the chain's output. Parsing is local and deterministic;
// ambiguity degrades to the sentinel call and the default confidence, never
// to an error.
package commands

import (
	"time"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cache"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/verdict"
)

// DecisionAssembler parses the ruling text into a Decision and caches it.
type DecisionAssembler struct {
	cor.BaseCommand
	decisionCache *cache.DecisionCache
}

// NewDecisionAssembler creates the assembler. decisionCache may be nil in
// tests that only exercise parsing.
func NewDecisionAssembler(name string, decisionCache *cache.DecisionCache) *DecisionAssembler {
	return &DecisionAssembler{BaseCommand: *cor.NewBaseCommand(name), decisionCache: decisionCache}
}

// IsExecutable requires the ruling text, the probed metadata, the sport, and
// the video asset.
func (c *DecisionAssembler) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.GetContext() != nil &&
		context.Get(GetDecisionTextParamName()) != nil &&
		context.Get(GetMetadataParamName()) != nil &&
		context.Get(GetSportParamName()) != nil &&
		context.Get(GetVideoAssetParamName()) != nil
}

// Execute builds the Decision, stores it in the cache, and places it in the
// chain output slot.
func (c *DecisionAssembler) Execute(context cor.Context) {
	text := context.Get(GetDecisionTextParamName()).(string)
	meta := context.Get(GetMetadataParamName()).(*model.VideoMetadata)
	asset := context.Get(GetVideoAssetParamName()).(*model.VideoAsset)
	sportID := rules.ProfileFor(context.Get(GetSportParamName()).(string)).ID

	decision := &model.Decision{
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Sport:             sportID,
		VideoDuration:     meta.DurationSeconds,
		Analysis:          text,
		Confidence:        verdict.Confidence(text),
		FinalCall:         verdict.FinalCall(sportID, text),
		HasAudio:          meta.HasAudio,
		FullVideoAnalyzed: context.Get(GetVideoAnalysisParamName()) != nil,
	}

	if c.decisionCache != nil {
		c.decisionCache.Put(cache.Key(asset.BaseName, sportID), decision)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetDecisionParamName(), decision)
	context.Add(c.GetOutputParam(), decision)
}
