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

// Package workflow composes the pipeline commands into the umpire review
// chain: extract, analyze frames, analyze the full clip, synthesize against
// the sport's rules, decide, assemble. The chain is strictly sequential with
// no backward transitions; the first failed stage terminates the request. A
// cache hit short-circuits the whole chain with zero model calls.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/template"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cache"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/commands"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/media"
)

// ReviewModels carries the four stage models. Production wires all four from
// ServiceClients role resolution; tests inject fakes.
type ReviewModels struct {
	FrameVision   cloud.GenerativeModel
	FullVideo     cloud.GenerativeModel
	Synthesis     cloud.GenerativeModel
	FinalDecision cloud.GenerativeModel
}

// UmpireReviewWorkflow orchestrates one review request end to end.
type UmpireReviewWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	models         ReviewModels
	extractor      media.Extractor
	decisionCache  *cache.DecisionCache
	storageClient  *storage.Client
	bigqueryClient *bigquery.Client
	chain          cor.Chain
}

// NewUmpireReviewWorkflow builds the workflow from explicit collaborators.
// storageClient and bigqueryClient may be nil; the matching chain steps then
// disable themselves.
func NewUmpireReviewWorkflow(
	config *cloud.Config,
	models ReviewModels,
	extractor media.Extractor,
	decisionCache *cache.DecisionCache,
	storageClient *storage.Client,
	bigqueryClient *bigquery.Client) (*UmpireReviewWorkflow, error) {

	w := &UmpireReviewWorkflow{
		BaseCommand:    *cor.NewBaseCommand("umpire-review-pipeline"),
		config:         config,
		models:         models,
		extractor:      extractor,
		decisionCache:  decisionCache,
		storageClient:  storageClient,
		bigqueryClient: bigqueryClient,
	}
	if err := w.initializeChain(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewUmpireReviewPipeline builds the production workflow, resolving the four
// stage models through the configured roles.
func NewUmpireReviewPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	extractor media.Extractor,
	decisionCache *cache.DecisionCache) (*UmpireReviewWorkflow, error) {

	var models ReviewModels
	var err error
	if models.FrameVision, err = serviceClients.AgentModel(cloud.RoleFrameVision); err != nil {
		return nil, err
	}
	if models.FullVideo, err = serviceClients.AgentModel(cloud.RoleFullVideo); err != nil {
		return nil, err
	}
	if models.Synthesis, err = serviceClients.AgentModel(cloud.RoleSynthesis); err != nil {
		return nil, err
	}
	if models.FinalDecision, err = serviceClients.AgentModel(cloud.RoleFinalDecision); err != nil {
		return nil, err
	}

	return NewUmpireReviewWorkflow(config, models, extractor, decisionCache,
		serviceClients.StorageClient, serviceClients.BigQueryClient)
}

// initializeChain compiles the prompt templates and assembles the command
// sequence.
func (w *UmpireReviewWorkflow) initializeChain() error {
	frameTemplate, err := template.New("frame-vision").Parse(w.config.PromptTemplates.FrameVision)
	if err != nil {
		return fmt.Errorf("parse frame-vision template: %w", err)
	}
	videoTemplate, err := template.New("full-video").Parse(w.config.PromptTemplates.FullVideo)
	if err != nil {
		return fmt.Errorf("parse full-video template: %w", err)
	}
	synthesisTemplate, err := template.New("synthesis").Parse(w.config.PromptTemplates.Synthesis)
	if err != nil {
		return fmt.Errorf("parse synthesis template: %w", err)
	}
	decisionTemplate, err := template.New("final-decision").Parse(w.config.PromptTemplates.FinalDecision)
	if err != nil {
		return fmt.Errorf("parse final-decision template: %w", err)
	}

	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewVideoProbe("probe-video-metadata", w.extractor))
	out.AddCommand(commands.NewFrameExtraction("extract-frames", w.extractor, media.DefaultVisionFrameCap))
	out.AddCommand(commands.NewVideoInlineEncoder("encode-video-inline", w.extractor))
	out.AddCommand(commands.NewFrameVisionAnalyzer("analyze-frames", w.models.FrameVision, frameTemplate, w.config.Application.ThreadPoolSize))
	out.AddCommand(commands.NewFullVideoAnalyzer("analyze-full-video", w.models.FullVideo, videoTemplate))
	out.AddCommand(commands.NewRuleSynthesizer("synthesize-rules", w.models.Synthesis, synthesisTemplate))
	out.AddCommand(commands.NewFinalDecisionMaker("make-final-decision", w.models.FinalDecision, decisionTemplate))
	out.AddCommand(commands.NewDecisionAssembler("assemble-decision", w.decisionCache))
	out.AddCommand(commands.NewVideoArchiver("archive-clip", w.storageClient, w.config.Storage.ArchiveBucket))
	out.AddCommand(commands.NewDecisionHistoryWriter("record-decision-history",
		w.bigqueryClient, w.config.BigQueryDataSource.DatasetName, w.config.BigQueryDataSource.DecisionTable))

	w.chain = out
	return nil
}

// Execute runs the underlying chain. Callers that need cache consultation and
// resource management should use Review instead.
func (w *UmpireReviewWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Review runs one review request end to end: cache consultation, workspace
// setup, chain execution, and decision retrieval. Temporary resources are
// released on every exit path.
func (w *UmpireReviewWorkflow) Review(ctx context.Context, asset *model.VideoAsset, sportID string) (*model.Decision, error) {
	sportID = rules.ProfileFor(sportID).ID

	key := cache.Key(asset.BaseName, sportID)
	if decision, ok := w.decisionCache.Get(key); ok {
		slog.InfoContext(ctx, "serving cached decision", "video", asset.BaseName, "sport", sportID)
		return decision, nil
	}

	start := time.Now()
	workDir, err := os.MkdirTemp(w.config.Runtime.UploadDir, "review-")
	if err != nil {
		return nil, fmt.Errorf("create review workspace: %w", err)
	}

	reviewCtx := cor.NewBaseContext()
	defer reviewCtx.Close()
	reviewCtx.SetContext(ctx)
	reviewCtx.AddTempDir(workDir)
	reviewCtx.Add(commands.GetVideoAssetParamName(), asset)
	reviewCtx.Add(commands.GetSportParamName(), sportID)
	reviewCtx.Add(commands.GetWorkDirParamName(), workDir)
	reviewCtx.Add(cor.CtxIn, asset)

	w.chain.Execute(reviewCtx)

	// The processing budget is advisory. A started pipeline is never
	// cancelled; exceeding the budget is surfaced to operators, not to the
	// caller.
	if budget := w.config.Runtime.MaxProcessingSeconds; budget > 0 {
		if elapsed := time.Since(start); elapsed > time.Duration(budget)*time.Second {
			slog.WarnContext(ctx, "review exceeded the advisory processing budget",
				"video", asset.BaseName, "elapsed", elapsed, "budget_seconds", budget)
		}
	}

	if reviewCtx.HasErrors() {
		errs := make([]error, 0, len(reviewCtx.GetErrors()))
		for name, cmdErr := range reviewCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, cmdErr))
		}
		return nil, errors.Join(errs...)
	}

	decision, ok := reviewCtx.Get(commands.GetDecisionParamName()).(*model.Decision)
	if !ok {
		return nil, errors.New("review chain completed without producing a decision")
	}
	return decision, nil
}
