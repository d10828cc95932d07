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

package workflow_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cache"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/workflow"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"google.golang.org/genai"
)

const tName = "github.com/umpire-labs/gcp-go-ai-umpire/tests/workflow"

var logger = otelslog.NewLogger(tName)

// reviewHarness bundles a workflow with its fakes so each test can assert on
// per-stage call counts.
type reviewHarness struct {
	config        *cloud.Config
	frameVision   *testutil.FakeGenerativeModel
	fullVideo     *testutil.FakeGenerativeModel
	synthesis     *testutil.FakeGenerativeModel
	finalDecision *testutil.FakeGenerativeModel
	decisionCache *cache.DecisionCache
	review        *workflow.UmpireReviewWorkflow
}

func newReviewHarness(t *testing.T) *reviewHarness {
	t.Helper()

	h := &reviewHarness{
		config:        testutil.NewTestConfig(),
		frameVision:   &testutil.FakeGenerativeModel{Responses: []string{"bat near crease, bails intact"}},
		fullVideo:     &testutil.FakeGenerativeModel{Responses: []string{"the batter slides the bat in before the bails come off"}},
		synthesis:     &testutil.FakeGenerativeModel{Responses: []string{"the run out rule applies; the bat was grounded in time"}},
		finalDecision: &testutil.FakeGenerativeModel{Responses: []string{"NOT OUT. The bat was grounded before the wicket was broken. High confidence."}},
		decisionCache: cache.NewDecisionCache(),
	}
	h.config.Runtime.UploadDir = t.TempDir()

	models := workflow.ReviewModels{
		FrameVision:   h.frameVision,
		FullVideo:     h.fullVideo,
		Synthesis:     h.synthesis,
		FinalDecision: h.finalDecision,
	}

	review, err := workflow.NewUmpireReviewWorkflow(
		h.config, models, &testutil.FakeExtractor{FrameCount: 3}, h.decisionCache, nil, nil)
	assert.NoError(t, err)
	h.review = review
	return h
}

func (h *reviewHarness) totalModelCalls() int {
	return h.frameVision.CallCount() + h.fullVideo.CallCount() +
		h.synthesis.CallCount() + h.finalDecision.CallCount()
}

func TestReviewProducesStructuredDecision(t *testing.T) {
	h := newReviewHarness(t)
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	decision, err := h.review.Review(context.Background(), asset, "cricket")
	assert.NoError(t, err)
	logger.Info("review complete", "final_call", decision.FinalCall)

	assert.Equal(t, "NOT OUT", decision.FinalCall)
	assert.Equal(t, model.ConfidenceHigh, decision.Confidence)
	assert.Equal(t, "cricket", decision.Sport)
	assert.Equal(t, 8.5, decision.VideoDuration)
	assert.True(t, decision.HasAudio)
	assert.True(t, decision.FullVideoAnalyzed)

	// One call per sampled frame, one per downstream stage.
	assert.Equal(t, 3, h.frameVision.CallCount())
	assert.Equal(t, 1, h.fullVideo.CallCount())
	assert.Equal(t, 1, h.synthesis.CallCount())
	assert.Equal(t, 1, h.finalDecision.CallCount())

	// The final stage sees the clip duration alongside the synthesis.
	assert.Contains(t, strings.Join(h.finalDecision.Prompts, "\n"), "8.5")
}

func TestReviewNormalizesUnknownSportToGeneral(t *testing.T) {
	h := newReviewHarness(t)
	h.finalDecision.Responses = []string{"VALID play. Medium confidence."}
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	decision, err := h.review.Review(context.Background(), asset, "underwater-hockey")
	assert.NoError(t, err)
	assert.Equal(t, "general", decision.Sport)
	assert.Equal(t, "VALID", decision.FinalCall)
}

func TestReviewCacheHitSkipsEveryModelCall(t *testing.T) {
	h := newReviewHarness(t)
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	first, err := h.review.Review(context.Background(), asset, "cricket")
	assert.NoError(t, err)
	callsAfterFirst := h.totalModelCalls()

	second, err := h.review.Review(context.Background(), asset, "cricket")
	assert.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, callsAfterFirst, h.totalModelCalls(), "a cache hit must make zero model calls")
}

func TestReviewDifferentSportMissesCache(t *testing.T) {
	h := newReviewHarness(t)
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	_, err = h.review.Review(context.Background(), asset, "cricket")
	assert.NoError(t, err)
	callsAfterFirst := h.totalModelCalls()

	_, err = h.review.Review(context.Background(), asset, "tennis")
	assert.NoError(t, err)
	assert.Greater(t, h.totalModelCalls(), callsAfterFirst)
	assert.Equal(t, 2, h.decisionCache.Len())
}

func TestReviewCleansWorkspaceOnSuccess(t *testing.T) {
	h := newReviewHarness(t)
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	_, err = h.review.Review(context.Background(), asset, "cricket")
	assert.NoError(t, err)

	entries, err := os.ReadDir(h.config.Runtime.UploadDir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "review workspace must be removed after a successful run")
}

func TestReviewCleansWorkspaceOnFailure(t *testing.T) {
	h := newReviewHarness(t)
	h.fullVideo.Err = errors.New("model backend unavailable")
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	_, err = h.review.Review(context.Background(), asset, "cricket")
	assert.Error(t, err)

	entries, readErr := os.ReadDir(h.config.Runtime.UploadDir)
	assert.NoError(t, readErr)
	assert.Empty(t, entries, "review workspace must be removed after a failed run")
	assert.Equal(t, 0, h.decisionCache.Len(), "failed reviews are never cached")
}

func TestReviewFailsFastOnStageError(t *testing.T) {
	h := newReviewHarness(t)
	h.fullVideo.Err = errors.New("model backend unavailable")
	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	_, err = h.review.Review(context.Background(), asset, "cricket")
	assert.Error(t, err)

	// A failed model call fails the request: no repeat attempts, and the
	// chain stops at the failed stage so later stages never run.
	assert.Equal(t, 1, h.fullVideo.CallCount())
	assert.Equal(t, 0, h.synthesis.CallCount())
	assert.Equal(t, 0, h.finalDecision.CallCount())
}

// deadlineRecordingModel notes whether the call context carried a deadline.
type deadlineRecordingModel struct {
	inner       *testutil.FakeGenerativeModel
	hadDeadline bool
}

func (m *deadlineRecordingModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if _, ok := ctx.Deadline(); ok {
		m.hadDeadline = true
	}
	return m.inner.GenerateContent(ctx, content)
}

func TestReviewProcessingBudgetIsAdvisory(t *testing.T) {
	h := newReviewHarness(t)
	h.config.Runtime.MaxProcessingSeconds = 1

	recorder := &deadlineRecordingModel{inner: h.fullVideo}
	models := workflow.ReviewModels{
		FrameVision:   h.frameVision,
		FullVideo:     recorder,
		Synthesis:     h.synthesis,
		FinalDecision: h.finalDecision,
	}
	review, err := workflow.NewUmpireReviewWorkflow(
		h.config, models, &testutil.FakeExtractor{FrameCount: 3}, cache.NewDecisionCache(), nil, nil)
	assert.NoError(t, err)

	asset, err := testutil.NewTestVideoAsset(t.TempDir(), "clip.mp4")
	assert.NoError(t, err)

	_, err = review.Review(context.Background(), asset, "cricket")
	assert.NoError(t, err)
	assert.False(t, recorder.hadDeadline, "the processing budget must not become a pipeline deadline")
}

func TestNewUmpireReviewWorkflowRejectsBadTemplates(t *testing.T) {
	config := testutil.NewTestConfig()
	config.PromptTemplates.Synthesis = "{{.Unclosed"

	_, err := workflow.NewUmpireReviewWorkflow(config, workflow.ReviewModels{
		FrameVision:   &testutil.FakeGenerativeModel{},
		FullVideo:     &testutil.FakeGenerativeModel{},
		Synthesis:     &testutil.FakeGenerativeModel{},
		FinalDecision: &testutil.FakeGenerativeModel{},
	}, &testutil.FakeExtractor{}, cache.NewDecisionCache(), nil, nil)
	assert.Error(t, err)
}
