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

// Package testutil provides the fakes and fixtures the test suite shares: a
// scripted generative model, a filesystem-backed media extractor that never
// shells out to ffmpeg, and a ready-to-use configuration. No fake touches the
// network.
package testutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"google.golang.org/genai"
)

// FakeGenerativeModel is a scripted cloud.GenerativeModel. Responses are
// returned in order; when the script runs out the last response repeats. A
// non-nil Err fails every call.
type FakeGenerativeModel struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Calls     int
	Prompts   []string
}

// GenerateContent returns the next scripted response and records the prompt
// text parts it was called with.
func (f *FakeGenerativeModel) GenerateContent(_ context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	for _, c := range content {
		for _, p := range c.Parts {
			if p.Text != "" {
				f.Prompts = append(f.Prompts, p.Text)
			}
		}
	}

	if f.Err != nil {
		return nil, f.Err
	}

	text := ""
	switch {
	case len(f.Responses) == 0:
	case f.Calls-1 < len(f.Responses):
		text = f.Responses[f.Calls-1]
	default:
		text = f.Responses[len(f.Responses)-1]
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
		},
	}, nil
}

// CallCount reports how many times the model was invoked.
func (f *FakeGenerativeModel) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// FakeExtractor is a media.Extractor that fabricates metadata and writes real
// placeholder frame files so downstream file reads succeed.
type FakeExtractor struct {
	Meta       *model.VideoMetadata
	MetaErr    error
	FrameCount int
	FramesErr  error
	EncodeErr  error
}

// Metadata returns the configured metadata, defaulting to a short clip with
// audio.
func (f *FakeExtractor) Metadata(_ context.Context, _ string) (*model.VideoMetadata, error) {
	if f.MetaErr != nil {
		return nil, f.MetaErr
	}
	if f.Meta != nil {
		return f.Meta, nil
	}
	return &model.VideoMetadata{
		DurationSeconds: 8.5,
		Width:           1280,
		Height:          720,
		FrameRate:       30,
		HasAudio:        true,
		Format:          "mov,mp4,m4a,3gp,3g2,mj2",
		SizeBytes:       2048,
	}, nil
}

// ExtractFrames writes FrameCount placeholder frames into dir and returns
// their paths in sample order.
func (f *FakeExtractor) ExtractFrames(_ context.Context, _ string, dir string, maxFrames int) ([]string, error) {
	if f.FramesErr != nil {
		return nil, f.FramesErr
	}
	count := f.FrameCount
	if count <= 0 || count > maxFrames {
		count = maxFrames
	}
	frames := make([]string, 0, count)
	for i := 0; i < count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", i+1))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("frame-%d", i+1)), 0o600); err != nil {
			return nil, err
		}
		frames = append(frames, path)
	}
	return frames, nil
}

// EncodeBase64 base64-encodes the file at path.
func (f *FakeExtractor) EncodeBase64(path string) (string, error) {
	if f.EncodeErr != nil {
		return "", f.EncodeErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// NewTestConfig returns a configuration usable by workflow and API tests:
// valid prompt templates, a small worker pool, and no cloud backends.
func NewTestConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "umpire-review-test"
	config.Application.ThreadPoolSize = 2
	config.Runtime.MaxUploadMB = 10
	config.PromptTemplates = cloud.PromptTemplates{
		FrameVision:   "Frame {{.FrameNumber}} of {{.FrameCount}} from a {{.Sport}} clip.",
		FullVideo:     "Review this {{.Sport}} clip of {{.DurationSeconds}} seconds.",
		Synthesis:     "Sport: {{.Sport}}\n{{.RuleText}}\nFrames:\n{{.FrameAnalyses}}\nVideo:\n{{.VideoAnalysis}}",
		FinalDecision: "Decide for {{.Sport}} ({{.DurationSeconds}} seconds) among {{.ValidDecisions}}:\n{{.Synthesis}}",
	}
	return config
}

// NewTestVideoAsset writes a small fake clip into dir and returns its asset
// descriptor.
func NewTestVideoAsset(dir string, baseName string) (*model.VideoAsset, error) {
	path := filepath.Join(dir, baseName)
	payload := []byte("fake-video-bytes")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return nil, err
	}
	return &model.VideoAsset{
		Path:      path,
		BaseName:  baseName,
		MIMEType:  "video/mp4",
		SizeBytes: int64(len(payload)),
	}, nil
}
