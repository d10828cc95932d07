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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/api"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/testutil"
)

// mp4Head is a minimal MP4 file signature (size box plus "ftyp" isom brand).
var mp4Head = []byte{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x69, 0x73, 0x6F, 0x6D, 0x00, 0x00, 0x02, 0x00}

// pngHead is the PNG magic number.
var pngHead = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type fakeReviewer struct {
	decision *model.Decision
	err      error
	calls    int
	gotSport string
	gotAsset *model.VideoAsset
}

func (f *fakeReviewer) Review(_ context.Context, asset *model.VideoAsset, sportID string) (*model.Decision, error) {
	f.calls++
	f.gotSport = sportID
	f.gotAsset = asset
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, reviewer api.Reviewer) (*gin.Engine, *cloud.Config) {
	t.Helper()
	config := testutil.NewTestConfig()
	config.Runtime.UploadDir = t.TempDir()

	r := gin.New()
	server := &api.Server{Config: config, Reviewer: reviewer}
	server.Routes(r)
	return r, config
}

func uploadRequest(t *testing.T, payload []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if payload != nil {
		part, err := writer.CreateFormFile("video", "clip.mp4")
		assert.NoError(t, err)
		_, err = part.Write(payload)
		assert.NoError(t, err)
	}
	for k, v := range fields {
		assert.NoError(t, writer.WriteField(k, v))
	}
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-video", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadVideoReturnsDecision(t *testing.T) {
	reviewer := &fakeReviewer{decision: &model.Decision{
		Sport:      "cricket",
		FinalCall:  "NOT OUT",
		Confidence: model.ConfidenceHigh,
		Analysis:   "The bat was grounded in time.",
	}}
	r, config := newTestServer(t, reviewer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, mp4Head, map[string]string{"sport": "cricket"}))

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success   bool            `json:"success"`
		Decision  *model.Decision `json:"decision"`
		Timestamp string          `json:"timestamp"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Timestamp)
	assert.Equal(t, "NOT OUT", body.Decision.FinalCall)
	assert.Equal(t, model.ConfidenceHigh, body.Decision.Confidence)

	// The decision's own keys are camelCase on the wire.
	var raw map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	var decisionKeys map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(raw["decision"], &decisionKeys))
	assert.Contains(t, decisionKeys, "finalCall")

	assert.Equal(t, 1, reviewer.calls)
	assert.Equal(t, "cricket", reviewer.gotSport)
	assert.Equal(t, "video/mp4", reviewer.gotAsset.MIMEType)

	// The staged upload is removed after the response.
	entries, err := os.ReadDir(config.Runtime.UploadDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadVideoDefaultsSportToGeneral(t *testing.T) {
	reviewer := &fakeReviewer{decision: &model.Decision{Sport: "general", FinalCall: "VALID"}}
	r, _ := newTestServer(t, reviewer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, mp4Head, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "general", reviewer.gotSport)
}

func TestUploadVideoRejectsNonVideoUpload(t *testing.T) {
	reviewer := &fakeReviewer{}
	r, config := newTestServer(t, reviewer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, pngHead, map[string]string{"sport": "cricket"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, reviewer.calls)

	entries, err := os.ReadDir(config.Runtime.UploadDir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not leave staged files behind")
}

func TestUploadVideoRejectsMissingFileField(t *testing.T) {
	reviewer := &fakeReviewer{}
	r, _ := newTestServer(t, reviewer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, nil, map[string]string{"sport": "cricket"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, reviewer.calls)
}

func TestUploadVideoRejectsOversizeUpload(t *testing.T) {
	reviewer := &fakeReviewer{}
	config := testutil.NewTestConfig()
	config.Runtime.UploadDir = t.TempDir()
	config.Runtime.MaxUploadMB = 1

	r := gin.New()
	server := &api.Server{Config: config, Reviewer: reviewer}
	server.Routes(r)

	payload := append(append([]byte{}, mp4Head...), make([]byte, 2*1024*1024)...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, payload, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, reviewer.calls)
}

func TestUploadVideoWithoutBackendAnswers503(t *testing.T) {
	r, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, mp4Head, nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadVideoReviewFailureAnswers500(t *testing.T) {
	reviewer := &fakeReviewer{err: errors.New("pipeline failed")}
	r, _ := newTestServer(t, reviewer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, mp4Head, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "review failed", body["error"])
	assert.Contains(t, body["details"], "pipeline failed")
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["geminiConfigured"])
	assert.NotEmpty(t, body["timestamp"])
}
