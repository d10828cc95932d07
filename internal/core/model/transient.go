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

// Package model defines the core data structures of the review service.
// This file holds the transient shapes: objects that exist only for the
// duration of one review request as data moves between pipeline commands.
package model

// VideoAsset is an immutable reference to the uploaded bytes on disk for the
// duration of one request. The request that uploaded it owns it exclusively
// and deletes it unconditionally when handling ends, success or failure.
type VideoAsset struct {
	Path      string // Local filesystem path of the uploaded file.
	BaseName  string // Base name of the upload, used for cache key derivation.
	MIMEType  string // Sniffed MIME type, e.g. "video/mp4".
	SizeBytes int64  // Length of the file in bytes.
}

// VideoMetadata holds the technical metadata probed from a video file.
// Width and Height are zero when unknown; FrameRate falls back to 30 when the
// probe output cannot be parsed.
type VideoMetadata struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	FrameRate       float64 `json:"frame_rate"`
	HasAudio        bool    `json:"has_audio"`
	Format          string  `json:"format"`
	SizeBytes       int64   `json:"size_bytes"`
}

// FrameAnalysis is the Stage 1 result for a single sampled frame. Index is
// the 1-based sample number, matching the frame numbering shown to the model.
// A frame whose model call failed is kept as a placeholder with Failed set,
// so partial frame evidence still flows into the synthesis stage.
type FrameAnalysis struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	SourceFrame string `json:"source_frame"`
	Failed      bool   `json:"failed,omitempty"`
}

// EncodedVideo carries the whole uploaded video as an inline base64 payload
// for the full-video analysis stage.
type EncodedVideo struct {
	Data     string // Base64-encoded file content.
	MIMEType string
}
