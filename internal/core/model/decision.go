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
// This file defines Decision, the terminal artifact of a review: the
// structured verdict assembled from the final model stage. A Decision is
// constructed exactly once per (video, sport) pair, cached, and never mutated
// afterwards; it is both the cache value and the HTTP response payload. It
// carries bigquery tags so the optional history writer can stream it straight
// into the decisions table.
package model

// Confidence labels for a Decision.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// FinalCallUndetermined is the sentinel final call used when none of the
// sport's valid decision tokens appears in the model output.
const FinalCallUndetermined = "DECISION REQUIRED"

// Decision is the structured umpire verdict for one reviewed video. The JSON
// keys are the camelCase names of the HTTP response contract; the bigquery
// tags keep the history table columns snake_case.
type Decision struct {
	Timestamp         string  `json:"timestamp" bigquery:"timestamp"`                   // Request completion time, ISO-8601.
	Sport             string  `json:"sport" bigquery:"sport"`                           // Sport profile identifier.
	VideoDuration     float64 `json:"videoDuration" bigquery:"video_duration"`          // Duration of the reviewed clip in seconds.
	Analysis          string  `json:"analysis" bigquery:"analysis"`                     // Full decision narrative from the final stage.
	Confidence        string  `json:"confidence" bigquery:"confidence"`                 // High, Medium or Low; Medium when unparsable.
	FinalCall         string  `json:"finalCall" bigquery:"final_call"`                  // A valid decision token or FinalCallUndetermined.
	HasAudio          bool    `json:"hasAudio" bigquery:"has_audio"`                    // Whether the clip carried an audio stream.
	FullVideoAnalyzed bool    `json:"fullVideoAnalyzed" bigquery:"full_video_analyzed"` // True when the whole clip, not just frames, was analyzed.
}
