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
// the umpire review pipeline. This file defines the well-known context keys
// shared between commands. Accessor functions rather than raw constants keep
// key usage consistent across the package boundary.
package commands

// Well-known context parameter keys.
const (
	videoAssetParam    = "__VIDEO_ASSET__"
	sportParam         = "__SPORT__"
	workDirParam       = "__WORK_DIR__"
	metadataParam      = "__VIDEO_METADATA__"
	frameSetParam      = "__FRAME_SET__"
	encodedVideoParam  = "__ENCODED_VIDEO__"
	frameAnalysesParam = "__FRAME_ANALYSES__"
	videoAnalysisParam = "__VIDEO_ANALYSIS__"
	synthesisParam     = "__SYNTHESIS__"
	decisionTextParam  = "__DECISION_TEXT__"
	decisionParam      = "__DECISION__"
)

// GetVideoAssetParamName returns the key holding the request's *model.VideoAsset.
func GetVideoAssetParamName() string { return videoAssetParam }

// GetSportParamName returns the key holding the request's sport identifier.
func GetSportParamName() string { return sportParam }

// GetWorkDirParamName returns the key holding the request-scoped temp directory.
func GetWorkDirParamName() string { return workDirParam }

// GetMetadataParamName returns the key holding the probed *model.VideoMetadata.
func GetMetadataParamName() string { return metadataParam }

// GetFrameSetParamName returns the key holding the ordered frame paths.
func GetFrameSetParamName() string { return frameSetParam }

// GetEncodedVideoParamName returns the key holding the inline-encoded video.
func GetEncodedVideoParamName() string { return encodedVideoParam }

// GetFrameAnalysesParamName returns the key holding the Stage 1 results.
func GetFrameAnalysesParamName() string { return frameAnalysesParam }

// GetVideoAnalysisParamName returns the key holding the Stage 2 text.
func GetVideoAnalysisParamName() string { return videoAnalysisParam }

// GetSynthesisParamName returns the key holding the Stage 3 text.
func GetSynthesisParamName() string { return synthesisParam }

// GetDecisionTextParamName returns the key holding the Stage 4 text.
func GetDecisionTextParamName() string { return decisionTextParam }

// GetDecisionParamName returns the key holding the assembled *model.Decision.
func GetDecisionParamName() string { return decisionParam }
