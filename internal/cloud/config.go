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

// Package cloud defines the application configuration, loaded from TOML files
// with environment-variable overrides for runtime settings, plus the clients
// for Google Cloud services. Model configurations are keyed by logical role
// name; the review pipeline resolves its four stages through those roles.
package cloud

import "google.golang.org/genai"

// Model role names. Each maps to an entry in Config.AgentModels; all four may
// point at the same underlying model configured differently.
const (
	RoleFrameVision   = "frame-vision"
	RoleFullVideo     = "full-video"
	RoleSynthesis     = "synthesis"
	RoleFinalDecision = "final-decision"
)

// DefaultSafetySettings are the non-restrictive content thresholds applied to
// every model call. Input footage is trusted sports video.
var DefaultSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
}

// VertexAiLLMModel configures one generative model role.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // Vertex AI model name, e.g. "gemini-2.0-flash".
	SystemInstructions string  `toml:"system_instructions"` // System prompt for this role.
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"` // Response MIME type; plain text for every umpire role.
	RateLimit          int     `toml:"rate_limit"`    // Requests per second for the quota-aware wrapper.
}

// PromptTemplates holds the Go text/template sources for the four pipeline
// stages.
type PromptTemplates struct {
	FrameVision   string `toml:"frame_vision"`
	FullVideo     string `toml:"full_video"`
	Synthesis     string `toml:"synthesis"`
	FinalDecision string `toml:"final_decision"`
}

// Storage configures the optional GCS archive of reviewed uploads. An empty
// bucket name disables archiving.
type Storage struct {
	ArchiveBucket string `toml:"archive_bucket"`
}

// BigQueryDataSource configures the optional decision-history table. An empty
// dataset name disables persistence.
type BigQueryDataSource struct {
	DatasetName   string `toml:"dataset"`
	DecisionTable string `toml:"decision_table"`
}

// Runtime holds the settings that operators override through environment
// variables rather than TOML edits.
type Runtime struct {
	Port                 int    `toml:"port" env:"PORT"`
	LogLevel             string `toml:"log_level" env:"LOG_LEVEL"`
	MaxUploadMB          int64  `toml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	MaxProcessingSeconds int    `toml:"max_processing_seconds" env:"MAX_PROCESSING_SECONDS"` // Advisory budget for one review; exceeding it logs a warning, never cancels.
	FFmpegPath           string `toml:"ffmpeg_path" env:"FFMPEG_PATH"`
	FFprobePath          string `toml:"ffprobe_path" env:"FFPROBE_PATH"`
	StaticDir            string `toml:"static_dir" env:"STATIC_DIR"`
	UploadDir            string `toml:"upload_dir" env:"UPLOAD_DIR"`
}

// Config is the root configuration aggregate.
type Config struct {
	Application struct {
		Name            string `toml:"name"`
		GoogleProjectId string `toml:"google_project_id" env:"GOOGLE_PROJECT_ID"`
		GoogleLocation  string `toml:"location" env:"GOOGLE_LOCATION"`
		ThreadPoolSize  int    `toml:"thread_pool_size"` // Worker pool size for the frame vision stage.
	} `toml:"application"`
	Runtime            Runtime                     `toml:"runtime"`
	Storage            Storage                     `toml:"storage"`
	BigQueryDataSource BigQueryDataSource          `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates             `toml:"prompt_templates"`
	AgentModels        map[string]VertexAiLLMModel `toml:"agent_models"`
}

// GeminiConfigured reports whether the external model credential context is
// present. Absence never prevents startup or health checks; the pipeline
// fails fast with a clear error if invoked without it.
func (c *Config) GeminiConfigured() bool {
	return c.Application.GoogleProjectId != ""
}

// NewConfig creates a Config with its map fields initialized so the TOML
// decoder can populate them.
func NewConfig() *Config {
	c := &Config{
		AgentModels: make(map[string]VertexAiLLMModel),
	}
	c.Application.ThreadPoolSize = 4
	c.Runtime.Port = 8080
	c.Runtime.LogLevel = "info"
	c.Runtime.MaxUploadMB = 100
	c.Runtime.MaxProcessingSeconds = 300
	return c
}
