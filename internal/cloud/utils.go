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

// Package cloud defines configuration and Google Cloud clients. This file
// holds the hierarchical configuration loader (base TOML file, then an
// environment-specific TOML overlay, then environment variables) and the
// shared helper for multimodal model calls with token telemetry.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	ConfigFileBaseName  = ".env"                 // Base name for configuration files, e.g. ".env.toml".
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "UMPIRE_CONFIG_PREFIX" // Env var naming the config directory.
	EnvConfigRuntime    = "UMPIRE_RUNTIME"       // Env var naming the runtime overlay ("local", "test", "prod").
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates baseConfig from the base TOML file, overlays the
// environment-specific TOML file when present, and finally applies
// environment-variable overrides (env tags on the config structs). Later
// layers win.
func LoadConfig(baseConfig *Config) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		if _, err := toml.DecodeFile(baseConfigFileName, baseConfig); err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	if fileExists(envConfigFileName) {
		if _, err := toml.DecodeFile(envConfigFileName, baseConfig); err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}

	if err := env.Parse(baseConfig); err != nil {
		log.Fatalf("failed to apply environment overrides: %s", err)
	}
}

// GenerateMultiModalResponse executes a multimodal request against a
// generative model, recording token usage on the provided counters and
// concatenating the candidate text parts into a single string. A failed call
// fails the request; retrying is the model wrapper's concern, not this
// helper's.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	model GenerativeModel,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		return "", err
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	value = ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += fmt.Sprint(part.Text)
			}
		}
	}
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}

// NewTextContent builds a single-part user text content.
func NewTextContent(text string) []*genai.Content {
	return []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: text}}},
	}
}

// NewInlineMediaContent builds a user content carrying a text prompt plus an
// inline binary payload with its declared MIME type.
func NewInlineMediaContent(text string, data []byte, mimeType string) []*genai.Content {
	return []*genai.Content{
		{Role: "user", Parts: []*genai.Part{
			{Text: text},
			{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}},
		}},
	}
}
