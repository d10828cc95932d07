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

// Package main contains the setup and initialization logic for the review
// server. This file builds the state manager holding the shared dependencies:
// configuration, cloud clients, the media extractor, the decision cache, and
// the review workflow. The server starts without a model backend when no
// project id is configured; uploads then answer 503 while health keeps
// serving.
package main

import (
	"context"
	"log"
	"os"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/cloud"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cache"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/workflow"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/media"
)

// StateManager is the container for the server's shared dependencies.
type StateManager struct {
	config        *cloud.Config
	cloud         *cloud.ServiceClients
	decisionCache *cache.DecisionCache
	extractor     media.Extractor
	review        *workflow.UmpireReviewWorkflow
}

var state = &StateManager{}

// SetupOS points the configuration loader at the default configs directory
// unless the operator has already set the location.
func SetupOS() error {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		if err := os.Setenv(cloud.EnvConfigRuntime, "local"); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig loads the configuration exactly once and returns the cached
// instance afterwards.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up config environment: %v", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState wires the shared dependencies. The cloud clients and the review
// workflow are only built when the model backend is configured.
func InitState(ctx context.Context) {
	config := GetConfig()

	state.decisionCache = cache.NewDecisionCache()
	state.extractor = media.NewFFmpegExtractor(config.Runtime.FFmpegPath, config.Runtime.FFprobePath)

	if !config.GeminiConfigured() {
		return
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		log.Fatalf("failed to initialize cloud clients: %v", err)
	}
	state.cloud = cloudClients

	review, err := workflow.NewUmpireReviewPipeline(config, cloudClients, state.extractor, state.decisionCache)
	if err != nil {
		log.Fatalf("failed to initialize review workflow: %v", err)
	}
	state.review = review
}
