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
// builds the ServiceClients container: the genai client, the role-keyed
// agent models, and the optional storage and BigQuery clients for the
// archive and decision-history features. The container is created once at
// startup and injected into the workflow.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients is the dependency container for all external Google Cloud
// connections. StorageClient and BigQueryClient are nil when the matching
// feature is not configured.
type ServiceClients struct {
	GenAIClient    *genai.Client
	StorageClient  *storage.Client
	BigQueryClient *bigquery.Client
	AgentModels    map[string]*QuotaAwareGenerativeAIModel
}

// Close releases all open client connections. Safe with partially
// initialized containers.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
}

// AgentModel resolves a role name to its configured model, falling back to
// the final-decision role so a minimal configuration with a single model
// entry still serves all four stages.
func (c *ServiceClients) AgentModel(role string) (GenerativeModel, error) {
	if m, ok := c.AgentModels[role]; ok {
		return m, nil
	}
	if m, ok := c.AgentModels[RoleFinalDecision]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("no agent model configured for role %q and no %q fallback", role, RoleFinalDecision)
}

// NewCloudServiceClients initializes the genai client, the role-keyed agent
// models, and the optional storage/BigQuery clients. It requires the model
// credential context (project id); callers that only need health checks must
// not call this without checking Config.GeminiConfigured first.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	if !config.GeminiConfigured() {
		return nil, fmt.Errorf("gemini is not configured: GOOGLE_PROJECT_ID is empty")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for role, values := range config.AgentModels {
		genConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[role] = NewQuotaAwareModel(genConfig, values.Model, gc.Models, values.RateLimit)
	}

	clients := &ServiceClients{
		GenAIClient: gc,
		AgentModels: agentModels,
	}

	if config.Storage.ArchiveBucket != "" {
		sc, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		clients.StorageClient = sc
	}

	if config.BigQueryDataSource.DatasetName != "" {
		bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, fmt.Errorf("create bigquery client: %w", err)
		}
		clients.BigQueryClient = bc
	}

	return clients, nil
}
