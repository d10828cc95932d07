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
// the umpire review pipeline. This file defines the optional history step:
// the assembled Decision is streamed into a BigQuery table via the struct's
// bigquery tags. Like archiving, history persistence is best effort and never
// fails a completed review.
package commands

import (
	"log/slog"

	"cloud.google.com/go/bigquery"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cor"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
)

// DecisionHistoryWriter inserts the Decision into the history table.
type DecisionHistoryWriter struct {
	cor.BaseCommand
	client  *bigquery.Client
	dataset string
	table   string
}

// NewDecisionHistoryWriter creates the history command. A nil client or empty
// dataset/table disables the command in place.
func NewDecisionHistoryWriter(name string, client *bigquery.Client, dataset string, table string) *DecisionHistoryWriter {
	return &DecisionHistoryWriter{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

// IsExecutable requires a history configuration and the assembled Decision.
// The decision is read from its named key, not the pipe, so the writer still
// runs when an earlier optional step was skipped.
func (c *DecisionHistoryWriter) IsExecutable(context cor.Context) bool {
	if c.client == nil || c.dataset == "" || c.table == "" || context == nil || context.GetContext() == nil {
		return false
	}
	_, ok := context.Get(GetDecisionParamName()).(*model.Decision)
	return ok
}

// Execute streams the decision row into BigQuery and passes the decision
// through as the chain output.
func (c *DecisionHistoryWriter) Execute(context cor.Context) {
	decision := context.Get(GetDecisionParamName()).(*model.Decision)
	context.Add(c.GetOutputParam(), decision)

	inserter := c.client.Dataset(c.dataset).Table(c.table).Inserter()
	if err := inserter.Put(context.GetContext(), decision); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "decision history insert failed",
			"sport", decision.Sport, "error", err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "decision recorded to history",
		"sport", decision.Sport, "final_call", decision.FinalCall)
}
