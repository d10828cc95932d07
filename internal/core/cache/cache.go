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

// Package cache provides process-lifetime memoization of review decisions.
// The cache is an explicitly constructed object created at service startup
// and handed to the workflow by reference, not a package-level singleton, so
// tests can inject a fresh instance. Repeated requests with the same derived
// key return the identical *model.Decision without re-running any model
// stage. There is no eviction, no size bound, and no persistence across
// restarts.
package cache

import (
	"sync"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
)

// Key derives the cache key for a review from the uploaded file's base name
// and the sport identifier. The key is deliberately NOT content-derived:
// upstream upload naming (timestamp plus random suffix) makes base names
// effectively request-unique, but two uploads that collide on base name and
// sport would share a cached decision. Known correctness hazard of this
// scheme; callers relying on stronger identity must hash content themselves.
func Key(baseName string, sportID string) string {
	return baseName + "::" + sportID
}

// DecisionCache is a concurrency-safe map from derived key to Decision.
type DecisionCache struct {
	mu        sync.RWMutex
	decisions map[string]*model.Decision
}

// NewDecisionCache creates an empty cache.
func NewDecisionCache() *DecisionCache {
	return &DecisionCache{decisions: make(map[string]*model.Decision)}
}

// Get returns the cached decision for key, if present.
func (c *DecisionCache) Get(key string) (*model.Decision, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decisions[key]
	return d, ok
}

// Put stores a decision under key, overwriting any prior entry.
func (c *DecisionCache) Put(key string, decision *model.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decisions[key] = decision
}

// Len reports the number of cached decisions.
func (c *DecisionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.decisions)
}
