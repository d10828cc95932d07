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

package cache_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/cache"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
)

func TestKeyCombinesNameAndSport(t *testing.T) {
	assert.Equal(t, "clip.mp4::cricket", cache.Key("clip.mp4", "cricket"))
	assert.NotEqual(t, cache.Key("clip.mp4", "cricket"), cache.Key("clip.mp4", "soccer"))
}

func TestGetMissesOnEmptyCache(t *testing.T) {
	c := cache.NewDecisionCache()
	_, ok := c.Get(cache.Key("clip.mp4", "cricket"))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestPutThenGetReturnsSameDecision(t *testing.T) {
	c := cache.NewDecisionCache()
	decision := &model.Decision{Sport: "cricket", FinalCall: "NOT OUT"}

	key := cache.Key("clip.mp4", "cricket")
	c.Put(key, decision)

	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Same(t, decision, got)
	assert.Equal(t, 1, c.Len())
}

func TestPutOverwrites(t *testing.T) {
	c := cache.NewDecisionCache()
	key := cache.Key("clip.mp4", "cricket")

	c.Put(key, &model.Decision{FinalCall: "OUT"})
	updated := &model.Decision{FinalCall: "NOT OUT"}
	c.Put(key, updated)

	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Same(t, updated, got)
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := cache.NewDecisionCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := cache.Key("clip.mp4", "cricket")
			c.Put(key, &model.Decision{Sport: "cricket"})
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
