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

package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/rules"
)

func TestProfileForKnownSports(t *testing.T) {
	assert.Equal(t, "cricket", rules.ProfileFor("cricket").ID)
	assert.Equal(t, "soccer", rules.ProfileFor("soccer").ID)
	assert.Equal(t, "basketball", rules.ProfileFor("basketball").ID)
	assert.Equal(t, "tennis", rules.ProfileFor("tennis").ID)
}

func TestProfileForIsCaseInsensitiveAndTrims(t *testing.T) {
	assert.Equal(t, "cricket", rules.ProfileFor("  CRICKET ").ID)
	assert.Equal(t, "soccer", rules.ProfileFor("Football").ID)
}

func TestProfileForUnknownFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, rules.GeneralSportID, rules.ProfileFor("curling").ID)
	assert.Equal(t, rules.GeneralSportID, rules.ProfileFor("").ID)
}

func TestCricketDecisionOrderingKeepsNotOutFirst(t *testing.T) {
	decisions := rules.ProfileFor("cricket").ValidDecisions
	notOut := -1
	out := -1
	for i, d := range decisions {
		switch d {
		case "NOT OUT":
			notOut = i
		case "OUT":
			out = i
		}
	}
	assert.NotEqual(t, -1, notOut)
	assert.NotEqual(t, -1, out)
	assert.Less(t, notOut, out, "NOT OUT must precede OUT so greedy matching works")
}

func TestFormatForPromptIsDeterministic(t *testing.T) {
	first := rules.FormatForPrompt("cricket")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, rules.FormatForPrompt("cricket"))
	}
}

func TestFormatForPromptSections(t *testing.T) {
	text := rules.FormatForPrompt("cricket")
	assert.True(t, strings.Contains(text, "SPORT: Cricket"))
	assert.True(t, strings.Contains(text, "VALID DECISIONS:"))
	assert.True(t, strings.Contains(text, "KEY VISUAL ELEMENTS:"))
	assert.True(t, strings.Contains(text, "RULES:"))
	assert.True(t, strings.Contains(text, "CRITICAL DECISION POINTS:"))
	assert.True(t, strings.Contains(text, "LBW:"))
}

func TestGeneralProfileOmitsCriticalPointsSection(t *testing.T) {
	text := rules.FormatForPrompt("unknown-sport")
	assert.True(t, strings.Contains(text, "SPORT: General Sports"))
	assert.False(t, strings.Contains(text, "CRITICAL DECISION POINTS:"))
}
