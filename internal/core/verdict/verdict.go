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

// Package verdict turns the final-stage model prose into a machine-usable
// decision. Extraction is deterministic and local: no model call, no
// structured-output mode assumed.
//
// The one correctness property that must hold is match ordering: a token's
// negation-prefixed form must be checked before the bare token. Model output
// almost always restates the alternative it rejected ("... so this is NOT
// OUT, not OUT"), so scanning "OUT" before "NOT OUT" would misclassify nearly
// every negative call. The token table below keeps that ordering explicit and
// testable instead of implicit in code.
package verdict

import (
	"strings"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/core/model"
)

// cricketTokens is the priority-ordered token list for the cricket profile.
// The specific token precedes the bare token it contains.
var cricketTokens = []string{
	"NOT OUT",
	"OUT",
}

// generalTokens is the priority-ordered token list used for every non-cricket
// sport: negation-prefixed pairs first within each domain group, then
// standalone tokens.
var generalTokens = []string{
	"NOT OUT", "OUT",
	"NO GOAL", "GOAL",
	"NO FOUL", "FOUL",
	"NO SCORE", "SCORE",
	"INVALID", "VALID",
	"ILLEGAL", "LEGAL",
	"FAULT",
	"LET",
	"PENALTY",
	"FREE KICK",
}

// Tokens returns the priority-ordered decision token list for a sport. The
// returned slice must not be modified.
func Tokens(sportID string) []string {
	if strings.EqualFold(strings.TrimSpace(sportID), "cricket") {
		return cricketTokens
	}
	return generalTokens
}

// FinalCall scans the decision text for the first matching token of the
// sport's priority-ordered list and returns it. When no token matches it
// returns model.FinalCallUndetermined; extraction ambiguity is never an
// error.
func FinalCall(sportID string, text string) string {
	upper := strings.ToUpper(text)
	for _, token := range Tokens(sportID) {
		if strings.Contains(upper, token) {
			return token
		}
	}
	return model.FinalCallUndetermined
}

// confidencePatterns maps the substrings searched for (case-insensitively)
// onto the normalized confidence labels. Slice order is the evaluation order.
var confidencePatterns = []struct {
	needles []string
	label   string
}{
	{needles: []string{"high confidence", "confidence: high"}, label: model.ConfidenceHigh},
	{needles: []string{"medium confidence", "confidence: medium"}, label: model.ConfidenceMedium},
	{needles: []string{"low confidence", "confidence: low"}, label: model.ConfidenceLow},
}

// Confidence extracts the confidence label from the decision text. The search
// is case-insensitive; text with no recognizable confidence statement
// defaults to Medium.
func Confidence(text string) string {
	lower := strings.ToLower(text)
	for _, p := range confidencePatterns {
		for _, needle := range p.needles {
			if strings.Contains(lower, needle) {
				return p.label
			}
		}
	}
	return model.ConfidenceMedium
}
