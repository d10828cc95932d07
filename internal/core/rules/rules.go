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

// Package rules is the static sport-rule provider for the review pipeline.
// It maps a sport identifier to a SportProfile: the named decision rules, the
// enumerated valid decision outcomes, the key visual elements, and optional
// decision-priority hints for that sport. Profiles shape the synthesis prompt
// and bound the tokens the verdict extractor may return.
//
// The provider is pure and synchronous. Unknown sport identifiers resolve to
// the general profile; a request is never rejected for an unrecognized sport.
package rules

import (
	"fmt"
	"strings"
)

// GeneralSportID is the fallback profile identifier used for unknown sports
// and for requests that omit the sport field.
const GeneralSportID = "general"

// Rule is one named decision rule within a sport profile.
type Rule struct {
	Name string
	Text string
}

// SportProfile is the immutable rule and vocabulary configuration for one
// sport. ValidDecisions is declaration-ordered and that order matters: more
// specific tokens precede the shorter tokens they contain ("NOT OUT" before
// "OUT") so the verdict extractor can match them greedily in order.
type SportProfile struct {
	ID             string
	DisplayName    string
	ValidDecisions []string
	Rules          []Rule
	KeyElements    []string
	CriticalPoints []string
}

// profiles is the declaration-ordered profile table. Iteration for prompt
// rendering always walks slices, never maps, so the rendered rule text is
// byte-stable between runs.
var profiles = []*SportProfile{
	{
		ID:          "cricket",
		DisplayName: "Cricket",
		ValidDecisions: []string{
			"NOT OUT", "OUT", "WIDE", "NO BALL", "DEAD BALL",
		},
		Rules: []Rule{
			{Name: "LBW", Text: "Leg Before Wicket: the batter is out if the ball would have hit the stumps but was intercepted by any part of the batter's body, provided the ball did not pitch outside leg stump and the impact was in line with the stumps or the batter offered no shot."},
			{Name: "Run Out", Text: "The batter is out if no part of their bat or body is grounded behind the popping crease when the wicket is fairly broken by the fielding side."},
			{Name: "Caught", Text: "The batter is out if the ball touches the bat or glove holding the bat and is caught by a fielder before it touches the ground."},
			{Name: "Stumped", Text: "The batter is out if the wicket-keeper breaks the wicket while the batter is out of the crease and not attempting a run."},
			{Name: "Boundary", Text: "A ball that crosses the boundary after touching the ground scores four; a ball that clears the boundary on the full scores six."},
		},
		KeyElements: []string{
			"bat contact with ball", "pad impact location", "stump condition",
			"crease position of batter and bat", "wicket-keeper gloves", "fielder catch cleanliness",
		},
		CriticalPoints: []string{
			"For run outs, freeze on the exact moment the bails leave the stumps and check the bat position.",
			"For LBW, establish pitching line before impact line.",
			"For catches, confirm the ball did not touch the ground before being secured.",
		},
	},
	{
		ID:          "soccer",
		DisplayName: "Soccer (Association Football)",
		ValidDecisions: []string{
			"NO GOAL", "GOAL", "NO FOUL", "FOUL", "OFFSIDE", "PENALTY", "FREE KICK", "HANDBALL",
		},
		Rules: []Rule{
			{Name: "Goal", Text: "A goal is scored when the whole of the ball passes over the goal line, between the goalposts and under the crossbar."},
			{Name: "Offside", Text: "A player is offside if any part of the head, body or feet is nearer to the opponents' goal line than both the ball and the second-last opponent at the moment the ball is played."},
			{Name: "Handball", Text: "A handball offence occurs when a player deliberately touches the ball with the hand or arm, or scores with the hand or arm even if accidental."},
			{Name: "Penalty", Text: "A direct free kick offence committed by a defender inside their own penalty area results in a penalty kick."},
		},
		KeyElements: []string{
			"ball position relative to the goal line", "player positions at the moment of the pass",
			"point of contact between players", "hand or arm contact with ball", "referee position",
		},
		CriticalPoints: []string{
			"For goal-line decisions, the entire ball must cross the entire line.",
			"Judge offside at the moment the ball is played, not when it is received.",
		},
	},
	{
		ID:          "basketball",
		DisplayName: "Basketball",
		ValidDecisions: []string{
			"NO SCORE", "SCORE", "NO FOUL", "FOUL", "TRAVELING", "OUT OF BOUNDS", "SHOT CLOCK VIOLATION",
		},
		Rules: []Rule{
			{Name: "Field Goal", Text: "A field goal is scored when a live ball enters the basket from above and passes through. A shot released before the buzzer counts if it subsequently scores."},
			{Name: "Traveling", Text: "Moving one or both feet beyond the allowed pivot limits while holding a live ball is a traveling violation."},
			{Name: "Shooting Foul", Text: "Illegal contact against a shooter in the act of shooting awards free throws."},
			{Name: "Out of Bounds", Text: "The ball is out of bounds when it touches a player, the floor, or any object on or outside a boundary line."},
		},
		KeyElements: []string{
			"ball position relative to the rim", "shooter's feet at release", "game and shot clocks",
			"contact between defender and shooter", "boundary lines",
		},
		CriticalPoints: []string{
			"For buzzer-beaters, compare ball release against the clock showing zero.",
			"Foot position on the line decides two versus three points.",
		},
	},
	{
		ID:          "tennis",
		DisplayName: "Tennis",
		ValidDecisions: []string{
			"FAULT", "LET", "OUT", "IN", "ACE", "DOUBLE FAULT",
		},
		Rules: []Rule{
			{Name: "Line Call", Text: "A ball is good if any part of it touches the line bounding the correct court; it is out only when it lands entirely outside."},
			{Name: "Service Fault", Text: "A serve is a fault if it does not land in the diagonally opposite service box or the server foot-faults."},
			{Name: "Let", Text: "A serve that touches the net and still lands in the correct service box is replayed as a let."},
		},
		KeyElements: []string{
			"ball bounce point relative to the lines", "net contact", "server's feet at the baseline",
			"racquet contact", "double bounce",
		},
		CriticalPoints: []string{
			"Any contact with the line means the ball is in.",
			"Check for a second bounce before the return was struck.",
		},
	},
	{
		ID:          GeneralSportID,
		DisplayName: "General Sports",
		ValidDecisions: []string{
			"INVALID", "VALID", "NO SCORE", "SCORE", "NO FOUL", "FOUL", "ILLEGAL", "LEGAL",
		},
		Rules: []Rule{
			{Name: "Fair Play", Text: "Judge the action against the generally accepted rules of the sport in view: legal versus illegal contact, valid versus invalid scoring, and boundary compliance."},
			{Name: "Scoring", Text: "A score counts only when the scoring object fully satisfies the sport's scoring condition before any stoppage."},
			{Name: "Boundaries", Text: "Players and the ball or scoring object must respect the marked playing area; judge positions at the decisive moment."},
		},
		KeyElements: []string{
			"player positions", "ball or object trajectory", "boundary lines", "officials' signals", "contact between players",
		},
		CriticalPoints: nil,
	},
}

// aliases maps alternate sport spellings onto canonical profile identifiers.
var aliases = map[string]string{
	"football":     "soccer",
	"futbol":       "soccer",
	"cricket":      "cricket",
	"baseball":     GeneralSportID,
	"table-tennis": "tennis",
}

// ProfileFor returns the profile for the given sport identifier. Lookup is
// case-insensitive and tolerates surrounding whitespace. Unknown identifiers
// return the general profile; this function never fails.
func ProfileFor(sportID string) *SportProfile {
	id := strings.ToLower(strings.TrimSpace(sportID))
	if alias, ok := aliases[id]; ok {
		id = alias
	}
	for _, p := range profiles {
		if p.ID == id {
			return p
		}
	}
	return ProfileFor(GeneralSportID)
}

// FormatForPrompt renders the sport's profile as the rule text injected into
// the synthesis prompt. The output enumerates decisions, key elements, each
// rule by name, and critical points in declaration order, so identical inputs
// always produce identical prompt text.
func FormatForPrompt(sportID string) string {
	p := ProfileFor(sportID)

	var b strings.Builder
	fmt.Fprintf(&b, "SPORT: %s\n\n", p.DisplayName)

	b.WriteString("VALID DECISIONS:\n")
	for _, d := range p.ValidDecisions {
		fmt.Fprintf(&b, "- %s\n", d)
	}

	b.WriteString("\nKEY VISUAL ELEMENTS:\n")
	for _, e := range p.KeyElements {
		fmt.Fprintf(&b, "- %s\n", e)
	}

	b.WriteString("\nRULES:\n")
	for _, r := range p.Rules {
		fmt.Fprintf(&b, "%s: %s\n", r.Name, r.Text)
	}

	if len(p.CriticalPoints) > 0 {
		b.WriteString("\nCRITICAL DECISION POINTS:\n")
		for _, cp := range p.CriticalPoints {
			fmt.Fprintf(&b, "- %s\n", cp)
		}
	}

	return b.String()
}
