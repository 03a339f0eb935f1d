// Package script turns a parsed feature into the executable automation plan
// the recorder runs: one plan file per feature, language-parameterized
// through a per-language wait map on every narration op.
package script

import (
	"strings"

	"tutorialcast/internal/tutorial/steps"
	"tutorialcast/internal/tutorial/synth"
)

// prefixLen is how many characters of narration text participate in the
// fuzzy clip lookup. Kept from the original pacing behavior; the narration
// index is consulted first and is the authoritative link.
const prefixLen = 24

// RetryPolicy bounds element lookups in the recorder. The total timeout is
// split evenly across attempts.
type RetryPolicy struct {
	Attempts       int `json:"attempts"`
	TotalTimeoutMs int `json:"total_timeout_ms"`
}

// NarrationOp pauses execution for as long as the narration is spoken, so
// the silent recording leaves room for every language's audio overlay.
// WaitMs holds the clip duration per language code.
type NarrationOp struct {
	Text   string         `json:"text"`
	Index  int            `json:"index"`
	WaitMs map[string]int `json:"wait_ms"`
}

// Op is one executable step: exactly one of Action or Narration is set.
type Op struct {
	Action    *steps.ActionSpec `json:"action,omitempty"`
	Narration *NarrationOp      `json:"narration,omitempty"`
}

// ScenarioPlan is one scenario's ordered ops, background steps included.
type ScenarioPlan struct {
	Title string `json:"title"`
	Ops   []Op   `json:"ops"`
}

// Plan is the generated automation script for one feature.
type Plan struct {
	FeatureID string         `json:"feature_id"`
	Title     string         `json:"title"`
	Retry     RetryPolicy    `json:"retry"`
	Scenarios []ScenarioPlan `json:"scenarios"`
}

// lookupWait resolves the wait duration for one narration op in one
// language at generation time: by narration index when a clip carries it,
// otherwise by case-folded text prefix (first clip in order wins), otherwise
// the deterministic estimate.
func lookupWait(clips []synth.Clip, text string, index int) int {
	for _, c := range clips {
		if c.NarrationIndex == index {
			return int(c.Duration.Milliseconds())
		}
	}
	prefix := foldPrefix(text)
	for _, c := range clips {
		if strings.HasPrefix(foldPrefix(c.Text), prefix) || strings.HasPrefix(prefix, foldPrefix(c.Text)) {
			return int(c.Duration.Milliseconds())
		}
	}
	return int(synth.EstimateDuration(text).Milliseconds())
}

func foldPrefix(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > prefixLen {
		return s[:prefixLen]
	}
	return s
}
