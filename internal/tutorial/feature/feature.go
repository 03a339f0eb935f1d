// Package feature parses Gherkin-style scenario files into the model the
// rest of the pipeline consumes.
package feature

import "regexp"

// Keyword is the leading word of a step line.
type Keyword string

const (
	Given Keyword = "Given"
	When  Keyword = "When"
	Then  Keyword = "Then"
	And   Keyword = "And"
)

// narrationPattern recognizes steps whose text is meant to be spoken aloud,
// e.g. `I say "Welcome to the dashboard"`.
var narrationPattern = regexp.MustCompile(`^I say "(.+)"$`)

// Step is one line of scenario text. IsNarration is derived once at parse
// time and never recomputed downstream.
type Step struct {
	Keyword     Keyword
	Text        string
	IsNarration bool
}

// NarrationText returns the quoted text of a narration step, or "" for
// action steps.
func (s Step) NarrationText() string {
	m := narrationPattern.FindStringSubmatch(s.Text)
	if m == nil {
		return ""
	}
	return m[1]
}

// Scenario is one named sequence of steps within a Feature.
type Scenario struct {
	Title string
	Steps []Step
}

// Feature is the parsed content of one scenario file. ID is the file base
// name without extension; immutable after parsing.
type Feature struct {
	ID              string
	Title           string
	Description     string
	BackgroundSteps []Step
	Scenarios       []Scenario
}

// AllSteps returns background steps followed by every scenario's steps, in
// file order. This is the execution order: background steps are prepended to
// each scenario at run time, but for narration extraction they count once.
func (f *Feature) AllSteps() []Step {
	steps := make([]Step, 0, len(f.BackgroundSteps))
	steps = append(steps, f.BackgroundSteps...)
	for _, sc := range f.Scenarios {
		steps = append(steps, sc.Steps...)
	}
	return steps
}

// HasNarration reports whether any step of the feature is a narration step.
// A feature without narration is not eligible for tutorial generation.
func (f *Feature) HasNarration() bool {
	for _, s := range f.AllSteps() {
		if s.IsNarration {
			return true
		}
	}
	return false
}

func newStep(kw Keyword, text string) Step {
	return Step{
		Keyword:     kw,
		Text:        text,
		IsNarration: narrationPattern.MatchString(text),
	}
}
