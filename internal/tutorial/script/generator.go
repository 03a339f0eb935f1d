package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tutorialcast/internal/tutorial/feature"
	"tutorialcast/internal/tutorial/steps"
	"tutorialcast/internal/tutorial/synth"
)

// Generator builds plans from features. The dispatcher is injected so a run
// can carry its own rule table.
type Generator struct {
	dispatcher *steps.Dispatcher
	retry      RetryPolicy
}

func NewGenerator(d *steps.Dispatcher, retry RetryPolicy) *Generator {
	return &Generator{dispatcher: d, retry: retry}
}

// Build assembles the plan for one feature. Background steps are prepended
// to every scenario, matching execution order; background narration indexes
// are shared across scenarios because only one clip exists per line.
func (g *Generator) Build(f *feature.Feature, clipsByLang map[string][]synth.Clip) *Plan {
	plan := &Plan{FeatureID: f.ID, Title: f.Title, Retry: g.retry}

	bgOps, bgNarrations := g.buildOps(f.BackgroundSteps, 0, clipsByLang)
	narrIndex := bgNarrations

	for _, sc := range f.Scenarios {
		ops, n := g.buildOps(sc.Steps, narrIndex, clipsByLang)
		narrIndex += n
		plan.Scenarios = append(plan.Scenarios, ScenarioPlan{
			Title: sc.Title,
			Ops:   append(append([]Op{}, bgOps...), ops...),
		})
	}
	return plan
}

func (g *Generator) buildOps(stepList []feature.Step, narrStart int, clipsByLang map[string][]synth.Clip) ([]Op, int) {
	var ops []Op
	narrations := 0
	for _, s := range stepList {
		if s.IsNarration {
			text := s.NarrationText()
			index := narrStart + narrations
			waits := make(map[string]int, len(clipsByLang))
			for lang, clips := range clipsByLang {
				waits[lang] = lookupWait(clips, text, index)
			}
			ops = append(ops, Op{Narration: &NarrationOp{Text: text, Index: index, WaitMs: waits}})
			narrations++
			continue
		}
		spec := g.dispatcher.Resolve(s.Text)
		ops = append(ops, Op{Action: &spec})
	}
	return ops, narrations
}

// Generate writes the plan file for one feature and returns its path.
func (g *Generator) Generate(f *feature.Feature, clipsByLang map[string][]synth.Clip, outDir string) (string, error) {
	plan := g.Build(f, clipsByLang)

	dir := filepath.Join(outDir, "scripts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating script directory: %w", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding plan for %s: %w", f.ID, err)
	}

	path := filepath.Join(dir, f.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing plan %s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"feature": f.ID,
		"path":    path,
	}).Debug("generated automation plan")
	return path, nil
}

// LoadPlan reads a generated plan file back for execution.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", path, err)
	}
	return &plan, nil
}
