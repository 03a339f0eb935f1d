// Package pipeline sequences the tutorial-generation phases across all
// selected features and requested languages.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tutorialcast/internal/cli/scheme/colours"
	"tutorialcast/internal/config"
	"tutorialcast/internal/tutorial/feature"
	"tutorialcast/internal/tutorial/media"
	"tutorialcast/internal/tutorial/narration"
	"tutorialcast/internal/tutorial/record"
	"tutorialcast/internal/tutorial/script"
	"tutorialcast/internal/tutorial/synth"
)

// Recorder abstracts the browser session so tests can substitute a fake.
type Recorder interface {
	Record(ctx context.Context, plan *script.Plan) (record.Recording, error)
}

// Muxer abstracts the media overlay step.
type Muxer interface {
	Mux(ctx context.Context, featureID, videoPath string, clips []synth.Clip, lang string) (media.Artifact, error)
}

// DocsEmitter writes the cross-linked Markdown pages.
type DocsEmitter interface {
	Emit(features []*feature.Feature, artifacts []media.Artifact, languages []string) error
}

// Stopper is the scoped app-server handle; Stop must be idempotent.
type Stopper interface {
	Stop()
}

// Pipeline wires every phase together. All collaborators are injected; the
// zero value is not usable.
type Pipeline struct {
	Settings    *config.Settings
	Synth       *synth.Service
	Generator   *script.Generator
	Recorder    Recorder
	Muxer       Muxer
	Docs        DocsEmitter
	StartServer func() (Stopper, error)
	// Prereqs are checked first; any failure is fatal for the run.
	Prereqs map[string]func() error

	featureNames []string
}

// Summary is the final state of one batch run: the union of all published
// artifacts and all accumulated errors.
type Summary struct {
	Features   []*feature.Feature
	Clips      int
	ClipsOK    int
	Recordings int
	Artifacts  []media.Artifact
	Errors     []Error
}

func (s *Summary) addError(phase Phase, featureID, lang string, err error) {
	s.Errors = append(s.Errors, Error{
		Phase:    phase,
		Feature:  featureID,
		Language: lang,
		Message:  err.Error(),
	})
}

// Run executes the full state machine. The returned error is non-nil only
// for fatal conditions (missing tools, nothing eligible, server bind
// failure); everything else lands in the summary's error list.
func (p *Pipeline) Run(ctx context.Context, featureNames []string) (*Summary, error) {
	p.featureNames = featureNames
	summary := &Summary{}

	// ValidatingPrerequisites: the one phase where failure is fatal, since
	// every later phase depends on these tools.
	colours.Phase.Println("▸ Validating prerequisites")
	for name, check := range p.Prereqs {
		if err := check(); err != nil {
			return summary, &FatalError{Phase: PhaseValidating, Err: fmt.Errorf("%s: %w", name, err)}
		}
	}

	colours.Phase.Println("▸ Discovering features")
	features, err := p.discover()
	if err != nil {
		return summary, &FatalError{Phase: PhaseDiscovering, Err: err}
	}
	summary.Features = features

	colours.Phase.Println("▸ Extracting narrations")
	narrations := make(map[string][]narration.Entry, len(features))
	for _, f := range features {
		narrations[f.ID] = narration.Extract(f)
	}

	colours.Phase.Println("▸ Synthesizing audio")
	clips := p.synthesize(ctx, features, narrations, summary)

	colours.Phase.Println("▸ Generating scripts")
	plans := p.generateScripts(features, clips, summary)

	colours.Phase.Println("▸ Starting app server")
	srv, err := p.StartServer()
	if err != nil {
		return summary, &FatalError{Phase: PhaseServing, Err: err}
	}
	// The server must be stopped on every exit path, success or failure.
	defer srv.Stop()

	colours.Phase.Println("▸ Recording")
	recordings := p.recordAll(ctx, features, plans, summary)

	colours.Phase.Println("▸ Muxing")
	p.muxAll(ctx, features, recordings, clips, summary)

	colours.Phase.Println("▸ Generating docs")
	if err := p.Docs.Emit(features, summary.Artifacts, p.Settings.Languages); err != nil {
		summary.addError(PhaseDocs, "", "", err)
	}

	return summary, nil
}

// discover loads and filters the eligible features. Features without
// scenarios or without narration are excluded here with a console notice;
// spoken narration is the defining characteristic of a tutorial.
func (p *Pipeline) discover() ([]*feature.Feature, error) {
	all, err := feature.Discover(p.Settings.Features, p.featureNames)
	if err != nil {
		return nil, err
	}

	var eligible []*feature.Feature
	for _, f := range all {
		switch {
		case len(f.Scenarios) == 0:
			colours.Warning.Printf("  skipping %s: no scenarios\n", f.ID)
		case !f.HasNarration():
			colours.Warning.Printf("  skipping %s: no narration steps\n", f.ID)
		default:
			eligible = append(eligible, f)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no eligible features found in %s", p.Settings.Features)
	}
	return eligible, nil
}

// synthesize produces clips per feature per language. One failed line never
// blocks its batch, and one language never blocks another.
func (p *Pipeline) synthesize(ctx context.Context, features []*feature.Feature, narrations map[string][]narration.Entry, summary *Summary) map[string]map[string][]synth.Clip {
	clips := make(map[string]map[string][]synth.Clip, len(features))
	translationsDir := filepath.Join(p.Settings.Features, "translations")

	for _, lang := range p.Settings.Languages {
		trans, err := narration.LoadTranslations(translationsDir, lang)
		if err != nil {
			summary.addError(PhaseSynthesizing, "", lang, err)
			continue
		}
		for _, f := range features {
			batch := p.Synth.SynthesizeBatch(ctx, narrations[f.ID], trans, p.Settings.VoiceFor(lang))
			summary.Clips += len(batch)
			summary.ClipsOK += len(batch) - synth.FailureCount(batch)
			for _, c := range batch {
				if !c.Success {
					summary.addError(PhaseSynthesizing, f.ID, lang,
						fmt.Errorf("narration %q failed to synthesize", c.Text))
				}
			}
			if clips[f.ID] == nil {
				clips[f.ID] = map[string][]synth.Clip{}
			}
			clips[f.ID][lang] = batch
		}
	}
	return clips
}

func (p *Pipeline) generateScripts(features []*feature.Feature, clips map[string]map[string][]synth.Clip, summary *Summary) map[string]*script.Plan {
	plans := make(map[string]*script.Plan, len(features))
	for _, f := range features {
		path, err := p.Generator.Generate(f, clips[f.ID], p.Settings.Output)
		if err != nil {
			summary.addError(PhaseGenerating, f.ID, "", err)
			continue
		}
		plan, err := script.LoadPlan(path)
		if err != nil {
			summary.addError(PhaseGenerating, f.ID, "", err)
			continue
		}
		plans[f.ID] = plan
	}
	return plans
}

// recordAll produces one silent recording per feature, sequentially: the
// browser recording session is exclusive.
func (p *Pipeline) recordAll(ctx context.Context, features []*feature.Feature, plans map[string]*script.Plan, summary *Summary) map[string]record.Recording {
	recordings := make(map[string]record.Recording, len(features))
	for _, f := range features {
		plan, ok := plans[f.ID]
		if !ok {
			continue
		}
		rec, err := p.Recorder.Record(ctx, plan)
		if err != nil {
			summary.addError(PhaseRecording, f.ID, "", err)
			continue
		}
		recordings[f.ID] = rec
		summary.Recordings++
	}
	return recordings
}

// muxAll publishes one artifact per (feature, language), the granularity at
// which recoverable errors are isolated.
func (p *Pipeline) muxAll(ctx context.Context, features []*feature.Feature, recordings map[string]record.Recording, clips map[string]map[string][]synth.Clip, summary *Summary) {
	for _, f := range features {
		rec, ok := recordings[f.ID]
		if !ok {
			continue
		}
		for _, lang := range p.Settings.Languages {
			artifact, err := p.Muxer.Mux(ctx, f.ID, rec.FilePath, clips[f.ID][lang], lang)
			if err != nil {
				summary.addError(PhaseMuxing, f.ID, lang, err)
				continue
			}
			logrus.WithFields(logrus.Fields{
				"feature":  f.ID,
				"language": lang,
				"video":    artifact.VideoPath,
			}).Info("published tutorial")
			summary.Artifacts = append(summary.Artifacts, artifact)
		}
	}
}
