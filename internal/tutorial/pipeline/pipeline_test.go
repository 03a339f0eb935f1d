package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorialcast/internal/config"
	"tutorialcast/internal/tutorial/feature"
	"tutorialcast/internal/tutorial/media"
	"tutorialcast/internal/tutorial/record"
	"tutorialcast/internal/tutorial/script"
	"tutorialcast/internal/tutorial/steps"
	"tutorialcast/internal/tutorial/synth"
)

type fakeRecorder struct {
	dir      string
	failerID string
	calls    int
}

func (r *fakeRecorder) Record(ctx context.Context, plan *script.Plan) (record.Recording, error) {
	r.calls++
	if plan.FeatureID == r.failerID {
		return record.Recording{}, fmt.Errorf("browser crashed")
	}
	path := filepath.Join(r.dir, plan.FeatureID+".mp4")
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		return record.Recording{}, err
	}
	return record.Recording{FeatureID: plan.FeatureID, FilePath: path}, nil
}

type fakeMuxer struct {
	failLang string
}

func (m *fakeMuxer) Mux(ctx context.Context, featureID, videoPath string, clips []synth.Clip, lang string) (media.Artifact, error) {
	if lang == m.failLang {
		return media.Artifact{}, fmt.Errorf("mux exploded")
	}
	return media.Artifact{FeatureID: featureID, Language: lang, VideoPath: featureID + "-" + lang + ".mp4"}, nil
}

type fakeDocs struct{ emitted bool }

func (d *fakeDocs) Emit(features []*feature.Feature, artifacts []media.Artifact, languages []string) error {
	d.emitted = true
	return nil
}

type fakeServer struct{ stops int }

func (s *fakeServer) Stop() { s.stops++ }

type fixture struct {
	pipeline *Pipeline
	recorder *fakeRecorder
	muxer    *fakeMuxer
	docs     *fakeDocs
	server   *fakeServer
}

func newFixture(t *testing.T, languages []string) *fixture {
	t.Helper()
	featuresDir := t.TempDir()
	outDir := t.TempDir()

	fx := &fixture{
		recorder: &fakeRecorder{dir: t.TempDir()},
		muxer:    &fakeMuxer{},
		docs:     &fakeDocs{},
		server:   &fakeServer{},
	}
	fx.pipeline = &Pipeline{
		Settings: &config.Settings{
			Languages:  languages,
			Features:   featuresDir,
			Output:     outDir,
			AudioCache: filepath.Join(outDir, "audio"),
		},
		Synth:       synth.NewService(synth.NewMockEngine(synth.Config{}), filepath.Join(outDir, "audio")),
		Generator:   script.NewGenerator(steps.NewDispatcher(steps.DefaultRules()), script.RetryPolicy{Attempts: 3, TotalTimeoutMs: 9000}),
		Recorder:    fx.recorder,
		Muxer:       fx.muxer,
		Docs:        fx.docs,
		StartServer: func() (Stopper, error) { return fx.server, nil },
		Prereqs:     map[string]func() error{},
	}
	return fx
}

func (fx *fixture) addFeature(t *testing.T, id, src string) {
	t.Helper()
	path := filepath.Join(fx.pipeline.Settings.Features, id+".feature")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
}

const narratedFeature = `Feature: %s
Scenario: Tour
  Given I navigate to the "dashboard" page
  When I say "Welcome to the dashboard"
  Then I see the "repository list"
`

const silentFeature = `Feature: %s
Scenario: Quiet
  Given I navigate to the "home" page
  Then I see the "navigation menu"
`

func TestRun_SingleFeatureTwoLanguages(t *testing.T) {
	fx := newFixture(t, []string{"en", "fr"})
	fx.addFeature(t, "dashboard", fmt.Sprintf(narratedFeature, "Dashboard"))

	summary, err := fx.pipeline.Run(context.Background(), nil)
	require.NoError(t, err)

	// One narration line, one per language.
	assert.Equal(t, 2, summary.Clips)
	assert.Equal(t, 1, summary.Recordings)
	require.Len(t, summary.Artifacts, 2)
	langs := map[string]bool{}
	for _, a := range summary.Artifacts {
		assert.Equal(t, "dashboard", a.FeatureID)
		langs[a.Language] = true
	}
	assert.Equal(t, map[string]bool{"en": true, "fr": true}, langs)
	assert.True(t, fx.docs.emitted)
	assert.Equal(t, 1, fx.server.stops)
}

func TestRun_NarrationFreeFeaturesExcluded(t *testing.T) {
	fx := newFixture(t, []string{"en", "fr", "es"})
	for i := 0; i < 3; i++ {
		fx.addFeature(t, fmt.Sprintf("spoken-%d", i), fmt.Sprintf(narratedFeature, "Spoken"))
	}
	fx.addFeature(t, "quiet-1", fmt.Sprintf(silentFeature, "Quiet one"))
	fx.addFeature(t, "quiet-2", fmt.Sprintf(silentFeature, "Quiet two"))

	summary, err := fx.pipeline.Run(context.Background(), nil)
	require.NoError(t, err)

	// 3 eligible features x 3 languages, not 5 x 3.
	assert.Len(t, summary.Features, 3)
	assert.Len(t, summary.Artifacts, 9)
	assert.Equal(t, 3, summary.Recordings)
}

func TestRun_PrerequisiteFailureIsFatal(t *testing.T) {
	fx := newFixture(t, []string{"en"})
	fx.addFeature(t, "dashboard", fmt.Sprintf(narratedFeature, "Dashboard"))
	fx.pipeline.Prereqs["media tool"] = func() error { return fmt.Errorf("ffmpeg not found") }

	_, err := fx.pipeline.Run(context.Background(), nil)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, PhaseValidating, fatal.Phase)
	assert.Equal(t, 0, fx.recorder.calls, "nothing runs after a fatal prerequisite")
}

func TestRun_NoEligibleFeaturesIsFatal(t *testing.T) {
	fx := newFixture(t, []string{"en"})
	fx.addFeature(t, "quiet", fmt.Sprintf(silentFeature, "Quiet"))

	_, err := fx.pipeline.Run(context.Background(), nil)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, PhaseDiscovering, fatal.Phase)
}

func TestRun_RecordingFailureIsPerFeature(t *testing.T) {
	fx := newFixture(t, []string{"en"})
	fx.addFeature(t, "good", fmt.Sprintf(narratedFeature, "Good"))
	fx.addFeature(t, "broken", fmt.Sprintf(narratedFeature, "Broken"))
	fx.recorder.failerID = "broken"

	summary, err := fx.pipeline.Run(context.Background(), nil)
	require.NoError(t, err, "per-unit failures never fail the batch")

	assert.Len(t, summary.Artifacts, 1)
	assert.Equal(t, "good", summary.Artifacts[0].FeatureID)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, PhaseRecording, summary.Errors[0].Phase)
	assert.Equal(t, "broken", summary.Errors[0].Feature)
	assert.Equal(t, 1, fx.server.stops, "server stopped despite the failure")
}

func TestRun_MuxFailureIsolatedPerLanguage(t *testing.T) {
	fx := newFixture(t, []string{"en", "fr"})
	fx.addFeature(t, "dashboard", fmt.Sprintf(narratedFeature, "Dashboard"))
	fx.muxer.failLang = "fr"

	summary, err := fx.pipeline.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, summary.Artifacts, 1)
	assert.Equal(t, "en", summary.Artifacts[0].Language)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, PhaseMuxing, summary.Errors[0].Phase)
	assert.Equal(t, "fr", summary.Errors[0].Language)
}

func TestRun_Idempotent(t *testing.T) {
	fx := newFixture(t, []string{"en", "fr"})
	fx.addFeature(t, "dashboard", fmt.Sprintf(narratedFeature, "Dashboard"))

	first, err := fx.pipeline.Run(context.Background(), nil)
	require.NoError(t, err)
	second, err := fx.pipeline.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Artifacts), len(second.Artifacts))
	for i := range first.Artifacts {
		assert.Equal(t, first.Artifacts[i].FeatureID, second.Artifacts[i].FeatureID)
		assert.Equal(t, first.Artifacts[i].Language, second.Artifacts[i].Language)
	}
}

func TestRun_FeatureSelectionByName(t *testing.T) {
	fx := newFixture(t, []string{"en"})
	fx.addFeature(t, "alpha", fmt.Sprintf(narratedFeature, "Alpha"))
	fx.addFeature(t, "beta", fmt.Sprintf(narratedFeature, "Beta"))

	summary, err := fx.pipeline.Run(context.Background(), []string{"beta"})
	require.NoError(t, err)
	require.Len(t, summary.Features, 1)
	assert.Equal(t, "beta", summary.Features[0].ID)
}
