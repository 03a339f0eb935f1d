package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorialcast/internal/tutorial/feature"
	"tutorialcast/internal/tutorial/media"
)

func TestEmit(t *testing.T) {
	dir := t.TempDir()
	e := NewEmitter(dir)

	features := []*feature.Feature{
		{ID: "alpha", Title: "Alpha tour", Description: "First steps.",
			Scenarios: []feature.Scenario{{Title: "Looking around"}}},
		{ID: "beta", Title: "Beta tour"},
		{ID: "gamma", Title: "Gamma tour"},
	}
	artifacts := []media.Artifact{
		{FeatureID: "alpha", Language: "en", VideoPath: "/out/alpha-en.mp4"},
		{FeatureID: "alpha", Language: "fr", VideoPath: "/out/alpha-fr.mp4"},
		{FeatureID: "beta", Language: "en", VideoPath: "/out/beta-en.mp4"},
	}

	require.NoError(t, e.Emit(features, artifacts, []string{"en", "fr"}))

	alpha, err := os.ReadFile(filepath.Join(dir, "alpha.md"))
	require.NoError(t, err)
	page := string(alpha)
	assert.Contains(t, page, "# Alpha tour")
	assert.Contains(t, page, "First steps.")
	assert.Contains(t, page, "[en](alpha-en.mp4)")
	assert.Contains(t, page, "[fr](alpha-fr.mp4)")
	assert.Contains(t, page, "Looking around")
	assert.NotContains(t, page, "Previous:")
	assert.Contains(t, page, "Next: [Beta tour](beta.md)")

	beta, err := os.ReadFile(filepath.Join(dir, "beta.md"))
	require.NoError(t, err)
	assert.Contains(t, string(beta), "Previous: [Alpha tour](alpha.md)")
	assert.Contains(t, string(beta), "Next: [Gamma tour](gamma.md)")

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Languages: en, fr")
	assert.Contains(t, string(index), "[Alpha tour](alpha.md)")
	assert.Contains(t, string(index), "[Gamma tour](gamma.md)")
}
