package narration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorialcast/internal/tutorial/feature"
)

func parse(t *testing.T, src string) *feature.Feature {
	t.Helper()
	f, err := feature.Parse(src)
	require.NoError(t, err)
	f.ID = "demo"
	return f
}

func TestExtract_OrderAndFiltering(t *testing.T) {
	f := parse(t, `Feature: Demo
Background:
  Given I am logged in
  And I say "First we sign in"
Scenario: One
  When I say "Then we look around"
  Then I see the "repository list"
Scenario: Two
  And I say "Finally we search"
`)

	entries := Extract(f)
	require.Len(t, entries, 3)
	assert.Equal(t, "First we sign in", entries[0].Text)
	assert.Equal(t, "Then we look around", entries[1].Text)
	assert.Equal(t, "Finally we search", entries[2].Text)

	for i, e := range entries {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, "demo", e.FeatureID)
	}
	assert.Equal(t, "demo-000", entries[0].ID)
}

func TestExtract_NoNarrationYieldsEmpty(t *testing.T) {
	f := parse(t, `Feature: Silent
Scenario: s
  Given I navigate to the "home" page
  Then I see the "navigation menu"
`)
	assert.Empty(t, Extract(f))
	assert.False(t, f.HasNarration())
}

func TestLoadTranslations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.yaml"),
		[]byte("Welcome to the dashboard: Bienvenue sur le tableau de bord\n"), 0644))

	t.Run("existing language", func(t *testing.T) {
		tr, err := LoadTranslations(dir, "fr")
		require.NoError(t, err)
		assert.Equal(t, "fr", tr.Language())
		assert.Equal(t, "Bienvenue sur le tableau de bord", tr.Resolve("Welcome to the dashboard"))
		// Untranslated line falls back to the canonical text.
		assert.Equal(t, "Use the search box", tr.Resolve("Use the search box"))
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		tr, err := LoadTranslations(dir, "en")
		require.NoError(t, err)
		assert.Equal(t, "Welcome to the dashboard", tr.Resolve("Welcome to the dashboard"))
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "de.yaml"), []byte("key: [unclosed\n"), 0644))
		_, err := LoadTranslations(dir, "de")
		assert.Error(t, err)
	})
}
