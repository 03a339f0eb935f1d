package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolution(t *testing.T) {
	w, h, err := ParseResolution("1280x720")
	require.NoError(t, err)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h, err = ParseResolution(" 1920X1080 ")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	for _, bad := range []string{"", "1280", "1280x", "x720", "1280x-1", "axb"} {
		_, _, err := ParseResolution(bad)
		assert.Error(t, err, bad)
	}
}

func TestVoiceFor(t *testing.T) {
	s := &Settings{Voices: map[string]string{"en": "en-GB"}}
	assert.Equal(t, "en-GB", s.VoiceFor("en"))
	assert.Equal(t, "fr", s.VoiceFor("fr"))
}
