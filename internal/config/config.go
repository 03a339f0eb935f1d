package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// SetDefaults registers the viper defaults for a pipeline run. Flags and the
// optional tutorialcast.yaml config file override these.
func SetDefaults() {
	viper.SetDefault("languages", []string{"en", "fr", "es", "de"})
	viper.SetDefault("base_url", "http://localhost:3000")
	viper.SetDefault("resolution", "1280x720")

	viper.SetDefault("paths.features", "features")
	viper.SetDefault("paths.build", "build")
	viper.SetDefault("paths.output", "tutorials")
	viper.SetDefault("paths.audio_cache", "tutorials/audio")

	viper.SetDefault("synth.engine", "auto") // auto-select best engine
	viper.SetDefault("synth.rate", 145)      // words per minute
	viper.SetDefault("synth.pitch", 50)
	viper.SetDefault("synth.amplitude", 140)
	viper.SetDefault("synth.voices", map[string]string{})

	viper.SetDefault("record.framerate", 10)
	viper.SetDefault("record.action_timeout_ms", 9000)
	viper.SetDefault("record.retries", 3)
}

// Settings is a typed snapshot of the viper state for one run.
type Settings struct {
	Languages  []string
	BaseURL    string
	Width      int
	Height     int
	Features   string
	Build      string
	Output     string
	AudioCache string

	Engine    string
	Rate      int
	Pitch     int
	Amplitude int
	Voices    map[string]string

	Framerate       int
	ActionTimeoutMs int
	Retries         int
}

// Load materializes Settings from viper.
func Load() (*Settings, error) {
	w, h, err := ParseResolution(viper.GetString("resolution"))
	if err != nil {
		return nil, err
	}

	return &Settings{
		Languages:  viper.GetStringSlice("languages"),
		BaseURL:    viper.GetString("base_url"),
		Width:      w,
		Height:     h,
		Features:   viper.GetString("paths.features"),
		Build:      viper.GetString("paths.build"),
		Output:     viper.GetString("paths.output"),
		AudioCache: viper.GetString("paths.audio_cache"),

		Engine:    viper.GetString("synth.engine"),
		Rate:      viper.GetInt("synth.rate"),
		Pitch:     viper.GetInt("synth.pitch"),
		Amplitude: viper.GetInt("synth.amplitude"),
		Voices:    viper.GetStringMapString("synth.voices"),

		Framerate:       viper.GetInt("record.framerate"),
		ActionTimeoutMs: viper.GetInt("record.action_timeout_ms"),
		Retries:         viper.GetInt("record.retries"),
	}, nil
}

// VoiceFor returns the configured synthesis voice for a language, falling
// back to the language code itself.
func (s *Settings) VoiceFor(lang string) string {
	if v, ok := s.Voices[lang]; ok && v != "" {
		return v
	}
	return lang
}

// ParseResolution parses a WIDTHxHEIGHT string such as "1280x720".
func ParseResolution(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resolution %q: want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution width %q: %w", parts[0], err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution height %q: %w", parts[1], err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("resolution %q must be positive", s)
	}
	return w, h, nil
}
