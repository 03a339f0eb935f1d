package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

const (
	// minEstimate is the floor for estimated clip durations.
	minEstimate = 2 * time.Second
	// perCharRate paces the estimate when no audio was produced.
	perCharRate = 80 * time.Millisecond
)

// MeasureDuration decodes the produced audio artifact and returns its play
// length. Duration is measured, never guessed, whenever a file exists.
func MeasureDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening clip %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err := wav.Decode(f)
		if err != nil {
			return 0, fmt.Errorf("decoding wav %s: %w", path, err)
		}
		defer streamer.Close()
		return format.SampleRate.D(streamer.Len()), nil
	case ".mp3":
		streamer, format, err := mp3.Decode(f)
		if err != nil {
			return 0, fmt.Errorf("decoding mp3 %s: %w", path, err)
		}
		defer streamer.Close()
		return format.SampleRate.D(streamer.Len()), nil
	default:
		return 0, fmt.Errorf("unsupported clip format %s", path)
	}
}

// EstimateDuration is the fallback used only when no audio was produced, so
// step pacing stays deterministic even with synthesis unavailable.
func EstimateDuration(text string) time.Duration {
	d := time.Duration(len(text)) * perCharRate
	if d < minEstimate {
		return minEstimate
	}
	return d
}
