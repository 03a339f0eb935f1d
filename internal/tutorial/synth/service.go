package synth

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"tutorialcast/internal/tutorial/narration"
)

// Clip is one synthesized speech file for one narration line in one
// language. Owned by the synthesis service until the muxer consumes it.
type Clip struct {
	ID             string
	Language       string
	Text           string
	NarrationIndex int
	OutputFile     string
	Duration       time.Duration
	Success        bool
}

// Service runs batch synthesis against one engine, caching produced clips
// on disk keyed by content so re-runs skip unchanged lines.
type Service struct {
	engine   Engine
	cacheDir string
}

func NewService(engine Engine, cacheDir string) *Service {
	return &Service{engine: engine, cacheDir: cacheDir}
}

// SynthesizeBatch produces one clip per narration entry for one language.
// An individual line failing comes back as Success:false; it never aborts
// the batch, and one language never blocks another.
func (s *Service) SynthesizeBatch(ctx context.Context, entries []narration.Entry, trans *narration.Translations, voice string) []Clip {
	lang := trans.Language()
	clips := make([]Clip, 0, len(entries))

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		logrus.WithError(err).Error("cannot create audio cache directory")
	}

	for _, entry := range entries {
		spoken := trans.Resolve(entry.Text)
		clip := Clip{
			ID:             fmt.Sprintf("%s-%s", entry.ID, lang),
			Language:       lang,
			Text:           spoken,
			NarrationIndex: entry.Index,
			OutputFile:     s.clipPath(entry, lang, voice, spoken),
		}

		if _, err := os.Stat(clip.OutputFile); err == nil {
			logrus.WithField("clip", clip.ID).Debug("using cached audio clip")
			clip.Success = true
		} else {
			res, err := s.engine.Synthesize(ctx, Request{
				Text:     spoken,
				Language: lang,
				Voice:    voice,
				OutFile:  clip.OutputFile,
			})
			switch {
			case err != nil:
				logrus.WithError(err).WithFields(logrus.Fields{
					"clip":     clip.ID,
					"language": lang,
				}).Warn("synthesis failed for narration line")
				clip.Success = false
			case !res.Produced:
				// Engine completed without audio (mock); count it a success
				// and pace with the estimate below.
				clip.Success = true
			default:
				clip.Success = true
			}
		}

		if d, err := MeasureDuration(clip.OutputFile); err == nil {
			clip.Duration = d
		} else {
			clip.Duration = EstimateDuration(spoken)
		}
		clips = append(clips, clip)
	}
	return clips
}

// clipPath builds the cache file name: narration id, language and the first
// 8 hex chars of a content hash, so changed text or voice re-synthesizes.
func (s *Service) clipPath(entry narration.Entry, lang, voice, spoken string) string {
	sum := md5.Sum([]byte(lang + "|" + voice + "|" + spoken))
	return filepath.Join(s.cacheDir,
		fmt.Sprintf("%s-%s-%x%s", entry.ID, lang, sum[:4], s.engine.FileExt()))
}

// FailureCount reports how many clips in the batch failed to synthesize.
func FailureCount(clips []Clip) int {
	n := 0
	for _, c := range clips {
		if !c.Success {
			n++
		}
	}
	return n
}

// Successful filters the batch to clips whose audio exists on disk.
func Successful(clips []Clip) []Clip {
	var out []Clip
	for _, c := range clips {
		if !c.Success {
			continue
		}
		if _, err := os.Stat(c.OutputFile); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
