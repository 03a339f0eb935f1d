package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tutorialcast/internal/tutorial/synth"
)

// Artifact is the final muxed output for one (feature, language) pair.
// Immutable once written.
type Artifact struct {
	FeatureID string
	Language  string
	VideoPath string
}

// Muxer combines one feature's silent recording with one language's audio.
type Muxer struct {
	exec   *Executor
	outDir string
}

func NewMuxer(exec *Executor, outDir string) *Muxer {
	return &Muxer{exec: exec, outDir: outDir}
}

// Mux builds <feature>-<language>.mp4 from the silent video and the
// language's successful clips, in narration order. With zero successful
// clips the silent video is republished unmodified: a tutorial without
// narration in one language is degraded but still publishable.
func (m *Muxer) Mux(ctx context.Context, featureID, videoPath string, clips []synth.Clip, lang string) (Artifact, error) {
	artifact := Artifact{
		FeatureID: featureID,
		Language:  lang,
		VideoPath: filepath.Join(m.outDir, fmt.Sprintf("%s-%s.mp4", featureID, lang)),
	}
	if err := os.MkdirAll(m.outDir, 0755); err != nil {
		return Artifact{}, fmt.Errorf("creating output directory: %w", err)
	}

	usable := synth.Successful(clips)
	if len(usable) == 0 {
		logrus.WithFields(logrus.Fields{
			"feature":  featureID,
			"language": lang,
		}).Warn("no audio clips for language, republishing silent video")
		if err := copyFile(videoPath, artifact.VideoPath); err != nil {
			return Artifact{}, fmt.Errorf("republishing silent video: %w", err)
		}
		return artifact, nil
	}

	listFile, err := writeConcatList(usable)
	if err != nil {
		return Artifact{}, err
	}
	defer os.Remove(listFile)

	track := filepath.Join(os.TempDir(),
		fmt.Sprintf("tutorialcast-%s-%s-track%s", featureID, lang, filepath.Ext(usable[0].OutputFile)))
	defer os.Remove(track)

	if err := m.exec.ConcatAudio(ctx, listFile, track); err != nil {
		return Artifact{}, fmt.Errorf("concatenating %s audio: %w", lang, err)
	}
	if err := m.exec.MuxAudio(ctx, videoPath, track, artifact.VideoPath); err != nil {
		return Artifact{}, fmt.Errorf("muxing %s/%s: %w", featureID, lang, err)
	}
	return artifact, nil
}

// writeConcatList emits the temporary ordered list the concat demuxer reads.
func writeConcatList(clips []synth.Clip) (string, error) {
	f, err := os.CreateTemp("", "tutorialcast-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating concat list: %w", err)
	}
	defer f.Close()

	for _, c := range clips {
		abs, err := filepath.Abs(c.OutputFile)
		if err != nil {
			abs = c.OutputFile
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", abs); err != nil {
			return "", fmt.Errorf("writing concat list: %w", err)
		}
	}
	return f.Name(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
