// Package media wraps the external media-processing tool for frame
// assembly, audio concatenation and muxing.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner executes one external media command. Injected so tests can record
// command lines instead of shelling out.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Executor issues ffmpeg invocations through a Runner.
type Executor struct {
	bin    string
	runner Runner
}

func NewExecutor() *Executor {
	return &Executor{bin: "ffmpeg", runner: execRunner{}}
}

// NewExecutorWithRunner is for tests.
func NewExecutorWithRunner(r Runner) *Executor {
	return &Executor{bin: "ffmpeg", runner: r}
}

// CheckAvailable verifies the media tool is on PATH.
func (e *Executor) CheckAvailable() error {
	if _, err := exec.LookPath(e.bin); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", e.bin, err)
	}
	return nil
}

func (e *Executor) run(ctx context.Context, args ...string) error {
	logrus.WithField("args", strings.Join(args, " ")).Debug("ffmpeg")
	out, err := e.runner.Run(ctx, e.bin, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w (%s)", e.bin, strings.Join(args, " "), err,
			strings.TrimSpace(string(out)))
	}
	return nil
}

// FramesToVideo assembles a numbered frame sequence into a silent video,
// encoded losslessly so the overlay pass is the only lossy step.
func (e *Executor) FramesToVideo(ctx context.Context, framePattern string, framerate int, outFile string) error {
	return e.run(ctx, "-y",
		"-framerate", fmt.Sprint(framerate),
		"-start_number", "1",
		"-i", framePattern,
		"-c:v", "libx264", "-crf", "0", "-pix_fmt", "yuv420p",
		outFile)
}

// ConcatAudio concatenates the clips named in listFile (concat demuxer
// format) into one continuous track without re-encoding.
func (e *Executor) ConcatAudio(ctx context.Context, listFile, outFile string) error {
	return e.run(ctx, "-y",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile)
}

// MuxAudio overlays one audio track onto a silent video: video copied
// losslessly, audio compressed, output truncated to the shorter stream as a
// safety bound (pacing keeps them close).
func (e *Executor) MuxAudio(ctx context.Context, videoFile, audioFile, outFile string) error {
	return e.run(ctx, "-y",
		"-i", videoFile,
		"-i", audioFile,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outFile)
}
