package synth

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ESpeakEngine drives eSpeak/eSpeak-NG, writing one wav file per call.
type ESpeakEngine struct {
	cfg  Config
	path string
}

func newESpeakEngine(cfg Config) (*ESpeakEngine, error) {
	path, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}
	e := &ESpeakEngine{cfg: cfg, path: path}
	if err := e.CheckAvailable(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}
	return e, nil
}

func findESpeakExecutable() (string, error) {
	// Try different possible eSpeak executables
	candidates := []string{"espeak-ng", "espeak"}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

func (e *ESpeakEngine) Name() string    { return EngineTypeESpeak.String() }
func (e *ESpeakEngine) FileExt() string { return ".wav" }

func (e *ESpeakEngine) CheckAvailable() error {
	return exec.Command(e.path, "--version").Run()
}

func (e *ESpeakEngine) Synthesize(ctx context.Context, req Request) (Result, error) {
	args := []string{}

	voice := req.Voice
	if voice == "" || voice == "default" {
		voice = req.Language
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}

	args = append(args,
		"-s", strconv.Itoa(e.cfg.Rate),
		"-p", strconv.Itoa(e.cfg.Pitch),
		"-a", strconv.Itoa(e.cfg.Amplitude),
		"-w", req.OutFile,
		req.Text,
	)

	cmd := exec.CommandContext(ctx, e.path, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return Result{}, fmt.Errorf("espeak %s: %w (%s)", req.Language, err, strings.TrimSpace(string(out)))
	}
	return Result{OutFile: req.OutFile, Produced: true}, nil
}

func (e *ESpeakEngine) Voices() ([]string, error) {
	output, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, err
	}
	return parseESpeakVoices(string(output)), nil
}

func parseESpeakVoices(output string) []string {
	lines := strings.Split(output, "\n")
	voices := make([]string, 0)

	for i, line := range lines {
		// Skip header line
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		// Parse voice line: Pty Language Age/Gender VoiceName          File          Other Languages
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}

	return voices
}
