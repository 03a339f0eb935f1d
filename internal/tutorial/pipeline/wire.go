package pipeline

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"tutorialcast/internal/config"
	"tutorialcast/internal/tutorial/docs"
	"tutorialcast/internal/tutorial/media"
	"tutorialcast/internal/tutorial/record"
	"tutorialcast/internal/tutorial/script"
	"tutorialcast/internal/tutorial/server"
	"tutorialcast/internal/tutorial/steps"
	"tutorialcast/internal/tutorial/synth"
)

// New assembles the production pipeline from settings: real engines, real
// browser, real media tool.
func New(settings *config.Settings) (*Pipeline, error) {
	engine, err := synth.NewEngine(synth.Config{
		Type:      settings.Engine,
		Rate:      settings.Rate,
		Pitch:     settings.Pitch,
		Amplitude: settings.Amplitude,
	})
	if err != nil {
		return nil, fmt.Errorf("creating synthesis engine: %w", err)
	}

	exec := media.NewExecutor()
	dispatcher := steps.NewDispatcher(steps.DefaultRules())
	retry := script.RetryPolicy{
		Attempts:       settings.Retries,
		TotalTimeoutMs: settings.ActionTimeoutMs,
	}

	recordingsDir := filepath.Join(settings.Output, "recordings")
	recorder := record.NewRecorder(settings.BaseURL, settings.Width, settings.Height,
		settings.Framerate, exec, recordingsDir)

	return &Pipeline{
		Settings:  settings,
		Synth:     synth.NewService(engine, settings.AudioCache),
		Generator: script.NewGenerator(dispatcher, retry),
		Recorder:  recorder,
		Muxer:     media.NewMuxer(exec, settings.Output),
		Docs:      docs.NewEmitter(filepath.Join(settings.Output, "docs")),
		StartServer: func() (Stopper, error) {
			addr, err := listenAddr(settings.BaseURL)
			if err != nil {
				return nil, err
			}
			return server.Start(settings.Build, addr)
		},
		Prereqs: map[string]func() error{
			"synthesis engine": engine.CheckAvailable,
			"media tool":       exec.CheckAvailable,
			"browser":          record.CheckAvailable,
			"application build": func() error {
				info, err := os.Stat(settings.Build)
				if err != nil {
					return fmt.Errorf("application build missing at %s: %w", settings.Build, err)
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", settings.Build)
				}
				return nil
			},
		},
	}, nil
}

// listenAddr derives the bind address from the base URL the recorder will
// visit.
func listenAddr(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base URL %q has no host", baseURL)
	}
	return u.Host, nil
}
