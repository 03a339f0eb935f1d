// Package synth produces one timed audio clip per narration line per
// language by driving an external text-to-speech engine.
package synth

import (
	"context"
	"fmt"
	"os"
)

type EngineType string

const (
	EngineTypeMock   EngineType = "mock"
	EngineTypeESpeak EngineType = "espeak"
	EngineTypeGoogle EngineType = "google"
	EngineTypeAuto   EngineType = "auto" // Automatically choose best engine
)

func (e EngineType) String() string {
	return string(e)
}

// Config carries the voice parameters passed to the engine. Rate is words
// per minute, pitch and amplitude use the espeak 0-99 / 0-200 scales.
type Config struct {
	Type      string
	Rate      int
	Pitch     int
	Amplitude int
}

// Request is one synthesis call: one narration line in one language.
type Request struct {
	Text     string
	Language string
	Voice    string
	OutFile  string
}

// Result reports what a synthesis call produced. Produced is false when the
// engine completed without writing audio (the mock engine); the service then
// falls back to an estimated duration.
type Result struct {
	OutFile  string
	Produced bool
}

// Engine is one external text-to-speech backend. Synthesize never panics
// across the call; failures come back as the error value.
type Engine interface {
	Name() string
	// FileExt is the extension (with dot) of clips this engine writes.
	FileExt() string
	Synthesize(ctx context.Context, req Request) (Result, error)
	// CheckAvailable verifies the engine's external tool is usable. Called
	// during prerequisite validation.
	CheckAvailable() error
	Voices() ([]string, error)
}

// NewEngine creates the TTS engine for the given config, resolving "auto"
// to Google when credentials are present and espeak otherwise.
func NewEngine(cfg Config) (Engine, error) {
	if cfg.Type == EngineTypeAuto.String() {
		cfg.Type = bestEngine().String()
	}

	switch cfg.Type {
	case EngineTypeMock.String():
		return NewMockEngine(cfg), nil
	case EngineTypeESpeak.String():
		return newESpeakEngine(cfg)
	case EngineTypeGoogle.String():
		return newGoogleEngine(cfg)
	default:
		return nil, fmt.Errorf("unsupported TTS engine type: %s", cfg.Type)
	}
}

func bestEngine() EngineType {
	if hasGoogleCredentials() {
		return EngineTypeGoogle
	}
	return EngineTypeESpeak
}

// hasGoogleCredentials checks if Google Cloud credentials are available
func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}
