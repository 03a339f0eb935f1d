package synth

import (
	"context"
	"fmt"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// googleLanguageCodes maps the short language codes used on the CLI to the
// BCP-47 codes the Cloud TTS API expects.
var googleLanguageCodes = map[string]string{
	"en": "en-US",
	"fr": "fr-FR",
	"es": "es-ES",
	"de": "de-DE",
	"it": "it-IT",
	"pt": "pt-BR",
}

// GoogleEngine synthesizes through Google Cloud Text-to-Speech, writing one
// mp3 file per call.
type GoogleEngine struct {
	client *texttospeech.Client
	cfg    Config
}

func newGoogleEngine(cfg Config) (*GoogleEngine, error) {
	client, err := texttospeech.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}
	return &GoogleEngine{client: client, cfg: cfg}, nil
}

func (g *GoogleEngine) Name() string    { return EngineTypeGoogle.String() }
func (g *GoogleEngine) FileExt() string { return ".mp3" }

func (g *GoogleEngine) CheckAvailable() error {
	if !hasGoogleCredentials() {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS not set")
	}
	return nil
}

func (g *GoogleEngine) Synthesize(ctx context.Context, req Request) (Result, error) {
	languageCode, ok := googleLanguageCodes[req.Language]
	if !ok {
		languageCode = req.Language
	}

	voice := &texttospeechpb.VoiceSelectionParams{LanguageCode: languageCode}
	if req.Voice != "" && req.Voice != "default" && req.Voice != req.Language {
		voice.Name = req.Voice
	}

	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices often don't support speakingRate/pitch, skip them there.
	if !strings.Contains(strings.ToLower(voice.Name), "chirp") {
		audioCfg.SpeakingRate = float64(g.cfg.Rate) / 145.0
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice:       voice,
		AudioConfig: audioCfg,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to synthesize %q: %w", req.Language, err)
	}

	if err := os.WriteFile(req.OutFile, resp.AudioContent, 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write mp3 to %s: %w", req.OutFile, err)
	}
	return Result{OutFile: req.OutFile, Produced: true}, nil
}

func (g *GoogleEngine) Voices() ([]string, error) {
	resp, err := g.client.ListVoices(context.Background(), &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		names = append(names, v.Name)
	}
	return names, nil
}
