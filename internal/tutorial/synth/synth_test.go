package synth

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorialcast/internal/tutorial/narration"
)

// writeWAV writes a playable mono 16-bit PCM wav of the given length.
func writeWAV(t *testing.T, path string, d time.Duration) {
	t.Helper()
	const sampleRate = 8000
	samples := int(float64(sampleRate) * d.Seconds())
	dataLen := samples * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// fileEngine is a test engine that writes real wav files.
type fileEngine struct {
	t     *testing.T
	calls int
}

func (e *fileEngine) Name() string          { return "file" }
func (e *fileEngine) FileExt() string       { return ".wav" }
func (e *fileEngine) CheckAvailable() error { return nil }
func (e *fileEngine) Voices() ([]string, error) {
	return nil, nil
}
func (e *fileEngine) Synthesize(ctx context.Context, req Request) (Result, error) {
	e.calls++
	writeWAV(e.t, req.OutFile, 1500*time.Millisecond)
	return Result{OutFile: req.OutFile, Produced: true}, nil
}

func entriesFor(texts ...string) []narration.Entry {
	entries := make([]narration.Entry, len(texts))
	for i, txt := range texts {
		entries[i] = narration.Entry{
			ID:        "demo-00" + string(rune('0'+i)),
			FeatureID: "demo",
			Index:     i,
			Text:      txt,
		}
	}
	return entries
}

func noTranslations(t *testing.T, lang string) *narration.Translations {
	t.Helper()
	tr, err := narration.LoadTranslations(t.TempDir(), lang)
	require.NoError(t, err)
	return tr
}

func TestSynthesizeBatch_MeasuredDurations(t *testing.T) {
	engine := &fileEngine{t: t}
	svc := NewService(engine, t.TempDir())

	clips := svc.SynthesizeBatch(context.Background(),
		entriesFor("Welcome to the dashboard", "Use search"), noTranslations(t, "en"), "en")

	require.Len(t, clips, 2)
	for _, c := range clips {
		assert.True(t, c.Success)
		assert.Equal(t, "en", c.Language)
		// Measured from the produced artifact, not estimated.
		assert.InDelta(t, 1500, c.Duration.Milliseconds(), 10)
	}
	assert.Equal(t, 0, FailureCount(clips))
	assert.Len(t, Successful(clips), 2)
}

func TestSynthesizeBatch_CachedClipSkipsSynthesis(t *testing.T) {
	engine := &fileEngine{t: t}
	svc := NewService(engine, t.TempDir())
	entries := entriesFor("Welcome to the dashboard")
	trans := noTranslations(t, "en")

	svc.SynthesizeBatch(context.Background(), entries, trans, "en")
	require.Equal(t, 1, engine.calls)

	clips := svc.SynthesizeBatch(context.Background(), entries, trans, "en")
	assert.Equal(t, 1, engine.calls, "cached clip must not re-synthesize")
	assert.True(t, clips[0].Success)
}

func TestSynthesizeBatch_FailureIsIsolated(t *testing.T) {
	engine := NewMockEngine(Config{})
	engine.FailTexts["Broken line"] = true
	svc := NewService(engine, t.TempDir())

	clips := svc.SynthesizeBatch(context.Background(),
		entriesFor("Good line", "Broken line", "Another good line"),
		noTranslations(t, "fr"), "fr")

	require.Len(t, clips, 3)
	assert.True(t, clips[0].Success)
	assert.False(t, clips[1].Success)
	assert.True(t, clips[2].Success)
	assert.Equal(t, 1, FailureCount(clips))
	// Mock produces no audio, so nothing is usable by the muxer.
	assert.Empty(t, Successful(clips))
}

func TestSynthesizeBatch_EstimateWhenNoAudioProduced(t *testing.T) {
	svc := NewService(NewMockEngine(Config{}), t.TempDir())

	short := "hi"
	long := "This narration line is long enough to exceed the two second floor."
	clips := svc.SynthesizeBatch(context.Background(),
		entriesFor(short, long), noTranslations(t, "en"), "en")

	require.Len(t, clips, 2)
	assert.Equal(t, 2*time.Second, clips[0].Duration)
	assert.Equal(t, time.Duration(len(long))*80*time.Millisecond, clips[1].Duration)
}

func TestEstimateDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, EstimateDuration(""))
	assert.Equal(t, 2*time.Second, EstimateDuration("short"))
	assert.Equal(t, 4*time.Second, EstimateDuration(string(make([]byte, 50))))
}

func TestMeasureDuration_WAV(t *testing.T) {
	path := t.TempDir() + "/clip.wav"
	writeWAV(t, path, 2*time.Second)

	d, err := MeasureDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 2000, d.Milliseconds(), 10)
}

func TestMeasureDuration_Errors(t *testing.T) {
	_, err := MeasureDuration(t.TempDir() + "/missing.wav")
	assert.Error(t, err)

	bad := t.TempDir() + "/bad.ogg"
	require.NoError(t, os.WriteFile(bad, []byte("xx"), 0644))
	_, err = MeasureDuration(bad)
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(Config{Type: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", engine.Name())

	_, err = NewEngine(Config{Type: "festival"})
	assert.ErrorContains(t, err, "unsupported")
}
