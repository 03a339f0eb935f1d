package pipeline

import "fmt"

// Phase names one stage of a run, in the order the orchestrator enters them.
type Phase string

const (
	PhaseValidating   Phase = "validating-prerequisites"
	PhaseDiscovering  Phase = "discovering-features"
	PhaseExtracting   Phase = "extracting-narrations"
	PhaseSynthesizing Phase = "synthesizing-audio"
	PhaseGenerating   Phase = "generating-scripts"
	PhaseServing      Phase = "starting-server"
	PhaseRecording    Phase = "recording"
	PhaseMuxing       Phase = "muxing"
	PhaseDocs         Phase = "generating-docs"
)

// Error is one accumulated per-unit failure. Errors never unwind past the
// phase boundary that produced them; only prerequisite failures abort a run.
type Error struct {
	Phase    Phase
	Feature  string
	Language string
	Message  string
}

func (e Error) String() string {
	switch {
	case e.Feature == "":
		return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
	case e.Language == "":
		return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Feature, e.Message)
	default:
		return fmt.Sprintf("[%s] %s/%s: %s", e.Phase, e.Feature, e.Language, e.Message)
	}
}

// FatalError aborts the whole run with a non-zero exit.
type FatalError struct {
	Phase Phase
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
