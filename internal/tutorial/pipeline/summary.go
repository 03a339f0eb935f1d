package pipeline

import (
	"fmt"

	"tutorialcast/internal/cli/scheme/colours"
)

// Print writes the human-readable end-of-run report.
func (s *Summary) Print() {
	fmt.Println()
	colours.Title.Println("Tutorial generation summary")
	colours.Info.Printf("  features processed: %d\n", len(s.Features))
	colours.Info.Printf("  audio clips:        %d/%d succeeded\n", s.ClipsOK, s.Clips)
	colours.Info.Printf("  recordings:         %d\n", s.Recordings)
	colours.Info.Printf("  videos published:   %d\n", len(s.Artifacts))

	if len(s.Errors) == 0 {
		colours.Success.Println("  no errors")
		return
	}
	colours.Error.Printf("  %d error(s):\n", len(s.Errors))
	for _, e := range s.Errors {
		colours.Warning.Printf("    %s\n", e.String())
	}
}
