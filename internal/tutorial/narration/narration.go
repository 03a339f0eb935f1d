// Package narration extracts the spoken lines of a feature and resolves the
// per-language text to synthesize.
package narration

import (
	"fmt"

	"tutorialcast/internal/tutorial/feature"
)

// Entry is one narration line of one feature, language-independent. Index is
// the position among the feature's narration steps, in step order.
type Entry struct {
	ID        string
	FeatureID string
	Index     int
	Text      string
}

// Extract walks background steps then every scenario's steps, keeping
// narration steps in original order. An empty result means the feature is
// not eligible for tutorial generation.
func Extract(f *feature.Feature) []Entry {
	var entries []Entry
	for _, s := range f.AllSteps() {
		if !s.IsNarration {
			continue
		}
		i := len(entries)
		entries = append(entries, Entry{
			ID:        fmt.Sprintf("%s-%03d", f.ID, i),
			FeatureID: f.ID,
			Index:     i,
			Text:      s.NarrationText(),
		})
	}
	return entries
}
