package feature

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Discover loads every *.feature file under dir, parses each, and returns
// them sorted by ID. When names is non-empty only those base names (with or
// without the .feature extension) are loaded; an unknown name is an error
// because the caller asked for it explicitly.
//
// Empty files parse to a feature with zero scenarios; exclusion of those and
// of narration-free features is the orchestrator's job, not the parser's.
func Discover(dir string, names []string) ([]*Feature, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading feature directory %s: %w", dir, err)
	}

	wanted := map[string]bool{}
	for _, n := range names {
		wanted[strings.TrimSuffix(strings.TrimSpace(n), ".feature")] = false
	}

	var features []*Feature
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".feature") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".feature")
		if len(wanted) > 0 {
			if _, ok := wanted[id]; !ok {
				continue
			}
			wanted[id] = true
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		f := ParseContents(id, string(data))
		logrus.WithFields(logrus.Fields{
			"feature":   id,
			"scenarios": len(f.Scenarios),
		}).Debug("parsed feature file")
		features = append(features, f)
	}

	for name, found := range wanted {
		if !found {
			return nil, fmt.Errorf("feature %q not found in %s", name, dir)
		}
	}

	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })
	return features, nil
}
