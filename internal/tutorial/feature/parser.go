package feature

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var stepKeywords = []Keyword{Given, When, Then, And}

// Parse parses fileContents with the strict grammar: exactly one `Feature:`
// header, optional free-text description, an optional `Background:` block and
// any number of `Scenario:` blocks. Unknown non-blank lines, steps outside a
// block, or a scenario before the feature header are errors.
func Parse(src string) (*Feature, error) {
	f := &Feature{}
	var desc []string
	var current *Scenario
	inBackground := false
	lineNo := 0

	scanner := bufio.NewScanner(strings.NewReader(src))
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Feature:"):
			if f.Title != "" {
				return nil, fmt.Errorf("line %d: duplicate Feature header", lineNo)
			}
			f.Title = strings.TrimSpace(strings.TrimPrefix(line, "Feature:"))
			if f.Title == "" {
				return nil, fmt.Errorf("line %d: empty Feature title", lineNo)
			}

		case strings.HasPrefix(line, "Background:"):
			if f.Title == "" {
				return nil, fmt.Errorf("line %d: Background before Feature", lineNo)
			}
			if inBackground || len(f.BackgroundSteps) > 0 {
				return nil, fmt.Errorf("line %d: duplicate Background block", lineNo)
			}
			inBackground = true
			current = nil

		case strings.HasPrefix(line, "Scenario:"):
			if f.Title == "" {
				return nil, fmt.Errorf("line %d: Scenario before Feature", lineNo)
			}
			f.Scenarios = append(f.Scenarios, Scenario{
				Title: strings.TrimSpace(strings.TrimPrefix(line, "Scenario:")),
			})
			current = &f.Scenarios[len(f.Scenarios)-1]
			inBackground = false

		default:
			if kw, text, ok := splitStep(line); ok {
				switch {
				case inBackground:
					f.BackgroundSteps = append(f.BackgroundSteps, newStep(kw, text))
				case current != nil:
					current.Steps = append(current.Steps, newStep(kw, text))
				default:
					return nil, fmt.Errorf("line %d: step outside Background or Scenario", lineNo)
				}
				continue
			}
			// Free text is only legal as feature description, before any block.
			if f.Title != "" && current == nil && !inBackground && len(f.BackgroundSteps) == 0 {
				desc = append(desc, line)
				continue
			}
			return nil, fmt.Errorf("line %d: unrecognized line %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if f.Title == "" {
		return nil, errors.New("no Feature header found")
	}
	f.Description = strings.Join(desc, "\n")
	return f, nil
}

// ParseLenient is the permissive fallback scanner. It recognizes the same
// four leading keywords by line-anchored prefix match, ignores anything it
// does not understand, and never returns an error. Malformed files degrade
// instead of aborting the batch.
func ParseLenient(src string) *Feature {
	f := &Feature{}
	var desc []string
	var current *Scenario
	inBackground := false
	seenBlock := false

	scanner := bufio.NewScanner(strings.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Feature:"):
			if f.Title == "" {
				f.Title = strings.TrimSpace(strings.TrimPrefix(line, "Feature:"))
			}
		case strings.HasPrefix(line, "Background:"):
			inBackground = true
			seenBlock = true
			current = nil
		case strings.HasPrefix(line, "Scenario:"):
			f.Scenarios = append(f.Scenarios, Scenario{
				Title: strings.TrimSpace(strings.TrimPrefix(line, "Scenario:")),
			})
			current = &f.Scenarios[len(f.Scenarios)-1]
			inBackground = false
			seenBlock = true
		default:
			if kw, text, ok := splitStep(line); ok {
				switch {
				case inBackground:
					f.BackgroundSteps = append(f.BackgroundSteps, newStep(kw, text))
				case current != nil:
					current.Steps = append(current.Steps, newStep(kw, text))
				}
				continue
			}
			if f.Title != "" && !seenBlock {
				desc = append(desc, line)
			}
		}
	}
	f.Description = strings.Join(desc, "\n")
	return f
}

// ParseContents parses src, preferring strict and falling back to the
// lenient scanner when strict parsing fails or yields no feature title.
// Both strategies produce the same shape; a single corrupt file must not
// block unrelated features.
func ParseContents(id, src string) *Feature {
	f, err := Parse(src)
	if err != nil || f.Title == "" {
		if err != nil {
			logrus.WithError(err).WithField("feature", id).
				Debug("strict parse failed, using lenient scanner")
		}
		f = ParseLenient(src)
	}
	f.ID = id
	return f
}

func splitStep(line string) (Keyword, string, bool) {
	for _, kw := range stepKeywords {
		prefix := string(kw) + " "
		if strings.HasPrefix(line, prefix) {
			text := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			if text != "" {
				return kw, text, true
			}
		}
	}
	return "", "", false
}
