package narration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Translations holds the caller-supplied spoken text per language: a flat
// map from the canonical narration text to the translated line. The pipeline
// never translates anything itself.
type Translations struct {
	language string
	lines    map[string]string
}

// LoadTranslations reads <dir>/<lang>.yaml. A missing file is not an error:
// every lookup then falls back to the canonical text, which is the normal
// case for the authoring language.
func LoadTranslations(dir, lang string) (*Translations, error) {
	t := &Translations{language: lang, lines: map[string]string{}}

	path := filepath.Join(dir, lang+".yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logrus.WithField("language", lang).Debug("no translation file, speaking canonical text")
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading translations for %s: %w", lang, err)
	}
	if err := yaml.Unmarshal(data, &t.lines); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// Resolve returns the spoken text for one canonical narration line.
func (t *Translations) Resolve(text string) string {
	if translated, ok := t.lines[text]; ok && translated != "" {
		return translated
	}
	return text
}

// Language returns the language code the table was loaded for.
func (t *Translations) Language() string {
	return t.language
}
