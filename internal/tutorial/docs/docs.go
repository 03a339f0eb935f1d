// Package docs writes the Markdown pages that cross-link the generated
// tutorial videos.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"tutorialcast/internal/tutorial/feature"
	"tutorialcast/internal/tutorial/media"
)

var pageTmpl = template.Must(template.New("page").Parse(`# {{.Title}}

{{if .Description}}{{.Description}}

{{end}}## Videos

{{range .Artifacts}}- [{{.Language}}]({{.VideoFile}})
{{end}}
## Scenarios

{{range .Scenarios}}- {{.Title}}
{{end}}
---
{{if .Prev}}Previous: [{{.Prev.Title}}]({{.Prev.ID}}.md){{end}}{{if and .Prev .Next}} | {{end}}{{if .Next}}Next: [{{.Next.Title}}]({{.Next.ID}}.md){{end}}
`))

var indexTmpl = template.Must(template.New("index").Parse(`# Tutorials

Languages: {{range $i, $l := .Languages}}{{if $i}}, {{end}}{{$l}}{{end}}

{{range .Features}}- [{{.Title}}]({{.ID}}.md)
{{end}}`))

type link struct {
	ID    string
	Title string
}

type artifactView struct {
	Language  string
	VideoFile string
}

// Emitter writes one page per feature plus an index.
type Emitter struct {
	outDir string
}

func NewEmitter(outDir string) *Emitter {
	return &Emitter{outDir: outDir}
}

// Emit writes the documentation for every feature that produced artifacts.
// Features are chained in order: each page links to its neighbours.
func (e *Emitter) Emit(features []*feature.Feature, artifacts []media.Artifact, languages []string) error {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return fmt.Errorf("creating docs directory: %w", err)
	}

	byFeature := map[string][]artifactView{}
	for _, a := range artifacts {
		byFeature[a.FeatureID] = append(byFeature[a.FeatureID], artifactView{
			Language:  a.Language,
			VideoFile: filepath.Base(a.VideoPath),
		})
	}

	for i, f := range features {
		data := struct {
			Title       string
			Description string
			Artifacts   []artifactView
			Scenarios   []feature.Scenario
			Prev, Next  *link
		}{
			Title:       f.Title,
			Description: f.Description,
			Artifacts:   byFeature[f.ID],
			Scenarios:   f.Scenarios,
		}
		if i > 0 {
			data.Prev = &link{ID: features[i-1].ID, Title: features[i-1].Title}
		}
		if i < len(features)-1 {
			data.Next = &link{ID: features[i+1].ID, Title: features[i+1].Title}
		}

		if err := e.writeTemplate(f.ID+".md", pageTmpl, data); err != nil {
			return err
		}
	}

	indexData := struct {
		Languages []string
		Features  []link
	}{Languages: languages}
	for _, f := range features {
		indexData.Features = append(indexData.Features, link{ID: f.ID, Title: f.Title})
	}
	return e.writeTemplate("index.md", indexTmpl, indexData)
}

func (e *Emitter) writeTemplate(name string, tmpl *template.Template, data any) error {
	f, err := os.Create(filepath.Join(e.outDir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}
