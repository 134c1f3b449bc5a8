// Package pagerenderer is the default rendering collaborator for the
// content gate: page markdown content converted with goldmark and
// wrapped in a named HTML layout.
package pagerenderer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	contentgate "github.com/content-gate/content-gate"

	"github.com/yuin/goldmark"
)

// DefaultLayout is used by pages with no layout identifier.
const DefaultLayout = "default"

const defaultLayoutSource = `<!DOCTYPE html>
<html>
<head><title>{{.Name}}</title></head>
<body data-layout="{{.Layout}}">
{{if .Toolbar}}<div class="cg-toolbar">editing {{.Path}} ({{.Mode}})</div>
{{end}}{{.Content}}</body>
</html>
`

// LayoutRenderer renders a resolved page's markdown body inside its
// layout. Layouts are registered by identifier at construction time.
type LayoutRenderer struct {
	layouts map[string]*template.Template
	md      goldmark.Markdown
}

// New creates a LayoutRenderer from layout template sources keyed by
// identifier. A built-in default layout is added if none is given.
func New(layouts map[string]string) (*LayoutRenderer, error) {
	sources := make(map[string]string, len(layouts)+1)
	for name, src := range layouts {
		sources[name] = src
	}
	if _, ok := sources[DefaultLayout]; !ok {
		sources[DefaultLayout] = defaultLayoutSource
	}

	compiled := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		tmpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("layout %q: %w", name, err)
		}
		compiled[name] = tmpl
	}
	return &LayoutRenderer{
		layouts: compiled,
		md:      goldmark.New(),
	}, nil
}

type layoutData struct {
	Name    string
	Path    string
	Layout  string
	Mode    string
	Toolbar bool
	Content template.HTML
}

func (lr *LayoutRenderer) Render(ctx context.Context, rc *contentgate.RequestContext) ([]byte, error) {
	if rc.Page == nil {
		return nil, fmt.Errorf("no page resolved for %s", rc.Path)
	}
	name := rc.Page.Layout
	if name == "" {
		name = DefaultLayout
	}
	tmpl, ok := lr.layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q", name)
	}

	var content bytes.Buffer
	if err := lr.md.Convert([]byte(rc.Page.Content), &content); err != nil {
		return nil, err
	}
	// fragments accumulate as they are produced, so a failure further
	// down leaves them on the request context
	rc.AddFragment("content")

	var out bytes.Buffer
	err := tmpl.Execute(&out, layoutData{
		Name:    rc.Page.Name,
		Path:    rc.Path,
		Layout:  name,
		Mode:    string(rc.Mode),
		Toolbar: rc.ShowToolbar,
		Content: template.HTML(content.String()),
	})
	if err != nil {
		return nil, err
	}
	rc.AddFragment("layout:" + name)
	return out.Bytes(), nil
}
