package pagerenderer

import (
	"context"
	"testing"

	contentgate "github.com/content-gate/content-gate"
	"github.com/content-gate/content-gate/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDefaultLayout(t *testing.T) {
	renderer, err := New(nil)
	require.NoError(t, err)

	rc := &contentgate.RequestContext{
		Path: "/blog/post",
		Mode: contentgate.ModeView,
		Page: &store.Page{
			Path:    "/blog/post",
			Name:    "Post",
			Content: "# Heading\n\nSome *emphasis*.",
		},
	}
	out, err := renderer.Render(context.Background(), rc)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Post</title>")
	assert.Contains(t, html, `data-layout="default"`)
	assert.Contains(t, html, "<h1>Heading</h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.NotContains(t, html, "cg-toolbar")
	assert.Equal(t, []string{"content", "layout:default"}, rc.Fragments)
}

func TestRenderCustomLayout(t *testing.T) {
	renderer, err := New(map[string]string{
		"minimal": `<main>{{.Content}}</main>`,
	})
	require.NoError(t, err)

	rc := &contentgate.RequestContext{
		Path: "/page",
		Page: &store.Page{Path: "/page", Layout: "minimal", Content: "body"},
	}
	out, err := renderer.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<main><p>body</p>")
	assert.Equal(t, []string{"content", "layout:minimal"}, rc.Fragments)
}

func TestRenderToolbar(t *testing.T) {
	renderer, err := New(nil)
	require.NoError(t, err)

	rc := &contentgate.RequestContext{
		Path:        "/page",
		Mode:        contentgate.ModeEdit,
		ShowToolbar: true,
		Page:        &store.Page{Path: "/page", Name: "Page"},
	}
	out, err := renderer.Render(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "cg-toolbar")
	assert.Contains(t, string(out), "(edit)")
}

func TestRenderUnknownLayout(t *testing.T) {
	renderer, err := New(nil)
	require.NoError(t, err)

	rc := &contentgate.RequestContext{
		Path: "/page",
		Page: &store.Page{Path: "/page", Layout: "ghost"},
	}
	_, err = renderer.Render(context.Background(), rc)
	assert.ErrorContains(t, err, `unknown layout "ghost"`)
}

func TestRenderNilPage(t *testing.T) {
	renderer, err := New(nil)
	require.NoError(t, err)

	_, err = renderer.Render(context.Background(), &contentgate.RequestContext{Path: "/page"})
	assert.Error(t, err)
}

func TestNewRejectsBadTemplate(t *testing.T) {
	_, err := New(map[string]string{"broken": `{{.Content`})
	assert.ErrorContains(t, err, `layout "broken"`)
}
