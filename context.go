package contentgate

import (
	"context"

	"github.com/content-gate/content-gate/store"
)

// RenderMode selects how a page is rendered.
type RenderMode string

const (
	ModeView RenderMode = "view"
	ModeEdit RenderMode = "edit"
)

// ParseRenderMode returns the mode named by s, or "" if s names no
// known mode.
func ParseRenderMode(s string) RenderMode {
	switch RenderMode(s) {
	case ModeView, ModeEdit:
		return RenderMode(s)
	}
	return ""
}

// RequestContext is the per-request render state. It is created at
// request start, handed to the renderer, and discarded at request end;
// it is never shared across requests.
type RequestContext struct {
	// Path is the canonical content path.
	Path string
	// Page is the resolved target page, if any.
	Page *store.Page
	// Attachment is the resolved attachment, if any.
	// At most one of Page and Attachment is set.
	Attachment *store.Attachment
	// Mode is the render mode for this request.
	Mode RenderMode
	// ShowToolbar enables the editing toolbar overlay.
	ShowToolbar bool
	// CacheEligible reports whether the render may be persisted by the
	// render cache.
	CacheEligible bool
	// Fragments accumulates named render fragments as the renderer
	// works through the page.
	Fragments []string
}

// AddFragment records a render fragment produced for this request.
func (rc *RequestContext) AddFragment(name string) {
	rc.Fragments = append(rc.Fragments, name)
}

// ResetFragments discards partially accumulated render fragments.
// It is invoked only on the error recovery path, so that an error
// page's fragments do not mix with those of the failed render.
func (rc *RequestContext) ResetFragments() {
	rc.Fragments = nil
}

// Renderer turns a resolved page into response bytes. The concrete
// layout/templating engine is an external collaborator; a default
// implementation lives in pkg/page-renderer.
type Renderer interface {
	Render(ctx context.Context, rc *RequestContext) ([]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, rc *RequestContext) ([]byte, error)

func (f RendererFunc) Render(ctx context.Context, rc *RequestContext) ([]byte, error) {
	return f(ctx, rc)
}
