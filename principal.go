package contentgate

import (
	"net/http"

	"github.com/content-gate/content-gate/store"
)

// Capabilities understood by the pipeline.
const (
	CapEditContent    = "edit_content"
	CapPublishContent = "publish_content"
	CapAdministrate   = "administrate"
)

// Principal is the current caller. It is supplied externally per
// request and never mutated by the pipeline.
type Principal interface {
	// Authenticated reports whether the caller is logged in.
	Authenticated() bool
	// Able reports whether the caller holds at least one of the given
	// capabilities.
	Able(capabilities ...string) bool
	// AbleToView reports whether the caller may view the given entity
	// (a store.Page or store.Attachment).
	AbleToView(entity any) bool
}

// PrincipalFunc extracts the Principal for a request.
type PrincipalFunc func(*http.Request) Principal

// Anonymous is the unauthenticated caller: no capabilities, but public
// content is viewable. Entities only reach AbleToView after the live
// lookup has filtered them, so viewing defaults to allowed.
type Anonymous struct{}

func (Anonymous) Authenticated() bool { return false }
func (Anonymous) Able(...string) bool { return false }
func (Anonymous) AbleToView(any) bool { return true }

// StaticPrincipal is a fixed-capability Principal, used by the command
// line frontend and by tests.
type StaticPrincipal struct {
	Name         string
	LoggedIn     bool
	Capabilities []string
	// DeniedPaths lists entity paths this principal may not view.
	DeniedPaths []string
}

func (p StaticPrincipal) Authenticated() bool {
	return p.LoggedIn
}

func (p StaticPrincipal) Able(capabilities ...string) bool {
	for _, want := range capabilities {
		for _, have := range p.Capabilities {
			if want == have {
				return true
			}
		}
	}
	return false
}

func (p StaticPrincipal) AbleToView(entity any) bool {
	path := entityPath(entity)
	for _, denied := range p.DeniedPaths {
		if path == denied {
			return false
		}
	}
	return true
}

func entityPath(entity any) string {
	switch e := entity.(type) {
	case store.Page:
		return e.Path
	case *store.Page:
		return e.Path
	case store.Attachment:
		return e.Path
	case *store.Attachment:
		return e.Path
	}
	return ""
}
