package contentgate

import (
	"fmt"
	"net/http"
)

// recover is the single recovery point for faults raised anywhere in
// the dispatch chain. It substitutes the configured error page for the
// failure when one exists, and falls back to a raw error surface
// otherwise. Privileged callers get the raw error directly, so content
// authors can debug their own pages.
func (g *Gate) recover(w http.ResponseWriter, r *http.Request, rc *RequestContext, prin Principal, cause error) {
	kind := KindOf(cause)
	status := kind.Status()
	g.log.Warn().
		Err(cause).
		Str("path", rc.Path).
		Str("kind", string(kind)).
		Msg("Recovering from failed dispatch")

	privileged := prin.Able(CapEditContent, CapPublishContent, CapAdministrate)
	raw := privileged
	if g.rawErrorsRequireAuth {
		raw = privileged && prin.Authenticated()
	}
	if raw {
		g.sendRawError(w, r, rc, status, cause)
		return
	}

	page, ok, err := g.pages.FindLivePage(g.errorPages.PathFor(kind))
	if err != nil {
		g.log.Error().Err(err).Msg("Could not look up error page")
	}
	if err != nil || !ok {
		g.sendRawError(w, r, rc, status, cause)
		return
	}

	// the error page renders in plain view mode, with no toolbar and
	// without the fragments of the failed attempt
	rc.Page = &page
	rc.Attachment = nil
	rc.Mode = ModeView
	rc.ShowToolbar = false
	rc.CacheEligible = false
	rc.ResetFragments()

	body, err := g.renderer.Render(r.Context(), rc)
	if err != nil {
		g.log.Error().Err(err).Str("path", page.Path).Msg("Could not render error page")
		g.sendRawError(w, r, rc, status, cause)
		return
	}
	g.sendRendered(w, rc.Path, contentTypeHTML, body, status, nil)
	g.metrics.Outcome("error_page")
	g.logRequest(r, rc, "error_page", status)
}

// sendRawError writes the terminal raw error surface: status plus
// diagnostic detail, no markup.
func (g *Gate) sendRawError(w http.ResponseWriter, r *http.Request, rc *RequestContext, status int, cause error) {
	http.Error(w, fmt.Sprintf("%d %s: %v", status, http.StatusText(status), cause), status)
	g.metrics.Outcome("raw_error")
	g.logRequest(r, rc, "raw_error", status)
}
