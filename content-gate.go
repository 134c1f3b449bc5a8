package contentgate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/content-gate/content-gate/pagecache"
	contentpath "github.com/content-gate/content-gate/pkg/content-path"
	headerrules "github.com/content-gate/content-gate/pkg/header-rules"
	renderhooks "github.com/content-gate/content-gate/pkg/render-hooks"
	sessionstore "github.com/content-gate/content-gate/pkg/session-store"
	"github.com/content-gate/content-gate/store"

	"github.com/rs/zerolog"
)

// Session keys used by the pipeline.
const (
	SessionKeyRenderMode = "render_mode"
	// SessionKeyReturnTo holds the location to return to after login,
	// set when view permission is denied.
	SessionKeyReturnTo = "return_to"
)

const contentTypeHTML = "text/html; charset=utf-8"

type Config struct {
	// Page lookup service.
	Pages store.PageStore
	// Attachment lookup service.
	Attachments store.AttachmentStore
	// Redirect lookup service.
	Redirects store.RedirectStore
	// Storage for cached renders. Optional; without it every eligible
	// render is produced fresh.
	Cache pagecache.Provider
	// Session-scoped state (render mode, return-to location). Optional.
	Sessions sessionstore.Store
	// Renderer turns resolved pages into response bytes.
	Renderer Renderer
	// Registry of prepare_with pre-render hooks. Optional.
	Hooks *renderhooks.Registry
	// Principal extractor. The anonymous principal is used if nil.
	Principal PrincipalFunc
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// How long cached renders stay fresh. Defaults to one hour.
	CacheTTL time.Duration
	// Paths of the configured error pages. Defaults used for empty fields.
	ErrorPages ErrorPages
	// RawErrorsRequireAuth limits the raw-error escalation to
	// authenticated privileged callers. When false, any privileged
	// caller sees raw errors instead of the friendly error page.
	RawErrorsRequireAuth bool
	// RefreshInterval enables background re-rendering of expiring
	// cached renders. Zero disables the refresh loop.
	RefreshInterval time.Duration
	// HeaderRules are extra response headers applied to rendered pages
	// by content path. Optional.
	HeaderRules headerrules.Rules
	// Metrics to record outcomes with. Optional.
	Metrics *Metrics
}

// ErrorPages maps failure kinds to the content paths of the pages
// rendered in their place.
type ErrorPages struct {
	NotFound     string
	AccessDenied string
	ServerError  string
}

// PathFor returns the error page path for the given fault kind.
func (e ErrorPages) PathFor(kind Kind) string {
	switch kind {
	case KindNotFound:
		return e.NotFound
	case KindAccessDenied:
		return e.AccessDenied
	default:
		return e.ServerError
	}
}

func (e ErrorPages) withDefaults() ErrorPages {
	if e.NotFound == "" {
		e.NotFound = "/system/not_found"
	}
	if e.AccessDenied == "" {
		e.AccessDenied = "/system/access_denied"
	}
	if e.ServerError == "" {
		e.ServerError = "/system/server_error"
	}
	return e
}

// Gate resolves an incoming content path to exactly one outcome:
// a redirect, a streamed file, a rendered page, or an error surface.
// It implements http.Handler.
type Gate struct {
	pages                store.PageStore
	attachments          store.AttachmentStore
	redirects            store.RedirectStore
	cache                pagecache.Provider
	sessions             sessionstore.Store
	renderer             Renderer
	hooks                *renderhooks.Registry
	principal            PrincipalFunc
	log                  zerolog.Logger
	cacheTTL             time.Duration
	errorPages           ErrorPages
	rawErrorsRequireAuth bool
	refreshInterval      time.Duration
	headerRules          headerrules.Rules
	metrics              *Metrics
}

// New initializes the content gate and starts the needed background
// processes.
func New(config Config) *Gate {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	principal := config.Principal
	if principal == nil {
		principal = func(*http.Request) Principal { return Anonymous{} }
	}
	hooks := config.Hooks
	if hooks == nil {
		hooks = renderhooks.NewRegistry()
	}
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	g := &Gate{
		pages:                config.Pages,
		attachments:          config.Attachments,
		redirects:            config.Redirects,
		cache:                config.Cache,
		sessions:             config.Sessions,
		renderer:             config.Renderer,
		hooks:                hooks,
		principal:            principal,
		log:                  logger,
		cacheTTL:             cacheTTL,
		errorPages:           config.ErrorPages.withDefaults(),
		rawErrorsRequireAuth: config.RawErrorsRequireAuth,
		refreshInterval:      config.RefreshInterval,
		headerRules:          config.HeaderRules,
		metrics:              config.Metrics,
	}

	// start a goroutine to refresh expiring renders
	if g.refreshInterval > 0 && g.cache != nil {
		go g.refreshCache()
	}

	return g
}

// ServeHTTP implements the http.Handler interface. Any fault raised by
// a dispatch stage is caught here, exactly once, and handed to error
// recovery.
func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := &RequestContext{
		Path: contentpath.Canonical(contentpath.Segments(r.URL.Path)),
		Mode: ModeView,
	}
	prin := g.principal(r)
	if err := g.dispatch(w, r, rc, prin); err != nil {
		g.recover(w, r, rc, prin, err)
	}
}

// dispatch runs the pipeline stages in order, short-circuiting on the
// first stage that produces a response. Stages only return faults,
// they never recover on their own.
func (g *Gate) dispatch(w http.ResponseWriter, r *http.Request, rc *RequestContext, prin Principal) error {
	if red, ok, err := g.redirects.FindRedirect(rc.Path); err != nil {
		return serverError(err)
	} else if ok {
		http.Redirect(w, r, red.ToPath, http.StatusMovedPermanently)
		g.metrics.Outcome("redirect")
		g.logRequest(r, rc, "redirect", http.StatusMovedPermanently)
		return nil
	}

	if done, err := g.streamAttachment(w, r, rc, prin); err != nil || done {
		return err
	}

	if err := g.resolvePage(r, rc, prin); err != nil {
		return err
	}

	g.resolveMode(r, rc, prin)
	rc.CacheEligible = g.cacheEligible(r, rc, prin)

	params := r.URL.Query()
	if err := g.hooks.Invoke(r.Context(), renderhooks.KeyFromParams(params), params); err != nil {
		return serverError(fmt.Errorf("prepare hook: %w", err))
	}

	return g.respond(w, r, rc)
}

// streamAttachment intercepts paths whose last segment names a file.
// It reports true if it wrote the response. A missing file is not an
// error: the file may be materialized lazily by an external layer, so
// the request falls through to page resolution.
func (g *Gate) streamAttachment(w http.ResponseWriter, r *http.Request, rc *RequestContext, prin Principal) (bool, error) {
	if !contentpath.HasExtension(rc.Path) {
		return false, nil
	}
	att, ok, err := g.attachments.FindLiveAttachment(rc.Path)
	if err != nil {
		return false, serverError(err)
	}
	if !ok {
		return false, nil
	}
	if !prin.AbleToView(att) {
		return false, accessDenied(rc.Path)
	}
	if rc.Path == "/" {
		return false, nil
	}
	if _, err := os.Stat(att.FileLocation); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, serverError(err)
	}
	// the file may vanish between check and open; that gap is a
	// server error, not a fall-through
	f, err := os.Open(att.FileLocation)
	if err != nil {
		return false, serverError(err)
	}
	defer f.Close()

	rc.Attachment = &att
	w.Header().Set("Content-Type", att.FileType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", att.FileName))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		// response is already committed, recovery is no longer possible
		g.log.Error().Err(err).Str("path", rc.Path).Msg("Could not stream attachment to client")
	}
	g.metrics.Outcome("stream")
	g.logRequest(r, rc, "stream", http.StatusOK)
	return true, nil
}

// resolvePage resolves the target page and enforces visibility.
// Privileged callers see pages regardless of lifecycle state; everyone
// else only sees live, non-archived pages.
func (g *Gate) resolvePage(r *http.Request, rc *RequestContext, prin Principal) error {
	var (
		page store.Page
		ok   bool
		err  error
	)
	if prin.Able(CapEditContent, CapPublishContent) {
		page, ok, err = g.pages.FindPage(rc.Path)
	} else {
		page, ok, err = g.pages.FindLivePage(rc.Path)
	}
	if err != nil {
		return serverError(err)
	}
	if !ok {
		return notFound(rc.Path)
	}
	rc.Page = &page
	if !prin.AbleToView(page) {
		// remember where the caller wanted to go, for after login
		if sid := sessionstore.ID(r.Context()); sid != "" && g.sessions != nil {
			g.sessions.Set(sid, SessionKeyReturnTo, rc.Path)
		}
		return accessDenied(rc.Path)
	}
	return nil
}

// resolveMode determines the render mode and persists it in the
// session, so subsequent requests default to the last chosen mode.
// Callers without the edit toolbar are always in view mode.
func (g *Gate) resolveMode(r *http.Request, rc *RequestContext, prin Principal) {
	rc.ShowToolbar = prin.Authenticated() && prin.Able(CapEditContent)
	if !rc.ShowToolbar || !prin.Able(CapEditContent) {
		rc.Mode = ModeView
		return
	}
	sid := sessionstore.ID(r.Context())
	mode := ParseRenderMode(r.URL.Query().Get("mode"))
	if mode == "" && g.sessions != nil && sid != "" {
		if prev, ok := g.sessions.Get(sid, SessionKeyRenderMode); ok {
			mode = ParseRenderMode(prev)
		}
	}
	if mode == "" {
		mode = ModeEdit
	}
	rc.Mode = mode
	if g.sessions != nil && sid != "" {
		g.sessions.Set(sid, SessionKeyRenderMode, string(mode))
	}
}

// cacheEligible decides whether the current render may be persisted by
// the render cache. Editors always see live, uncached content, and
// non-cacheable pages are never written to cache.
func (g *Gate) cacheEligible(r *http.Request, rc *RequestContext, prin Principal) bool {
	if prin.Authenticated() && prin.Able(CapEditContent, CapPublishContent) {
		return false
	}
	if !rc.Page.Cacheable {
		return false
	}
	if r.URL.Query().Get("cms_cache") == "false" {
		return false
	}
	return true
}

// respond serves the resolved page, from the render cache when the
// caching decision allows it, otherwise by rendering fresh. Ineligible
// renders are never handed to the cache.
func (g *Gate) respond(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	cs := pagecache.CacheStatus{}
	if !rc.CacheEligible || g.cache == nil {
		cs.Forward(pagecache.FwdReasonBypass)
	} else if entry, ok, err := g.cache.Get(rc.Path); err != nil {
		g.log.Error().Err(err).Str("path", rc.Path).Msg("Could not retrieve from render cache")
		cs.Forward(pagecache.FwdReasonUriMiss)
	} else if ok {
		cs.Hit()
		g.metrics.CacheHit()
		g.sendRendered(w, rc.Path, entry.ContentType, entry.Bytes, http.StatusOK, &cs)
		g.logRequest(r, rc, "render", http.StatusOK)
		return nil
	} else {
		cs.Forward(pagecache.FwdReasonUriMiss)
	}

	body, err := g.renderer.Render(r.Context(), rc)
	if err != nil {
		return serverError(err)
	}

	if rc.CacheEligible && g.cache != nil {
		now := time.Now()
		entry := pagecache.Entry{
			Path:        rc.Path,
			ContentType: contentTypeHTML,
			Expires:     now.Add(g.cacheTTL),
			RenderedAt:  now,
			Bytes:       body,
		}
		g.log.Trace().Str("path", rc.Path).Time("expires", entry.Expires).Msg("Writing render to cache")
		if err := g.cache.Put(entry); err != nil {
			g.log.Error().Err(err).Str("path", rc.Path).Msg("Could not write render to cache")
		} else {
			cs.Stored()
		}
	}

	g.sendRendered(w, rc.Path, contentTypeHTML, body, http.StatusOK, &cs)
	g.metrics.Outcome("render")
	g.logRequest(r, rc, "render", http.StatusOK)
	return nil
}

func (g *Gate) sendRendered(w http.ResponseWriter, path, contentType string, body []byte, status int, cs *pagecache.CacheStatus) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if cs != nil {
		w.Header().Add("Cache-Status", cs.String())
	}
	g.headerRules.Apply(path, status, w.Header())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		g.log.Error().Err(err).Msg("Could not write response body to client")
	}
}

func (g *Gate) logRequest(r *http.Request, rc *RequestContext, outcome string, status int) {
	g.log.Debug().
		Str("method", r.Method).
		Str("path", rc.Path).
		Str("sourceIp", getRequestSourceIp(r)).
		Str("outcome", outcome).
		Int("status", status).
		Str("mode", string(rc.Mode)).
		Bool("cacheable", rc.CacheEligible).
		Msg("Sending response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	ip := ipAndPort[:portSepIdx]
	return ip
}
