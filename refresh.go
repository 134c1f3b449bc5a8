package contentgate

import (
	"context"
	"time"

	"github.com/content-gate/content-gate/pagecache"
)

// refreshCache runs an infinite loop to refresh the render cache,
// one entry at a time.
// It will query the cache for renders expiring within the refresh
// interval. If it finds one, it re-renders the live page at that path.
// If it does not find any, it will sleep for the duration of the
// refresh interval.
func (g *Gate) refreshCache() {
	g.log.Info().Msgf("Starting render refresh loop with interval %s", g.refreshInterval)
	for {
		path, expiry, err := g.cache.Oldest()
		// if error, try again after the interval
		if err != nil {
			g.log.Error().Err(err).Msg("Could not get oldest render")
			time.Sleep(g.refreshInterval)
			continue
		}
		if path != "" && time.Until(expiry) <= g.refreshInterval {
			g.refreshEntry(path)
		} else {
			g.log.Trace().Msg("No renders expiring, pausing refresh")
			time.Sleep(g.refreshInterval)
		}
	}
}

// refreshEntry re-renders the live page at the given path with an
// anonymous view context and stores the result. If the page is gone,
// no longer cacheable, or fails to render, the entry is purged.
func (g *Gate) refreshEntry(path string) {
	page, ok, err := g.pages.FindLivePage(path)
	if err != nil {
		g.log.Error().Err(err).Str("path", path).Msg("Could not look up page for refresh")
		g.cache.Purge(path)
		return
	}
	if !ok || !page.Cacheable {
		g.cache.Purge(path)
		return
	}

	g.log.Trace().Str("path", path).Msg("Refreshing cached render")
	rc := &RequestContext{Path: path, Page: &page, Mode: ModeView}
	body, err := g.renderer.Render(context.Background(), rc)
	if err != nil {
		g.log.Error().Err(err).Str("path", path).Msg("Could not refresh render")
		g.cache.Purge(path)
		return
	}

	now := time.Now()
	err = g.cache.Put(pagecache.Entry{
		Path:        path,
		ContentType: contentTypeHTML,
		Expires:     now.Add(g.cacheTTL),
		RenderedAt:  now,
		Bytes:       body,
	})
	if err != nil {
		g.log.Error().Err(err).Str("path", path).Msg("Could not store refreshed render")
		g.cache.Purge(path)
	}
}
