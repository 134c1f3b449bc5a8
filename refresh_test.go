package contentgate

import (
	"testing"
	"time"

	"github.com/content-gate/content-gate/pagecache"
	"github.com/content-gate/content-gate/store"
)

func TestRefreshEntryReRenders(t *testing.T) {
	st := store.NewMemoryStore()
	st.SavePage(store.Page{Path: "/page", Cacheable: true, State: store.PageStateLive})
	var renders int
	config := testConfig(st, &renders)
	cache := pagecache.NewMemCache()
	config.Cache = cache
	gate := New(config)

	cache.Put(pagecache.Entry{Path: "/page", Expires: time.Now().Add(time.Minute)})
	gate.refreshEntry("/page")

	if renders != 1 {
		t.Fatalf("Renderer called %d times", renders)
	}
	entry, ok, _ := cache.Get("/page")
	if !ok {
		t.Fatal("Refreshed entry missing")
	}
	if len(entry.Bytes) == 0 {
		t.Fatal("Refreshed entry has no body")
	}
	if time.Until(entry.Expires) < 30*time.Minute {
		t.Fatalf("Refreshed expiry is too soon: %v", entry.Expires)
	}
}

func TestRefreshEntryPurgesGonePage(t *testing.T) {
	st := store.NewMemoryStore()
	var renders int
	config := testConfig(st, &renders)
	cache := pagecache.NewMemCache()
	config.Cache = cache
	gate := New(config)

	cache.Put(pagecache.Entry{Path: "/gone", Expires: time.Now().Add(time.Minute)})
	gate.refreshEntry("/gone")

	if cache.Has("/gone") {
		t.Fatal("Entry for a gone page was kept")
	}
	if renders != 0 {
		t.Fatalf("Renderer called %d times", renders)
	}
}

func TestRefreshEntryPurgesNonCacheable(t *testing.T) {
	st := store.NewMemoryStore()
	st.SavePage(store.Page{Path: "/page", Cacheable: false, State: store.PageStateLive})
	var renders int
	config := testConfig(st, &renders)
	cache := pagecache.NewMemCache()
	config.Cache = cache
	gate := New(config)

	cache.Put(pagecache.Entry{Path: "/page", Expires: time.Now().Add(time.Minute)})
	gate.refreshEntry("/page")

	if cache.Has("/page") {
		t.Fatal("Entry for a non-cacheable page was kept")
	}
}
