package sessionstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get("s1", "key"); ok {
		t.Fatal("Empty store returned a value")
	}

	store.Set("s1", "key", "value")
	if got, ok := store.Get("s1", "key"); !ok || got != "value" {
		t.Fatalf("Get returned %q, %v", got, ok)
	}

	// sessions are isolated
	if _, ok := store.Get("s2", "key"); ok {
		t.Fatal("Other session saw the value")
	}

	store.Set("s1", "key", "updated")
	if got, _ := store.Get("s1", "key"); got != "updated" {
		t.Fatalf("Get returned %q", got)
	}
}

func TestMiddlewareIssuesCookie(t *testing.T) {
	var seenID string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = ID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if seenID == "" {
		t.Fatal("No session ID attached to context")
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("Cookies are %v", cookies)
	}
	if cookies[0].Value != seenID {
		t.Fatalf("Cookie value %q does not match context ID %q", cookies[0].Value, seenID)
	}
}

func TestMiddlewareKeepsExistingCookie(t *testing.T) {
	var seenID string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = ID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "existing"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seenID != "existing" {
		t.Fatalf("Context ID is %q", seenID)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("A new cookie was issued despite the existing one")
	}
}

func TestIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := ID(req.Context()); got != "" {
		t.Fatalf("ID is %q", got)
	}
}
