// Package sessionstore holds per-session key/value state that has to
// survive across requests, such as the last chosen render mode and the
// return-to location set on access denial.
//
// A session is expected to be driven by one client at a time; reads and
// writes are not atomic with respect to each other, so concurrent tabs
// from the same session race benignly (last writer wins).
package sessionstore

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// Store is the session-scoped key/value interface injected into the
// request pipeline.
type Store interface {
	// Get returns the value for the given key in the given session.
	Get(sessionID, key string) (string, bool)
	// Set stores the value for the given key in the given session.
	Set(sessionID, key, value string)
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]string),
	}
}

func (m *MemoryStore) Get(sessionID, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.sessions[sessionID][key]
	return value, ok
}

func (m *MemoryStore) Set(sessionID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		session = make(map[string]string)
		m.sessions[sessionID] = session
	}
	session[key] = value
}

// CookieName is the cookie carrying the session ID.
const CookieName = "cg_session"

type ctxKey struct{}

// ID returns the session ID attached to the context by Middleware,
// or "" if the request passed through no session middleware.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithID returns a context carrying the given session ID.
// Mainly useful in tests.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware attaches a session ID to each request, issuing a new
// cookie if the client did not present one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
			id = cookie.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}
