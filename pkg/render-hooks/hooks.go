// Package renderhooks is a registry of pre-render customization hooks.
// A request may name a hook through its prepare_with parameters; the
// hook is looked up by a stable string key and invoked with the full
// parameter set before rendering. Unknown keys are a no-op, never an
// error.
package renderhooks

import (
	"context"
	"net/url"
	"sync"
)

// Hook is a pre-render customization point. It receives the full
// request parameter set and may return an error to abort the render.
type Hook func(ctx context.Context, params url.Values) error

// Key builds the registry key named by prepare_with parameters.
func Key(contentType, method string) string {
	if contentType == "" && method == "" {
		return ""
	}
	return contentType + "#" + method
}

// KeyFromParams extracts the hook key from request parameters
// (prepare_with[content_type] and prepare_with[method]).
func KeyFromParams(params url.Values) string {
	return Key(
		params.Get("prepare_with[content_type]"),
		params.Get("prepare_with[method]"),
	)
}

// Registry maps hook keys to registered hooks.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[string]Hook),
	}
}

// Register adds a hook under the given key, replacing any previous one.
func (r *Registry) Register(key string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[key] = hook
}

// Invoke runs the hook registered under the given key.
// An empty or unregistered key is a no-op.
func (r *Registry) Invoke(ctx context.Context, key string, params url.Values) error {
	if key == "" {
		return nil
	}
	r.mu.RLock()
	hook, ok := r.hooks[key]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return hook(ctx, params)
}
