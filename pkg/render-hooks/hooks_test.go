package renderhooks

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

func TestKey(t *testing.T) {
	if got := Key("news", "latest"); got != "news#latest" {
		t.Errorf("Key is %q", got)
	}
	if got := Key("", ""); got != "" {
		t.Errorf("Key for empty parts is %q", got)
	}
}

func TestKeyFromParams(t *testing.T) {
	params := url.Values{
		"prepare_with[content_type]": {"news"},
		"prepare_with[method]":       {"latest"},
	}
	if got := KeyFromParams(params); got != "news#latest" {
		t.Errorf("Key is %q", got)
	}
	if got := KeyFromParams(url.Values{}); got != "" {
		t.Errorf("Key for empty params is %q", got)
	}
}

func TestInvoke(t *testing.T) {
	registry := NewRegistry()
	var seen string
	registry.Register(Key("news", "latest"), func(ctx context.Context, params url.Values) error {
		seen = params.Get("count")
		return nil
	})

	err := registry.Invoke(context.Background(), "news#latest", url.Values{"count": {"5"}})
	if err != nil {
		t.Fatal(err)
	}
	if seen != "5" {
		t.Errorf("Hook saw count %q", seen)
	}
}

func TestInvokeUnknownKeyIsNoop(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Invoke(context.Background(), "ghost#none", nil); err != nil {
		t.Fatal(err)
	}
	if err := registry.Invoke(context.Background(), "", nil); err != nil {
		t.Fatal(err)
	}
}

func TestInvokePropagatesError(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("boom")
	registry.Register("news#latest", func(ctx context.Context, params url.Values) error {
		return boom
	})
	if err := registry.Invoke(context.Background(), "news#latest", nil); !errors.Is(err, boom) {
		t.Errorf("Invoke error is %v", err)
	}
}

func TestRegisterReplaces(t *testing.T) {
	registry := NewRegistry()
	var called string
	registry.Register("k", func(context.Context, url.Values) error { called = "first"; return nil })
	registry.Register("k", func(context.Context, url.Values) error { called = "second"; return nil })
	registry.Invoke(context.Background(), "k", nil)
	if called != "second" {
		t.Errorf("Called hook is %q", called)
	}
}
