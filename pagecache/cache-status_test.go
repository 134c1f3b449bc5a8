package pagecache

import "testing"

func TestCacheStatusString(t *testing.T) {
	tests := []struct {
		name string
		fill func(*CacheStatus)
		want string
	}{
		{"hit", func(cs *CacheStatus) {
			cs.Hit()
		}, "Content-Gate; hit"},
		{"bypass", func(cs *CacheStatus) {
			cs.Forward(FwdReasonBypass)
		}, "Content-Gate; fwd=bypass"},
		{"miss stored", func(cs *CacheStatus) {
			cs.Forward(FwdReasonUriMiss)
			cs.Stored()
		}, "Content-Gate; fwd=uri-miss; stored"},
		{"stale with detail", func(cs *CacheStatus) {
			cs.Forward(FwdReasonStale)
			cs.Detail("refresh")
		}, "Content-Gate; fwd=stale; detail=refresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := CacheStatus{}
			tt.fill(&cs)
			if got := cs.String(); got != tt.want {
				t.Errorf("String is %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsHit(t *testing.T) {
	cs := CacheStatus{}
	if cs.IsHit() {
		t.Error("Zero value reports a hit")
	}
	cs.Hit()
	if !cs.IsHit() {
		t.Error("Hit not reported")
	}
	cs.Forward(FwdReasonBypass)
	if cs.IsHit() {
		t.Error("Forwarded status reports a hit")
	}
}
