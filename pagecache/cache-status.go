package pagecache

import "fmt"

// CacheStatus reports how the render cache handled a request,
// emitted as a Cache-Status response header (RFC 9211 syntax).

type Status string

const (
	StatusHit Status = "hit"
	StatusFwd Status = "fwd"
)

type FwdReason string

const (
	// The cache was not allowed to handle this request
	// (privileged caller, non-cacheable page, or explicit override).
	FwdReasonBypass FwdReason = "bypass"

	// The cache did not contain a render for the request path.
	FwdReasonUriMiss FwdReason = "uri-miss"

	// The cache contained a render, but it was stale.
	FwdReasonStale FwdReason = "stale"
)

type CacheStatus struct {
	status    Status
	detail    string
	fwdReason FwdReason
	stored    bool
}

func (cs *CacheStatus) Hit() {
	cs.status = StatusHit
}

func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.status = StatusFwd
	cs.fwdReason = reason
}

// Stored records that the forwarded render was written to the cache.
func (cs *CacheStatus) Stored() {
	cs.stored = true
}

func (cs *CacheStatus) Detail(detail string) {
	cs.detail = detail
}

func (cs *CacheStatus) IsHit() bool {
	return cs.status == StatusHit
}

func (cs *CacheStatus) String() string {
	status := fmt.Sprintf("Content-Gate; %s", cs.status)
	if cs.status == StatusFwd && cs.fwdReason != "" {
		status = fmt.Sprintf("%s=%s", status, cs.fwdReason)
	}
	if cs.stored {
		status = status + "; stored"
	}
	if cs.detail != "" {
		status = status + "; detail=" + cs.detail
	}
	return status
}
