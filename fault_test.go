package contentgate

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindAccessDenied, http.StatusForbidden},
		{KindServerError, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("Status for %s is %d", tt.kind, got)
		}
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(notFound("/missing")); got != KindNotFound {
		t.Errorf("Kind is %s", got)
	}
	if got := KindOf(accessDenied("/secret")); got != KindAccessDenied {
		t.Errorf("Kind is %s", got)
	}
	// wrapped faults are still classified
	wrapped := fmt.Errorf("stage: %w", notFound("/missing"))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("Kind of wrapped fault is %s", got)
	}
	// untagged errors count as server errors
	if got := KindOf(errors.New("boom")); got != KindServerError {
		t.Errorf("Kind of plain error is %s", got)
	}
}

func TestFaultUnwrap(t *testing.T) {
	cause := errors.New("db gone")
	f := serverError(cause)
	if !errors.Is(f, cause) {
		t.Error("Fault does not unwrap to its cause")
	}
}
