package contentgate

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags the failure conditions the pipeline can raise.
// Stages only return faults; they are matched exactly once at the
// pipeline boundary and handed to error recovery.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindAccessDenied Kind = "access_denied"
	KindServerError  Kind = "server_error"
)

// Status maps the fault kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Fault is a tagged pipeline failure, optionally wrapping a cause.
type Fault struct {
	Kind Kind
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s", f.Kind, f.Err)
	}
	return string(f.Kind)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func notFound(path string) *Fault {
	return &Fault{Kind: KindNotFound, Err: fmt.Errorf("no page at %s", path)}
}

func accessDenied(path string) *Fault {
	return &Fault{Kind: KindAccessDenied, Err: fmt.Errorf("view permission denied for %s", path)}
}

func serverError(err error) *Fault {
	return &Fault{Kind: KindServerError, Err: err}
}

// KindOf classifies any error raised inside the pipeline.
// Errors that are not tagged faults count as server errors.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindServerError
}
