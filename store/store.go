package store

// PageState is the lifecycle state of a page version.
type PageState string

const (
	PageStateDraft    PageState = "draft"
	PageStateLive     PageState = "live"
	PageStateArchived PageState = "archived"
)

// Page is a single addressable content page.
// The path is unique per live version; draft and archived versions
// may share a path with the live one.
type Page struct {
	Path      string
	Name      string
	Layout    string
	Content   string
	Cacheable bool
	Archived  bool
	State     PageState
}

// IsLive reports whether the page is publicly visible,
// i.e. live and not archived.
func (p Page) IsLive() bool {
	return p.State == PageStateLive && !p.Archived
}

// Attachment is a file asset addressable by content path.
// FileLocation is the resolved filesystem location of the file bytes,
// which may not exist yet if the file is materialized lazily.
type Attachment struct {
	Path         string
	FileName     string
	FileType     string
	FileLocation string
	Live         bool
}

// Redirect maps one exact content path to another.
type Redirect struct {
	FromPath string
	ToPath   string
}

// PageStore looks up pages by canonical path.
// It is a read-only collaborator as far as the request pipeline is concerned.
//
// Implementations must be safe for concurrent use.
type PageStore interface {
	// FindPage returns the page at the given path regardless of its
	// lifecycle state. The boolean indicates whether a page was found.
	FindPage(path string) (Page, bool, error)
	// FindLivePage returns the live, non-archived page at the given path.
	// Draft and archived pages are treated as absent.
	FindLivePage(path string) (Page, bool, error)
}

// AttachmentStore looks up file attachments by canonical path.
type AttachmentStore interface {
	// FindLiveAttachment returns the live attachment at the given path.
	FindLiveAttachment(path string) (Attachment, bool, error)
}

// RedirectStore looks up configured redirects.
type RedirectStore interface {
	// FindRedirect returns the redirect whose from-path exactly matches
	// the given path.
	FindRedirect(fromPath string) (Redirect, bool, error)
}

// Store bundles the three lookup services. Both provided implementations
// (SQLite and memory) satisfy it.
type Store interface {
	PageStore
	AttachmentStore
	RedirectStore
}
