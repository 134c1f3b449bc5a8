package store

import "sync"

// MemoryStore is an in-memory Store, mainly useful for tests
// and for running without a database file.
type MemoryStore struct {
	mu          sync.RWMutex
	pages       map[string][]Page
	attachments map[string]Attachment
	redirects   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:       make(map[string][]Page),
		attachments: make(map[string]Attachment),
		redirects:   make(map[string]string),
	}
}

func (m *MemoryStore) FindPage(path string) (Page, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.pages[path]
	if len(versions) == 0 {
		return Page{}, false, nil
	}
	// prefer the live version when several states share a path
	for _, p := range versions {
		if p.IsLive() {
			return p, true, nil
		}
	}
	return versions[0], true, nil
}

func (m *MemoryStore) FindLivePage(path string) (Page, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.pages[path] {
		if p.IsLive() {
			return p, true, nil
		}
	}
	return Page{}, false, nil
}

func (m *MemoryStore) FindLiveAttachment(path string) (Attachment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attachments[path]
	if !ok || !a.Live {
		return Attachment{}, false, nil
	}
	return a, true, nil
}

func (m *MemoryStore) FindRedirect(fromPath string) (Redirect, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	to, ok := m.redirects[fromPath]
	if !ok {
		return Redirect{}, false, nil
	}
	return Redirect{FromPath: fromPath, ToPath: to}, true, nil
}

// SavePage adds a page version, replacing any version in the same state.
func (m *MemoryStore) SavePage(p Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.pages[p.Path]
	for i, v := range versions {
		if v.State == p.State {
			versions[i] = p
			return
		}
	}
	m.pages[p.Path] = append(versions, p)
}

func (m *MemoryStore) SaveAttachment(a Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachments[a.Path] = a
}

func (m *MemoryStore) SaveRedirect(r Redirect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirects[r.FromPath] = r.ToPath
}
