package store

import (
	"database/sql"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore keeps pages, attachments and redirects in a SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore creates a new store with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStore(filename string) (*SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			path TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			layout TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			cacheable INTEGER NOT NULL DEFAULT 1,
			archived INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT 'draft',
			PRIMARY KEY (path, state)
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			path TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			file_type TEXT NOT NULL,
			file_location TEXT NOT NULL,
			live INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS redirects (
			from_path TEXT PRIMARY KEY,
			to_path TEXT NOT NULL
		)`,
		"PRAGMA journal_mode=WAL",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, err
		}
	}
	return &SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLiteStore) FindPage(path string) (Page, bool, error) {
	// prefer the live version when several states share a path
	row := s.db.QueryRow(`SELECT path, name, layout, content, cacheable, archived, state
		FROM pages WHERE path = ?
		ORDER BY CASE state WHEN 'live' THEN 0 WHEN 'draft' THEN 1 ELSE 2 END
		LIMIT 1`, path)
	return scanPage(row)
}

func (s *SQLiteStore) FindLivePage(path string) (Page, bool, error) {
	row := s.db.QueryRow(`SELECT path, name, layout, content, cacheable, archived, state
		FROM pages WHERE path = ? AND state = 'live' AND archived = 0`, path)
	return scanPage(row)
}

func scanPage(row *sql.Row) (Page, bool, error) {
	var p Page
	var cacheable, archived int
	err := row.Scan(&p.Path, &p.Name, &p.Layout, &p.Content, &cacheable, &archived, &p.State)
	if err == sql.ErrNoRows {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, err
	}
	p.Cacheable = cacheable != 0
	p.Archived = archived != 0
	return p, true, nil
}

func (s *SQLiteStore) FindLiveAttachment(path string) (Attachment, bool, error) {
	var a Attachment
	var live int
	err := s.db.QueryRow(`SELECT path, file_name, file_type, file_location, live
		FROM attachments WHERE path = ? AND live = 1`, path).
		Scan(&a.Path, &a.FileName, &a.FileType, &a.FileLocation, &live)
	if err == sql.ErrNoRows {
		return Attachment{}, false, nil
	}
	if err != nil {
		return Attachment{}, false, err
	}
	a.Live = live != 0
	return a, true, nil
}

func (s *SQLiteStore) FindRedirect(fromPath string) (Redirect, bool, error) {
	var r Redirect
	err := s.db.QueryRow("SELECT from_path, to_path FROM redirects WHERE from_path = ?", fromPath).
		Scan(&r.FromPath, &r.ToPath)
	if err == sql.ErrNoRows {
		return Redirect{}, false, nil
	}
	if err != nil {
		return Redirect{}, false, err
	}
	return r, true, nil
}

// SavePage inserts or replaces a page version.
func (s *SQLiteStore) SavePage(p Page) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO pages
		(path, name, layout, content, cacheable, archived, state) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Path, p.Name, p.Layout, p.Content, boolInt(p.Cacheable), boolInt(p.Archived), string(p.State))
	return err
}

// SaveAttachment inserts or replaces an attachment.
func (s *SQLiteStore) SaveAttachment(a Attachment) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO attachments
		(path, file_name, file_type, file_location, live) VALUES (?, ?, ?, ?, ?)`,
		a.Path, a.FileName, a.FileType, a.FileLocation, boolInt(a.Live))
	return err
}

// SaveRedirect inserts or replaces a redirect.
func (s *SQLiteStore) SaveRedirect(r Redirect) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("INSERT OR REPLACE INTO redirects (from_path, to_path) VALUES (?, ?)",
		r.FromPath, r.ToPath)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
