package pagecache

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Provider is an interface for a render cache.
// It stores rendered page responses keyed by canonical content path.
// The request pipeline decides *whether* an entry may be stored;
// the provider only persists and retrieves.
//
// Implementations must be thread-safe!
type Provider interface {
	// Get returns the cached render for the given path, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	// If the entry has expired, the boolean should be false.
	// (In this case, the provider should also purge the entry.)
	Get(path string) (Entry, bool, error)
	// Put stores the given render. Writes are keyed by path and
	// idempotent: re-rendering and re-writing the same path is harmless.
	Put(Entry) error
	// Oldest returns the path and expiration time of the entry with the
	// earliest expiration time. It should not return items where the
	// expiry is zero.
	Oldest() (string, time.Time, error)
	// Purge removes the cached render for the given path.
	Purge(path string)
	// Has checks if the specified path has a cached render.
	Has(path string) bool
}

// Entry is a single cached render.
type Entry struct {
	Path        string
	ContentType string
	Expires     time.Time
	RenderedAt  time.Time
	Bytes       []byte
}

type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteCache creates a new cache with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteCache(filename string) SQLiteCache {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS renders (
		path TEXT PRIMARY KEY,
		content_type TEXT,
		expires INTEGER,
		rendered_at INTEGER,
		bytes BLOB
	)`)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS renders_expires_idx ON renders (expires)")
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

func (s SQLiteCache) Get(path string) (Entry, bool, error) {
	var e Entry
	var exp, ren int64
	err := s.db.QueryRow(`SELECT path, content_type, expires, rendered_at, bytes
		FROM renders WHERE path = ?`, path).
		Scan(&e.Path, &e.ContentType, &exp, &ren, &e.Bytes)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e.Expires = time.Unix(exp, 0)
	e.RenderedAt = time.Unix(ren, 0)
	if time.Now().After(e.Expires) {
		s.Purge(path)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s SQLiteCache) Put(e Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO renders
		(path, content_type, expires, rendered_at, bytes) VALUES (?, ?, ?, ?, ?)`,
		e.Path, e.ContentType, e.Expires.Unix(), e.RenderedAt.Unix(), e.Bytes)
	return err
}

func (s SQLiteCache) Oldest() (string, time.Time, error) {
	var path string
	var expires int64
	err := s.db.QueryRow(
		"SELECT path, expires FROM renders WHERE expires > 0 ORDER BY expires ASC LIMIT 1",
	).Scan(&path, &expires)
	if err == sql.ErrNoRows {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return path, time.Unix(expires, 0), nil
}

func (s SQLiteCache) Purge(path string) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM renders WHERE path = ?", path)
	if err != nil {
		panic(err)
	}
}

func (s SQLiteCache) Has(path string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM renders WHERE path = ?", path).Scan(&one)
	return err == nil
}
