// Package cache stores compiled program images in a SQLite database, keyed
// by a digest of the sources they were compiled from.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no image is stored under the requested key.
var ErrNotFound = errors.New("image not found")

// Store is a cache of serialized programs.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens the cache database at path, creating it if needed. The path
// ":memory:" opens a private in-memory cache.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps an in-memory database alive between queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS images (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the location of the database.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the image stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM images WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying image: %w", err)
	}
	return data, nil
}

// Put stores an image under key, replacing any previous one.
func (s *Store) Put(key string, image []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO images (key, data, created_at) VALUES (?, ?, ?)",
		key, image, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// Delete removes the image stored under key. Deleting a missing key is not
// an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM images WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// Count returns the number of stored images.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM images").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return n, nil
}

// Load returns the program stored under key.
func (s *Store) Load(key string) (*bytecode.Program, error) {
	data, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	return bytecode.Unmarshal(data)
}

// Save serializes prog and stores it under key.
func (s *Store) Save(key string, prog *bytecode.Program) error {
	data, err := bytecode.Marshal(prog)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}

// Key digests the image format version and the given sources. Each source
// is length prefixed so that moving bytes between sources changes the key.
func Key(sources ...string) string {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bytecode.FormatVersion)
	h.Write(buf[:])
	for _, src := range sources {
		binary.BigEndian.PutUint64(buf[:], uint64(len(src)))
		h.Write(buf[:])
		h.Write([]byte(src))
	}
	return hex.EncodeToString(h.Sum(nil))
}
