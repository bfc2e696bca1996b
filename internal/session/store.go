// Package session persists the access token and user profile issued at
// registration in a small SQLite key/value table, and hands the token to the
// catalog client on demand. Nothing else is stored client-side.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"shopfront/internal/catalog"
)

const (
	keyAccessToken = "access_token"
	keyUserProfile = "user_profile"
)

// ErrNoSession is returned by Load when no credentials have been saved.
var ErrNoSession = errors.New("session: no stored credentials")

// Store is a durable credential store backed by SQLite. It implements
// catalog.CredentialSource.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string

	// token is cached in memory so the per-request Token lookup does not
	// hit the database.
	token string
}

// Open initializes the store at the given file path, creating the directory
// and schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}

	s := &Store{db: db, path: path}
	if creds, err := s.load(); err == nil {
		s.token = creds.AccessToken
	}
	return s, nil
}

// Save persists the credentials, replacing any previous session.
func (s *Store) Save(creds catalog.Credentials) error {
	profile, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin session write: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := tx.Exec(upsert, keyAccessToken, creds.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if _, err := tx.Exec(upsert, keyUserProfile, string(profile)); err != nil {
		return fmt.Errorf("store user profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session write: %w", err)
	}

	s.token = creds.AccessToken
	return nil
}

// Load returns the stored credentials, or ErrNoSession.
func (s *Store) Load() (*catalog.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *Store) load() (*catalog.Credentials, error) {
	var token string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, keyAccessToken).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}

	creds := &catalog.Credentials{AccessToken: token}
	var profile string
	err = s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, keyUserProfile).Scan(&profile)
	if err == nil {
		if uerr := json.Unmarshal([]byte(profile), &creds.User); uerr != nil {
			return nil, fmt.Errorf("decode user profile: %w", uerr)
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read user profile: %w", err)
	}
	return creds, nil
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear removes any stored session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.token = ""
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
