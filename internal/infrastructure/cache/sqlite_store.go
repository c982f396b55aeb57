package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/pkg/filesystem"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// SQLiteStore persists responses so short-lived CLI invocations share them.
// Entries expire after ttl and are evicted least-recently-accessed first once
// more than maxEntries are stored.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	mu         sync.Mutex
}

// DefaultStorePath returns ~/.gitflow/cache/responses.db.
func DefaultStorePath() string {
	return filesystem.AppDir("cache", "responses.db")
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string, maxEntries int, ttl time.Duration) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultStorePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path, maxEntries: maxEntries, ttl: ttl, now: time.Now}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise cache database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	statements := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			accessed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS responses_accessed_at ON responses (accessed_at)`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

// Get implements ports.ResponseStore.
func (s *SQLiteStore) Get(key string) (domain.AssistantResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		payload   string
		createdAt int64
	)
	err := s.db.QueryRow(`SELECT payload, created_at FROM responses WHERE key = ?`, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AssistantResponse{}, false, nil
	}
	if err != nil {
		return domain.AssistantResponse{}, false, err
	}

	now := s.now()
	if s.ttl > 0 && now.Sub(time.Unix(0, createdAt)) > s.ttl {
		_, err := s.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return domain.AssistantResponse{}, false, err
	}

	var resp domain.AssistantResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return domain.AssistantResponse{}, false, fmt.Errorf("decode cached response: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE responses SET accessed_at = ? WHERE key = ?`, now.UnixNano(), key); err != nil {
		return domain.AssistantResponse{}, false, err
	}
	return resp, true, nil
}

// Set implements ports.ResponseStore.
func (s *SQLiteStore) Set(key string, resp domain.AssistantResponse) error {
	if key == "" {
		return nil
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixNano()
	if _, err := s.db.Exec(`INSERT INTO responses (key, payload, created_at, accessed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload,
			created_at = excluded.created_at, accessed_at = excluded.accessed_at`,
		key, string(payload), now, now); err != nil {
		return err
	}
	return s.evictIfNeeded()
}

func (s *SQLiteStore) evictIfNeeded() error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM responses WHERE key NOT IN (
		SELECT key FROM responses ORDER BY accessed_at DESC, key LIMIT ?)`, s.maxEntries)
	return err
}

// Len implements ports.ResponseStore.
func (s *SQLiteStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n)
	return n, err
}

// Clear deletes all stored responses.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM responses`)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.ResponseStore = (*SQLiteStore)(nil)
