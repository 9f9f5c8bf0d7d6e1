// Key/value storages that hold the application's persisted records.
package shared

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Well-known storage keys. Values are written exactly as the web client stored them.
const (
	KeyUsers       = "users"
	KeyWishlists   = "wishlists"
	KeyAPIKey      = "TMDb-Key"
	KeyCurrentUser = "currentUser"
	KeyRememberMe  = "rememberMe"
)

// LocalScope is the scope shared by every client of the same database.
const LocalScope = "local"

// Storage is a string key/value store with the semantics of browser web storage.
//
// GetItem reports ok=false for a missing key; RemoveItem on a missing key is not an error.
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// SQLStorage implements [Storage] over the storage_items table, partitioned by scope.
type SQLStorage struct {
	db    *sql.DB
	scope string
}

var (
	_ Storage = (*SQLStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)

// NewLocalStorage returns the persistent [SQLStorage] shared by all sessions.
func NewLocalStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, scope: LocalScope}
}

// NewSessionStorage returns a [SQLStorage] scoped to a single session id.
func NewSessionStorage(db *sql.DB, sessionID string) *SQLStorage {
	return &SQLStorage{db: db, scope: SessionScope(sessionID)}
}

// SessionScope returns the storage scope for a session id.
func SessionScope(sessionID string) string {
	return "session:" + sessionID
}

// Scope returns the partition this storage reads and writes.
func (s *SQLStorage) Scope() string {
	return s.scope
}

// GetItem returns the value stored under key.
func (s *SQLStorage) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM storage_items WHERE scope = ? AND key = ?", s.scope, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s/%s: %v", ErrStorage, s.scope, key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *SQLStorage) SetItem(key, value string) error {
	query := `
		INSERT INTO storage_items (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, s.scope, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: set %s/%s: %v", ErrStorage, s.scope, key, err)
	}
	return nil
}

// RemoveItem deletes key.
func (s *SQLStorage) RemoveItem(key string) error {
	if _, err := s.db.Exec("DELETE FROM storage_items WHERE scope = ? AND key = ?", s.scope, key); err != nil {
		return fmt.Errorf("%w: remove %s/%s: %v", ErrStorage, s.scope, key, err)
	}
	return nil
}

// Keys lists the keys in this scope in lexical order.
func (s *SQLStorage) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM storage_items WHERE scope = ? ORDER BY key", s.scope)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrStorage, s.scope, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scan key: %v", ErrStorage, err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Clear deletes every key in this scope.
func (s *SQLStorage) Clear() error {
	if _, err := s.db.Exec("DELETE FROM storage_items WHERE scope = ?", s.scope); err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrStorage, s.scope, err)
	}
	return nil
}

// MemoryStorage is an in-process [Storage], used for the TUI session and tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage creates an empty [MemoryStorage].
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Keys lists the stored keys in lexical order.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SessionRegistry tracks issued HTTP session ids so their storage can be pruned.
type SessionRegistry struct {
	db *sql.DB
}

// NewSessionRegistry creates a [SessionRegistry] over the sessions table.
func NewSessionRegistry(db *sql.DB) *SessionRegistry {
	return &SessionRegistry{db: db}
}

// Create registers a new session and returns its id.
func (r *SessionRegistry) Create() (string, error) {
	id := GenerateID()
	now := time.Now().UTC()
	if _, err := r.db.Exec("INSERT INTO sessions (id, created_at, last_seen_at) VALUES (?, ?, ?)", id, now, now); err != nil {
		return "", fmt.Errorf("%w: create session: %v", ErrStorage, err)
	}
	return id, nil
}

// Storage returns the session storage of id.
func (r *SessionRegistry) Storage(id string) Storage {
	return NewSessionStorage(r.db, id)
}

// Touch marks id as seen now, reporting false if the session is unknown.
func (r *SessionRegistry) Touch(id string) (bool, error) {
	if !IsValidID(id) {
		return false, nil
	}
	res, err := r.db.Exec("UPDATE sessions SET last_seen_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("%w: touch session: %v", ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: touch session: %v", ErrStorage, err)
	}
	return n > 0, nil
}

// Prune removes sessions not seen since cutoff, along with their storage scope.
func (r *SessionRegistry) Prune(cutoff time.Time) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: prune sessions: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT id FROM sessions WHERE last_seen_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: prune sessions: %v", ErrStorage, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: prune sessions: %v", ErrStorage, err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := tx.Exec("DELETE FROM storage_items WHERE scope = ?", SessionScope(id)); err != nil {
			return 0, fmt.Errorf("%w: prune session storage: %v", ErrStorage, err)
		}
		if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("%w: prune session: %v", ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: prune sessions: %v", ErrStorage, err)
	}
	return len(ids), nil
}
