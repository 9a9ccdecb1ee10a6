package tracker

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const sessionKey = "analytics_session_id"

// Storage is context-scoped storage: it lives as long as the browsing
// context (tab, webview, embedding app) and is shared by every navigation
// within it.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStorage is the in-process Storage used by embedding Go apps and
// tests. One instance per browsing context.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// GetOrCreateSessionID returns the session id for this browsing context,
// generating and persisting one on first use. It returns "" when storage is
// unavailable; the caller treats that as "no session" and skips tracking.
func GetOrCreateSessionID(storage Storage) string {
	if storage == nil {
		return ""
	}
	if id, ok := storage.Get(sessionKey); ok && id != "" {
		return id
	}
	id := newSessionID()
	if err := storage.Set(sessionKey, id); err != nil {
		return ""
	}
	return id
}

// newSessionID builds a time component plus a random suffix.
func newSessionID() string {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), time.Now().UnixNano())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base64.RawURLEncoding.EncodeToString(b))
}
