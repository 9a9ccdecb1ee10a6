package tracker

import (
	"errors"
	"testing"
)

type failingStorage struct{}

func (failingStorage) Get(string) (string, bool) { return "", false }
func (failingStorage) Set(string, string) error  { return errors.New("storage unavailable") }

func TestGetOrCreateSessionIDReusedWithinContext(t *testing.T) {
	t.Parallel()
	storage := NewMemoryStorage()

	first := GetOrCreateSessionID(storage)
	if first == "" {
		t.Fatal("expected a session id on first call")
	}

	// A second navigation in the same browsing context reuses the id.
	second := GetOrCreateSessionID(storage)
	if second != first {
		t.Fatalf("session id changed across navigations: %q vs %q", second, first)
	}
}

func TestGetOrCreateSessionIDDiffersAcrossContexts(t *testing.T) {
	t.Parallel()
	a := GetOrCreateSessionID(NewMemoryStorage())
	b := GetOrCreateSessionID(NewMemoryStorage())
	if a == "" || b == "" {
		t.Fatal("expected session ids in both contexts")
	}
	if a == b {
		t.Fatalf("independent contexts produced the same session id: %q", a)
	}
}

func TestGetOrCreateSessionIDStorageUnavailable(t *testing.T) {
	t.Parallel()
	if id := GetOrCreateSessionID(failingStorage{}); id != "" {
		t.Fatalf("expected no session id when storage fails, got %q", id)
	}
	if id := GetOrCreateSessionID(nil); id != "" {
		t.Fatalf("expected no session id for nil storage, got %q", id)
	}
}
