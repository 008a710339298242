package rescache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(MemoryConfig{})

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("user.getFriends/user=alice", []byte("<friends/>"))
	body, ok := c.Get("user.getFriends/user=alice")
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(body, []byte("<friends/>")) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestSQLite_GetSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewSQLite(path, time.Hour)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", []byte("v1"))
	if body, ok := c.Get("k"); !ok || string(body) != "v1" {
		t.Errorf("expected v1, got %q (hit=%v)", body, ok)
	}

	// Overwrite replaces the entry.
	c.Set("k", []byte("v2"))
	if body, ok := c.Get("k"); !ok || string(body) != "v2" {
		t.Errorf("expected v2, got %q (hit=%v)", body, ok)
	}
}

func TestSQLite_Expiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewSQLite(path, time.Minute)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"))

	// Advance the clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}
