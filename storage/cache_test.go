package storage

import (
	"bytes"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *ResponseCache {
	t.Helper()
	c, err := NewResponseCache(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCachePutGet(t *testing.T) {
	c := newTestCache(t, time.Minute)

	body := []byte(`{"labels":["a"],"values":[1]}`)
	c.Put("/api/categories", body)

	got, ok := c.Get("/api/categories")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got, body) {
		t.Errorf("expected %s, got %s", body, got)
	}

	if _, ok := c.Get("/api/brands"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCachePutReplaces(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Put("/api/summary", []byte("old"))
	c.Put("/api/summary", []byte("new"))

	got, ok := c.Get("/api/summary")
	if !ok || string(got) != "new" {
		t.Errorf("expected replaced entry, got %q ok=%v", got, ok)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := newTestCache(t, time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Put("/api/summary", []byte("fresh"))

	// Still fresh just inside the TTL
	c.now = func() time.Time { return now.Add(59 * time.Second) }
	if _, ok := c.Get("/api/summary"); !ok {
		t.Fatal("expected hit inside TTL")
	}

	// Stale past the TTL, and deleted on read
	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := c.Get("/api/summary"); ok {
		t.Fatal("expected miss past TTL")
	}
	c.now = func() time.Time { return now }
	if _, ok := c.Get("/api/summary"); ok {
		t.Error("expected stale entry evicted, not resurrected")
	}
}

func TestCacheInvalidatePrefix(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Put("/api/expenses", []byte("a"))
	c.Put("/api/expenses/summary", []byte("b"))
	c.Put("/api/summary", []byte("c"))

	c.Invalidate("/api/expenses")

	if _, ok := c.Get("/api/expenses"); ok {
		t.Error("expected expenses list evicted")
	}
	if _, ok := c.Get("/api/expenses/summary"); ok {
		t.Error("expected expenses summary evicted")
	}
	if _, ok := c.Get("/api/summary"); !ok {
		t.Error("unrelated entries must survive invalidation")
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Put("/api/summary", []byte("a"))
	c.Put("/api/brands", []byte("b"))

	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := c.Get("/api/summary"); ok {
		t.Error("expected empty cache after clear")
	}
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	first, err := NewResponseCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	first.Put("/api/summary", []byte("persisted"))
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	second, err := NewResponseCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("failed to reopen cache: %v", err)
	}
	defer second.Close()

	got, ok := second.Get("/api/summary")
	if !ok || string(got) != "persisted" {
		t.Errorf("expected entry to survive reopen, got %q ok=%v", got, ok)
	}
}
