package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memCache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.puts++
}

func (c *memCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func TestSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/summary" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"revenue_today":1250.5,"orders_today":12,"avg_order_value":104.21,"top_source":"web"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", 5*time.Second, nil)
	summary, err := client.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.RevenueToday != 1250.5 || summary.OrdersToday != 12 || summary.TopSource != "web" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRevenueTrendQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("days"); got != "30" {
			t.Errorf("expected days=30, got %q", got)
		}
		w.Write([]byte(`{"labels":["2026-08-01","2026-08-02"],"revenue":[100,250.75],"orders":[3,7]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, nil)
	trend, err := client.RevenueTrend(context.Background(), 30)
	if err != nil {
		t.Fatalf("revenue trend failed: %v", err)
	}
	if len(trend.Labels) != 2 || trend.Revenue[1] != 250.75 || trend.Orders[0] != 3 {
		t.Errorf("unexpected trend: %+v", trend)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"structured error body", http.StatusBadRequest, `{"error":"invalid window"}`, "invalid window"},
		{"plain text body", http.StatusInternalServerError, "boom", "boom"},
		{"empty body", http.StatusBadGateway, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "", 5*time.Second, nil)
			_, err := client.Summary(context.Background())

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
		})
	}
}

func TestCacheReadThrough(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"labels":["a"],"values":[1]}`))
	}))
	defer server.Close()

	cache := newMemCache()
	client := NewClient(server.URL, "", 5*time.Second, cache)

	for i := 0; i < 3; i++ {
		got, err := client.Categories(context.Background())
		if err != nil {
			t.Fatalf("categories failed: %v", err)
		}
		if len(got.Labels) != 1 || got.Labels[0] != "a" {
			t.Errorf("unexpected series: %+v", got)
		}
	}

	if hits != 1 {
		t.Errorf("expected 1 network hit with cache, got %d", hits)
	}
	if cache.puts != 1 {
		t.Errorf("expected 1 cache put, got %d", cache.puts)
	}
}

func TestErrorResponsesNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"down"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cache := newMemCache()
	client := NewClient(server.URL, "", 5*time.Second, cache)

	_, err := client.Summary(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if cache.puts != 0 {
		t.Errorf("error responses must not be cached, got %d puts", cache.puts)
	}
}

func TestDeleteExpense(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cache := newMemCache()
	cache.Put("/api/expenses", []byte(`{"expenses":[],"total":0}`))
	cache.Put("/api/expenses/summary", []byte(`{"total":0}`))
	cache.Put("/api/summary", []byte(`{}`))

	client := NewClient(server.URL, "", 5*time.Second, cache)
	if err := client.DeleteExpense(context.Background(), "exp-42"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if gotMethod != http.MethodDelete || gotPath != "/api/expenses/exp-42" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if _, ok := cache.Get("/api/expenses"); ok {
		t.Error("expected expense list evicted after delete")
	}
	if _, ok := cache.Get("/api/expenses/summary"); ok {
		t.Error("expected expense summary evicted after delete")
	}
	if _, ok := cache.Get("/api/summary"); !ok {
		t.Error("unrelated cache entries must survive the delete")
	}
}

func TestDeleteExpenseRequiresID(t *testing.T) {
	client := NewClient("http://localhost:0", "", time.Second, nil)
	if err := client.DeleteExpense(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}
