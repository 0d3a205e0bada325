package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheKeyDeterministic(t *testing.T) {
	k1 := CacheKey("get", "https://example.com/a")
	k2 := CacheKey("get", "https://example.com/a")
	k3 := CacheKey("get", "https://example.com/b")
	if k1 != k2 {
		t.Errorf("same input, different keys: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Errorf("different input, same key: %q", k1)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	InitCache("", time.Minute, 100, time.Minute)
	defer InitCache("", 0, 0, 0) // disable for other tests

	ctx := context.Background()
	key := CacheKey("test", "roundtrip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Fatal("unexpected hit before set")
	}
	CacheSet(ctx, key, []byte("payload"))
	data, ok := CacheGet(ctx, key)
	if !ok || string(data) != "payload" {
		t.Errorf("CacheGet = %q, %v", data, ok)
	}
}

func TestCacheDisabled(t *testing.T) {
	InitCache("", 0, 0, 0)
	ctx := context.Background()
	CacheSet(ctx, CacheKey("test", "disabled"), []byte("x"))
	if _, ok := CacheGet(ctx, CacheKey("test", "disabled")); ok {
		t.Error("cache hit while disabled")
	}
}

func TestCachedGetSkipsNetworkOnHit(t *testing.T) {
	Init(Config{})
	InitCache("", time.Minute, 100, time.Minute)
	defer InitCache("", 0, 0, 0)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		body, err := CachedGet(ctx, srv.URL+"/resource", time.Second, false)
		if err != nil {
			t.Fatalf("CachedGet: %v", err)
		}
		if string(body) != "body" {
			t.Errorf("body = %q", body)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("network calls = %d, want 1", calls.Load())
	}
}

func TestCachedGetDoesNotCacheErrors(t *testing.T) {
	Init(Config{})
	InitCache("", time.Minute, 100, time.Minute)
	defer InitCache("", 0, 0, 0)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := CachedGet(ctx, srv.URL+"/down", time.Second, false); err == nil {
			t.Fatal("want error for 503")
		}
	}
	if calls.Load() != 2 {
		t.Errorf("network calls = %d, want 2 (failures never cached)", calls.Load())
	}
}
