package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
	}{
		{name: "simple_key_value", key: "test-key", value: []byte("test-value")},
		{name: "namespaced_key", key: "revenue_report:abc123", value: []byte(`{"summary":{}}`)},
		{name: "empty_value", key: "empty-key", value: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, 0); err != nil {
				t.Fatalf("Set: %v", err)
			}

			value, ok, err := cache.Get(ctx, tt.key)
			if err != nil || !ok {
				t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
			}
			if string(value) != string(tt.value) {
				t.Errorf("Expected %q, got %q", tt.value, value)
			}
		})
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()

	value, ok, err := cache.Get(context.Background(), "missing")
	if err != nil || ok || value != nil {
		t.Errorf("Expected clean miss, got value=%v ok=%v err=%v", value, ok, err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_ = cache.Set(ctx, "short", []byte("a"), time.Second)
	_ = cache.Set(ctx, "default", []byte("b"), 0)

	now = now.Add(2 * time.Second)

	if _, ok, _ := cache.Get(ctx, "short"); ok {
		t.Error("Expected short-lived entry to be expired")
	}
	if _, ok, _ := cache.Get(ctx, "default"); !ok {
		t.Error("Expected default-TTL entry to still be present")
	}

	if removed := cache.purgeExpired(); removed != 1 {
		t.Errorf("Expected 1 purged entry, got %d", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", cache.Len())
	}
}

func TestMemoryCache_ValueIsCopied(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	original := []byte("abc")
	_ = cache.Set(ctx, "k", original, 0)
	original[0] = 'X'

	got, _, _ := cache.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Stored value should not alias caller slice, got %q", got)
	}

	got[1] = 'Y'
	again, _, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Returned value should not alias stored slice, got %q", again)
	}
}

func TestMemoryCache_DeleteAndPrefix(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "revenue_report:1", []byte("1"), 0)
	_ = cache.Set(ctx, "revenue_report:2", []byte("2"), 0)
	_ = cache.Set(ctx, "reviews:1", []byte("3"), 0)

	_ = cache.Delete(ctx, "reviews:1")
	if _, ok, _ := cache.Get(ctx, "reviews:1"); ok {
		t.Error("Expected key to be deleted")
	}

	if removed := cache.DeletePrefix("revenue_report:"); removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", cache.Len())
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()

	_ = cache.Set(context.Background(), "a", []byte("1"), 0)

	stats := cache.Stats()
	if stats["total_entries"] != 1 || stats["active_entries"] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
	if stats["ttl_seconds"] != 60.0 {
		t.Errorf("Expected ttl_seconds 60, got %v", stats["ttl_seconds"])
	}
}

func TestMemoryCache_CloseIdempotent(t *testing.T) {
	cache := NewMemoryCache(time.Minute, time.Millisecond)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + id))
				_ = cache.Set(ctx, key, []byte{byte(j)}, 0)
				_, _, _ = cache.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != 10 {
		t.Errorf("Expected 10 keys, got %d", cache.Len())
	}
}
