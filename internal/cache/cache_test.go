package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/airopshq/airops/internal/config"
)

type reportParams struct {
	Periods   int    `json:"periods"`
	AirlineID int64  `json:"airline_id"`
	Method    string `json:"method"`
}

func TestKey_Deterministic(t *testing.T) {
	params := reportParams{Periods: 12, AirlineID: 7, Method: "linear"}

	k1, err := Key("revenue_report", params)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	k2, _ := Key("revenue_report", params)

	if k1 != k2 {
		t.Errorf("Key not deterministic: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "revenue_report:") {
		t.Errorf("Key should carry namespace, got %s", k1)
	}
	if len(k1) != len("revenue_report:")+64 {
		t.Errorf("Expected sha256 hex suffix, got %s", k1)
	}
}

func TestKey_DiffersByParams(t *testing.T) {
	a, _ := Key("revenue_report", reportParams{Periods: 12})
	b, _ := Key("revenue_report", reportParams{Periods: 6})
	c, _ := Key("reviews", reportParams{Periods: 12})

	if a == b || a == c {
		t.Errorf("Expected distinct keys: %s %s %s", a, b, c)
	}
}

func TestKey_MapOrderIndependent(t *testing.T) {
	a, _ := Key("ns", map[string]int{"a": 1, "b": 2, "c": 3})
	b, _ := Key("ns", map[string]int{"c": 3, "b": 2, "a": 1})
	if a != b {
		t.Errorf("map key order should not matter: %s vs %s", a, b)
	}
}

func TestKey_Unencodable(t *testing.T) {
	if _, err := Key("ns", make(chan int)); err == nil {
		t.Error("Expected error for unencodable params")
	}
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Noop should always miss, got ok=%v err=%v", ok, err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.CacheConfig
		wantType string
		wantErr  bool
	}{
		{name: "none", cfg: config.CacheConfig{Type: "none"}, wantType: "noop"},
		{name: "empty", cfg: config.CacheConfig{}, wantType: "noop"},
		{name: "memory", cfg: config.CacheConfig{Type: "memory", TTL: time.Minute}, wantType: "memory"},
		{name: "unsupported", cfg: config.CacheConfig{Type: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer func() { _ = c.Close() }()

			switch tt.wantType {
			case "noop":
				if _, ok := c.(Noop); !ok {
					t.Errorf("Expected Noop, got %T", c)
				}
			case "memory":
				if _, ok := c.(*MemoryCache); !ok {
					t.Errorf("Expected *MemoryCache, got %T", c)
				}
			}
		})
	}
}
