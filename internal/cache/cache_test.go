// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/rigmatch/internal/config"
)

// storeFactories builds each backend fresh per test so the contract tests run
// against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"badger": func(t *testing.T) Store {
			s, err := NewBadgerStore(t.TempDir())
			if err != nil {
				t.Fatalf("failed to open badger store: %v", err)
			}
			return s
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			if err := store.Set(ctx, "rec:abc", []byte(`{"x":1}`), time.Minute); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := store.Get(ctx, "rec:abc")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `{"x":1}` {
				t.Errorf("Get = %q, want %q", got, `{"x":1}`)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			_, err := store.Get(context.Background(), "rec:missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing key: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			if err := store.Set(ctx, "k", []byte("v1"), time.Minute); err != nil {
				t.Fatalf("first Set failed: %v", err)
			}
			if err := store.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
				t.Fatalf("second Set failed: %v", err)
			}

			got, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != "v2" {
				t.Errorf("Get = %q, want %q (last write wins)", got, "v2")
			}
		})
	}
}

func TestStoreClearPattern(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			keys := []string{"rec:1", "rec:2", "rec:3", "comp:1"}
			for _, key := range keys {
				if err := store.Set(ctx, key, []byte("v"), time.Minute); err != nil {
					t.Fatalf("Set %s failed: %v", key, err)
				}
			}

			count, err := store.ClearPattern(ctx, "rec:")
			if err != nil {
				t.Fatalf("ClearPattern failed: %v", err)
			}
			if count != 3 {
				t.Errorf("ClearPattern count = %d, want 3", count)
			}

			if _, err := store.Get(ctx, "rec:1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get rec:1 after clear: err = %v, want ErrNotFound", err)
			}
			if _, err := store.Get(ctx, "comp:1"); err != nil {
				t.Errorf("comp:1 should survive rec: clear, got err = %v", err)
			}
		})
	}
}

func TestStoreClearPatternEmpty(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			count, err := store.ClearPattern(context.Background(), "nothing:")
			if err != nil {
				t.Fatalf("ClearPattern failed: %v", err)
			}
			if count != 0 {
				t.Errorf("ClearPattern count = %d, want 0", count)
			}
		})
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "ephemeral", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, err := store.Get(ctx, "ephemeral"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get expired key: err = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired entry was not reaped on Get, Len = %d", store.Len())
	}
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "pinned", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(15 * time.Millisecond)

	if _, err := store.Get(ctx, "pinned"); err != nil {
		t.Errorf("zero-TTL entry expired, err = %v", err)
	}
}

func TestMemoryStoreValueIsolation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	original := []byte("original")
	if err := store.Set(ctx, "k", original, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	original[0] = 'X'

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("cached value mutated via caller slice: %q", got)
	}

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if string(again) != "original" {
		t.Errorf("cached value mutated via returned slice: %q", again)
	}
}

func TestGenerateKeyDeterministic(t *testing.T) {
	type params struct {
		Purpose string   `json:"purpose"`
		Brands  []string `json:"brands"`
	}

	k1 := GenerateKey("rec", params{Purpose: "gaming", Brands: []string{"amd", "nvidia"}})
	k2 := GenerateKey("rec", params{Purpose: "gaming", Brands: []string{"amd", "nvidia"}})
	if k1 != k2 {
		t.Errorf("identical params produced different keys: %q vs %q", k1, k2)
	}

	k3 := GenerateKey("rec", params{Purpose: "office", Brands: []string{"amd", "nvidia"}})
	if k1 == k3 {
		t.Errorf("different params produced the same key: %q", k1)
	}

	if !strings.HasPrefix(k1, "rec:") {
		t.Errorf("key %q does not carry the namespace prefix", k1)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	mem, err := New(config.CacheConfig{Store: "memory"})
	if err != nil {
		t.Fatalf("New(memory) failed: %v", err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Errorf("New(memory) = %T, want *MemoryStore", mem)
	}
	mem.Close()

	bdg, err := New(config.CacheConfig{Store: "badger", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New(badger) failed: %v", err)
	}
	if _, ok := bdg.(*BadgerStore); !ok {
		t.Errorf("New(badger) = %T, want *BadgerStore", bdg)
	}
	bdg.Close()

	if _, err := New(config.CacheConfig{Store: "redis"}); err == nil {
		t.Error("New(redis) should fail for unknown store")
	}
}
