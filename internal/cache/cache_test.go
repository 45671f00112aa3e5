package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey_DeterministicAndOpaque(t *testing.T) {
	url := "https://api.github.com/repos/acme/widget/readme"

	a := Key(url)
	b := Key(url)
	if a != b {
		t.Errorf("Expected stable keys, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "realitycheck:v1:") {
		t.Errorf("Expected versioned prefix, got %q", a)
	}
	if a == Key(url+"?page=2") {
		t.Error("Expected distinct keys for distinct URLs")
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if val, found := c.Get("k"); !found || string(val) != "v" {
		t.Errorf("Expected hit with %q, got %q found=%v", "v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected entry expired")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set(Key("https://example.com/a"), []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if val, found := c.Get(Key("https://example.com/a")); !found || string(val) != "payload" {
		t.Errorf("Expected hit with %q, got %q found=%v", "payload", val, found)
	}
	if _, found := c.Get(Key("https://example.com/other")); found {
		t.Error("Expected miss for unknown key")
	}
}

func TestDiskCache_ExpiredEntryRemoved(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	_ = c.Set("k", []byte("v"), -time.Second)
	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry treated as miss")
	}
}

func TestLayeredCache_DiskPromotion(t *testing.T) {
	dir := t.TempDir()

	// Populate through one layered cache, then read through a fresh one
	// whose memory layer is cold
	first := NewLayeredCache(time.Minute, dir, time.Minute)
	if err := first.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second := NewLayeredCache(time.Minute, dir, time.Minute)
	if val, found := second.Get("k"); !found || string(val) != "v" {
		t.Fatalf("Expected disk hit through cold memory, got %q found=%v", val, found)
	}

	// After promotion the value survives a disk wipe
	_ = second.disk.Clear()
	if val, found := second.Get("k"); !found || string(val) != "v" {
		t.Errorf("Expected promoted memory hit, got %q found=%v", val, found)
	}
}
