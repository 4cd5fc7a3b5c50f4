package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", AppName)
	if dir != expected {
		t.Errorf("CacheDir() = %q, want %q", dir, expected)
	}
	if !strings.HasSuffix(dir, AppName) {
		t.Errorf("CacheDir() = %q, should end with %q", dir, AppName)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, AppName)
	if dir != expected {
		t.Errorf("CacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestCacheDirExplicit(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/ignored")

	cfg := Default()
	cfg.Cache.Dir = "/var/cache/portfolio"
	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	if dir != "/var/cache/portfolio" {
		t.Errorf("CacheDir() = %q, want cache.dir", dir)
	}
}
