package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		want func(home string) string
	}{
		{
			name: "xdg cache home",
			xdg:  "/tmp/xdg-cache",
			want: func(string) string { return filepath.Join("/tmp/xdg-cache", appName) },
		},
		{
			name: "home fallback",
			want: func(home string) string { return filepath.Join(home, ".cache", appName) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)
			t.Setenv("XDG_CACHE_HOME", tt.xdg)

			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if want := tt.want(home); got != want {
				t.Errorf("cacheDir() = %q, want %q", got, want)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	fc, err := cache.NewFileCache(filepath.Join(xdg, appName))
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	for _, k := range []string{"layout:a", "render:b"} {
		if err := fc.Set(t.Context(), k, []byte("x"), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}

	c := New(os.Stderr, LogInfo)
	cmd := c.cacheClearCommand()
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	if _, ok, _ := fc.Get(t.Context(), "layout:a"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestNewCacheBackends(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(os.Stderr, LogInfo)

	cfg := testConfig(t)
	if _, ok := c.newCache(t.Context(), cfg, true).(*cache.NullCache); !ok {
		t.Error("newCache(noCache) should be a NullCache")
	}
	if _, ok := c.newCache(t.Context(), cfg, false).(*cache.FileCache); !ok {
		t.Error("newCache(file) should be a FileCache")
	}

	// an unreachable redis degrades to the file cache
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = "127.0.0.1:1"
	if _, ok := c.newCache(t.Context(), cfg, false).(*cache.FileCache); !ok {
		t.Error("newCache(unreachable redis) should fall back to a FileCache")
	}
}
