package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Layout.Engine != layout.EngineLayered {
		t.Errorf("Layout.Engine = %q, want %q", cfg.Layout.Engine, layout.EngineLayered)
	}
	if got := cfg.LayoutParams(); got != layout.DefaultParams() {
		t.Errorf("LayoutParams() = %+v, want %+v", got, layout.DefaultParams())
	}
	if cfg.Export.URL != DefaultCollaborator || cfg.Upload.URL != DefaultCollaborator {
		t.Errorf("collaborator urls = %q, %q", cfg.Export.URL, cfg.Upload.URL)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("HTTP.Timeout = %s, want 30s", cfg.HTTP.Timeout)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheFile)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{DefaultCORSOrigin}) {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Render.Legend || !cfg.Render.Popups {
		t.Errorf("Render = %+v, want legend and popups on", cfg.Render)
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	file := `
[layout]
ranksep = 120
nodesep = 40

[cache]
backend = "none"
ttl = "1h"
`
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODEFLOW_LAYOUT_NODESEP", "30")
	t.Setenv("CODEFLOW_CACHE_REDIS_ADDR", "redis:6380")
	t.Setenv("CODEFLOW_SERVER_CORS_ORIGINS", "http://a.test,http://b.test")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("nodesep", 0, "")
	fs.Float64("padding", 0, "")
	fs.Bool("verbose", false, "")
	if err := fs.Parse([]string{"--nodesep=25", "--verbose"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", fs, Bindings{"nodesep": "layout.nodesep", "padding": "layout.padding"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file over default", cfg.Layout.RankSep, 120.0},
		{"flag over env", cfg.Layout.NodeSep, 25.0},
		{"unset flag keeps default", cfg.Layout.Padding, layout.DefaultPadding},
		{"file backend", cfg.Cache.Backend, CacheNone},
		{"file duration", cfg.Cache.TTL, time.Hour},
		{"env underscore key", cfg.Cache.RedisAddr, "redis:6380"},
		{"env list", cfg.Server.CORSOrigins, []string{"http://a.test", "http://b.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestEnvValue(t *testing.T) {
	tests := []struct {
		name, env, value string
		wantKey          string
		want             any
	}{
		{"scalar", "CODEFLOW_LAYOUT_ENGINE", "graphviz", "layout.engine", "graphviz"},
		{"scalar with comma", "CODEFLOW_CACHE_REDIS_ADDR", "a,b", "cache.redis_addr", "a,b"},
		{"list", "CODEFLOW_SERVER_CORS_ORIGINS", "http://a.test, http://b.test,", "server.cors_origins", []string{"http://a.test", "http://b.test"}},
		{"single item list", "CODEFLOW_SERVER_CORS_ORIGINS", "http://a.test", "server.cors_origins", []string{"http://a.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, got := envValue(tt.env, tt.value)
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), nil, nil); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"engine", "CODEFLOW_LAYOUT_ENGINE", "force"},
		{"negative spacing", "CODEFLOW_LAYOUT_RANKSEP", "-1"},
		{"backend", "CODEFLOW_CACHE_BACKEND", "memcached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.env, tt.val)
			if _, err := Load("", nil, nil); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.env, tt.val)
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chdir(t, t.TempDir())
	path := filepath.Join(dir, "conf", DefaultFile)

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Error("WriteDefault() should refuse to overwrite")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault(force) error: %v", err)
	}

	fromFile, err := Load(path, nil, nil)
	if err != nil {
		t.Fatalf("Load(%s) error: %v", path, err)
	}
	defaults, err := Load("", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromFile, defaults) {
		t.Errorf("written defaults = %+v, want %+v", fromFile, defaults)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"CODEFLOW_LAYOUT_ENGINE":       "layout.engine",
		"CODEFLOW_CACHE_REDIS_ADDR":    "cache.redis_addr",
		"CODEFLOW_SERVER_CORS_ORIGINS": "server.cors_origins",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
