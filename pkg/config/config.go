// Package config loads codeflow settings from defaults, an optional TOML
// file, CODEFLOW_* environment variables and command flags, in increasing
// order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
)

const (
	// DefaultFile is read from the working directory when no path is given.
	DefaultFile = "codeflow.toml"

	// EnvPrefix prefixes environment overrides, e.g. CODEFLOW_LAYOUT_RANKSEP.
	EnvPrefix = "CODEFLOW_"

	DefaultCollaborator = "http://localhost:8000"
	DefaultServerAddr   = "localhost:8000"
	DefaultCORSOrigin   = "http://localhost:3000"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config holds all codeflow settings.
type Config struct {
	Layout LayoutConfig `koanf:"layout"`
	Export ExportConfig `koanf:"export"`
	Upload UploadConfig `koanf:"upload"`
	HTTP   HTTPConfig   `koanf:"http"`
	Cache  CacheConfig  `koanf:"cache"`
	Server ServerConfig `koanf:"server"`
	Render RenderConfig `koanf:"render"`
}

type LayoutConfig struct {
	Engine  string  `koanf:"engine"`
	RankSep float64 `koanf:"ranksep"`
	NodeSep float64 `koanf:"nodesep"`
	Padding float64 `koanf:"padding"`
}

type ExportConfig struct {
	URL string `koanf:"url"`
	Dir string `koanf:"dir"`
}

type UploadConfig struct {
	URL string `koanf:"url"`
}

type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type CacheConfig struct {
	Backend   string        `koanf:"backend"`
	RedisAddr string        `koanf:"redis_addr"`
	TTL       time.Duration `koanf:"ttl"`
}

type ServerConfig struct {
	Addr        string   `koanf:"addr"`
	CORSOrigins []string `koanf:"cors_origins"`
}

type RenderConfig struct {
	Legend bool `koanf:"legend"`
	Popups bool `koanf:"popups"`
}

// Defaults returns the nested default settings.
func Defaults() map[string]any {
	return map[string]any{
		"layout": map[string]any{
			"engine":  layout.EngineLayered,
			"ranksep": layout.DefaultRankSep,
			"nodesep": layout.DefaultNodeSep,
			"padding": layout.DefaultPadding,
		},
		"export": map[string]any{
			"url": DefaultCollaborator,
			"dir": ".",
		},
		"upload": map[string]any{
			"url": DefaultCollaborator,
		},
		"http": map[string]any{
			"timeout": 30 * time.Second,
		},
		"cache": map[string]any{
			"backend":    CacheFile,
			"redis_addr": "localhost:6379",
			"ttl":        7 * 24 * time.Hour,
		},
		"server": map[string]any{
			"addr":         DefaultServerAddr,
			"cors_origins": []string{DefaultCORSOrigin},
		},
		"render": map[string]any{
			"legend": true,
			"popups": true,
		},
	}
}

// Bindings maps command flag names to config keys. Flags not listed are
// ignored by [Load].
type Bindings map[string]string

// Load resolves the configuration. An empty path reads [DefaultFile] if it
// exists; an explicit path must exist. f and b may be nil.
func Load(path string, f *pflag.FlagSet, b Bindings) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if f != nil && len(b) > 0 {
		p := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, any) {
			key, ok := b[fl.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(f, fl)
		})
		if err := k.Load(p, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps CODEFLOW_CACHE_REDIS_ADDR to cache.redis_addr: the first
// underscore separates the section, the rest belong to the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// listKeys are split on commas when set from the environment.
var listKeys = map[string]bool{
	"server.cors_origins": true,
}

func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}
	var items []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	return key, items
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if _, err := layout.Lookup(c.Layout.Engine); err != nil {
		return fmt.Errorf("layout.engine: %w", err)
	}
	if err := c.LayoutParams().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative: %s", c.HTTP.Timeout)
	}
	return nil
}

// LayoutParams returns the spacing settings.
func (c *Config) LayoutParams() layout.Params {
	return layout.Params{RankSep: c.Layout.RankSep, NodeSep: c.Layout.NodeSep, Padding: c.Layout.Padding}
}

// WriteDefault writes the default settings as TOML to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(out).Encode(fileDefaults()); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}

// fileDefaults renders durations as strings so the written file reads
// naturally and round-trips through the koanf decode hooks.
func fileDefaults() map[string]any {
	d := Defaults()
	for _, section := range d {
		for key, v := range section.(map[string]any) {
			if dur, ok := v.(time.Duration); ok {
				section.(map[string]any)[key] = dur.String()
			}
		}
	}
	return d
}

type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) { return p, nil }

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}
