// Package config loads the reactiveshots configuration.
//
// Configuration comes from three layers, later layers winning:
//   - built-in defaults ([Default])
//   - a TOML file, by default $XDG_CONFIG_HOME/reactiveshots/config.toml
//   - REACTIVESHOTS_* environment variables ([Config.ApplyEnv])
//
// A minimal file:
//
//	[server]
//	listen = ":8080"
//
//	[content.secrets]
//	events = "..."
//	portraits = "..."
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/reactiveshots/portfolio/pkg/content"
	perrors "github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/gallery"
	"github.com/reactiveshots/portfolio/pkg/mailer"
	"github.com/reactiveshots/portfolio/pkg/measure"
)

// AppName names the config and cache directories.
const AppName = "reactiveshots"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Duration is a time.Duration that reads and writes as "10s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Content ContentConfig `toml:"content"`
	Mailer  MailerConfig  `toml:"mailer"`
	Cache   CacheConfig   `toml:"cache"`
	Measure MeasureConfig `toml:"measure"`
	Rotator RotatorConfig `toml:"rotator"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Listen          string   `toml:"listen"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// ContentConfig locates the content API.
type ContentConfig struct {
	BaseURL            string            `toml:"base_url"`
	AlbumPath          string            `toml:"album_path"`
	CategoryAlbumsPath string            `toml:"category_albums_path"`
	Secrets            map[string]string `toml:"secrets"`
	AlbumTTL           Duration          `toml:"album_ttl"`
}

// MailerConfig configures contact-form relaying.
type MailerConfig struct {
	Endpoint  string   `toml:"endpoint"`
	RateEvery Duration `toml:"rate_every"` // one submission per interval per client
	RateBurst int      `toml:"rate_burst"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir,omitempty"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix,omitempty"`
}

// MeasureConfig bounds image measurement.
type MeasureConfig struct {
	Timeout     Duration `toml:"timeout"`
	Concurrency int      `toml:"concurrency"`
}

// RotatorConfig configures the featured-photo rotator.
type RotatorConfig struct {
	RotateInterval  Duration `toml:"rotate_interval"`
	RefreshInterval Duration `toml:"refresh_interval"`
	Count           int      `toml:"count"`
}

// Default returns the built-in configuration.
func Default() Config {
	cc := content.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Listen:          ":8080",
			RequestTimeout:  Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Content: ContentConfig{
			BaseURL:            cc.BaseURL,
			AlbumPath:          cc.AlbumPath,
			CategoryAlbumsPath: cc.CategoryAlbumsPath,
			Secrets:            map[string]string{},
			AlbumTTL:           Duration{10 * time.Minute},
		},
		Mailer: MailerConfig{
			Endpoint:  mailer.DefaultEndpoint,
			RateEvery: Duration{time.Minute},
			RateBurst: 3,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Measure: MeasureConfig{
			Timeout:     Duration{measure.DefaultTimeout},
			Concurrency: measure.DefaultConcurrency,
		},
		Rotator: RotatorConfig{
			RotateInterval:  Duration{gallery.DefaultRotateInterval},
			RefreshInterval: Duration{gallery.DefaultRefreshInterval},
			Count:           gallery.DefaultFeaturedCount,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/reactiveshots/config.toml,
// falling back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the configuration. An empty path loads [DefaultPath], where a
// missing file is not an error; an explicit path must exist. Environment
// overrides are applied and the result validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, fmt.Errorf("config path: %w", err)
		}
		path = p
	}

	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Decode(f)
}

// Decode overlays TOML from r onto c.
func (c *Config) Decode(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown config key: %s", undecoded[0])
	}
	return nil
}

// Encode writes c as TOML. Secrets are masked unless reveal is set.
func (c Config) Encode(w io.Writer, reveal bool) error {
	out := c
	out.Content.Secrets = make(map[string]string, len(c.Content.Secrets))
	for k, v := range c.Content.Secrets {
		if !reveal {
			v = mask(v)
		}
		out.Content.Secrets[k] = v
	}
	if !reveal && out.Cache.RedisPassword != "" {
		out.Cache.RedisPassword = mask(out.Cache.RedisPassword)
	}
	return toml.NewEncoder(w).Encode(out)
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
