package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/content"
	"github.com/reactiveshots/portfolio/pkg/gallery"
	"github.com/reactiveshots/portfolio/pkg/measure"
)

// ContentConfig returns the content client configuration.
func (c Config) ContentConfig() content.Config {
	secrets := make(map[string]string, len(c.Content.Secrets))
	for k, v := range c.Content.Secrets {
		secrets[k] = v
	}
	return content.Config{
		BaseURL:            c.Content.BaseURL,
		AlbumPath:          c.Content.AlbumPath,
		CategoryAlbumsPath: c.Content.CategoryAlbumsPath,
		Secrets:            secrets,
		TTL:                c.Content.AlbumTTL.Duration,
	}
}

// MeasureOptions returns the measurement bounds.
func (c Config) MeasureOptions(logger *log.Logger) measure.Options {
	return measure.Options{
		Timeout:     c.Measure.Timeout.Duration,
		Concurrency: c.Measure.Concurrency,
		Logger:      logger,
	}
}

// RotatorOptions returns the rotator settings.
func (c Config) RotatorOptions(logger *log.Logger) gallery.RotatorOptions {
	return gallery.RotatorOptions{
		RotateInterval:  c.Rotator.RotateInterval.Duration,
		RefreshInterval: c.Rotator.RefreshInterval.Duration,
		Count:           c.Rotator.Count,
		Logger:          logger,
	}
}

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// the XDG cache directory (~/.cache/reactiveshots/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		return cache.NewMemoryCache(5 * time.Minute), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	}
}

// Keyer returns the cache keyer, scoped by cache.prefix when set.
func (c Config) Keyer() cache.Keyer {
	k := cache.NewDefaultKeyer()
	if p := c.Cache.Prefix; p != "" {
		if !strings.HasSuffix(p, ":") {
			p += ":"
		}
		return cache.NewScopedKeyer(k, p)
	}
	return k
}
