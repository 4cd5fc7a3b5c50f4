package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/reactiveshots/portfolio/pkg/catalog"
	perrors "github.com/reactiveshots/portfolio/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REACTIVESHOTS_"

// ApplyEnv overrides fields from environment variables found by lookup.
//
//	REACTIVESHOTS_LISTEN               server.listen
//	REACTIVESHOTS_CONTENT_URL          content.base_url
//	REACTIVESHOTS_SECRET_<CATEGORY>    content.secrets (REAL_ESTATE for real-estate)
//	REACTIVESHOTS_MAILER_URL           mailer.endpoint
//	REACTIVESHOTS_CACHE                cache.backend
//	REACTIVESHOTS_CACHE_DIR            cache.dir
//	REACTIVESHOTS_REDIS_ADDR           cache.redis_addr
//	REACTIVESHOTS_REDIS_PASSWORD       cache.redis_password
//	REACTIVESHOTS_MEASURE_TIMEOUT      measure.timeout
//	REACTIVESHOTS_MEASURE_CONCURRENCY  measure.concurrency
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("LISTEN", &c.Server.Listen)
	str("CONTENT_URL", &c.Content.BaseURL)
	str("MAILER_URL", &c.Mailer.Endpoint)
	str("CACHE", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)

	for _, slug := range catalog.Slugs() {
		name := "SECRET_" + strings.ToUpper(strings.ReplaceAll(slug, "-", "_"))
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			if c.Content.Secrets == nil {
				c.Content.Secrets = make(map[string]string)
			}
			c.Content.Secrets[slug] = v
		}
	}

	if v, ok := lookup(EnvPrefix + "MEASURE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "%sMEASURE_TIMEOUT", EnvPrefix)
		}
		c.Measure.Timeout = Duration{d}
	}
	if v, ok := lookup(EnvPrefix + "MEASURE_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "%sMEASURE_CONCURRENCY", EnvPrefix)
		}
		c.Measure.Concurrency = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return invalid("server.listen is required")
	}
	if err := perrors.ValidateURL(c.Content.BaseURL); err != nil {
		return invalid("content.base_url: %s", perrors.UserMessage(err))
	}
	if !strings.Contains(c.Content.AlbumPath, "{category}") {
		return invalid("content.album_path must contain {category}")
	}
	for slug := range c.Content.Secrets {
		if _, ok := catalog.Lookup(slug); !ok {
			return invalid("content.secrets: unknown category %q", slug)
		}
	}
	if err := perrors.ValidateURL(c.Mailer.Endpoint); err != nil {
		return invalid("mailer.endpoint: %s", perrors.UserMessage(err))
	}
	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend must be one of file, memory, redis, none (got %q)", c.Cache.Backend)
	}
	if c.Measure.Timeout.Duration <= 0 {
		return invalid("measure.timeout must be positive")
	}
	if c.Measure.Concurrency <= 0 {
		return invalid("measure.concurrency must be positive")
	}
	if c.Rotator.Count <= 0 {
		return invalid("rotator.count must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return perrors.New(perrors.ErrCodeInvalidConfig, "%s", fmt.Sprintf(format, args...))
}
