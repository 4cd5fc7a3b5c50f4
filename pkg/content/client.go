package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reactiveshots/portfolio/pkg/buildinfo"
	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// maxBodySize bounds a content API response.
	maxBodySize = 16 << 20
)

// Config locates the content API.
type Config struct {
	BaseURL            string            // e.g. https://aura-api.reactiveshots.com
	AlbumPath          string            // path template; "{category}" is replaced by the slug
	CategoryAlbumsPath string            // path of the featured payload
	Secrets            map[string]string // per-category "secret" query parameter
	TTL                time.Duration     // album cache lifetime; zero selects cache.TTLAlbum
}

// DefaultConfig returns the production API layout without secrets.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://aura-api.reactiveshots.com",
		AlbumPath:          "/api/album/geeth/{category}/",
		CategoryAlbumsPath: "/api/category-albums",
	}
}

// AlbumURL returns the album endpoint for a category slug.
func (c Config) AlbumURL(slug string) (string, error) {
	if _, ok := catalog.Lookup(slug); !ok {
		return "", errors.New(errors.ErrCodeInvalidCategory, "unknown category: %q", slug)
	}
	u, err := c.join(strings.ReplaceAll(c.AlbumPath, "{category}", slug))
	if err != nil {
		return "", err
	}
	if secret := c.Secrets[slug]; secret != "" {
		q := u.Query()
		q.Set("secret", secret)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// CategoryAlbumsURL returns the featured payload endpoint.
func (c Config) CategoryAlbumsURL() (string, error) {
	u, err := c.join(c.CategoryAlbumsPath)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (c Config) join(path string) (*url.URL, error) {
	if err := errors.ValidateURL(c.BaseURL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "content base URL")
	}
	base, err := url.Parse(strings.TrimSuffix(c.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "content base URL")
	}
	return base.JoinPath(path), nil
}

// Client fetches albums from the content API.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	cfg     Config
	headers map[string]string
}

// NewClient creates a Client. A nil cache disables caching; a nil keyer
// uses [cache.NewDefaultKeyer].
func NewClient(c cache.Cache, keyer cache.Keyer, cfg Config) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.TTLAlbum
	}
	return &Client{
		http:  &http.Client{Timeout: httpTimeout},
		cache: c,
		keyer: keyer,
		ttl:   ttl,
		cfg:   cfg,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": buildinfo.UserAgent(),
		},
	}
}

// Album fetches and validates the album for a category slug.
func (c *Client) Album(ctx context.Context, slug string, refresh bool) (*Album, error) {
	endpoint, err := c.cfg.AlbumURL(slug)
	if err != nil {
		return nil, err
	}

	var album Album
	err = c.cached(ctx, c.keyer.AlbumKey(slug), refresh, &album, func() error {
		var w wireAlbum
		if err := c.get(ctx, endpoint, &w); err != nil {
			return err
		}
		a, err := w.validate(slug)
		if err != nil {
			return err
		}
		album = *a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", slug, err)
	}
	return &album, nil
}

// CategoryAlbums fetches every category's photos from the featured payload,
// keyed by category slug. Categories the catalog does not know are skipped.
func (c *Client) CategoryAlbums(ctx context.Context, refresh bool) (map[string][]Photo, error) {
	endpoint, err := c.cfg.CategoryAlbumsURL()
	if err != nil {
		return nil, err
	}

	var photos map[string][]Photo
	err = c.cached(ctx, c.keyer.FeaturedKey(), refresh, &photos, func() error {
		var w []wireCategoryAlbum
		if err := c.get(ctx, endpoint, &w); err != nil {
			return err
		}
		photos = validateCategoryAlbums(w)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("category albums: %w", err)
	}
	return photos, nil
}

// cached retrieves v from cache or executes fetch and caches the result.
// The fetch function should populate v; on success, v is stored as JSON.
func (c *Client) cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, "album")
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, "album")
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "album", len(data))
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	body, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAlbum, err, "decode response")
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
