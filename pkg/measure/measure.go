// Package measure resolves the natural pixel size of remote images.
//
// Only the image header is read: [image.DecodeConfig] with the JPEG, PNG,
// GIF and WebP decoders registered. [MeasureAll] measures many URLs
// concurrently with bounded parallelism and a per-image timeout. It never
// fails per image: an image that times out, cannot be fetched or cannot be
// decoded becomes the 300x200 fallback so the layout always has a ratio.
package measure

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/reactiveshots/portfolio/pkg/buildinfo"
	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/masonry"
	"github.com/reactiveshots/portfolio/pkg/observability"
)

// Defaults for [Options].
const (
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 8
)

// maxHeaderBytes bounds how much of an image is read to find its size.
const maxHeaderBytes = 1 << 20

// Size is an image's natural size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Measurer resolves the natural size of an image URL.
type Measurer interface {
	Measure(ctx context.Context, url string) (Size, error)
}

// HTTPMeasurer fetches images over HTTP and decodes their headers.
type HTTPMeasurer struct {
	http    *http.Client
	headers map[string]string
}

// NewHTTPMeasurer creates an HTTPMeasurer. The client's own timeout is left
// unset; callers bound each measurement through the context.
func NewHTTPMeasurer() *HTTPMeasurer {
	return &HTTPMeasurer{
		http:    &http.Client{},
		headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
	}
}

// Measure implements [Measurer].
func (m *HTTPMeasurer) Measure(ctx context.Context, url string) (Size, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Size{}, err
	}
	for k, v := range m.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := m.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return Size{}, fmt.Errorf("%w: %v", cache.ErrNetwork, err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return Size{}, fmt.Errorf("%w: status %d", cache.ErrNetwork, resp.StatusCode)
	}

	cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, maxHeaderBytes))
	if err != nil {
		return Size{}, fmt.Errorf("decode %s: %w", url, err)
	}
	return Size{Width: cfg.Width, Height: cfg.Height}, nil
}

// CachedMeasurer memoizes another Measurer's results in a [cache.Cache].
// Failures are never cached so a transient error does not pin the fallback.
type CachedMeasurer struct {
	inner Measurer
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCachedMeasurer wraps inner with caching for [cache.TTLSize].
func NewCachedMeasurer(inner Measurer, c cache.Cache, keyer cache.Keyer) *CachedMeasurer {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedMeasurer{inner: inner, cache: c, keyer: keyer, ttl: cache.TTLSize}
}

// Measure implements [Measurer].
func (m *CachedMeasurer) Measure(ctx context.Context, url string) (Size, error) {
	key := m.keyer.SizeKey(url)
	hooks := observability.Cache()

	if data, ok, _ := m.cache.Get(ctx, key); ok {
		var s Size
		if json.Unmarshal(data, &s) == nil {
			hooks.OnCacheHit(ctx, "size")
			return s, nil
		}
	}
	hooks.OnCacheMiss(ctx, "size")

	s, err := m.inner.Measure(ctx, url)
	if err != nil {
		return Size{}, err
	}
	if data, err := json.Marshal(s); err == nil {
		if m.cache.Set(ctx, key, data, m.ttl) == nil {
			hooks.OnCacheSet(ctx, "size", len(data))
		}
	}
	return s, nil
}

// Options configures [MeasureAll]. Zero values select the defaults.
type Options struct {
	Timeout     time.Duration // per-image bound
	Concurrency int           // images measured at once
	Logger      *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// MeasureAll measures urls concurrently and returns one image per URL in
// input order. Images that cannot be measured within opts.Timeout become
// fallbacks. The only error is the cancellation of ctx itself.
func MeasureAll(ctx context.Context, m Measurer, urls []string, opts Options) ([]masonry.Image, error) {
	opts = opts.withDefaults()
	images := make([]masonry.Image, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, url := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			images[i] = measureOne(gctx, m, url, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

func measureOne(ctx context.Context, m Measurer, url string, opts Options) masonry.Image {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	s, err := m.Measure(ctx, url)
	if err != nil {
		opts.Logger.Debug("image size unavailable, using fallback", "url", url, "err", err)
		return masonry.FallbackImage(url)
	}
	img := masonry.NewImage(url, float64(s.Width), float64(s.Height))
	if img.Fallback {
		opts.Logger.Debug("image has no usable size, using fallback", "url", url, "width", s.Width, "height", s.Height)
	}
	return img
}

// Fallbacks counts images that use the fallback size.
func Fallbacks(images []masonry.Image) int {
	n := 0
	for _, img := range images {
		if img.Fallback {
			n++
		}
	}
	return n
}
