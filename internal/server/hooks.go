package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reactiveshots/portfolio/pkg/observability"
)

// LogHooks implements the observability hooks on top of a logger and
// keeps running counters for /healthz.
type LogHooks struct {
	logger *log.Logger

	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	upstreamErrors atomic.Int64
	layouts        atomic.Int64
}

// HookStats is a snapshot of the counters.
type HookStats struct {
	CacheHits      int64 `json:"cache_hits"`
	CacheMisses    int64 `json:"cache_misses"`
	UpstreamErrors int64 `json:"upstream_errors"`
	Layouts        int64 `json:"layouts"`
}

// NewLogHooks creates hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

// Register installs h as the gallery, cache and HTTP hooks.
func (h *LogHooks) Register() {
	observability.SetGalleryHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// Stats returns the current counters.
func (h *LogHooks) Stats() HookStats {
	return HookStats{
		CacheHits:      h.cacheHits.Load(),
		CacheMisses:    h.cacheMisses.Load(),
		UpstreamErrors: h.upstreamErrors.Load(),
		Layouts:        h.layouts.Load(),
	}
}

func (h *LogHooks) OnAlbumFetch(ctx context.Context, slug string, photos int, cached bool, d time.Duration, err error) {
	if err != nil {
		h.upstreamErrors.Add(1)
		h.logger.Warn("album fetch failed", "category", slug, "duration", d, "err", err)
		return
	}
	h.logger.Debug("album fetched", "category", slug, "photos", photos, "duration", d)
}

func (h *LogHooks) OnMeasureComplete(ctx context.Context, slug string, measured, fallbacks int, d time.Duration) {
	if fallbacks > 0 {
		h.logger.Warn("images using fallback size", "category", slug, "fallbacks", fallbacks, "measured", measured)
	}
}

func (h *LogHooks) OnLayoutStart(ctx context.Context, slug string, width float64, images int) {
	h.logger.Debug("layout start", "category", slug, "width", width, "images", images)
}

func (h *LogHooks) OnLayoutComplete(ctx context.Context, slug string, rows int, d time.Duration) {
	h.layouts.Add(1)
}

func (h *LogHooks) OnCacheHit(ctx context.Context, keyType string)  { h.cacheHits.Add(1) }
func (h *LogHooks) OnCacheMiss(ctx context.Context, keyType string) { h.cacheMisses.Add(1) }
func (h *LogHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(ctx context.Context, method, host, path string) {}

func (h *LogHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	if status >= 500 {
		h.upstreamErrors.Add(1)
	}
	h.logger.Debug("upstream", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.upstreamErrors.Add(1)
	h.logger.Warn("upstream error", "method", method, "host", host, "path", path, "err", err)
}
