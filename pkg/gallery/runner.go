package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/content"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/masonry"
	"github.com/reactiveshots/portfolio/pkg/measure"
	"github.com/reactiveshots/portfolio/pkg/observability"
)

// AlbumSource provides albums. *content.Client implements it.
type AlbumSource interface {
	Album(ctx context.Context, slug string, refresh bool) (*content.Album, error)
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators; multiple goroutines
// can safely use the same Runner.
type Runner struct {
	Content  AlbumSource
	Measurer measure.Measurer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger

	// MeasureOptions bounds image measurement.
	MeasureOptions measure.Options

	// LayoutOptions are passed to masonry.Compute.
	LayoutOptions []masonry.Option
}

// NewRunner creates a runner. Measurements are memoized in c.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(src AlbumSource, m measure.Measurer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Content:        src,
		Measurer:       measure.NewCachedMeasurer(m, c, keyer),
		Cache:          c,
		Keyer:          keyer,
		Logger:         logger,
		MeasureOptions: measure.Options{Logger: logger},
	}
}

// Tile is a placed photo.
type Tile struct {
	masonry.Tile
	Row   int           `json:"row"`
	Y     float64       `json:"y"`
	Photo content.Photo `json:"photo"`
}

// Result is the outcome of [Runner.Layout].
type Result struct {
	Category catalog.Category `json:"category"`
	Album    *content.Album   `json:"album"`
	Layout   masonry.Layout   `json:"layout"`
	Tiles    []Tile           `json:"tiles"`
	Height   float64          `json:"height"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats records pipeline timings.
type Stats struct {
	FetchTime   time.Duration `json:"fetch_ns"`
	MeasureTime time.Duration `json:"measure_ns"`
	LayoutTime  time.Duration `json:"layout_ns"`
	Images      int           `json:"images"`
	Fallbacks   int           `json:"fallbacks"`
	Rows        int           `json:"rows"`
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
}

// Images fetches an album and measures its photos. The returned images are
// in album order and index-aligned with album.Photos.
func (r *Runner) Images(ctx context.Context, slug string, refresh bool) ([]masonry.Image, *content.Album, error) {
	images, album, _, err := r.images(ctx, slug, refresh)
	return images, album, err
}

func (r *Runner) images(ctx context.Context, slug string, refresh bool) ([]masonry.Image, *content.Album, Stats, error) {
	var stats Stats
	if _, ok := catalog.Lookup(slug); !ok {
		return nil, nil, stats, errors.New(errors.ErrCodeInvalidCategory, "unknown category: %q", slug)
	}
	hooks := observability.Gallery()

	fetchStart := time.Now()
	album, err := r.Content.Album(ctx, slug, refresh)
	stats.FetchTime = time.Since(fetchStart)
	if err != nil {
		hooks.OnAlbumFetch(ctx, slug, 0, false, stats.FetchTime, err)
		return nil, nil, stats, fmt.Errorf("fetch: %w", err)
	}
	hooks.OnAlbumFetch(ctx, slug, len(album.Photos), false, stats.FetchTime, nil)
	r.Logger.Debug("fetched album", "category", slug, "photos", len(album.Photos), "duration", stats.FetchTime)

	measureStart := time.Now()
	opts := r.MeasureOptions
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	images, err := measure.MeasureAll(ctx, r.Measurer, album.URLs(), opts)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("measure: %w", err)
	}
	stats.MeasureTime = time.Since(measureStart)
	stats.Images = len(images)
	stats.Fallbacks = measure.Fallbacks(images)
	hooks.OnMeasureComplete(ctx, slug, len(images)-stats.Fallbacks, stats.Fallbacks, stats.MeasureTime)

	r.Logger.Info("measured images",
		"category", slug,
		"images", stats.Images,
		"fallbacks", stats.Fallbacks,
		"duration", stats.MeasureTime)

	return images, album, stats, nil
}

// Layout runs the full pipeline for a container width. A width that is not
// positive means the container has not been measured yet and returns an
// [errors.ErrCodeInvalidWidth] error.
func (r *Runner) Layout(ctx context.Context, slug string, width float64, refresh bool) (*Result, error) {
	if err := errors.ValidateWidth(width); err != nil {
		return nil, err
	}

	images, album, stats, err := r.images(ctx, slug, refresh)
	if err != nil {
		return nil, err
	}
	category, _ := catalog.Lookup(slug)

	observability.Gallery().OnLayoutStart(ctx, slug, width, len(images))
	layoutStart := time.Now()
	layout, hit, err := r.ComputeWithCacheInfo(ctx, images, width)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	stats.LayoutTime = time.Since(layoutStart)
	stats.Rows = len(layout.Rows)
	observability.Gallery().OnLayoutComplete(ctx, slug, stats.Rows, stats.LayoutTime)

	r.Logger.Info("computed layout",
		"category", slug,
		"width", width,
		"rows", stats.Rows,
		"cached", hit,
		"duration", stats.LayoutTime)

	return &Result{
		Category:  category,
		Album:     album,
		Layout:    layout,
		Tiles:     pairTiles(layout, album.Photos),
		Height:    layout.Height(),
		Stats:     stats,
		CacheInfo: CacheInfo{LayoutHit: hit},
	}, nil
}

// ComputeWithCacheInfo packs images for width, memoizing the layout.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, images []masonry.Image, width float64) (masonry.Layout, bool, error) {
	imagesData, err := json.Marshal(images)
	if err != nil {
		return masonry.Layout{}, false, fmt.Errorf("serialize images for cache key: %w", err)
	}
	params := masonry.Resolve(width, r.LayoutOptions...)
	cacheKey := r.Keyer.LayoutKey(cache.Hash(imagesData), cache.LayoutKeyOpts{
		Width:            width,
		Gap:              params.Gap,
		TargetRowHeight:  params.TargetRowHeight,
		ForcedWidthRatio: params.ForcedWidthRatio,
		MaxForcedWidth:   params.MaxForcedWidth,
	})

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached masonry.Layout
		if json.Unmarshal(data, &cached) == nil {
			return cached, true, nil
		}
	}

	layout := masonry.Compute(images, width, r.LayoutOptions...)

	if data, err := json.Marshal(layout); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}
	return layout, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func pairTiles(layout masonry.Layout, photos []content.Photo) []Tile {
	tiles := make([]Tile, 0, len(photos))
	for ri, row := range layout.Rows {
		for _, t := range row.Tiles {
			tile := Tile{Tile: t, Row: ri, Y: row.Y}
			if t.Index >= 0 && t.Index < len(photos) {
				tile.Photo = photos[t.Index]
			}
			tiles = append(tiles, tile)
		}
	}
	return tiles
}
