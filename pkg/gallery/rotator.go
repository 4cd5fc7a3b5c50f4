package gallery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/content"
)

// Rotator defaults.
const (
	DefaultRotateInterval  = 5 * time.Second
	DefaultRefreshInterval = 30 * time.Second
	DefaultFeaturedCount   = 4
)

// FeaturedSource provides every category's photos. *content.Client implements it.
type FeaturedSource interface {
	CategoryAlbums(ctx context.Context, refresh bool) (map[string][]content.Photo, error)
}

// RotatorOptions configures a [Rotator]. Zero values select the defaults.
type RotatorOptions struct {
	RotateInterval  time.Duration // how often the displayed photo advances
	RefreshInterval time.Duration // how often a new selection is fetched
	Count           int           // photos kept per category
	Rand            rand.Source   // shuffle source; seeded from the clock when nil
	Logger          *log.Logger
}

// Featured is a point-in-time copy of the rotator state.
type Featured struct {
	Categories []FeaturedCategory `json:"categories"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// FeaturedCategory holds the selection for one category.
type FeaturedCategory struct {
	Slug    string          `json:"slug"`
	Title   string          `json:"title"`
	Photos  []content.Photo `json:"photos"`
	Current int             `json:"current"` // index of the displayed photo
}

// CurrentPhoto returns the displayed photo, if any.
func (c FeaturedCategory) CurrentPhoto() (content.Photo, bool) {
	if len(c.Photos) == 0 {
		return content.Photo{}, false
	}
	return c.Photos[c.Current%len(c.Photos)], true
}

// Lookup returns the selection for slug.
func (f Featured) Lookup(slug string) (FeaturedCategory, bool) {
	for _, c := range f.Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return FeaturedCategory{}, false
}

// Rotator keeps a random selection of featured photos per category and
// rotates through it. All methods are safe for concurrent use.
type Rotator struct {
	source FeaturedSource
	opts   RotatorOptions

	mu        sync.Mutex
	rng       *rand.Rand
	photos    map[string][]content.Photo
	tick      int
	updatedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewRotator creates a stopped Rotator.
func NewRotator(src FeaturedSource, opts RotatorOptions) *Rotator {
	if opts.RotateInterval <= 0 {
		opts.RotateInterval = DefaultRotateInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Count <= 0 {
		opts.Count = DefaultFeaturedCount
	}
	if opts.Rand == nil {
		opts.Rand = rand.NewSource(time.Now().UnixNano())
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Rotator{
		source: src,
		opts:   opts,
		rng:    rand.New(opts.Rand),
		photos: make(map[string][]content.Photo),
	}
}

// Refresh fetches a new random selection. On error the previous selection
// is kept.
func (r *Rotator) Refresh(ctx context.Context) error {
	all, err := r.source.CategoryAlbums(ctx, true)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string][]content.Photo, len(all))
	for slug, photos := range all {
		picked := append([]content.Photo(nil), photos...)
		r.rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
		if len(picked) > r.opts.Count {
			picked = picked[:r.opts.Count]
		}
		next[slug] = picked
	}
	r.photos = next
	r.tick = 0
	r.updatedAt = time.Now()
	return nil
}

// Advance moves every category to its next photo.
func (r *Rotator) Advance() {
	r.mu.Lock()
	r.tick++
	r.mu.Unlock()
}

// Snapshot returns a copy of the current selection in catalog order.
func (r *Rotator) Snapshot() Featured {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := Featured{UpdatedAt: r.updatedAt}
	for _, c := range catalog.Categories() {
		photos, ok := r.photos[c.Slug]
		if !ok {
			continue
		}
		fc := FeaturedCategory{
			Slug:   c.Slug,
			Title:  c.Title(),
			Photos: append([]content.Photo(nil), photos...),
		}
		if len(photos) > 0 {
			fc.Current = r.tick % len(photos)
		}
		f.Categories = append(f.Categories, fc)
	}
	return f
}

// Start performs an initial refresh and then rotates and refreshes in the
// background until ctx is done or Stop is called. Once the loop has exited
// Start may be called again. A failed initial refresh
// is logged, not returned; the next refresh tick retries. Calling Start on
// a running Rotator is a no-op.
func (r *Rotator) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	if err := r.Refresh(ctx); err != nil {
		r.opts.Logger.Warn("featured photos unavailable", "err", err)
	}

	go r.loop(ctx, done)
}

// release forgets a loop that exited on its own, so a later Start can run.
// A newer generation started after Stop is left alone.
func (r *Rotator) release(done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != done {
		return
	}
	r.cancel()
	r.cancel, r.done = nil, nil
}

// Stop halts the background loop and waits for it to exit.
func (r *Rotator) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Rotator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer r.release(done)

	rotate := time.NewTicker(r.opts.RotateInterval)
	defer rotate.Stop()
	refresh := time.NewTicker(r.opts.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rotate.C:
			r.Advance()
		case <-refresh.C:
			if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				r.opts.Logger.Warn("refresh featured photos", "err", err)
			}
		}
	}
}
