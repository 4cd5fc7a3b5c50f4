package gallery

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/content"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/masonry"
	"github.com/reactiveshots/portfolio/pkg/measure"
)

type fakeSource struct {
	albums map[string]*content.Album
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Album(ctx context.Context, slug string, refresh bool) (*content.Album, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.albums[slug]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return a, nil
}

type fakeMeasurer struct {
	sizes map[string]measure.Size
	calls atomic.Int32
}

func (f *fakeMeasurer) Measure(ctx context.Context, url string) (measure.Size, error) {
	f.calls.Add(1)
	s, ok := f.sizes[url]
	if !ok {
		return measure.Size{}, fmt.Errorf("no size for %s", url)
	}
	return s, nil
}

func squareAlbum(n int) (*content.Album, map[string]measure.Size) {
	a := &content.Album{Name: "Events", Slug: "events"}
	sizes := make(map[string]measure.Size)
	for i := range n {
		u := fmt.Sprintf("https://img.test/%d.jpg", i)
		a.Photos = append(a.Photos, content.Photo{ImageURL: u + "?full", CompressedImageURL: u})
		sizes[u] = measure.Size{Width: 800, Height: 800}
	}
	a.ImageCount = n
	return a, sizes
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newTestRunner(t *testing.T, album *content.Album, sizes map[string]measure.Size) (*Runner, *fakeSource, *fakeMeasurer) {
	t.Helper()
	src := &fakeSource{albums: map[string]*content.Album{"events": album}}
	m := &fakeMeasurer{sizes: sizes}
	mc := cache.NewMemoryCache(0)
	t.Cleanup(func() { mc.Close() })
	return NewRunner(src, m, mc, nil, quietLogger()), src, m
}

func TestRunnerLayout(t *testing.T) {
	album, sizes := squareAlbum(4)
	r, _, _ := newTestRunner(t, album, sizes)

	res, err := r.Layout(context.Background(), "events", 1000, false)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	if res.Category.Slug != "events" || res.Album != album {
		t.Errorf("result category/album = %q/%v", res.Category.Slug, res.Album)
	}
	if len(res.Layout.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Layout.Rows))
	}
	if n := len(res.Layout.Rows[0].Tiles); n != 3 {
		t.Errorf("first row has %d tiles, want 3", n)
	}
	if w := res.Layout.Rows[1].Tiles[0].Width; math.Abs(w-1000) > 0.01 {
		t.Errorf("second row width = %v, want 1000", w)
	}

	if len(res.Tiles) != 4 {
		t.Fatalf("tiles = %d, want 4", len(res.Tiles))
	}
	for i, tile := range res.Tiles {
		if tile.Index != i || tile.Photo != album.Photos[i] {
			t.Errorf("tile %d paired with photo %+v (index %d)", i, tile.Photo, tile.Index)
		}
	}
	if res.Tiles[3].Row != 1 || res.Tiles[3].Y != res.Layout.Rows[1].Y {
		t.Errorf("last tile row/y = %d/%v", res.Tiles[3].Row, res.Tiles[3].Y)
	}
	if res.Height != res.Layout.Height() {
		t.Errorf("Height = %v, want %v", res.Height, res.Layout.Height())
	}
	if res.Stats.Images != 4 || res.Stats.Fallbacks != 0 || res.Stats.Rows != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestRunnerLayoutCaches(t *testing.T) {
	album, sizes := squareAlbum(5)
	r, _, m := newTestRunner(t, album, sizes)
	ctx := context.Background()

	first, err := r.Layout(ctx, "events", 1200, false)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first layout should be a cache miss")
	}

	second, err := r.Layout(ctx, "events", 1200, false)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second layout should be a cache hit")
	}
	if got := m.calls.Load(); got != 5 {
		t.Errorf("sizes should be measured once each, calls = %d", got)
	}

	other, err := r.Layout(ctx, "events", 800, false)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if other.CacheInfo.LayoutHit {
		t.Error("a different width should not hit the cache")
	}
}

func TestRunnerLayoutCacheKeyIncludesOptions(t *testing.T) {
	album, sizes := squareAlbum(4)
	src := &fakeSource{albums: map[string]*content.Album{"events": album}}
	shared := cache.NewMemoryCache(0)
	t.Cleanup(func() { shared.Close() })
	ctx := context.Background()

	a := NewRunner(src, &fakeMeasurer{sizes: sizes}, shared, nil, quietLogger())
	b := NewRunner(src, &fakeMeasurer{sizes: sizes}, shared, nil, quietLogger())
	b.LayoutOptions = []masonry.Option{masonry.WithMinRowHeight(100)}

	if _, err := a.Layout(ctx, "events", 1000, false); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	res, err := b.Layout(ctx, "events", 1000, false)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("runners with different options should not share a cached layout")
	}
	if res.Layout.TargetRowHeight != 250 {
		t.Errorf("TargetRowHeight = %v, want 250", res.Layout.TargetRowHeight)
	}

	for name, opts := range map[string][]masonry.Option{
		"divisor":      {masonry.WithRowHeightDivisor(2)},
		"forced ratio": {masonry.WithForcedWidthRatio(0.25)},
		"forced max":   {masonry.WithMaxForcedWidth(200)},
	} {
		c := NewRunner(src, &fakeMeasurer{sizes: sizes}, shared, nil, quietLogger())
		c.LayoutOptions = opts
		res, err := c.Layout(ctx, "events", 1000, false)
		if err != nil {
			t.Fatalf("%s: Layout() error: %v", name, err)
		}
		if res.CacheInfo.LayoutHit {
			t.Errorf("%s: option change should miss the cache", name)
		}
	}
}

func TestRunnerLayoutNotReady(t *testing.T) {
	album, sizes := squareAlbum(2)
	r, src, _ := newTestRunner(t, album, sizes)

	for _, w := range []float64{0, -10, math.NaN()} {
		_, err := r.Layout(context.Background(), "events", w, false)
		if !errors.Is(err, errors.ErrCodeInvalidWidth) {
			t.Errorf("Layout(width=%v) error = %v, want INVALID_WIDTH", w, err)
		}
	}
	if src.calls.Load() != 0 {
		t.Error("an unmeasured container should not fetch the album")
	}
}

func TestRunnerUnknownCategory(t *testing.T) {
	album, sizes := squareAlbum(1)
	r, _, _ := newTestRunner(t, album, sizes)

	_, _, err := r.Images(context.Background(), "weddings", false)
	if !errors.Is(err, errors.ErrCodeInvalidCategory) {
		t.Errorf("Images() error = %v, want INVALID_CATEGORY", err)
	}
}

func TestRunnerFetchError(t *testing.T) {
	r := NewRunner(&fakeSource{err: cache.ErrNetwork}, &fakeMeasurer{}, nil, nil, quietLogger())

	_, err := r.Layout(context.Background(), "cars", 900, false)
	if !stderrors.Is(err, cache.ErrNetwork) {
		t.Errorf("Layout() error = %v, want ErrNetwork", err)
	}
}

func TestRunnerImagesFallback(t *testing.T) {
	album, sizes := squareAlbum(3)
	delete(sizes, album.Photos[1].CompressedImageURL)
	r, _, _ := newTestRunner(t, album, sizes)

	images, got, err := r.Images(context.Background(), "events", false)
	if err != nil {
		t.Fatalf("Images() error: %v", err)
	}
	if got != album || len(images) != 3 {
		t.Fatalf("Images() returned %d images", len(images))
	}
	if !images[1].Fallback || images[0].Fallback || images[2].Fallback {
		t.Errorf("only the unmeasurable image should fall back: %+v", images)
	}
}

type fakeFeatured struct {
	mu     sync.Mutex
	photos map[string][]content.Photo
	err    error
	calls  int
}

func (f *fakeFeatured) CategoryAlbums(ctx context.Context, refresh bool) (map[string][]content.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.photos, f.err
}

func (f *fakeFeatured) set(photos map[string][]content.Photo, err error) {
	f.mu.Lock()
	f.photos, f.err = photos, err
	f.mu.Unlock()
}

func photoSet(prefix string, n int) []content.Photo {
	var ps []content.Photo
	for i := range n {
		ps = append(ps, content.Photo{ImageURL: fmt.Sprintf("%s-%d.jpg", prefix, i)})
	}
	return ps
}

func TestRotatorRefresh(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{
		"cars":      photoSet("car", 10),
		"events":    photoSet("event", 2),
		"portraits": photoSet("portrait", 4),
	}}
	r := NewRotator(src, RotatorOptions{Rand: rand.NewSource(1), Logger: quietLogger()})

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	snap := r.Snapshot()

	var order []string
	for _, c := range snap.Categories {
		order = append(order, c.Slug)
	}
	if fmt.Sprint(order) != "[events portraits cars]" {
		t.Errorf("snapshot order = %v", order)
	}

	cars, _ := snap.Lookup("cars")
	if len(cars.Photos) != DefaultFeaturedCount {
		t.Errorf("cars has %d photos, want %d", len(cars.Photos), DefaultFeaturedCount)
	}
	if cars.Title != "Cars" {
		t.Errorf("Title = %q", cars.Title)
	}
	seen := map[string]bool{}
	for _, p := range cars.Photos {
		if seen[p.ImageURL] {
			t.Errorf("duplicate featured photo %s", p.ImageURL)
		}
		seen[p.ImageURL] = true
	}
	if events, _ := snap.Lookup("events"); len(events.Photos) != 2 {
		t.Errorf("events has %d photos, want 2", len(events.Photos))
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestRotatorDeterministicShuffle(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{"cars": photoSet("car", 20)}}
	pick := func() []content.Photo {
		r := NewRotator(src, RotatorOptions{Rand: rand.NewSource(42), Logger: quietLogger()})
		if err := r.Refresh(context.Background()); err != nil {
			t.Fatal(err)
		}
		c, _ := r.Snapshot().Lookup("cars")
		return c.Photos
	}
	a, b := pick(), pick()
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Errorf("same seed should pick the same photos:\n%v\n%v", a, b)
	}
}

func TestRotatorAdvance(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{
		"cars":   photoSet("car", 4),
		"events": photoSet("event", 3),
	}}
	r := NewRotator(src, RotatorOptions{Rand: rand.NewSource(1), Logger: quietLogger()})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	for range 5 {
		r.Advance()
	}
	snap := r.Snapshot()
	if cars, _ := snap.Lookup("cars"); cars.Current != 1 {
		t.Errorf("cars current = %d, want 1", cars.Current)
	}
	events, _ := snap.Lookup("events")
	if events.Current != 2 {
		t.Errorf("events current = %d, want 2", events.Current)
	}
	if p, ok := events.CurrentPhoto(); !ok || p != events.Photos[2] {
		t.Errorf("CurrentPhoto() = %+v, %v", p, ok)
	}
}

func TestRotatorRefreshErrorKeepsSnapshot(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{"cars": photoSet("car", 3)}}
	r := NewRotator(src, RotatorOptions{Rand: rand.NewSource(1), Logger: quietLogger()})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := r.Snapshot()

	src.set(nil, cache.ErrNetwork)
	if err := r.Refresh(context.Background()); !stderrors.Is(err, cache.ErrNetwork) {
		t.Fatalf("Refresh() error = %v, want ErrNetwork", err)
	}
	after := r.Snapshot()
	if fmt.Sprint(before.Categories) != fmt.Sprint(after.Categories) {
		t.Error("a failed refresh should keep the previous selection")
	}
}

func TestRotatorSnapshotIsCopy(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{"cars": photoSet("car", 2)}}
	r := NewRotator(src, RotatorOptions{Rand: rand.NewSource(1), Logger: quietLogger()})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := r.Snapshot()
	snap.Categories[0].Photos[0].ImageURL = "mutated"
	if again, _ := r.Snapshot().Lookup("cars"); again.Photos[0].ImageURL == "mutated" {
		t.Error("Snapshot() should return a copy")
	}
}

func TestRotatorStartStop(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{"cars": photoSet("car", 4)}}
	r := NewRotator(src, RotatorOptions{
		RotateInterval:  5 * time.Millisecond,
		RefreshInterval: time.Hour,
		Rand:            rand.NewSource(1),
		Logger:          quietLogger(),
	})

	r.Start(context.Background())
	r.Start(context.Background()) // no-op while running

	deadline := time.Now().Add(2 * time.Second)
	for {
		if cars, ok := r.Snapshot().Lookup("cars"); ok && cars.Current > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("rotator never advanced")
		}
		time.Sleep(time.Millisecond)
	}

	r.Stop()
	r.Stop() // idempotent

	src.mu.Lock()
	calls := src.calls
	src.mu.Unlock()
	if calls != 1 {
		t.Errorf("CategoryAlbums calls = %d, want 1", calls)
	}
}

func TestRotatorStartFailureIsNotFatal(t *testing.T) {
	src := &fakeFeatured{err: cache.ErrNetwork}
	r := NewRotator(src, RotatorOptions{
		RotateInterval:  time.Hour,
		RefreshInterval: 5 * time.Millisecond,
		Rand:            rand.NewSource(1),
		Logger:          quietLogger(),
	})

	r.Start(context.Background())
	defer r.Stop()

	if len(r.Snapshot().Categories) != 0 {
		t.Error("snapshot should be empty before a successful refresh")
	}

	src.set(map[string][]content.Photo{"events": photoSet("event", 1)}, nil)
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot().Categories) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("rotator never recovered")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRotatorRestartsAfterParentCancel(t *testing.T) {
	src := &fakeFeatured{photos: map[string][]content.Photo{"cars": photoSet("car", 4)}}
	r := NewRotator(src, RotatorOptions{
		RotateInterval:  time.Hour,
		RefreshInterval: time.Hour,
		Rand:            rand.NewSource(1),
		Logger:          quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	cancel()
	<-done

	r.mu.Lock()
	stale := r.cancel != nil || r.done != nil
	r.mu.Unlock()
	if stale {
		t.Fatal("loop state should be cleared after the parent context ends")
	}

	r.Start(context.Background())
	defer r.Stop()

	src.mu.Lock()
	calls := src.calls
	src.mu.Unlock()
	if calls != 2 {
		t.Errorf("CategoryAlbums calls = %d, want 2 (restart should refresh)", calls)
	}
}
