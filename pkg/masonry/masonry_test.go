package masonry

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func squares(n int) []Image {
	imgs := make([]Image, n)
	for i := range imgs {
		imgs[i] = NewImage("", 600, 600)
	}
	return imgs
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestTargetRowHeight(t *testing.T) {
	tests := []struct {
		width float64
		want  float64
	}{
		{400, 300},
		{1000, 300},
		{1200, 300},
		{1600, 400},
		{2400, 600},
	}

	for _, tt := range tests {
		if got := TargetRowHeight(tt.width); got != tt.want {
			t.Errorf("TargetRowHeight(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestComputeNotReady(t *testing.T) {
	for _, w := range []float64{0, -100, math.NaN(), math.Inf(1)} {
		l := Compute(squares(3), w)
		if l.Ready() {
			t.Errorf("Compute(width=%v).Ready() = true, want false", w)
		}
		if len(l.Rows) != 0 {
			t.Errorf("Compute(width=%v) produced %d rows, want 0", w, len(l.Rows))
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	l := Compute(nil, 1000)
	if !l.Ready() {
		t.Error("empty input with valid width should be ready")
	}
	if len(l.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(l.Rows))
	}
	if l.Height() != 0 {
		t.Errorf("Height() = %v, want 0", l.Height())
	}
}

func TestComputeConcreteScenario(t *testing.T) {
	l := Compute(squares(4), 1000)

	if l.TargetRowHeight != 300 {
		t.Fatalf("TargetRowHeight = %v, want 300", l.TargetRowHeight)
	}
	if len(l.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(l.Rows))
	}
	if n := len(l.Rows[0].Tiles); n != 3 {
		t.Fatalf("row 0 has %d tiles, want 3", n)
	}
	if n := len(l.Rows[1].Tiles); n != 1 {
		t.Fatalf("row 1 has %d tiles, want 1", n)
	}

	wantFirst := (1000.0 - 32) / 3
	for i, tile := range l.Rows[0].Tiles {
		if !approx(tile.Width, wantFirst, 1e-9) {
			t.Errorf("row 0 tile %d width = %v, want %v", i, tile.Width, wantFirst)
		}
	}

	last := l.Rows[1]
	if last.Forced {
		t.Error("a leftover image that fits should not take the forced path")
	}
	if !approx(last.Tiles[0].Width, 1000, 1e-9) {
		t.Errorf("leftover width = %v, want 1000", last.Tiles[0].Width)
	}
	if !approx(last.Tiles[0].Height, 1000, 1e-9) {
		t.Errorf("leftover height = %v, want 1000", last.Tiles[0].Height)
	}
	if !approx(last.Y, wantFirst+16, 1e-9) {
		t.Errorf("row 1 Y = %v, want %v", last.Y, wantFirst+16)
	}
}

func TestComputeExactFit(t *testing.T) {
	// 3*300 + 2*16 == 932: the boundary is inclusive.
	l := Compute(squares(3), 932)
	if len(l.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(l.Rows))
	}
	for i, tile := range l.Rows[0].Tiles {
		if !approx(tile.Width, 300, 1e-9) {
			t.Errorf("tile %d width = %v, want 300", i, tile.Width)
		}
	}
}

func TestComputeSingleRow(t *testing.T) {
	imgs := []Image{
		NewImage("a", 300, 300),
		NewImage("b", 600, 400),
	}
	l := Compute(imgs, 1200)
	if len(l.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(l.Rows))
	}
	if got := l.Rows[0].Width(); !approx(got, 1200, 1e-6) {
		t.Errorf("row width = %v, want 1200", got)
	}
}

func TestComputeForcedFit(t *testing.T) {
	tests := []struct {
		name      string
		width     float64
		ratio     float64
		wantWidth float64
	}{
		{"half container", 800, 10, 400},
		{"absolute cap", 2400, 5, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage("pano", tt.ratio*100, 100)
			l := Compute([]Image{img}, tt.width)
			if len(l.Rows) != 1 {
				t.Fatalf("got %d rows, want 1", len(l.Rows))
			}
			row := l.Rows[0]
			if !row.Forced {
				t.Error("row should be marked forced")
			}
			tile := row.Tiles[0]
			if !approx(tile.Width, tt.wantWidth, 1e-9) {
				t.Errorf("width = %v, want %v", tile.Width, tt.wantWidth)
			}
			if !approx(tile.Height, tt.wantWidth/tt.ratio, 1e-9) {
				t.Errorf("height = %v, want %v", tile.Height, tt.wantWidth/tt.ratio)
			}
		})
	}
}

func TestComputeForcedBetweenRows(t *testing.T) {
	imgs := []Image{
		NewImage("a", 100, 100),
		NewImage("pano", 1000, 100),
		NewImage("c", 100, 100),
	}
	l := Compute(imgs, 800)
	if len(l.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(l.Rows))
	}
	if l.Rows[0].Forced || !l.Rows[1].Forced || l.Rows[2].Forced {
		t.Errorf("forced flags = %v %v %v, want false true false",
			l.Rows[0].Forced, l.Rows[1].Forced, l.Rows[2].Forced)
	}
	for _, i := range []int{0, 2} {
		if got := l.Rows[i].Width(); !approx(got, 800, 1e-6) {
			t.Errorf("row %d width = %v, want 800", i, got)
		}
	}
}

func TestComputeFallback(t *testing.T) {
	imgs := []Image{
		{Src: "broken", AspectRatio: 0},
		{Src: "negative", AspectRatio: -2},
		NewImage("nan", math.NaN(), 10),
	}
	l := Compute(imgs, 1000)
	for _, tile := range l.Flatten() {
		if !tile.Image.Fallback {
			t.Errorf("%s: expected fallback image", tile.Image.Src)
		}
		if tile.Image.AspectRatio != FallbackAspectRatio {
			t.Errorf("%s: ratio = %v, want %v", tile.Image.Src, tile.Image.AspectRatio, FallbackAspectRatio)
		}
	}
}

func TestNewImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h         float64
		wantRatio    float64
		wantFallback bool
	}{
		{"landscape", 1200, 800, 1.5, false},
		{"portrait", 800, 1200, 800.0 / 1200, false},
		{"zero width", 0, 800, FallbackAspectRatio, true},
		{"zero height", 800, 0, FallbackAspectRatio, true},
		{"negative", -1, 10, FallbackAspectRatio, true},
		{"infinite", math.Inf(1), 10, FallbackAspectRatio, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage("x", tt.w, tt.h)
			if img.AspectRatio != tt.wantRatio {
				t.Errorf("AspectRatio = %v, want %v", img.AspectRatio, tt.wantRatio)
			}
			if img.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %v, want %v", img.Fallback, tt.wantFallback)
			}
			if tt.wantFallback && (img.Width != FallbackWidth || img.Height != FallbackHeight) {
				t.Errorf("fallback size = %vx%v, want 300x200", img.Width, img.Height)
			}
		})
	}
}

func TestComputeOptions(t *testing.T) {
	l := Compute(squares(2), 1000, WithGap(0), WithMinRowHeight(100), WithRowHeightDivisor(10))
	if l.Gap != 0 {
		t.Errorf("Gap = %v, want 0", l.Gap)
	}
	if l.TargetRowHeight != 100 {
		t.Errorf("TargetRowHeight = %v, want 100", l.TargetRowHeight)
	}
	if len(l.Rows) != 1 || len(l.Rows[0].Tiles) != 2 {
		t.Fatalf("unexpected rows: %+v", l.Rows)
	}
	if got := l.Rows[0].Tiles[1].X; !approx(got, 500, 1e-9) {
		t.Errorf("second tile X = %v, want 500", got)
	}

	l = Compute([]Image{NewImage("p", 1000, 100)}, 800, WithForcedWidthRatio(0.25), WithMaxForcedWidth(1000))
	if got := l.Rows[0].Tiles[0].Width; got != 200 {
		t.Errorf("forced width = %v, want 200", got)
	}

	// Invalid values keep the defaults.
	l = Compute(squares(1), 1000, WithGap(-1), WithMinRowHeight(0), WithRowHeightDivisor(math.NaN()))
	if l.Gap != DefaultGap || l.TargetRowHeight != 300 {
		t.Errorf("invalid options changed defaults: gap=%v target=%v", l.Gap, l.TargetRowHeight)
	}
}

func TestResolve(t *testing.T) {
	p := Resolve(1000)
	if p.Gap != DefaultGap || p.TargetRowHeight != 300 || p.ForcedWidthRatio != DefaultForcedWidthRatio || p.MaxForcedWidth != DefaultMaxForcedWidth {
		t.Errorf("Resolve(1000) = %+v", p)
	}

	p = Resolve(1000, WithMinRowHeight(100), WithForcedWidthRatio(0.25), WithMaxForcedWidth(200))
	if p.TargetRowHeight != 250 || p.ForcedWidthRatio != 0.25 || p.MaxForcedWidth != 200 {
		t.Errorf("Resolve with options = %+v", p)
	}
	if l := Compute(squares(3), 1000, WithMinRowHeight(100)); l.TargetRowHeight != p.TargetRowHeight {
		t.Errorf("Compute target %v disagrees with Resolve %v", l.TargetRowHeight, p.TargetRowHeight)
	}

	if p := Resolve(0); p.TargetRowHeight != 0 {
		t.Errorf("Resolve(0).TargetRowHeight = %v, want 0", p.TargetRowHeight)
	}
}

func randomImages(r *rand.Rand, n int) []Image {
	imgs := make([]Image, n)
	for i := range imgs {
		switch r.Intn(10) {
		case 0:
			imgs[i] = NewImage("", 0, 0)
		case 1:
			imgs[i] = NewImage("", 4000+r.Float64()*8000, 400)
		default:
			imgs[i] = NewImage("", 200+r.Float64()*3000, 200+r.Float64()*3000)
		}
	}
	return imgs
}

func TestComputeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	widths := []float64{320, 375, 768, 1000, 1280, 1920, 2560}

	for iter := 0; iter < 200; iter++ {
		imgs := randomImages(r, r.Intn(40))
		width := widths[r.Intn(len(widths))]
		l := Compute(imgs, width)

		// Order preservation.
		tiles := l.Flatten()
		if len(tiles) != len(imgs) {
			t.Fatalf("iter %d: flattened %d tiles, want %d", iter, len(tiles), len(imgs))
		}
		for i, tile := range tiles {
			if tile.Index != i {
				t.Fatalf("iter %d: tile %d has index %d", iter, i, tile.Index)
			}
		}

		for ri, row := range l.Rows {
			if len(row.Tiles) == 0 {
				t.Fatalf("iter %d: row %d is empty", iter, ri)
			}
			// Width-fill.
			if !row.Forced && !approx(row.Width(), width, 1) {
				t.Errorf("iter %d: row %d width = %v, want %v", iter, ri, row.Width(), width)
			}
			if row.Forced && len(row.Tiles) != 1 {
				t.Errorf("iter %d: forced row %d has %d tiles", iter, ri, len(row.Tiles))
			}
			// Aspect-ratio preservation.
			for _, tile := range row.Tiles {
				if got := tile.Width / tile.Height; !approx(got, tile.Image.AspectRatio, 0.01) {
					t.Errorf("iter %d: ratio = %v, want %v", iter, got, tile.Image.AspectRatio)
				}
			}
		}

		// Idempotence.
		if again := Compute(imgs, width); !reflect.DeepEqual(l, again) {
			t.Fatalf("iter %d: Compute is not deterministic", iter)
		}
	}
}

func TestLayoutHeight(t *testing.T) {
	l := Compute(squares(4), 1000)
	want := (1000.0-32)/3 + 16 + 1000
	if got := l.Height(); !approx(got, want, 1e-9) {
		t.Errorf("Height() = %v, want %v", got, want)
	}
}
