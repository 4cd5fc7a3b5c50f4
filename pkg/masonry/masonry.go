package masonry

import "math"

// Default packing parameters.
const (
	// DefaultGap is the spacing between images in a row and between rows.
	DefaultGap = 16.0

	// DefaultMinRowHeight is the floor for the target row height.
	DefaultMinRowHeight = 300.0

	// DefaultRowHeightDivisor derives the target row height from the
	// container width (width / divisor).
	DefaultRowHeightDivisor = 4.0

	// DefaultForcedWidthRatio caps a forced-fit image relative to the container.
	DefaultForcedWidthRatio = 0.5

	// DefaultMaxForcedWidth is the absolute cap for a forced-fit image.
	DefaultMaxForcedWidth = 500.0
)

// Tile is one placed image.
type Tile struct {
	Image  Image   `json:"image"`
	Index  int     `json:"index"` // position in the input sequence
	X      float64 `json:"x"`     // left offset within the row
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Row is a horizontal run of tiles sharing one display height.
type Row struct {
	Tiles  []Tile  `json:"tiles"`
	Y      float64 `json:"y"` // top offset within the layout
	Height float64 `json:"height"`
	Forced bool    `json:"forced,omitempty"` // single oversized image, not normalized
}

// Width returns the horizontal extent of the row including inner gaps.
func (r Row) Width() float64 {
	if len(r.Tiles) == 0 {
		return 0
	}
	last := r.Tiles[len(r.Tiles)-1]
	return last.X + last.Width
}

// Layout is the computed arrangement of an image sequence for one container width.
type Layout struct {
	ContainerWidth  float64 `json:"container_width"`
	TargetRowHeight float64 `json:"target_row_height"`
	Gap             float64 `json:"gap"`
	Rows            []Row   `json:"rows"`
}

// Ready reports whether the layout was computed for a measured container.
func (l Layout) Ready() bool {
	return l.TargetRowHeight > 0
}

// Height returns the total height of all rows plus the gaps between them.
func (l Layout) Height() float64 {
	if len(l.Rows) == 0 {
		return 0
	}
	last := l.Rows[len(l.Rows)-1]
	return last.Y + last.Height
}

// Flatten returns every tile in row-then-position order.
// For any layout produced by Compute this reproduces the input order.
func (l Layout) Flatten() []Tile {
	var n int
	for _, r := range l.Rows {
		n += len(r.Tiles)
	}
	tiles := make([]Tile, 0, n)
	for _, r := range l.Rows {
		tiles = append(tiles, r.Tiles...)
	}
	return tiles
}

// Option configures Compute.
type Option func(*config)

type config struct {
	gap              float64
	minRowHeight     float64
	rowHeightDivisor float64
	forcedWidthRatio float64
	maxForcedWidth   float64
}

func defaultConfig() config {
	return config{
		gap:              DefaultGap,
		minRowHeight:     DefaultMinRowHeight,
		rowHeightDivisor: DefaultRowHeightDivisor,
		forcedWidthRatio: DefaultForcedWidthRatio,
		maxForcedWidth:   DefaultMaxForcedWidth,
	}
}

// WithGap sets the spacing between images and rows. Negative values are ignored.
func WithGap(g float64) Option {
	return func(c *config) {
		if g >= 0 {
			c.gap = g
		}
	}
}

// WithMinRowHeight sets the floor for the target row height (default 300).
func WithMinRowHeight(h float64) Option {
	return func(c *config) {
		if usable(h) {
			c.minRowHeight = h
		}
	}
}

// WithRowHeightDivisor sets the container-width divisor used for the target
// row height (default 4).
func WithRowHeightDivisor(d float64) Option {
	return func(c *config) {
		if usable(d) {
			c.rowHeightDivisor = d
		}
	}
}

// WithForcedWidthRatio sets the container fraction a forced-fit image may
// occupy (default 0.5).
func WithForcedWidthRatio(r float64) Option {
	return func(c *config) {
		if usable(r) {
			c.forcedWidthRatio = r
		}
	}
}

// WithMaxForcedWidth sets the absolute width cap for forced-fit images (default 500).
func WithMaxForcedWidth(w float64) Option {
	return func(c *config) {
		if usable(w) {
			c.maxForcedWidth = w
		}
	}
}

// TargetRowHeight returns the default target row height for a container:
// max(300, containerWidth/4).
func TargetRowHeight(containerWidth float64) float64 {
	return defaultConfig().targetRowHeight(containerWidth)
}

// Params are the packing parameters Compute resolves for one container width.
// Two calls with equal Params and images produce equal layouts.
type Params struct {
	Gap              float64 `json:"gap"`
	TargetRowHeight  float64 `json:"target_row_height"`
	ForcedWidthRatio float64 `json:"forced_width_ratio"`
	MaxForcedWidth   float64 `json:"max_forced_width"`
}

// Resolve applies opts and returns the parameters Compute would use for
// containerWidth. TargetRowHeight is zero when the width is unusable.
func Resolve(containerWidth float64, opts ...Option) Params {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := Params{
		Gap:              cfg.gap,
		ForcedWidthRatio: cfg.forcedWidthRatio,
		MaxForcedWidth:   cfg.maxForcedWidth,
	}
	if usable(containerWidth) {
		p.TargetRowHeight = cfg.targetRowHeight(containerWidth)
	}
	return p
}

func (c config) targetRowHeight(containerWidth float64) float64 {
	return math.Max(c.minRowHeight, containerWidth/c.rowHeightDivisor)
}

// Compute packs images into rows that fill containerWidth.
//
// A containerWidth that is zero, negative, NaN or infinite yields an empty
// layout that is not Ready. Images with an unusable aspect ratio are replaced
// by their fallback before packing.
func Compute(images []Image, containerWidth float64, opts ...Option) Layout {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := Layout{Gap: cfg.gap}
	if !usable(containerWidth) {
		return l
	}
	l.ContainerWidth = containerWidth
	l.TargetRowHeight = cfg.targetRowHeight(containerWidth)

	p := packer{cfg: cfg, width: containerWidth, target: l.TargetRowHeight}
	for i, img := range images {
		p.add(i, img.sanitized())
	}
	p.flush()

	l.Rows = p.rows
	var y float64
	for i := range l.Rows {
		l.Rows[i].Y = y
		y += l.Rows[i].Height + cfg.gap
	}
	return l
}

// packer accumulates the open row while scanning images in order.
type packer struct {
	cfg      config
	width    float64
	target   float64
	rows     []Row
	pending  []Tile
	rowWidth float64
}

func (p *packer) add(index int, img Image) {
	w := p.target * img.AspectRatio
	if p.fits(w) {
		p.pending = append(p.pending, Tile{Image: img, Index: index, Width: w})
		p.rowWidth += w
		return
	}

	p.flush()
	if w > p.width {
		p.rows = append(p.rows, p.forced(index, img, w))
		return
	}
	p.pending = append(p.pending, Tile{Image: img, Index: index, Width: w})
	p.rowWidth = w
}

func (p *packer) fits(w float64) bool {
	return p.rowWidth+w+float64(len(p.pending))*p.cfg.gap <= p.width
}

// flush closes the open row, scaling it to fill the container.
func (p *packer) flush() {
	if len(p.pending) == 0 {
		return
	}
	tiles := p.pending
	gaps := float64(len(tiles)-1) * p.cfg.gap
	scale := (p.width - gaps) / p.rowWidth

	var x float64
	for i := range tiles {
		tiles[i].Width *= scale
		tiles[i].Height = tiles[i].Width / tiles[i].Image.AspectRatio
		tiles[i].X = x
		x += tiles[i].Width + p.cfg.gap
	}
	p.rows = append(p.rows, Row{Tiles: tiles, Height: p.target * scale})
	p.pending = nil
	p.rowWidth = 0
}

// forced places an image that cannot fit the container even alone.
func (p *packer) forced(index int, img Image, natural float64) Row {
	w := math.Min(math.Min(p.width*p.cfg.forcedWidthRatio, natural), p.cfg.maxForcedWidth)
	h := w / img.AspectRatio
	return Row{
		Tiles:  []Tile{{Image: img, Index: index, Width: w, Height: h}},
		Height: h,
		Forced: true,
	}
}
