package masonry

import "math"

// Fallback dimensions used when an image's natural size is unknown.
const (
	FallbackWidth       = 300.0
	FallbackHeight      = 200.0
	FallbackAspectRatio = FallbackWidth / FallbackHeight
)

// Image is a photo with measured natural dimensions.
// Images are values; once built they are never mutated.
type Image struct {
	Src         string  `json:"src"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Fallback    bool    `json:"fallback,omitempty"`
}

// NewImage builds an Image from natural dimensions. If the aspect ratio
// cannot be derived (zero, negative, NaN or infinite dimensions), the
// 300x200 fallback is substituted and Fallback is set.
func NewImage(src string, width, height float64) Image {
	if usable(width) && usable(height) {
		if ratio := width / height; usable(ratio) {
			return Image{Src: src, Width: width, Height: height, AspectRatio: ratio}
		}
	}
	return FallbackImage(src)
}

// FallbackImage returns an Image with the fallback dimensions.
func FallbackImage(src string) Image {
	return Image{
		Src:         src,
		Width:       FallbackWidth,
		Height:      FallbackHeight,
		AspectRatio: FallbackAspectRatio,
		Fallback:    true,
	}
}

// Valid reports whether the image has a strictly positive, finite aspect ratio.
func (img Image) Valid() bool {
	return usable(img.AspectRatio)
}

// sanitized returns img unchanged when valid, otherwise its fallback.
func (img Image) sanitized() Image {
	if img.Valid() {
		return img
	}
	return FallbackImage(img.Src)
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
