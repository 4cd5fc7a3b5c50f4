package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// AlbumKey identifies a validated album for a category slug.
	AlbumKey(slug string) string

	// FeaturedKey identifies the category-albums payload.
	FeaturedKey() string

	// SizeKey identifies the measured natural size of an image URL.
	SizeKey(url string) string

	// LayoutKey identifies a computed layout for an image set and width.
	LayoutKey(imagesHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the images that change a layout.
// Every resolved packing parameter belongs here; a missing one lets runners
// with different options share entries.
type LayoutKeyOpts struct {
	Width            float64 `json:"width"`
	Gap              float64 `json:"gap"`
	TargetRowHeight  float64 `json:"target_row_height"`
	ForcedWidthRatio float64 `json:"forced_width_ratio"`
	MaxForcedWidth   float64 `json:"max_forced_width"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AlbumKey returns "album:<slug>".
func (DefaultKeyer) AlbumKey(slug string) string {
	return "album:" + slug
}

// FeaturedKey returns "featured".
func (DefaultKeyer) FeaturedKey() string {
	return "featured"
}

// SizeKey returns a hashed key so arbitrary URLs are safe in every backend.
func (DefaultKeyer) SizeKey(url string) string {
	return hashKey("size", url)
}

// LayoutKey hashes the image set hash together with the layout options.
func (DefaultKeyer) LayoutKey(imagesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", imagesHash, opts)
}
