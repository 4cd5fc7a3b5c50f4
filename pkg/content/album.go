package content

import (
	"strings"

	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/errors"
)

// blurPrefix is prepended to bare base64 blur placeholders.
const blurPrefix = "data:image/jpeg;base64,"

// Album is a validated photo album for one gallery category.
type Album struct {
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	ImageCount int     `json:"image_count"`
	Photos     []Photo `json:"photos"`
}

// Photo is a single album photo.
type Photo struct {
	ImageURL           string `json:"image_url"`            // Full-resolution original
	CompressedImageURL string `json:"compressed_image_url"` // Display variant, measured for layout
	BlurPlaceholder    string `json:"blur_placeholder,omitempty"`
}

// URLs returns the compressed URLs of all photos in album order.
func (a *Album) URLs() []string {
	urls := make([]string, len(a.Photos))
	for i, p := range a.Photos {
		urls[i] = p.CompressedImageURL
	}
	return urls
}

type wireAlbum struct {
	AlbumName   string      `json:"album_name"`
	Slug        string      `json:"slug"`
	ImageCount  int         `json:"image_count"`
	AlbumPhotos []wirePhoto `json:"album_photos"`
}

type wirePhoto struct {
	Image           string `json:"image"`
	CompressedImage string `json:"compressed_image"`
	FileMetadata    struct {
		BlurDataURL string `json:"blur_data_url"`
	} `json:"file_metadata"`
}

type wireCategoryAlbum struct {
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
	Album        struct {
		AlbumPhotos []wirePhoto `json:"album_photos"`
	} `json:"album"`
}

// NormalizeBlur turns a blur placeholder into a data URL.
// Empty input stays empty; values already starting with "data:" are kept.
func NormalizeBlur(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "data:") {
		return s
	}
	return blurPrefix + s
}

func validPhotos(in []wirePhoto) []Photo {
	photos := make([]Photo, 0, len(in))
	for _, w := range in {
		img := strings.TrimSpace(w.Image)
		if img == "" {
			continue
		}
		compressed := strings.TrimSpace(w.CompressedImage)
		if compressed == "" {
			compressed = img
		}
		photos = append(photos, Photo{
			ImageURL:           img,
			CompressedImageURL: compressed,
			BlurPlaceholder:    NormalizeBlur(w.FileMetadata.BlurDataURL),
		})
	}
	return photos
}

func (w *wireAlbum) validate(slug string) (*Album, error) {
	if w.AlbumPhotos == nil {
		return nil, errors.New(errors.ErrCodeInvalidAlbum, "album %q: missing album_photos", slug)
	}
	a := &Album{
		Name:   strings.TrimSpace(w.AlbumName),
		Slug:   slug,
		Photos: validPhotos(w.AlbumPhotos),
	}
	if a.Name == "" {
		if c, ok := catalog.Lookup(slug); ok {
			a.Name = c.Title()
		}
	}
	a.ImageCount = len(a.Photos)
	return a, nil
}

func validateCategoryAlbums(in []wireCategoryAlbum) map[string][]Photo {
	out := make(map[string][]Photo, len(in))
	for _, w := range in {
		c, ok := catalog.FromName(w.CategoryName)
		if !ok {
			// Categories the site does not render are skipped.
			continue
		}
		out[c.Slug] = append(out[c.Slug], validPhotos(w.Album.AlbumPhotos)...)
	}
	return out
}
