// Package catalog holds the fixed business catalog: gallery categories and
// pricing packages.
package catalog

import (
	"strings"
)

// Category is a gallery category.
type Category struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Title returns the display name with every word capitalized ("Real Estate").
func (c Category) Title() string {
	words := strings.Fields(c.Name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Category slugs.
const (
	Events     = "events"
	Portraits  = "portraits"
	Cars       = "cars"
	RealEstate = "real-estate"
)

var categories = []Category{
	{
		Slug:        Events,
		Name:        "events",
		Description: "Capturing the energy and emotion of your special celebrations and gatherings.",
	},
	{
		Slug:        Portraits,
		Name:        "portraits",
		Description: "Professional portraits that showcase personality and create lasting memories.",
	},
	{
		Slug:        Cars,
		Name:        "cars",
		Description: "Automotive photography that highlights the beauty and power of your vehicle.",
	},
	{
		Slug:        RealEstate,
		Name:        "real estate",
		Description: "Stunning property photography that showcases homes and spaces at their best.",
	},
}

// Categories returns all categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Slugs returns all category slugs in display order.
func Slugs() []string {
	slugs := make([]string, len(categories))
	for i, c := range categories {
		slugs[i] = c.Slug
	}
	return slugs
}

// Lookup returns the category for a slug.
func Lookup(slug string) (Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// FromName resolves a category by its display name as returned by the
// content API ("Real Estate", "events"). Matching ignores case and treats
// spaces, dashes and underscores alike.
func FromName(name string) (Category, bool) {
	return Lookup(Slugify(name))
}

// Slugify lowercases s and joins its words with dashes.
func Slugify(s string) string {
	f := func(r rune) bool { return r == ' ' || r == '-' || r == '_' || r == '\t' }
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), f), "-")
}
