package errors

import (
	"math"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

// slugRegex matches lowercase, dash-separated category and album slugs.
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSlug validates a category or album slug taken from a URL path.
// Slugs are lowercase ASCII words joined by single dashes, at most 64 characters.
func ValidateSlug(slug string) error {
	if slug == "" {
		return New(ErrCodeInvalidCategory, "slug cannot be empty")
	}
	if len(slug) > 64 {
		return New(ErrCodeInvalidCategory, "slug too long (max 64 characters)")
	}
	if !slugRegex.MatchString(slug) {
		return New(ErrCodeInvalidCategory, "invalid slug: %q", slug)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateEmail checks that addr is a single bare address ("a@b.c").
// Display-name forms like "Ann <a@b.c>" are rejected.
func ValidateEmail(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInquiry, "email cannot be empty")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return New(ErrCodeInvalidInquiry, "invalid email address: %q", addr)
	}
	if !strings.Contains(addr[strings.LastIndex(addr, "@")+1:], ".") {
		return New(ErrCodeInvalidInquiry, "invalid email address: %q", addr)
	}
	return nil
}

// ValidateText checks a free-form field: required, bounded, and free of
// control characters other than newlines and tabs.
func ValidateText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidInquiry, "%s is required", field)
	}
	if len(value) > maxLen {
		return New(ErrCodeInvalidInquiry, "%s too long (max %d characters)", field, maxLen)
	}
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return New(ErrCodeInvalidInquiry, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateWidth checks a container width reported by a client.
// Zero or negative widths mean the container has not been measured yet.
func ValidateWidth(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidWidth, "width must be a finite number")
	}
	if w <= 0 {
		return New(ErrCodeInvalidWidth, "container not measured yet (width %v)", w)
	}
	if w > 10000 {
		return New(ErrCodeInvalidWidth, "width too large (max 10000)")
	}
	return nil
}
