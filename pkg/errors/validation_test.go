package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "events", false},
		{"dashed", "real-estate", false},
		{"digits", "weddings-2024", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"uppercase", "Events", true},
		{"space", "real estate", true},
		{"path traversal", "../etc", true},
		{"leading dash", "-cars", true},
		{"double dash", "real--estate", true},
		{"slash", "cars/new", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCategory) {
				t.Errorf("ValidateSlug(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidCategory)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://cdn.example.com/a.jpg", false},
		{"http://localhost:8080/x", false},
		{"", true},
		{"ftp://example.com", true},
		{"javascript:alert(1)", true},
	}

	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"info@reactiveshots.com", false},
		{"first.last+tag@mail.example.org", false},
		{"", true},
		{"not-an-email", true},
		{"Ann <ann@example.com>", true},
		{"ann@localhost", true},
		{"ann@@example.com", true},
	}

	for _, tt := range tests {
		if err := ValidateEmail(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"plain", "Hello there", false},
		{"multiline", "line one\nline two\ttabbed", false},
		{"blank", "   ", true},
		{"empty", "", true},
		{"too long", strings.Repeat("x", 101), true},
		{"control char", "bell\x07", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText("message", tt.value, 100)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWidth(t *testing.T) {
	tests := []struct {
		input   float64
		wantErr bool
	}{
		{1, false},
		{1280, false},
		{0, true},
		{-5, true},
		{math.NaN(), true},
		{math.Inf(1), true},
		{20000, true},
	}

	for _, tt := range tests {
		err := ValidateWidth(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateWidth(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidWidth) {
			t.Errorf("ValidateWidth(%v) code = %v", tt.input, GetCode(err))
		}
	}
}
