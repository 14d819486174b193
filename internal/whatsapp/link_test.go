// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"formatted number", "+91 98765-43210", "+919876543210"},
		{"plain number", "919876543210", "919876543210"},
		{"empty falls back", "", DefaultNumber},
		{"no digits falls back", "---", DefaultNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeNumber(tt.input); got != tt.want {
				t.Errorf("SanitizeNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildLink(t *testing.T) {
	item := &models.PortfolioItem{
		Name:       "Chocolate Truffle",
		Category:   "Birthday",
		PriceRange: "1000-1500",
		Images:     []string{"/uploads/truffle.jpg"},
	}

	link := BuildLink(item, "+91 98765-43210", "https://cakencrush.example")

	if !strings.HasPrefix(link, "https://wa.me/+919876543210?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}

	encoded := strings.TrimPrefix(link, "https://wa.me/+919876543210?text=")
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The inquiry must quote the item fields verbatim.
	for _, want := range []string{
		"Cake: Chocolate Truffle",
		"Category: Birthday",
		"Price Range: 1000-1500",
		"Image Reference: https://cakencrush.example/uploads/truffle.jpg",
	} {
		if !strings.Contains(decoded, want) {
			t.Errorf("decoded message missing %q:\n%s", want, decoded)
		}
	}

	// Spaces are %20, not '+', so WhatsApp renders them correctly.
	if strings.Contains(encoded, "+") {
		t.Error("encoded text should not contain literal '+'")
	}
}

func TestBuildLinkAbsoluteImageKeptVerbatim(t *testing.T) {
	item := &models.PortfolioItem{
		Name:     "Red Velvet",
		Category: "Wedding",
		Images:   []string{"https://cdn.example/cakes/velvet.jpg"},
	}

	link := BuildLink(item, "", "https://cakencrush.example")
	decoded, err := url.QueryUnescape(link[strings.Index(link, "?text=")+len("?text="):])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(decoded, "Image Reference: https://cdn.example/cakes/velvet.jpg") {
		t.Errorf("absolute image URL should pass through untouched:\n%s", decoded)
	}
}

func TestBuildLinkMissingFields(t *testing.T) {
	link := BuildLink(&models.PortfolioItem{}, "", "")

	if !strings.HasPrefix(link, "https://wa.me/"+DefaultNumber+"?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}

	decoded, err := url.QueryUnescape(link[strings.Index(link, "?text=")+len("?text="):])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Cake: N/A", "Category: N/A", "Price Range: N/A", "Image Reference: N/A"} {
		if !strings.Contains(decoded, want) {
			t.Errorf("decoded message missing %q:\n%s", want, decoded)
		}
	}
}
