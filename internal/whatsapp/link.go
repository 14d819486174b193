// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package whatsapp builds pre-filled wa.me order inquiry links for
// portfolio items.
package whatsapp

import (
	"net/url"
	"strings"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

// DefaultNumber is used when no business number is configured.
const DefaultNumber = "+910000000000"

// SanitizeNumber strips everything but digits and '+' from a phone number,
// falling back to DefaultNumber when the input is empty.
func SanitizeNumber(number string) string {
	if number == "" {
		number = DefaultNumber
	}
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultNumber
	}
	return b.String()
}

// BuildLink returns a https://wa.me/ link whose text parameter is a
// pre-filled order inquiry for the given item. siteOrigin is prepended to
// relative image paths so the recipient gets a clickable reference.
func BuildLink(item *models.PortfolioItem, number, siteOrigin string) string {
	lines := []string{
		"          Cake N Crush Order Inquiry!",
		"",
		"Cake: " + orNA(item.Name),
		"Price Range: " + orNA(item.PriceRange),
		"Category: " + orNA(item.Category),
		"Image Reference: " + imageReference(item, siteOrigin),
		"",
		"I'm interested in ordering this cake. Could you please provide:",
		"             Available delivery dates",
		"     Customization options",
		"   Final pricing details",
		"    Delivery location options",
		"",
		"Looking forward to hearing from you!",
	}

	return "https://wa.me/" + SanitizeNumber(number) + "?text=" + encodeMessage(lines)
}

// encodeMessage percent-encodes the message the way the frontend's
// encodeURIComponent does. url.QueryEscape uses '+' for spaces, which
// WhatsApp renders literally, so spaces become %20 instead.
func encodeMessage(lines []string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.Join(lines, "\n")), "+", "%20")
}

// imageReference picks the first image of the item, absolutizing relative
// upload paths against the site origin.
func imageReference(item *models.PortfolioItem, siteOrigin string) string {
	if len(item.Images) == 0 || item.Images[0] == "" {
		return "N/A"
	}
	img := item.Images[0]
	if strings.HasPrefix(img, "http") {
		return img
	}
	return siteOrigin + img
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
