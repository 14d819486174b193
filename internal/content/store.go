// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package content persists the site's editable content: the cake portfolio
// and the free-form page documents (showcase, findus, social, activity).
//
// Two Store implementations exist: a JSON-file store for single-box
// deployments and a Postgres store for hosted databases. The backend is
// selected once at startup; handlers only see the Store interface.
package content

import (
	"context"
	"errors"

	"github.com/goccy/go-json"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

var (
	// ErrNotFound is returned when a portfolio item id does not exist.
	ErrNotFound = errors.New("portfolio item not found")

	// ErrUnknownType is returned for content types outside the allowlist.
	ErrUnknownType = errors.New("unknown content type")
)

// Store is the persistence interface for portfolio and page content.
// Portfolio mutators return the full updated list because the frontend
// replaces its state wholesale after every write.
type Store interface {
	// Portfolio returns all portfolio items, newest first.
	Portfolio(ctx context.Context) ([]models.PortfolioItem, error)

	// AddItem prepends a new item. A missing ID is filled with a fresh
	// UUID and a missing CreatedAt with the current time.
	AddItem(ctx context.Context, item models.PortfolioItem) ([]models.PortfolioItem, error)

	// UpdateItem applies a partial update to the item with the given id.
	// Returns ErrNotFound if no item matches.
	UpdateItem(ctx context.Context, id string, patch models.PortfolioPatch) ([]models.PortfolioItem, error)

	// RemoveItem deletes the item with the given id.
	// Returns ErrNotFound if no item matches.
	RemoveItem(ctx context.Context, id string) ([]models.PortfolioItem, error)

	// Content returns the raw JSON document for an allowlisted type,
	// or the type's default document when none has been stored.
	Content(ctx context.Context, docType string) (json.RawMessage, error)

	// SetContent replaces the document for an allowlisted type.
	// Last write wins.
	SetContent(ctx context.Context, docType string, doc json.RawMessage) error

	// Close releases backend resources.
	Close() error
}

// contentDefaults maps each allowlisted content type to its empty document.
// List-shaped pages default to an array, profile-shaped pages to an object.
var contentDefaults = map[string]string{
	"showcase": "[]",
	"findus":   "{}",
	"social":   "{}",
	"activity": "[]",
}

// ValidType reports whether docType is an allowlisted content type.
func ValidType(docType string) bool {
	_, ok := contentDefaults[docType]
	return ok
}

// DefaultDocument returns the empty document for an allowlisted type.
func DefaultDocument(docType string) (json.RawMessage, error) {
	def, ok := contentDefaults[docType]
	if !ok {
		return nil, ErrUnknownType
	}
	return json.RawMessage(def), nil
}

// applyPatch merges non-nil patch fields into the item.
func applyPatch(item *models.PortfolioItem, patch models.PortfolioPatch) {
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.PriceRange != nil {
		item.PriceRange = *patch.PriceRange
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Images != nil {
		item.Images = *patch.Images
	}
	if patch.Views != nil {
		item.Views = *patch.Views
	}
}
