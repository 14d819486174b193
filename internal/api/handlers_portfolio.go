// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crumbcoat/crumbcoat/internal/content"
	"github.com/crumbcoat/crumbcoat/internal/logging"
	"github.com/crumbcoat/crumbcoat/internal/models"
	"github.com/crumbcoat/crumbcoat/internal/validation"
	"github.com/crumbcoat/crumbcoat/internal/whatsapp"
)

// GetPortfolio handles GET /api/portfolio.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Portfolio(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read portfolio")
		respondError(w, http.StatusInternalServerError, "Error reading portfolio data")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// CreatePortfolioItem handles POST /api/portfolio. The response is the
// full updated list; the frontend replaces its state with it.
func (h *Handler) CreatePortfolioItem(w http.ResponseWriter, r *http.Request) {
	var item models.PortfolioItem
	if err := decodeJSON(r, &item); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&item); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	items, err := h.store.AddItem(r.Context(), item)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to add portfolio item")
		respondError(w, http.StatusInternalServerError, "Error saving portfolio data")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// UpdatePortfolioItem handles PUT /api/portfolio/{id}.
func (h *Handler) UpdatePortfolioItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch models.PortfolioPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := h.store.UpdateItem(r.Context(), id, patch)
	if errors.Is(err, content.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("id", id).Msg("Failed to update portfolio item")
		respondError(w, http.StatusInternalServerError, "Error saving portfolio data")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// GetOrderLink handles GET /api/portfolio/{id}/whatsapp: a prebuilt
// wa.me inquiry link for the item, using the configured business number.
func (h *Handler) GetOrderLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.store.Portfolio(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read portfolio")
		respondError(w, http.StatusInternalServerError, "Error reading portfolio data")
		return
	}

	for i := range items {
		if items[i].ID == id {
			link := whatsapp.BuildLink(&items[i], h.cfg.WhatsApp.Number, h.cfg.Server.CORSOrigin)
			respondJSON(w, http.StatusOK, models.OrderLinkResponse{Success: true, URL: link})
			return
		}
	}
	respondError(w, http.StatusNotFound, "Item not found")
}

// DeletePortfolioItem handles DELETE /api/portfolio/{id}.
func (h *Handler) DeletePortfolioItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.store.RemoveItem(r.Context(), id)
	if errors.Is(err, content.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("id", id).Msg("Failed to delete portfolio item")
		respondError(w, http.StatusInternalServerError, "Error saving portfolio data")
		return
	}
	respondJSON(w, http.StatusOK, items)
}
