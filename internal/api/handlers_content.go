// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/crumbcoat/crumbcoat/internal/content"
	"github.com/crumbcoat/crumbcoat/internal/logging"
	"github.com/crumbcoat/crumbcoat/internal/metrics"
	"github.com/crumbcoat/crumbcoat/internal/models"
)

// GetContent handles GET /api/content/{type}. The stored document is
// returned verbatim; missing documents yield the type's empty default.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "type")

	doc, err := h.store.Content(r.Context(), docType)
	if errors.Is(err, content.ErrUnknownType) {
		respondError(w, http.StatusBadRequest, "Invalid content type")
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("type", docType).Msg("Failed to read content")
		respondError(w, http.StatusInternalServerError, "Error reading content")
		return
	}
	respondRaw(w, http.StatusOK, doc)
}

// SetContent handles POST /api/content/{type}. The body replaces the
// stored document wholesale; last write wins.
func (h *Handler) SetContent(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "type")
	if !content.ValidType(docType) {
		respondError(w, http.StatusBadRequest, "Invalid content type")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !json.Valid(body) {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.store.SetContent(r.Context(), docType, body); err != nil {
		logging.Error().Err(err).Str("type", docType).Msg("Failed to save content")
		respondError(w, http.StatusInternalServerError, "Error saving content")
		return
	}

	metrics.RecordContentWrite(docType)
	respondJSON(w, http.StatusOK, models.ContentWriteResponse{Success: true, Data: body})
}
