// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package api

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crumbcoat/crumbcoat/internal/logging"
	"github.com/crumbcoat/crumbcoat/internal/metrics"
	"github.com/crumbcoat/crumbcoat/internal/models"
)

// Upload handles POST /api/upload: a multipart form with a single "image"
// field. The stored filename is <unix-ms>-<random><ext>, the same scheme
// the existing uploads directory already uses.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Uploads.MaxBytes)
	if err := r.ParseMultipartForm(h.cfg.Uploads.MaxBytes); err != nil {
		metrics.RecordUpload("rejected")
		respondError(w, http.StatusBadRequest, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		metrics.RecordUpload("rejected")
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		metrics.RecordUpload("rejected")
		respondError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	name := fmt.Sprintf("%d-%d%s",
		time.Now().UnixMilli(),
		rand.Intn(1_000_000_000),
		strings.ToLower(filepath.Ext(header.Filename)),
	)

	if err := h.saveUpload(file, name); err != nil {
		logging.Error().Err(err).Str("file", name).Msg("Failed to store upload")
		metrics.RecordUpload("error")
		respondError(w, http.StatusInternalServerError, "Error saving file")
		return
	}

	metrics.RecordUpload("success")
	respondJSON(w, http.StatusOK, models.UploadResponse{
		Success: true,
		URL:     "/uploads/" + name,
	})
}

// saveUpload writes the uploaded file into the uploads directory.
func (h *Handler) saveUpload(src io.Reader, name string) error {
	if err := os.MkdirAll(h.cfg.Uploads.Dir, 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(h.cfg.Uploads.Dir, name))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}
