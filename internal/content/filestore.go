// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

// FileStore persists each document as one JSON file under a data
// directory: portfolio.json plus one file per content type. A single
// mutex serializes all writes; the site has one admin, so contention
// is not a concern.
type FileStore struct {
	dir string
	mu  sync.Mutex

	now func() time.Time
}

// NewFileStore creates the data directory if needed and returns a store
// backed by it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Close implements Store. The file store holds no open resources.
func (s *FileStore) Close() error { return nil }

// Portfolio implements Store.
func (s *FileStore) Portfolio(ctx context.Context) ([]models.PortfolioItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readPortfolio()
}

// AddItem implements Store.
func (s *FileStore) AddItem(ctx context.Context, item models.PortfolioItem) ([]models.PortfolioItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readPortfolio()
	if err != nil {
		return nil, err
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = s.now().UnixMilli()
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	items = append([]models.PortfolioItem{item}, items...)
	if err := s.writePortfolio(items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem implements Store.
func (s *FileStore) UpdateItem(ctx context.Context, id string, patch models.PortfolioPatch) ([]models.PortfolioItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readPortfolio()
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID == id {
			applyPatch(&items[i], patch)
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	if err := s.writePortfolio(items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem implements Store.
func (s *FileStore) RemoveItem(ctx context.Context, id string) ([]models.PortfolioItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readPortfolio()
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, ErrNotFound
	}

	if err := s.writePortfolio(kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Content implements Store.
func (s *FileStore) Content(ctx context.Context, docType string) (json.RawMessage, error) {
	if !ValidType(docType) {
		return nil, ErrUnknownType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(docType + ".json"))
	if os.IsNotExist(err) {
		return DefaultDocument(docType)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s document: %w", docType, err)
	}
	if len(data) == 0 {
		return DefaultDocument(docType)
	}
	return json.RawMessage(data), nil
}

// SetContent implements Store.
func (s *FileStore) SetContent(ctx context.Context, docType string, doc json.RawMessage) error {
	if !ValidType(docType) {
		return ErrUnknownType
	}
	if !json.Valid(doc) {
		return fmt.Errorf("invalid JSON for %s document", docType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(docType+".json", doc)
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) readPortfolio() ([]models.PortfolioItem, error) {
	data, err := os.ReadFile(s.path("portfolio.json"))
	if os.IsNotExist(err) {
		return []models.PortfolioItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	if len(data) == 0 {
		return []models.PortfolioItem{}, nil
	}

	var items []models.PortfolioItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	return items, nil
}

func (s *FileStore) writePortfolio(items []models.PortfolioItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	return s.writeFile("portfolio.json", data)
}

// writeFile writes atomically via a temp file and rename so a crash
// mid-write never leaves a truncated document behind.
func (s *FileStore) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
