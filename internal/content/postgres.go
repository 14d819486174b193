// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

// PostgresStore persists portfolio items in a relational table and page
// documents as jsonb rows. It matches FileStore semantics exactly so the
// two backends are interchangeable.
type PostgresStore struct {
	pool *pgxpool.Pool

	now func() time.Time
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS portfolio_items (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	price_range TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	images      JSONB NOT NULL DEFAULT '[]',
	views       INTEGER NOT NULL DEFAULT 0,
	created_at  BIGINT NOT NULL,
	position    BIGSERIAL
);

CREATE TABLE IF NOT EXISTS content_documents (
	doc_type   TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Portfolio implements Store.
func (s *PostgresStore) Portfolio(ctx context.Context) ([]models.PortfolioItem, error) {
	return s.listItems(ctx, s.pool)
}

// AddItem implements Store.
func (s *PostgresStore) AddItem(ctx context.Context, item models.PortfolioItem) ([]models.PortfolioItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = s.now().UnixMilli()
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO portfolio_items (id, name, category, price_range, description, images, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.Name, item.Category, item.PriceRange, item.Description,
		item.Images, item.Views, item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert portfolio item: %w", err)
	}
	return s.listItems(ctx, s.pool)
}

// UpdateItem implements Store. The patch is applied inside a transaction
// so concurrent updates cannot interleave field merges.
func (s *PostgresStore) UpdateItem(ctx context.Context, id string, patch models.PortfolioPatch) ([]models.PortfolioItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	var item models.PortfolioItem
	err = tx.QueryRow(ctx, `
		SELECT id, name, category, price_range, description, images, views, created_at
		FROM portfolio_items WHERE id = $1 FOR UPDATE`, id,
	).Scan(&item.ID, &item.Name, &item.Category, &item.PriceRange,
		&item.Description, &item.Images, &item.Views, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio item: %w", err)
	}

	applyPatch(&item, patch)

	_, err = tx.Exec(ctx, `
		UPDATE portfolio_items
		SET name = $2, category = $3, price_range = $4, description = $5, images = $6, views = $7
		WHERE id = $1`,
		item.ID, item.Name, item.Category, item.PriceRange, item.Description, item.Images, item.Views,
	)
	if err != nil {
		return nil, fmt.Errorf("update portfolio item: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return s.listItems(ctx, s.pool)
}

// RemoveItem implements Store.
func (s *PostgresStore) RemoveItem(ctx context.Context, id string) ([]models.PortfolioItem, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM portfolio_items WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete portfolio item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.listItems(ctx, s.pool)
}

// Content implements Store.
func (s *PostgresStore) Content(ctx context.Context, docType string) (json.RawMessage, error) {
	if !ValidType(docType) {
		return nil, ErrUnknownType
	}

	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM content_documents WHERE doc_type = $1`, docType,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultDocument(docType)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s document: %w", docType, err)
	}
	return json.RawMessage(body), nil
}

// SetContent implements Store.
func (s *PostgresStore) SetContent(ctx context.Context, docType string, doc json.RawMessage) error {
	if !ValidType(docType) {
		return ErrUnknownType
	}
	if !json.Valid(doc) {
		return fmt.Errorf("invalid JSON for %s document", docType)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO content_documents (doc_type, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (doc_type) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		docType, []byte(doc),
	)
	if err != nil {
		return fmt.Errorf("store %s document: %w", docType, err)
	}
	return nil
}

// queryer lets listItems run on both the pool and a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// listItems returns all items newest first, matching the file store's
// prepend ordering.
func (s *PostgresStore) listItems(ctx context.Context, q queryer) ([]models.PortfolioItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, category, price_range, description, images, views, created_at
		FROM portfolio_items
		ORDER BY created_at DESC, position DESC`)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	defer rows.Close()

	items := []models.PortfolioItem{}
	for rows.Next() {
		var item models.PortfolioItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.PriceRange,
			&item.Description, &item.Images, &item.Views, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan portfolio item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	return items, nil
}
