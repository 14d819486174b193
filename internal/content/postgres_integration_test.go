// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

//go:build integration

package content

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

const postgresImage = "postgres:16-alpine"

// skipIfNoDocker skips the test when the Docker daemon is not reachable,
// so the integration suite degrades gracefully on machines without it.
func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// startPostgres runs a throwaway Postgres container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "crumbcoat",
			"POSTGRES_PASSWORD": "crumbcoat",
			"POSTGRES_DB":       "crumbcoat_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			// The entrypoint restarts the server once during init, so
			// readiness is the second occurrence of this line.
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}

	return fmt.Sprintf("postgres://crumbcoat:crumbcoat@%s:%s/crumbcoat_test?sslmode=disable", host, port.Port())
}

func newIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()

	store, err := NewPostgresStore(context.Background(), startPostgres(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStorePortfolioLifecycle(t *testing.T) {
	skipIfNoDocker(t)
	store := newIntegrationStore(t)
	ctx := context.Background()

	items, err := store.Portfolio(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty portfolio, got %d items", len(items))
	}

	items, err = store.AddItem(ctx, models.PortfolioItem{Name: "Chocolate Truffle", Category: "Birthday", PriceRange: "1000-1500"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID == "" {
		t.Error("expected a generated ID")
	}
	if items[0].CreatedAt == 0 {
		t.Error("expected a generated CreatedAt")
	}
	id := items[0].ID

	// New items go to the front, same as the file store.
	items, err = store.AddItem(ctx, models.PortfolioItem{Name: "Red Velvet", Category: "Wedding"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Red Velvet" {
		t.Errorf("newest item should be first, got %q", items[0].Name)
	}

	newName := "Dark Chocolate Truffle"
	items, err = store.UpdateItem(ctx, id, models.PortfolioPatch{Name: &newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var updated *models.PortfolioItem
	for i := range items {
		if items[i].ID == id {
			updated = &items[i]
		}
	}
	if updated == nil {
		t.Fatal("updated item missing from list")
	}
	if updated.Name != newName {
		t.Errorf("Name = %q, want %q", updated.Name, newName)
	}
	// Unpatched fields are untouched.
	if updated.Category != "Birthday" || updated.PriceRange != "1000-1500" {
		t.Errorf("unpatched fields changed: %+v", updated)
	}

	anything := "anything"
	if _, err := store.UpdateItem(ctx, "no-such-id", models.PortfolioPatch{Name: &anything}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	items, err = store.RemoveItem(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item after removal, got %d", len(items))
	}
	if _, err := store.RemoveItem(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for removed id, got %v", err)
	}
}

func TestPostgresStoreContentDocuments(t *testing.T) {
	skipIfNoDocker(t)
	store := newIntegrationStore(t)
	ctx := context.Background()

	tests := []struct {
		docType string
		want    string
	}{
		{"showcase", "[]"},
		{"activity", "[]"},
		{"findus", "{}"},
		{"social", "{}"},
	}
	for _, tt := range tests {
		doc, err := store.Content(ctx, tt.docType)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(doc) != tt.want {
			t.Errorf("default for %s = %s, want %s", tt.docType, doc, tt.want)
		}
	}

	// Round trip. jsonb normalizes formatting, so compare decoded values
	// rather than raw bytes.
	doc := []byte(`{"instagram":"@cakencrush","phone":"+911234567890"}`)
	if err := store.SetContent(ctx, "social", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSameJSON(t, store, "social", doc)

	// Last write wins.
	doc2 := []byte(`{"instagram":"@crumbcoat"}`)
	if err := store.SetContent(ctx, "social", doc2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSameJSON(t, store, "social", doc2)

	if _, err := store.Content(ctx, "secrets"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if err := store.SetContent(ctx, "secrets", []byte("{}")); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if err := store.SetContent(ctx, "social", []byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func assertSameJSON(t *testing.T, store *PostgresStore, docType string, want []byte) {
	t.Helper()

	got, err := store.Content(context.Background(), docType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotVal, wantVal interface{}
	if err := json.Unmarshal(got, &gotVal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal(want, &wantVal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(gotVal, wantVal) {
		t.Errorf("Content = %s, want %s", got, want)
	}
}
