package metastore

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveGetDocument(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	doc := Document{
		ID:          "abc123",
		Filename:    "notes.md",
		Title:       "Release Notes",
		Format:      "markdown",
		ContentHash: "deadbeef",
		CreatedAt:   time.Unix(1700000000, 0),
		Fields: map[string]any{
			"title":   "Release Notes",
			"version": 3,
			"tags":    []any{"a", "b"},
		},
	}
	if err := db.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.GetDocument(ctx, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected document, got nil")
	}
	if got.Title != "Release Notes" {
		t.Errorf("expected title %q, got %q", "Release Notes", got.Title)
	}
	if got.Slug != "release-notes" {
		t.Errorf("expected auto-generated slug, got %q", got.Slug)
	}
	if len(got.Fields) != 3 {
		t.Errorf("expected 3 fields, got %d", len(got.Fields))
	}
	// Field values round-trip through JSON, so numbers come back as float64.
	if got.Fields["version"] != float64(3) {
		t.Errorf("expected version 3, got %v", got.Fields["version"])
	}
}

func TestGetDocument_Missing(t *testing.T) {
	db := testDB(t)
	got, err := db.GetDocument(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing document, got %+v", got)
	}
}

func TestSaveDocument_UpsertReplacesFields(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := Document{
		ID:        "doc1",
		Filename:  "a.md",
		Title:     "First",
		CreatedAt: time.Now(),
		Fields:    map[string]any{"old": "value", "keep": 1},
	}
	if err := db.SaveDocument(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first
	second.Title = "Second"
	second.Slug = ""
	second.Fields = map[string]any{"fresh": true}
	if err := db.SaveDocument(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Second" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if len(got.Fields) != 1 || got.Fields["fresh"] != true {
		t.Errorf("expected fields fully replaced, got %v", got.Fields)
	}

	count, err := db.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected upsert not to duplicate, count=%d", count)
	}
}

func TestListDocuments_NewestFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i, id := range []string{"old", "mid", "new"} {
		doc := Document{
			ID:        id,
			Filename:  id + ".md",
			CreatedAt: time.Unix(int64(1700000000+i), 0),
		}
		if err := db.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	docs, err := db.ListDocuments(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].ID != "new" || docs[2].ID != "old" {
		t.Errorf("expected newest first, got %s..%s", docs[0].ID, docs[2].ID)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	doc := Document{
		ID:        "gone",
		Filename:  "gone.md",
		CreatedAt: time.Now(),
		Fields:    map[string]any{"k": "v"},
	}
	if err := db.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	deleted, err := db.DeleteDocument(ctx, "gone")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}

	got, err := db.GetDocument(ctx, "gone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected document to be gone")
	}

	deleted, err = db.DeleteDocument(ctx, "gone")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for missing document")
	}
}

func TestFindByHash(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	doc := Document{
		ID:          "h1",
		Filename:    "h.md",
		ContentHash: "cafebabe",
		CreatedAt:   time.Now(),
	}
	if err := db.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	id, err := db.FindByHash(ctx, "cafebabe")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if id != "h1" {
		t.Errorf("expected h1, got %q", id)
	}

	id, err = db.FindByHash(ctx, "unknown")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id for unknown hash, got %q", id)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Release Notes", "release-notes"},
		{"  Hello,  World!  ", "hello-world"},
		{"already-slugged", "already-slugged"},
		{"___", ""},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
