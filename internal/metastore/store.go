// Package metastore persists extracted document metadata in SQLite.
package metastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    slug TEXT NOT NULL DEFAULT '',
    format TEXT NOT NULL DEFAULT '',
    content_hash TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);

CREATE TABLE IF NOT EXISTS fields (
    doc_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (doc_id, key)
);
`

// DB wraps the SQLite catalog connection.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the catalog at the given path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// OpenMemory opens an in-memory catalog (for testing).
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(on)")
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Document is one catalog entry.
type Document struct {
	ID          string         `json:"doc_id"`
	Filename    string         `json:"filename"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Format      string         `json:"format"`
	ContentHash string         `json:"content_hash"`
	CreatedAt   time.Time      `json:"created_at"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// SaveDocument upserts a document and replaces its metadata fields.
func (db *DB) SaveDocument(ctx context.Context, doc Document) error {
	if doc.Slug == "" {
		doc.Slug = Slugify(doc.Title)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, filename, title, slug, format, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			title = excluded.title,
			slug = excluded.slug,
			format = excluded.format,
			content_hash = excluded.content_hash
	`, doc.ID, doc.Filename, doc.Title, doc.Slug, doc.Format, doc.ContentHash, doc.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM fields WHERE doc_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clear fields: %w", err)
	}
	for key, value := range doc.Fields {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", key, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO fields (doc_id, key, value) VALUES (?, ?, ?)",
			doc.ID, key, string(encoded))
		if err != nil {
			return fmt.Errorf("insert field %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// GetDocument returns a document with its fields, or nil when missing.
func (db *DB) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	var createdAt int64
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, filename, title, slug, format, content_hash, created_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Filename, &doc.Title, &doc.Slug, &doc.Format, &doc.ContentHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := db.conn.QueryContext(ctx, "SELECT key, value FROM fields WHERE doc_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get fields: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", key, err)
		}
		if doc.Fields == nil {
			doc.Fields = map[string]any{}
		}
		doc.Fields[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns catalog entries newest first, without fields.
func (db *DB) ListDocuments(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, filename, title, slug, format, content_hash, created_at
		FROM documents ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var createdAt int64
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Title, &doc.Slug, &doc.Format, &doc.ContentHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CreatedAt = time.Unix(createdAt, 0).UTC()
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its fields. Returns false when
// no such document exists.
func (db *DB) DeleteDocument(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindByHash returns the ID of a document with the given content hash,
// or "" when none exists.
func (db *DB) FindByHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := db.conn.QueryRowContext(ctx,
		"SELECT id FROM documents WHERE content_hash = ? LIMIT 1", hash).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find by hash: %w", err)
	}
	return id, nil
}

// CountDocuments returns the catalog size.
func (db *DB) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}
