// Package sqlitevec provides a SQLite-backed store using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/store"
)

// Store implements store.Store using SQLite with the sqlite-vec extension.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewStore creates a SQLite store backed by sqlite-vec.
func NewStore(c Config, logger *zap.Logger) (*Store, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", store.ErrConnection, err)
	}

	// An in-memory database exists per connection; a second pooled
	// connection would see an empty schema.
	db.SetMaxOpenConns(1)

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", store.ErrConnection, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			checksum TEXT,
			meta TEXT NOT NULL DEFAULT '{}',
			public INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	// Section rows carry the text; their rowids key the vec0 virtual table,
	// which holds the embeddings for KNN queries.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL,
			content TEXT NOT NULL,
			token_count INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sections table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_sections USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec store initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Store{db: db, logger: logger}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func (s *Store) FindByPath(ctx context.Context, path string) (*store.DocumentRecord, error) {
	var rec store.DocumentRecord
	var checksum sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, checksum, meta, public FROM documents WHERE path = ?`, path,
	).Scan(&rec.ID, &rec.Path, &checksum, &rec.Meta, &rec.Public)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding document %s: %v", store.ErrFetch, path, err)
	}

	if checksum.Valid {
		rec.Checksum = &checksum.String
	}
	return &rec, nil
}

func (s *Store) UpsertByPath(ctx context.Context, path string, doc store.DocumentUpsert) (string, error) {
	var checksum any
	if doc.Checksum != nil {
		checksum = *doc.Checksum
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, checksum, meta, public) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET checksum = excluded.checksum, meta = excluded.meta, public = excluded.public
	`, id, path, checksum, doc.Meta, doc.Public)
	if err != nil {
		return "", fmt.Errorf("%w: upserting document %s: %v", store.ErrFetch, path, err)
	}

	// The insert id is discarded on conflict; read back the canonical one.
	var storedID string
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE path = ?`, path,
	).Scan(&storedID); err != nil {
		return "", fmt.Errorf("%w: resolving id for %s: %v", store.ErrFetch, path, err)
	}

	return storedID, nil
}

func (s *Store) UpdateByPath(ctx context.Context, path string, update store.DocumentUpdate) error {
	if update.Checksum != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE documents SET checksum = ? WHERE path = ?`, *update.Checksum, path,
		); err != nil {
			return fmt.Errorf("%w: updating checksum for %s: %v", store.ErrFetch, path, err)
		}
	}
	if update.Public != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE documents SET public = ? WHERE path = ?`, *update.Public, path,
		); err != nil {
			return fmt.Errorf("%w: updating public flag for %s: %v", store.ErrFetch, path, err)
		}
	}
	return nil
}

func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", store.ErrFetch, err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: finding document %s: %v", store.ErrFetch, path, err)
	}

	if err := deleteSectionsTx(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: deleting document %s: %v", store.ErrFetch, path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing delete: %v", store.ErrFetch, err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]store.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, checksum, meta, public FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %v", store.ErrFetch, err)
	}
	defer rows.Close()

	var docs []store.DocumentRecord
	for rows.Next() {
		var rec store.DocumentRecord
		var checksum sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Path, &checksum, &rec.Meta, &rec.Public); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", store.ErrFetch, err)
		}
		if checksum.Valid {
			rec.Checksum = &checksum.String
		}
		docs = append(docs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %v", store.ErrFetch, err)
	}

	return docs, nil
}

func (s *Store) DeleteByDocumentID(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", store.ErrFetch, err)
	}
	defer tx.Rollback()

	if err := deleteSectionsTx(ctx, tx, documentID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing section delete: %v", store.ErrFetch, err)
	}
	return nil
}

func deleteSectionsTx(ctx context.Context, tx *sql.Tx, documentID string) error {
	// vec0 rows share rowids with the sections table; remove both.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vec_sections WHERE rowid IN (SELECT rowid FROM sections WHERE document_id = ?)
	`, documentID); err != nil {
		return fmt.Errorf("%w: deleting embeddings for document %s: %v", store.ErrFetch, documentID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sections WHERE document_id = ?`, documentID,
	); err != nil {
		return fmt.Errorf("%w: deleting sections for document %s: %v", store.ErrFetch, documentID, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, section store.SectionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", store.ErrFetch, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO sections (document_id, content, token_count) VALUES (?, ?, ?)`,
		section.DocumentID, section.Content, section.TokenCount,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting section: %v", store.ErrFetch, err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: getting section rowid: %v", store.ErrFetch, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vec_sections(rowid, embedding) VALUES (?, ?)`,
		rowID, serializeFloat32(section.Embedding),
	); err != nil {
		return fmt.Errorf("%w: inserting embedding: %v", store.ErrFetch, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing section insert: %v", store.ErrFetch, err)
	}
	return nil
}

func (s *Store) Match(ctx context.Context, embedding []float32, params store.MatchParams) ([]store.Match, error) {
	count := params.Count
	if count <= 0 {
		count = 10
	}

	// KNN via vec0 MATCH, joined back for content. The threshold and length
	// filters run client-side on the cosine distance sqlite-vec reports.
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			sec.document_id,
			sec.content,
			vs.distance
		FROM vec_sections vs
		INNER JOIN sections sec ON sec.rowid = vs.rowid
		WHERE vs.embedding MATCH ?
			AND vs.k = ?
		ORDER BY vs.distance
	`, serializeFloat32(embedding), count)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %v", store.ErrFetch, err)
	}
	defer rows.Close()

	var matches []store.Match
	for rows.Next() {
		var m store.Match
		var distance float64
		if err := rows.Scan(&m.DocumentID, &m.Content, &distance); err != nil {
			return nil, fmt.Errorf("%w: scanning match: %v", store.ErrFetch, err)
		}

		// Cosine distance to similarity.
		m.Similarity = 1.0 - distance

		if m.Similarity < params.Threshold {
			continue
		}
		if len(m.Content) < params.MinContentLength {
			continue
		}

		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating matches: %v", store.ErrFetch, err)
	}

	s.logger.Debug("matched sections", zap.Int("results", len(matches)))
	return matches, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
