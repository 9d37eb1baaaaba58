// Package sqlite provides a VectorStore backed by a single SQLite file.
// Memories are stored as JSON documents next to a little-endian float64
// BLOB of their embedding; similarity ranking runs in Go over the
// candidate rows.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/personaut/personaut/internal/storage"
	"github.com/personaut/personaut/pkg/types"
)

// Schema creates the memories table. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS memories (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL DEFAULT '',
	memory_type TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	doc         TEXT NOT NULL,
	embedding   BLOB NOT NULL,
	dimension   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_owner ON memories(owner_id);
`

// Store implements storage.VectorStore using SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore opens (or creates) a SQLite database and prepares the schema.
// Pass ":memory:" for an ephemeral store.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY under concurrent load;
	// it also keeps an in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Store inserts or replaces a memory together with its embedding.
func (s *Store) Store(ctx context.Context, memory *types.Memory, embedding []float64) error {
	if err := storage.ValidateUpsert(memory, embedding); err != nil {
		return err
	}
	memory.Embedding = append([]float64(nil), embedding...)

	// The embedding lives in its own BLOB column; the JSON document
	// carries everything else so the two never diverge.
	doc := *memory
	doc.Embedding = nil
	raw, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("sqlite: failed to marshal memory %q: %w", memory.ID, err)
	}

	const query = `
		INSERT INTO memories (id, owner_id, memory_type, created_at, doc, embedding, dimension)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id    = excluded.owner_id,
			memory_type = excluded.memory_type,
			created_at  = excluded.created_at,
			doc         = excluded.doc,
			embedding   = excluded.embedding,
			dimension   = excluded.dimension
	`
	_, err = s.db.ExecContext(ctx, query,
		memory.ID, memory.OwnerID, string(memory.Type), memory.CreatedAt,
		string(raw), storage.EncodeEmbedding(embedding), len(embedding))
	if err != nil {
		return fmt.Errorf("sqlite: failed to store memory %q: %w", memory.ID, err)
	}
	return nil
}

// Search loads the candidate rows and ranks them in Go by cosine
// similarity descending, ties by id ascending.
func (s *Store) Search(ctx context.Context, query []float64, limit int, ownerID string) ([]storage.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector cannot be empty", storage.ErrInvalidInput)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", storage.ErrInvalidInput, limit)
	}

	querySQL := `SELECT doc, embedding, dimension FROM memories`
	var args []any
	if ownerID != "" {
		querySQL += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}

	rows, err := s.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to load candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []storage.SearchResult
	for rows.Next() {
		var raw string
		var blob []byte
		var dimension int
		if err := rows.Scan(&raw, &blob, &dimension); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan candidate: %w", err)
		}
		memory, err := decodeRow(raw, blob, dimension)
		if err != nil {
			return nil, err
		}
		results = append(results, storage.SearchResult{
			Memory:     memory,
			Similarity: storage.CosineSimilarity(query, memory.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate candidates: %w", err)
	}

	storage.SortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Get returns the memory with the given id, (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, id string) (*types.Memory, error) {
	var raw string
	var blob []byte
	var dimension int
	err := s.db.QueryRowContext(ctx,
		`SELECT doc, embedding, dimension FROM memories WHERE id = ?`, id).
		Scan(&raw, &blob, &dimension)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get memory %q: %w", id, err)
	}
	return decodeRow(raw, blob, dimension)
}

// Delete removes a memory, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: failed to delete memory %q: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

// UpdateEmbedding replaces the embedding of an existing memory.
func (s *Store) UpdateEmbedding(ctx context.Context, id string, embedding []float64) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", storage.ErrInvalidInput)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE memories SET embedding = ?, dimension = ? WHERE id = ?`,
		storage.EncodeEmbedding(embedding), len(embedding), id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to update embedding for %q: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: memory %q", storage.ErrNotFound, id)
	}
	return nil
}

// Count returns how many memories are stored, for one owner when
// ownerID is non-empty.
func (s *Store) Count(ctx context.Context, ownerID string) (int, error) {
	querySQL := `SELECT COUNT(*) FROM memories`
	var args []any
	if ownerID != "" {
		querySQL += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, querySQL, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: failed to count memories: %w", err)
	}
	return n, nil
}

// GetByOwner returns the owner's memories ordered by creation time
// ascending, ties by id.
func (s *Store) GetByOwner(ctx context.Context, ownerID string) ([]*types.Memory, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", storage.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc, embedding, dimension FROM memories
		 WHERE owner_id = ? ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list memories for %q: %w", ownerID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Memory
	for rows.Next() {
		var raw string
		var blob []byte
		var dimension int
		if err := rows.Scan(&raw, &blob, &dimension); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan memory: %w", err)
		}
		memory, err := decodeRow(raw, blob, dimension)
		if err != nil {
			return nil, err
		}
		out = append(out, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate memories: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// decodeRow rebuilds a memory from its JSON document and embedding BLOB.
func decodeRow(raw string, blob []byte, dimension int) (*types.Memory, error) {
	var memory types.Memory
	if err := json.Unmarshal([]byte(raw), &memory); err != nil {
		return nil, fmt.Errorf("sqlite: failed to unmarshal memory document: %w", err)
	}
	embedding, err := storage.DecodeEmbedding(blob, dimension)
	if err != nil {
		return nil, fmt.Errorf("sqlite: corrupt embedding for %q: %w", memory.ID, err)
	}
	memory.Embedding = embedding
	return &memory, nil
}
