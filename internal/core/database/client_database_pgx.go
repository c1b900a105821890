package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/models"
)

var _ core.VectorStore = (*PgVectorStore)(nil)

// PgVectorStore keeps retriever indexes in Postgres with the pgvector extension.
type PgVectorStore struct {
	db *sql.DB
}

func NewPgVectorStore(ctx context.Context, databaseURL string) (*PgVectorStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return newPgVectorStoreFromDB(db), nil
}

func newPgVectorStoreFromDB(db *sql.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (c *PgVectorStore) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InsertChunks inserts chunks in a single transaction.
func (c *PgVectorStore) InsertChunks(ctx context.Context, indexKey string, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO index_chunks
			(id, index_key, position, text, embedding, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			ch.ID, indexKey, ch.Position, ch.Text, pgvector.NewVector(ch.Embedding), ch.TokenCount, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchChunks finds top-k chunks of one index by cosine distance to queryVec.
func (c *PgVectorStore) SearchChunks(ctx context.Context, indexKey string, queryVec []float32, limit int) ([]models.RetrievedChunk, error) {
	const q = `
		SELECT position, text, 1 - (embedding <=> $2) AS score
		FROM index_chunks
		WHERE index_key = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, indexKey, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RetrievedChunk
	for rows.Next() {
		var ch models.RetrievedChunk
		if err := rows.Scan(&ch.Position, &ch.Text, &ch.Score); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (c *PgVectorStore) DropIndex(ctx context.Context, indexKey string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM index_chunks WHERE index_key = $1`, indexKey)
	return err
}
