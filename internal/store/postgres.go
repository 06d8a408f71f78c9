package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// PostgresStore persists session pools in Postgres through the pgx stdlib driver.
type PostgresStore struct {
	sqlStore
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		seq BIGSERIAL,
		id UUID PRIMARY KEY,
		session_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		status TEXT NOT NULL,
		chunk_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS documents_session_idx ON documents(session_id, seq);`,
	`CREATE TABLE IF NOT EXISTS chunks (
		document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		ord INT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (document_id, ord)
	);`,
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{sqlStore{db: db, d: dialect{
		name:       "postgres",
		schema:     postgresSchema,
		saveChunks: postgresSaveChunks,
	}}}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock keeps gateway, parser and query from migrating at the same time.
	const lockID = 424242017

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		// Another service is migrating; give it a moment and carry on.
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()
	return s.createSchema(ctx)
}

// postgresSaveChunks inserts all chunks in one statement; ord follows slice order.
func postgresSaveChunks(ctx context.Context, tx *sql.Tx, docID uuid.UUID, chunks []string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO chunks(document_id, ord, text)
		SELECT $1::uuid, t.ord - 1, t.text
		FROM unnest($2::text[]) WITH ORDINALITY AS t(text, ord)`,
		docID.String(), pq.Array(chunks))
	return err
}
