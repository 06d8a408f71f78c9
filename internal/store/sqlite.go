package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a single-file store for running everything on one host.
type SQLiteStore struct {
	sqlStore
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		status TEXT NOT NULL,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS documents_session_idx ON documents(session_id, seq);`,
	`CREATE TABLE IF NOT EXISTS chunks (
		document_id TEXT NOT NULL,
		ord INTEGER NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (document_id, ord)
	);`,
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time avoids SQLITE_BUSY between the gateway and inline worker.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{sqlStore{db: db, d: dialect{
		name:       "sqlite",
		schema:     sqliteSchema,
		bindvar:    questionBindvars,
		saveChunks: sqliteSaveChunks,
	}}}
	if err := s.createSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sqliteSaveChunks(ctx context.Context, tx *sql.Tx, docID uuid.UUID, chunks []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks(document_id, ord, text) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, docID.String(), i, c); err != nil {
			return err
		}
	}
	return nil
}
