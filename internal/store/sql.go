package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// dialect carries the per-engine differences of the SQL store.
type dialect struct {
	name       string
	schema     []string
	bindvar    func(query string) string
	saveChunks func(ctx context.Context, tx *sql.Tx, docID uuid.UUID, chunks []string) error
}

// sqlStore implements Store on database/sql. Queries are written with $n placeholders.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

var dollarParam = regexp.MustCompile(`\$\d+`)

// questionBindvars rewrites $n to ?. Every query using it references each
// parameter once, in order.
func questionBindvars(q string) string {
	return dollarParam.ReplaceAllString(q, "?")
}

func (s *sqlStore) q(query string) string {
	if s.d.bindvar == nil {
		return query
	}
	return s.d.bindvar(query)
}

func (s *sqlStore) createSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migrate: %w", s.d.name, err)
		}
	}
	return nil
}

func (s *sqlStore) CreateDocument(ctx context.Context, sessionID, filename string) (Document, error) {
	doc := Document{
		ID:        uuid.New(),
		SessionID: sessionID,
		Filename:  filename,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO documents(id, session_id, filename, status, chunk_count, created_at) VALUES($1,$2,$3,$4,0,$5)`),
		doc.ID.String(), sessionID, filename, string(doc.Status), doc.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

const documentColumns = `id, session_id, filename, status, chunk_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		d      Document
		id     string
		status string
	)
	if err := row.Scan(&id, &d.SessionID, &d.Filename, &status, &d.ChunkCount, &d.CreatedAt); err != nil {
		return Document{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Document{}, fmt.Errorf("bad document id %q: %w", id, err)
	}
	d.ID = parsed
	d.Status = DocumentStatus(status)
	return d, nil
}

func (s *sqlStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+documentColumns+` FROM documents WHERE id=$1`), id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

func (s *sqlStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE documents SET status=$1 WHERE id=$2`), string(status), id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *sqlStore) SaveChunks(ctx context.Context, docID uuid.UUID, chunks []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.q(`UPDATE documents SET chunk_count=$1 WHERE id=$2`), len(chunks), docID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM chunks WHERE document_id=$1`), docID.String()); err != nil {
		return err
	}
	if len(chunks) > 0 {
		if err := s.d.saveChunks(ctx, tx, docID, chunks); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) ListDocuments(ctx context.Context, sessionID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+documentColumns+` FROM documents WHERE session_id=$1 ORDER BY seq`), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *sqlStore) SessionChunks(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT c.text
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.session_id=$1 AND d.status=$2
		ORDER BY d.seq, c.ord`), sessionID, string(StatusReady))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

func (s *sqlStore) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		s.q(`DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE session_id=$1)`), sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM documents WHERE session_id=$1`), sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
