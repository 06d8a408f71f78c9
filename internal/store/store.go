package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
	// StatusEmpty marks a document whose extraction produced no chunks.
	StatusEmpty DocumentStatus = "empty"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document is one uploaded file inside a session.
type Document struct {
	ID         uuid.UUID      `json:"id"`
	SessionID  string         `json:"session_id"`
	Filename   string         `json:"filename"`
	Status     DocumentStatus `json:"status"`
	ChunkCount int            `json:"chunk_count"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Store persists per-session upload pools.
type Store interface {
	CreateDocument(ctx context.Context, sessionID, filename string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	// SaveChunks replaces the chunks of a document.
	SaveChunks(ctx context.Context, docID uuid.UUID, chunks []string) error
	ListDocuments(ctx context.Context, sessionID string) ([]Document, error)
	// SessionChunks returns chunks of ready documents in upload order, then chunk order.
	SessionChunks(ctx context.Context, sessionID string) ([]string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}
