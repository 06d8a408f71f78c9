package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"doc-assistant/internal/cache"
	"doc-assistant/internal/chunker"
	"doc-assistant/internal/queue"
	"doc-assistant/internal/store"
)

// ParsePayload is the body of a parse task: text already extracted by the gateway.
type ParsePayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
}

// NewTask wraps a payload in a parse task.
func NewTask(p ParsePayload) (queue.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return queue.Task{}, fmt.Errorf("marshal parse payload: %w", err)
	}
	return queue.Task{ID: uuid.New(), Type: queue.TaskTypeParse, Payload: body}, nil
}

// Ingestor chunks extracted text into a session pool.
type Ingestor struct {
	Store    store.Store
	Cache    cache.Cache
	Chunking chunker.Options
	Log      *slog.Logger
}

// Handle is a queue.Handler for parse tasks.
func (in *Ingestor) Handle(ctx context.Context, task queue.Task) error {
	var p ParsePayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return fmt.Errorf("decode parse payload: %w", err)
	}
	return in.Ingest(ctx, p)
}

// Ingest stores the chunks of one document and marks it ready, or empty when
// the text produced no chunks.
func (in *Ingestor) Ingest(ctx context.Context, p ParsePayload) error {
	log := in.Log.With("document_id", p.DocumentID, "session_id", p.SessionID)

	chunks := chunker.ChunkText(p.Text, in.Chunking)
	if len(chunks) == 0 {
		if err := in.Store.UpdateDocumentStatus(ctx, p.DocumentID, store.StatusEmpty); err != nil {
			return fmt.Errorf("mark document empty: %w", err)
		}
		log.Warn("document produced no chunks", "filename", p.Filename)
		return nil
	}

	if err := in.Store.SaveChunks(ctx, p.DocumentID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	if err := in.Store.UpdateDocumentStatus(ctx, p.DocumentID, store.StatusReady); err != nil {
		return fmt.Errorf("mark document ready: %w", err)
	}
	if err := in.Cache.InvalidateSession(ctx, p.SessionID); err != nil {
		log.Warn("failed to invalidate session cache", "err", err)
	}
	log.Info("document ingested", "filename", p.Filename, "chunks", len(chunks))
	return nil
}
