package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It is the default provider.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[uuid.UUID]*Document
	order  []uuid.UUID
	chunks map[uuid.UUID][]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[uuid.UUID]*Document),
		chunks: make(map[uuid.UUID][]string),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, sessionID, filename string) (Document, error) {
	doc := Document{
		ID:        uuid.New(),
		SessionID: sessionID,
		Filename:  filename,
		Status:    StatusProcessing,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = &doc
	s.order = append(s.order, doc.ID)
	return doc, nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id uuid.UUID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return *doc, nil
}

func (s *MemoryStore) UpdateDocumentStatus(_ context.Context, id uuid.UUID, status DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrDocumentNotFound
	}
	doc.Status = status
	return nil
}

func (s *MemoryStore) SaveChunks(_ context.Context, docID uuid.UUID, chunks []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return ErrDocumentNotFound
	}
	s.chunks[docID] = append([]string(nil), chunks...)
	doc.ChunkCount = len(chunks)
	return nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, sessionID string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Document{}
	for _, id := range s.order {
		if d := s.docs[id]; d.SessionID == sessionID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *MemoryStore) SessionChunks(_ context.Context, sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for _, id := range s.order {
		if d := s.docs[id]; d.SessionID == sessionID && d.Status == StatusReady {
			out = append(out, s.chunks[id]...)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, id := range s.order {
		if s.docs[id].SessionID == sessionID {
			delete(s.docs, id)
			delete(s.chunks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}

func (s *MemoryStore) Close() error { return nil }
