package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemory() })
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := NewSQLite(filepath.Join(t.TempDir(), "store.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestQuestionBindvars(t *testing.T) {
	assert.Equal(t, "UPDATE t SET a=? WHERE id=?", questionBindvars("UPDATE t SET a=$1 WHERE id=$2"))
	assert.Equal(t, "SELECT 1", questionBindvars("SELECT 1"))
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		doc, err := s.CreateDocument(ctx, "sess-1", "guide.pdf")
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, doc.Status)

		got, err := s.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
		assert.Equal(t, "sess-1", got.SessionID)
		assert.Equal(t, "guide.pdf", got.Filename)
		assert.Equal(t, StatusProcessing, got.Status)
	})

	t.Run("unknown document", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetDocument(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		assert.ErrorIs(t, s.UpdateDocumentStatus(ctx, uuid.New(), StatusReady), ErrDocumentNotFound)
		assert.ErrorIs(t, s.SaveChunks(ctx, uuid.New(), []string{"x"}), ErrDocumentNotFound)
	})

	t.Run("session chunks only include ready documents in upload order", func(t *testing.T) {
		s := newStore(t)
		first, err := s.CreateDocument(ctx, "sess", "a.txt")
		require.NoError(t, err)
		pending, err := s.CreateDocument(ctx, "sess", "b.txt")
		require.NoError(t, err)
		second, err := s.CreateDocument(ctx, "sess", "c.txt")
		require.NoError(t, err)
		other, err := s.CreateDocument(ctx, "other", "d.txt")
		require.NoError(t, err)

		require.NoError(t, s.SaveChunks(ctx, second.ID, []string{"c1", "c2"}))
		require.NoError(t, s.SaveChunks(ctx, first.ID, []string{"a1", "a2", "a3"}))
		require.NoError(t, s.SaveChunks(ctx, pending.ID, []string{"b1"}))
		require.NoError(t, s.SaveChunks(ctx, other.ID, []string{"d1"}))
		for _, id := range []uuid.UUID{first.ID, second.ID, other.ID} {
			require.NoError(t, s.UpdateDocumentStatus(ctx, id, StatusReady))
		}

		chunks, err := s.SessionChunks(ctx, "sess")
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2", "a3", "c1", "c2"}, chunks)

		docs, err := s.ListDocuments(ctx, "sess")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, []string{docs[0].Filename, docs[1].Filename, docs[2].Filename})
		assert.Equal(t, 3, docs[0].ChunkCount)
		assert.Equal(t, StatusProcessing, docs[1].Status)
	})

	t.Run("save chunks replaces previous chunks", func(t *testing.T) {
		s := newStore(t)
		doc, err := s.CreateDocument(ctx, "sess", "a.txt")
		require.NoError(t, err)
		require.NoError(t, s.SaveChunks(ctx, doc.ID, []string{"old1", "old2"}))
		require.NoError(t, s.SaveChunks(ctx, doc.ID, []string{"new"}))
		require.NoError(t, s.UpdateDocumentStatus(ctx, doc.ID, StatusReady))

		chunks, err := s.SessionChunks(ctx, "sess")
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, chunks)

		got, err := s.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ChunkCount)
	})

	t.Run("empty session", func(t *testing.T) {
		s := newStore(t)
		chunks, err := s.SessionChunks(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, chunks)
		docs, err := s.ListDocuments(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("delete session", func(t *testing.T) {
		s := newStore(t)
		gone, err := s.CreateDocument(ctx, "drop", "a.txt")
		require.NoError(t, err)
		kept, err := s.CreateDocument(ctx, "keep", "b.txt")
		require.NoError(t, err)
		require.NoError(t, s.SaveChunks(ctx, gone.ID, []string{"x"}))
		require.NoError(t, s.SaveChunks(ctx, kept.ID, []string{"y"}))
		require.NoError(t, s.UpdateDocumentStatus(ctx, gone.ID, StatusReady))
		require.NoError(t, s.UpdateDocumentStatus(ctx, kept.ID, StatusReady))

		require.NoError(t, s.DeleteSession(ctx, "drop"))

		_, err = s.GetDocument(ctx, gone.ID)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		chunks, err := s.SessionChunks(ctx, "keep")
		require.NoError(t, err)
		assert.Equal(t, []string{"y"}, chunks)
		require.NoError(t, s.DeleteSession(ctx, "never-existed"))
	})
}
