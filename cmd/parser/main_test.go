package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doc-assistant/internal/app"
	"doc-assistant/internal/cache"
	"doc-assistant/internal/config"
	"doc-assistant/internal/ingest"
	"doc-assistant/internal/logger"
	"doc-assistant/internal/queue"
	"doc-assistant/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue) app.Deps {
	return app.Deps{
		Config: config.Config{Port: 0, ChunkSize: 900, ChunkOverlap: 150},
		Log:    logger.Discard(),
		Store:  st,
		Queue:  q,
		Cache:  cache.NewNoOpCache(),
	}
}

func TestRunProcessesParseTasks(t *testing.T) {
	st := store.NewMemory()
	inline := queue.NewInline(logger.Discard())
	deps := newTestDeps(st, inline)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, deps) }()

	doc, err := st.CreateDocument(context.Background(), "s1", "a.txt")
	require.NoError(t, err)
	task, err := ingest.NewTask(ingest.ParsePayload{DocumentID: doc.ID, SessionID: "s1", Filename: "a.txt", Text: "alpha beta"})
	require.NoError(t, err)

	// The worker registers asynchronously.
	require.Eventually(t, func() bool {
		return inline.Enqueue(context.Background(), task) == nil
	}, 2*time.Second, 10*time.Millisecond)

	got, err := st.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusReady, got.Status)
	assert.Equal(t, 1, got.ChunkCount)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunReturnsWorkerError(t *testing.T) {
	q := new(queue.MockQueue)
	q.On("Worker", mock.Anything, queue.TaskTypeParse, mock.Anything).Return(errors.New("nats down")).Once()

	err := run(context.Background(), newTestDeps(new(store.MockStore), q))

	require.EqualError(t, err, "nats down")
	q.AssertExpectations(t)
}

func TestParseHandlerReturnsStoreError(t *testing.T) {
	docID := uuid.New()
	st := new(store.MockStore)
	st.On("SaveChunks", mock.Anything, docID, []string{"alpha beta"}).Return(errors.New("db error")).Once()

	task, err := ingest.NewTask(ingest.ParsePayload{DocumentID: docID, SessionID: "s1", Filename: "a.txt", Text: "alpha beta"})
	require.NoError(t, err)

	err = newTestDeps(st, nil).Ingestor().Handle(context.Background(), task)

	assert.Error(t, err)
	st.AssertExpectations(t)
}
