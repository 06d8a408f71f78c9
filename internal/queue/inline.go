package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrNoWorker is returned by the inline queue when no handler is registered for a task type.
var ErrNoWorker = errors.New("no worker registered for task type")

// InlineQueue runs handlers synchronously inside Enqueue, so an upload is
// chunked and stored before the request returns.
type InlineQueue struct {
	log *slog.Logger

	mu       sync.RWMutex
	handlers map[TaskType]Handler
}

func NewInline(log *slog.Logger) *InlineQueue {
	return &InlineQueue{log: log, handlers: make(map[TaskType]Handler)}
}

func (q *InlineQueue) Enqueue(ctx context.Context, task Task) error {
	if task.Type == "" {
		return errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	q.mu.RLock()
	h, ok := q.handlers[task.Type]
	q.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoWorker, task.Type)
	}
	if err := h(ctx, task); err != nil {
		q.log.Error("inline task failed", "id", task.ID, "type", task.Type, "err", err)
		return err
	}
	return nil
}

// Worker registers handler and blocks until ctx is done.
func (q *InlineQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	q.Register(taskType, handler)
	<-ctx.Done()
	q.mu.Lock()
	delete(q.handlers, taskType)
	q.mu.Unlock()
	return nil
}

// Register installs handler without blocking.
func (q *InlineQueue) Register(taskType TaskType, handler Handler) {
	q.mu.Lock()
	q.handlers[taskType] = handler
	q.mu.Unlock()
}
