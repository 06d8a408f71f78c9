package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-assistant/internal/cache"
	"doc-assistant/internal/guard"
	"doc-assistant/internal/knowledge"
	"doc-assistant/internal/llm"
	"doc-assistant/internal/prompt"
	"doc-assistant/internal/retrieval"
	"doc-assistant/internal/store"
)

const (
	SourceBuiltin = "builtin"
	SourceUpload  = "upload"

	previewLen = 150
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNoKnowledge   = errors.New("no knowledge loaded")
)

// TooLongError is returned when the question exceeds the configured limit.
type TooLongError struct {
	Status  guard.Status
	Message string
}

func (e *TooLongError) Error() string { return e.Message }

// ModelError wraps a failed model call.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string { return "model call failed: " + e.Err.Error() }
func (e *ModelError) Unwrap() error { return e.Err }

// BuiltinPool supplies the built-in chunk pool.
type BuiltinPool interface {
	Load() knowledge.Pool
}

// Request is one question. Source defaults to builtin. Blank questions are
// rejected by the length guard, not the validator.
type Request struct {
	Question  string `json:"question"`
	Source    string `json:"source" validate:"required,oneof=builtin upload"`
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
}

// Answer is the response to a Request.
type Answer struct {
	Answer  string         `json:"answer"`
	Context string         `json:"context"`
	Sources []cache.Source `json:"sources"`
	Cached  bool           `json:"cached"`
}

// Service answers questions from the built-in corpus or a session's uploads.
type Service struct {
	Builtin  BuiltinPool
	Store    store.Store
	Cache    cache.Cache
	LLM      llm.Client
	Limit    guard.Limit
	TopK     int
	Budget   int
	CacheTTL time.Duration
	Log      *slog.Logger
}

func (s *Service) Ask(ctx context.Context, req Request) (Answer, error) {
	st := s.Limit.Check(req.Question)
	if st.Empty {
		return Answer{}, ErrEmptyQuestion
	}
	if st.Exceeded {
		return Answer{}, &TooLongError{Status: st, Message: s.Limit.TooLongMessage()}
	}

	pool, err := s.pool(ctx, req)
	if err != nil {
		return Answer{}, err
	}
	if len(pool) == 0 {
		return Answer{}, ErrNoKnowledge
	}

	key := cache.Key(cache.KeyParts{
		Question:  req.Question,
		Source:    req.Source,
		SessionID: req.SessionID,
		TopK:      s.TopK,
		Budget:    s.Budget,
		Pool:      pool,
	})
	if hit, err := s.Cache.GetAnswer(ctx, key); err != nil {
		s.Log.Warn("cache lookup failed", "err", err)
	} else if hit != nil {
		s.Log.Info("cache hit", "source", req.Source)
		return Answer{Answer: hit.Answer, Context: hit.Context, Sources: hit.Sources, Cached: true}, nil
	}

	selected := retrieval.SelectScored(req.Question, pool, s.TopK, s.Budget)
	texts := make([]string, len(selected))
	sources := make([]cache.Source, len(selected))
	for i, c := range selected {
		texts[i] = c.Text
		sources[i] = cache.Source{Score: c.Score, Preview: truncate(c.Text, previewLen)}
	}
	contextText := prompt.BuildContext(texts)

	reply, err := s.LLM.Answer(ctx, req.Question, contextText)
	if err != nil {
		return Answer{}, &ModelError{Err: err}
	}

	if err := s.Cache.SetAnswer(ctx, key, &cache.Answer{Answer: reply, Context: contextText, Sources: sources}, s.CacheTTL); err != nil {
		s.Log.Warn("failed to cache answer", "err", err)
	}
	return Answer{Answer: reply, Context: contextText, Sources: sources}, nil
}

func (s *Service) pool(ctx context.Context, req Request) ([]string, error) {
	if req.Source != SourceUpload {
		return s.Builtin.Load().Chunks, nil
	}
	if req.SessionID == "" {
		return nil, nil
	}
	chunks, err := s.Store.SessionChunks(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session chunks: %w", err)
	}
	return chunks, nil
}

// truncate limits s to n runes, cutting at a word boundary when possible.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return cut[:idx] + "..."
	}
	return cut + "..."
}
