package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Cache stores answers keyed by question, source and chunk pool.
type Cache interface {
	// GetAnswer returns nil on a miss.
	GetAnswer(ctx context.Context, key string) (*Answer, error)
	SetAnswer(ctx context.Context, key string, answer *Answer, ttl time.Duration) error
	// InvalidateSession drops every cached answer computed from a session's uploads.
	InvalidateSession(ctx context.Context, sessionID string) error
	Close() error
}

// Answer is a cached query response.
type Answer struct {
	Answer  string   `json:"answer"`
	Context string   `json:"context"`
	Sources []Source `json:"sources"`
}

// Source is one selected chunk in a response.
type Source struct {
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

const (
	keyPrefix      = "answer:"
	builtinSegment = "builtin"
)

// KeyParts are the inputs that determine an answer.
type KeyParts struct {
	Question  string
	Source    string
	SessionID string
	TopK      int
	Budget    int
	Pool      []string
}

// Key builds "answer:<session|builtin>:<sha256>". The session segment lets
// InvalidateSession find every answer of one session.
func Key(p KeyParts) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d\x00%d", p.Question, p.Source, p.SessionID, p.TopK, p.Budget, len(p.Pool))
	for _, c := range p.Pool {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	return keyPrefix + scope(p.SessionID) + ":" + hex.EncodeToString(h.Sum(nil))
}

func scope(sessionID string) string {
	if sessionID == "" {
		return builtinSegment
	}
	return strings.ReplaceAll(sessionID, ":", "_")
}
