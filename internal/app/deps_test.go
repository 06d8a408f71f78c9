package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-assistant/internal/cache"
	"doc-assistant/internal/config"
	"doc-assistant/internal/guard"
	"doc-assistant/internal/logger"
	"doc-assistant/internal/queue"
	"doc-assistant/internal/store"
)

func TestBuildStore(t *testing.T) {
	log := logger.Discard()

	st, err := buildStore(config.Config{StoreProvider: "memory"}, log)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, st)

	st, err = buildStore(config.Config{StoreProvider: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "x.db")}, log)
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, st)
	require.NoError(t, st.Close())

	_, err = buildStore(config.Config{StoreProvider: "postgres"}, log)
	assert.ErrorContains(t, err, "DB_URL")

	_, err = buildStore(config.Config{StoreProvider: "mongo"}, log)
	assert.ErrorContains(t, err, "invalid STORE_PROVIDER")
}

func TestBuildQueue(t *testing.T) {
	log := logger.Discard()

	q, err := buildQueue(config.Config{QueueProvider: "inline"}, log)
	require.NoError(t, err)
	assert.IsType(t, &queue.InlineQueue{}, q)

	_, err = buildQueue(config.Config{QueueProvider: "nats"}, log)
	assert.ErrorContains(t, err, "QUEUE_URL")

	for _, provider := range []string{"", "memory"} {
		_, err = buildQueue(config.Config{QueueProvider: "nats", QueueURL: "nats://127.0.0.1:1", StoreProvider: provider}, log)
		assert.ErrorContains(t, err, "STORE_PROVIDER", "store provider %q", provider)
	}

	_, err = buildQueue(config.Config{QueueProvider: "kafka"}, log)
	assert.Error(t, err)
}

func TestBuildCacheFallsBackToNoOp(t *testing.T) {
	log := logger.Discard()

	assert.IsType(t, &cache.NoOpCache{}, buildCache(config.Config{CacheProvider: "none"}, log))
	// Nothing listens on port 1.
	assert.IsType(t, &cache.NoOpCache{}, buildCache(config.Config{CacheProvider: "redis", RedisAddr: "127.0.0.1:1"}, log))
}

func TestBuildLLM(t *testing.T) {
	log := logger.Discard()

	_, err := buildLLM(config.Config{LLMProvider: "groq"}, log)
	assert.ErrorContains(t, err, "GROQ_API_KEY")

	_, err = buildLLM(config.Config{LLMProvider: "openai"}, log)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = buildLLM(config.Config{LLMProvider: "claude"}, log)
	assert.ErrorContains(t, err, "invalid LLM_PROVIDER")

	c, err := buildLLM(config.Config{LLMProvider: "groq", GroqAPIKey: "k", LLMModel: "llama-3.1-8b-instant"}, log)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestDepsDerivedSettings(t *testing.T) {
	d := Deps{Config: config.Config{
		ChunkSize: 500, ChunkOverlap: 50,
		QuestionLimitMode: "chars", MaxQuestionWords: 200, MaxQuestionChars: 1200,
		TopK: 4, ContextCharBudget: 2000, CacheTTL: 60,
	}, Log: logger.Discard(), Store: store.NewMemory(), Cache: cache.NewNoOpCache()}

	assert.Equal(t, 500, d.Chunking().Size)
	assert.Equal(t, 50, d.Chunking().Overlap)
	assert.Equal(t, guard.Limit{Mode: guard.ModeChars, Max: 1200}, d.Limit())

	svc := d.QA()
	assert.Equal(t, 4, svc.TopK)
	assert.Equal(t, 2000, svc.Budget)
	assert.Equal(t, 60.0, svc.CacheTTL.Seconds())

	in := d.Ingestor()
	assert.Equal(t, 500, in.Chunking.Size)
}
