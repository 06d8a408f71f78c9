package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "CHUNK_SIZE", "CHUNK_OVERLAP", "TOP_K", "CONTEXT_CHAR_BUDGET",
		"KNOWLEDGE_DIR", "QUESTION_LIMIT_MODE", "MAX_QUESTION_WORDS", "STORE_PROVIDER",
		"QUEUE_PROVIDER", "CACHE_PROVIDER", "LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE",
		"QUERY_SERVICE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"ChunkSize", cfg.ChunkSize, 900},
		{"ChunkOverlap", cfg.ChunkOverlap, 150},
		{"TopK", cfg.TopK, 5},
		{"ContextCharBudget", cfg.ContextCharBudget, 3500},
		{"KnowledgeDir", cfg.KnowledgeDir, "knowledge"},
		{"QuestionLimitMode", cfg.QuestionLimitMode, "words"},
		{"MaxQuestionWords", cfg.MaxQuestionWords, 200},
		{"StoreProvider", cfg.StoreProvider, "memory"},
		{"QueueProvider", cfg.QueueProvider, "inline"},
		{"CacheProvider", cfg.CacheProvider, "none"},
		{"LLMProvider", cfg.LLMProvider, "groq"},
		{"LLMModel", cfg.LLMModel, "llama-3.1-8b-instant"},
		{"LLMTemperature", cfg.LLMTemperature, 0.2},
		{"QueryServiceURL", cfg.QueryServiceURL, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("QUESTION_LIMIT_MODE", "chars")
	t.Setenv("STORE_PROVIDER", "sqlite")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, "chars", cfg.QuestionLimitMode)
	assert.Equal(t, "sqlite", cfg.StoreProvider)
}

func TestLoadInvalidValueKeepsOtherFields(t *testing.T) {
	t.Setenv("TOP_K", "many")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Load()

	assert.Equal(t, "warn", cfg.LogLevel)
}
