package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by the gateway, parser and query services.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // per file, 10MB in bytes

	// Empty means the gateway answers questions in-process.
	QueryServiceURL string `env:"QUERY_SERVICE_URL"`

	// Chunking / retrieval
	ChunkSize         int    `env:"CHUNK_SIZE" envDefault:"900"`
	ChunkOverlap      int    `env:"CHUNK_OVERLAP" envDefault:"150"`
	TopK              int    `env:"TOP_K" envDefault:"5"`
	ContextCharBudget int    `env:"CONTEXT_CHAR_BUDGET" envDefault:"3500"`
	KnowledgeDir      string `env:"KNOWLEDGE_DIR" envDefault:"knowledge"`

	// Question guard
	QuestionLimitMode string `env:"QUESTION_LIMIT_MODE" envDefault:"words"` // "words" or "chars"
	MaxQuestionWords  int    `env:"MAX_QUESTION_WORDS" envDefault:"200"`
	MaxQuestionChars  int    `env:"MAX_QUESTION_CHARS" envDefault:"1200"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"memory"` // "memory", "postgres" or "sqlite"
	DBURL         string `env:"DB_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"doc-assistant.db"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"inline"` // "inline" (same process) or "nats"
	QueueURL      string `env:"QUEUE_URL"`

	// Answer cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"600"` // seconds

	// LLM
	LLMProvider    string  `env:"LLM_PROVIDER" envDefault:"groq"` // "groq" or "openai"
	GroqAPIKey     string  `env:"GROQ_API_KEY"`
	OpenAIKey      string  `env:"OPENAI_API_KEY"`
	LLMBaseURL     string  `env:"LLM_BASE_URL"`
	LLMModel       string  `env:"LLM_MODEL" envDefault:"llama-3.1-8b-instant"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.2"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
