package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"doc-assistant/internal/cache"
	"doc-assistant/internal/chunker"
	"doc-assistant/internal/config"
	"doc-assistant/internal/guard"
	"doc-assistant/internal/ingest"
	"doc-assistant/internal/knowledge"
	"doc-assistant/internal/llm"
	"doc-assistant/internal/logger"
	"doc-assistant/internal/qa"
	"doc-assistant/internal/queue"
	"doc-assistant/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
	Cache  cache.Cache
	LLM    llm.Client
	Corpus *knowledge.Corpus
}

// Build loads env and config and wires everything the gateway needs. The LLM
// and corpus are only built when the gateway answers questions itself.
func Build() (Deps, error) {
	d, err := base()
	if err != nil {
		return Deps{}, err
	}
	if d.Queue, err = buildQueue(d.Config, d.Log); err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if d.Config.QueryServiceURL == "" {
		if err := d.withQuery(); err != nil {
			return Deps{}, err
		}
	}
	return d, nil
}

// BuildQuery wires the query service: store, cache, LLM and built-in corpus.
func BuildQuery() (Deps, error) {
	d, err := base()
	if err != nil {
		return Deps{}, err
	}
	if err := d.withQuery(); err != nil {
		return Deps{}, err
	}
	return d, nil
}

// BuildParser wires the ingestion worker: store, cache and queue.
func BuildParser() (Deps, error) {
	d, err := base()
	if err != nil {
		return Deps{}, err
	}
	if d.Queue, err = buildQueue(d.Config, d.Log); err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return d, nil
}

func base() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	return Deps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Cache:  buildCache(cfg, log),
	}, nil
}

func (d *Deps) withQuery() error {
	client, err := buildLLM(d.Config, d.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM: %w", err)
	}
	d.LLM = client
	d.Corpus = knowledge.New(d.Config.KnowledgeDir, d.Chunking(), d.Log)
	return nil
}

// Chunking returns the configured chunker options.
func (d Deps) Chunking() chunker.Options {
	return chunker.Options{Size: d.Config.ChunkSize, Overlap: d.Config.ChunkOverlap}
}

// Limit returns the configured question length limit.
func (d Deps) Limit() guard.Limit {
	return guard.NewLimit(d.Config.QuestionLimitMode, d.Config.MaxQuestionWords, d.Config.MaxQuestionChars)
}

// QA builds the question-answering service.
func (d Deps) QA() *qa.Service {
	return &qa.Service{
		Builtin:  d.Corpus,
		Store:    d.Store,
		Cache:    d.Cache,
		LLM:      d.LLM,
		Limit:    d.Limit(),
		TopK:     d.Config.TopK,
		Budget:   d.Config.ContextCharBudget,
		CacheTTL: time.Duration(d.Config.CacheTTL) * time.Second,
		Log:      d.Log,
	}
}

// Ingestor builds the parse task handler.
func (d Deps) Ingestor() *ingest.Ingestor {
	return &ingest.Ingestor{Store: d.Store, Cache: d.Cache, Chunking: d.Chunking(), Log: d.Log}
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "", "memory":
		log.Info("using in-memory store")
		return store.NewMemory(), nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	case "sqlite":
		db, err := store.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		log.Info("using SQLite store", "path", cfg.SQLitePath)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: memory, postgres, sqlite)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "", "inline":
		log.Info("using inline queue")
		return queue.NewInline(log), nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		// The parser runs in another process and must see the gateway's documents.
		if cfg.StoreProvider == "" || cfg.StoreProvider == "memory" {
			return nil, fmt.Errorf("QUEUE_PROVIDER=nats needs a shared store; set STORE_PROVIDER to postgres or sqlite")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: inline, nats)", cfg.QueueProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheProvider != "redis" {
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, answer caching disabled", "addr", cfg.RedisAddr, "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis answer cache", "addr", cfg.RedisAddr)
	return c
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	lc := llm.Config{BaseURL: cfg.LLMBaseURL, Model: cfg.LLMModel, Temperature: cfg.LLMTemperature}
	switch cfg.LLMProvider {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required when LLM_PROVIDER=groq")
		}
		lc.APIKey = cfg.GroqAPIKey
		if lc.BaseURL == "" {
			lc.BaseURL = llm.GroqBaseURL
		}
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		lc.APIKey = cfg.OpenAIKey
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: groq, openai)", cfg.LLMProvider)
	}
	client, err := llm.NewOpenAIClient(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}
	log.Info("using LLM client", "provider", cfg.LLMProvider, "model", cfg.LLMModel)
	return client, nil
}
