// Package app wires the configured collaborators into the services shared by
// the server and the command line tools
package app

import (
	"context"
	"fmt"

	"lawchat-backend/config"
	"lawchat-backend/govdata"
	"lawchat-backend/llm"
	"lawchat-backend/repository"
	"lawchat-backend/retrieval"
	"lawchat-backend/service"
	"lawchat-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// App holds the long-lived clients and services of one process
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Gemini  *genai.Client
	DB      *pgxpool.Pool
	Redis   *goredis.Client
	Objects storage.Storage

	Corpus *service.CorpusService
	Engine *retrieval.Engine
	Chat   *service.ChatService
}

// New connects every collaborator named by cfg and builds the services
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	objects, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Objects = objects
	logger.Info("storage initialized", zap.String("type", string(cfg.Storage.Type)))

	if cfg.Corpus.Store == "postgres" {
		a.DB, err = initPostgres(ctx, cfg.Database.URL, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
	}

	a.Gemini, err = initGemini(ctx, cfg.Gemini.APIKey, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
	}

	a.Redis = initRedis(ctx, cfg.Redis.Addr, logger)

	chatPolicy := cfg.ChatPolicy(logger)
	documentEmbedder := llm.NewGeminiEmbedder(a.Gemini, cfg.Gemini.EmbeddingModel)
	queryEmbedder := llm.NewCachedEmbedder(
		llm.NewResilientEmbedder(documentEmbedder, chatPolicy),
		a.Redis,
		cfg.CacheConfig(),
		logger,
	)
	generator := llm.NewResilientGenerator(
		llm.NewGeminiGenerator(a.Gemini, cfg.Gemini.ChatModel, logger),
		chatPolicy,
	)

	a.Corpus = service.NewCorpusService(
		service.CorpusWithStore(a.lawStore()),
		service.CorpusWithSource(govdata.NewBulkSource(bulkOpener(cfg.Corpus, objects), govdata.BulkWithLogger(logger))),
		service.CorpusWithEmbedder(documentEmbedder),
		service.CorpusWithRetryPolicy(cfg.IndexingPolicy(logger)),
		service.CorpusWithConcurrency(cfg.Corpus.EmbedConcurrency),
		service.CorpusWithLogger(logger),
	)

	a.Engine = retrieval.NewEngine(
		retrieval.WithReasoner(generator),
		retrieval.WithEmbedder(queryEmbedder),
		retrieval.WithLawLookup(a.Corpus),
		retrieval.WithConfig(cfg.EngineConfig()),
		retrieval.WithLogger(logger),
	)

	a.Chat = service.NewChatService(
		service.ChatWithLawName(cfg.Corpus.PrimaryLaw),
		service.ChatWithTemperature(cfg.Chat.Temperature),
		service.ChatWithRetriever(a.Engine),
		service.ChatWithLawLookup(a.Corpus),
		service.ChatWithGenerator(generator),
		service.ChatWithLogger(logger),
	)

	return a, nil
}

// Close releases every connection opened by New
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close Redis client", zap.Error(err))
		}
	}
	if a.Gemini != nil {
		if err := a.Gemini.Close(); err != nil {
			a.Logger.Warn("failed to close Gemini client", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) lawStore() repository.LawStore {
	if a.DB != nil {
		return repository.NewLawRepository(a.DB)
	}
	return repository.NewDocumentStore(a.Objects)
}

// bulkOpener prefers a dump URL, then a dump object key, then a local file
func bulkOpener(cfg config.CorpusConfig, objects storage.Storage) govdata.Opener {
	switch {
	case cfg.BulkURL != "":
		return govdata.URLOpener(nil, cfg.BulkURL)
	case cfg.BulkKey != "":
		return govdata.StorageOpener(objects, cfg.BulkKey)
	default:
		return govdata.FileOpener(cfg.BulkPath)
	}
}

func initPostgres(ctx context.Context, connString string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warn("failed to create pgvector extension; it may already be installed or need superuser privileges", zap.Error(err))
	}

	logger.Info("Postgres connection established with pgvector support")
	return pool, nil
}

func initGemini(ctx context.Context, apiKey string, logger *zap.Logger) (*genai.Client, error) {
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	logger.Info("Gemini client initialized")
	return client, nil
}

// initRedis returns nil, disabling the embedding cache, when no address is
// configured or the server does not answer
func initRedis(ctx context.Context, addr string, logger *zap.Logger) *goredis.Client {
	if addr == "" {
		return nil
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, embedding cache disabled", zap.String("addr", addr), zap.Error(err))
		client.Close()
		return nil
	}
	logger.Info("Redis embedding cache enabled", zap.String("addr", addr))
	return client
}
