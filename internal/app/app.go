package app

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/cache"
	"github.com/linkstash-app/linkstash/internal/config"
	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/core/browser"
	db "github.com/linkstash-app/linkstash/internal/core/database"
	"github.com/linkstash-app/linkstash/internal/core/ingest"
	"github.com/linkstash-app/linkstash/internal/core/llm"
	objectclient "github.com/linkstash-app/linkstash/internal/core/object-client"
	"github.com/linkstash-app/linkstash/internal/core/transcribe"
	"github.com/linkstash-app/linkstash/internal/search"
	"github.com/linkstash-app/linkstash/internal/services"
)

const insightCacheTTL = 30 * time.Minute

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Server       *Server
	Log          *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	var objClient core.ObjectClient
	if cfg.AwsAccessKey != "" {
		objClient, err = objectclient.NewS3Client(appCtx, cfg, log)
		if err != nil {
			return nil, err
		}
		log.Info("object client initialized and ready")
	} else {
		log.Warn("AWS credentials not set, snapshot archiving disabled")
	}

	llmProvider, embedder, err := buildAIProviders(appCtx, cfg, log)
	if err != nil {
		return nil, err
	}

	var transcriber core.Transcriber
	if cfg.TranscribeAPIKey != "" {
		transcriber = transcribe.NewClient(cfg.TranscribeURL, cfg.TranscribeAPIKey, log)
	} else {
		log.Warn("TRANSCRIBE_API_KEY not set, media transcription disabled")
	}

	renderer := browser.NewChromeRenderer(log)
	fetcher := ingest.NewFetcher(renderer, log)
	enricher := ingest.NewEnricher(llmProvider, log)
	pipeline := ingest.NewPipeline(fetcher, enricher, embedder, transcriber, log)

	bookmarkSvc := services.NewBookmarkService(dbClient, pipeline, objClient, cfg.BucketName, log)
	searchSvc := services.NewSearchService(dbClient, embedder)
	userSvc := services.NewUserService(dbClient)

	webSearcher := search.NewClient(cfg.SearchURL, cfg.SearchAPIKey)
	insightSvc := services.NewInsightService(dbClient, llmProvider, webSearcher,
		cache.New[[]services.Cluster](insightCacheTTL, clock.WallClock),
		cache.New[[]services.KnowledgeGap](insightCacheTTL, clock.WallClock),
		log)

	server := NewServer(cfg, userSvc, bookmarkSvc, searchSvc, insightSvc, log)

	return &App{DBClient: dbClient, ObjectClient: objClient, Server: server, Log: log}, nil
}

// buildAIProviders selects the completion and embedding backends from
// AI_PROVIDER. OpenAI is the default; Gemini stays available behind the same
// interfaces. A missing key yields a nil LLM provider so enrichment
// short-circuits to its sentinel defaults instead of issuing doomed requests;
// the embedder has no such fallback and fails with a config error instead.
func buildAIProviders(ctx context.Context, cfg *config.Config, log *zap.Logger) (core.LLMProvider, core.EmbeddingProvider, error) {
	switch cfg.AIProvider {
	case "openai":
		var gen core.LLMProvider
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY not set, enrichment will return sentinel defaults")
		} else {
			gen = llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.GenModel)
		}
		return gen, llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedModel), nil
	case "gemini":
		emb, err := llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
		}
		gen, err := llm.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GenModel)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the gemini model, %w", err)
		}
		return gen, emb, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
