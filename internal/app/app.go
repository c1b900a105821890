// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/config"
	"github.com/markdave123-py/Deskmate/internal/core"
	db "github.com/markdave123-py/Deskmate/internal/core/database"
	"github.com/markdave123-py/Deskmate/internal/core/dates"
	"github.com/markdave123-py/Deskmate/internal/core/ingestion_engine"
	"github.com/markdave123-py/Deskmate/internal/core/llm"
	objectclient "github.com/markdave123-py/Deskmate/internal/core/object-client"
	"github.com/markdave123-py/Deskmate/internal/core/validation"
	"github.com/markdave123-py/Deskmate/internal/core/vectorstore"
	"github.com/markdave123-py/Deskmate/internal/services"
)

type App struct {
	Store    core.VectorStore
	Sessions *services.SessionService
	Server   *Server
	Log      *zap.SugaredLogger

	closers []func() error
}

// Providers are the external model clients. Nil fields are created from config.
type Providers struct {
	Embedder core.EmbeddingProvider
	LLM      core.LLMProvider
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, p Providers) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{Log: log}

	store, err := newVectorStore(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)
	log.Infow("vector store ready", "backend", cfg.VectorBackend)

	objClient, err := newObjectClient(appCtx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Infow("staging ready", "backend", cfg.StagingBackend)

	if p.Embedder == nil {
		emb, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedTimeout)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
		}
		a.closers = append(a.closers, emb.Close)
		p.Embedder = emb
	}
	if p.LLM == nil {
		gen, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel, cfg.GenTimeout)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
		}
		a.closers = append(a.closers, gen.Close)
		p.LLM = gen
	}

	ingCfg := &ingestion_engine.IngestConfig{
		TargetTokens:   cfg.ChunkTargetTokens,
		OverlapTokens:  cfg.ChunkOverlapTokens,
		BatchSize:      cfg.EmbedBatchSize,
		Concurrency:    cfg.EmbedConcurrency,
		MaxFragmentLen: cfg.MaxFragmentLen,
		TopK:           cfg.RetrievalTopK,
	}
	docIngestor := ingestion_engine.NewDocumentIngestor(store, p.Embedder, ingCfg, log.Named("ingest"))

	cache := services.NewRetrieverCache(docIngestor, store, log.Named("cache"))
	a.Sessions = services.NewSessionService(
		ingestion_engine.NewDocumentLoader(log.Named("loader")),
		cache,
		services.NewQAService(p.LLM, log.Named("qa")),
		services.NewDocumentService(objClient),
		cfg.SessionTTL,
		log.Named("sessions"),
	)
	appointments := services.NewAppointmentService(
		validation.New(cfg.PhoneDefaultRegion),
		dates.NewExtractor(nil),
		log.Named("appointments"),
	)

	a.Server = NewServer(cfg, log, a.Sessions, appointments)
	return a, nil
}

func newVectorStore(ctx context.Context, cfg *config.Config) (core.VectorStore, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendPgvector:
		store, err := db.NewPgVectorStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize pgvector store, %w", err)
		}
		return store, nil
	default:
		return vectorstore.NewMemory(), nil
	}
}

// newObjectClient returns nil when staging is disabled.
func newObjectClient(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (core.ObjectClient, error) {
	switch cfg.StagingBackend {
	case config.StagingS3:
		return objectclient.NewS3Client(ctx, cfg, log.Named("s3"))
	case config.StagingLocal:
		return objectclient.NewLocalClient(cfg.StagingDir)
	default:
		return nil, nil
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warnw("close failed", "error", err)
		}
	}
	a.closers = nil
}
