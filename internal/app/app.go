package app

import (
	"context"
	"fmt"

	"postsorter/internal/config"
	"postsorter/internal/costtracker"
	"postsorter/internal/models"
	"postsorter/internal/services"
	"postsorter/internal/store"
	"postsorter/internal/store/memory"
	"postsorter/pkg/categorizer"

	log "github.com/sirupsen/logrus"
)

type App struct {
	Config *config.Config

	Store       store.Store
	CostTracker costtracker.CostTracker

	// Backend is the embedding chain; Model owns its load lifecycle.
	Backend services.EmbeddingProvider
	Model   *services.ModelHandle

	Categorizer       *categorizer.SemanticCategorizer
	SavedPostsService *services.SavedPostsService

	closers []func() error
}

// NewApp wires the application. Nothing is loaded here: the embedding model
// is loaded by InitializeCategorization or on the first categorization.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.initStore()
	if err := app.initEmbeddingService(); err != nil {
		app.Close()
		return nil, err
	}
	app.initCategorizer()
	if err := app.initCoreServices(context.Background()); err != nil {
		app.Close()
		return nil, err
	}

	log.Debug("Application initialization complete.")
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initStore() {
	a.Store = memory.New()
	a.CostTracker = costtracker.New()
}

func (a *App) initEmbeddingService() error {
	cfg := a.Config
	var providers []services.EmbeddingProvider

	for _, name := range cfg.Embedding.Providers {
		switch name {
		case "local":
			providers = append(providers, services.NewLocalProvider(cfg.Embedding.Dimension))
		case "openai":
			providers = append(providers, services.NewOpenAIProvider(
				cfg.Embedding.OpenaiApiKey,
				cfg.Embedding.OpenaiBaseURL,
				cfg.Embedding.Model,
				a.CostTracker,
				cfg.Pricing["openai"],
			))
		case "gemini":
			g := services.NewGeminiProvider(cfg.Embedding.GoogleApiKey, cfg.Embedding.GeminiModelName)
			a.closers = append(a.closers, g.Close)
			providers = append(providers, g)
		default:
			return fmt.Errorf("unknown embedding provider '%s'", name)
		}
	}

	if len(providers) == 1 {
		a.Backend = providers[0]
	} else {
		retryStrategy := &services.SimpleRetryStrategy{
			MaxAttempts: cfg.Embedding.Retry.MaxAttempts,
			BaseDelayMs: cfg.Embedding.Retry.BaseDelayMs,
		}
		chain, err := services.NewFallbackEmbeddingService(providers, retryStrategy)
		if err != nil {
			return fmt.Errorf("init embedding service: %w", err)
		}
		a.Backend = chain
	}

	a.Model = services.NewModelHandle(a.Backend, cfg.Embedding.Serialize)
	return nil
}

func (a *App) initCategorizer() {
	a.Categorizer = categorizer.NewSemanticCategorizer(
		a.Model,
		categorizer.WithMaxSentences(a.Config.Categorization.MaxSentences),
	)
}

func (a *App) initCoreServices(ctx context.Context) error {
	a.SavedPostsService = services.NewSavedPostsService(a.Store, a.Categorizer)
	if err := a.SavedPostsService.EnsureCategoryFolders(ctx); err != nil {
		return fmt.Errorf("init category folders: %w", err)
	}
	return nil
}

// InitializeCategorization loads the embedding model and builds the category
// reference table. A failure is logged and returned, but the app keeps
// working: every post is then filed under the default category.
func (a *App) InitializeCategorization(ctx context.Context) error {
	if err := a.Categorizer.Initialize(ctx); err != nil {
		log.Warnf("Categorization initialization failed: %v", err)
		return err
	}
	return nil
}

// ModelState reports the load state of the embedding model.
func (a *App) ModelState() models.LoadState {
	return a.Model.State()
}

// Close releases provider clients.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
