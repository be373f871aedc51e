package config

import (
	"context"
	"errors"

	"study-set-server/internal/domain"
	"study-set-server/internal/infra/llm"
	"study-set-server/internal/infra/office"
	"study-set-server/internal/infra/supabase"
	"study-set-server/internal/repository"
	"study-set-server/internal/service"
	"study-set-server/pkg/logger"
)

// Container holds all application dependencies. Each one is built once per process.
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	ObjectStore        domain.ObjectStore
	StudySetRepository domain.StudySetRepository
	LanguageModel      domain.LanguageModel
	Engine             *office.Engine

	CleanupQueue      *service.CleanupQueue
	Extractor         *service.TextExtractor
	Stager            *service.ObjectStager
	ConversionService *service.ConversionService
	IngestionService  *service.IngestionService
	TitleService      *service.TitleService
	QuizService       *service.QuizService

	closers []func() error
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Initialize Supabase client; without it storage calls fail and callers degrade
	supabaseClient := supabase.NewSupabaseClient(config, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		appLogger.Warn("Supabase unavailable; image naming and study-set quizzes are disabled", "error", err)
	}

	objectStore := repository.NewSupabaseObjectStore(supabaseClient, appLogger)
	studySetRepo := repository.NewSupabaseStudySetRepository(supabaseClient, appLogger)

	c := &Container{
		Config:             config,
		Logger:             appLogger,
		SupabaseClient:     supabaseClient,
		ObjectStore:        objectStore,
		StudySetRepository: studySetRepo,
	}

	c.LanguageModel = c.newLanguageModel(ctx)
	c.Engine = office.NewEngine(config.GetSofficePath(), config.GetConversionTimeout(), appLogger)

	c.CleanupQueue = service.NewCleanupQueue(config.GetCleanupWorkers(), config.GetCleanupQueueSize(), appLogger)
	c.CleanupQueue.Start()

	c.Extractor = service.NewTextExtractor(appLogger)
	c.Stager = service.NewObjectStager(objectStore, c.CleanupQueue, config.GetStorageBucket(), config.GetTempPrefix(), appLogger)
	c.ConversionService = service.NewConversionService(c.Engine, c.Engine, appLogger)
	c.IngestionService = service.NewIngestionService(c.ConversionService, c.Extractor, appLogger)
	c.TitleService = service.NewTitleService(c.LanguageModel, c.Extractor, c.Stager, appLogger)
	c.QuizService = service.NewQuizService(
		c.LanguageModel,
		service.NewQuizValidator(),
		c.IngestionService,
		studySetRepo,
		objectStore,
		config.GetStorageBucket(),
		appLogger,
	)

	return c
}

func (c *Container) newLanguageModel(ctx context.Context) domain.LanguageModel {
	cfg := c.Config
	switch cfg.GetLLMProvider() {
	case "vertex":
		if cfg.GetGCPProjectID() == "" {
			c.Logger.Warn("GCP_PROJECT_ID is not set; language model disabled")
			return llm.Unavailable{Reason: "GCP_PROJECT_ID is not set"}
		}
		model, err := llm.NewVertexModel(ctx, cfg.GetGCPProjectID(), cfg.GetGCPLocation(), cfg.GetTextModel(), cfg.GetVisionModel(), cfg.GetModelTimeout(), c.Logger)
		if err != nil {
			c.Logger.Error("Failed to create Vertex AI model", err)
			return llm.Unavailable{Reason: err.Error()}
		}
		c.closers = append(c.closers, model.Close)
		return model
	case "ollama":
		model, err := llm.NewOllamaModel(cfg.GetOllamaURL(), cfg.GetTextModel(), cfg.GetVisionModel(), cfg.GetModelTimeout(), c.Logger)
		if err != nil {
			c.Logger.Error("Failed to create Ollama model", err)
			return llm.Unavailable{Reason: err.Error()}
		}
		return model
	default:
		if cfg.GetOpenAIAPIKey() == "" {
			c.Logger.Warn("OPENAI_API_KEY is not set; language model disabled")
			return llm.Unavailable{Reason: "OPENAI_API_KEY is not set"}
		}
		model, err := llm.NewOpenAIModel(cfg.GetOpenAIAPIKey(), cfg.GetOpenAIBaseURL(), cfg.GetTextModel(), cfg.GetVisionModel(), cfg.GetModelTimeout(), c.Logger)
		if err != nil {
			c.Logger.Error("Failed to create OpenAI model", err)
			return llm.Unavailable{Reason: err.Error()}
		}
		return model
	}
}

// Close drains the cleanup queue and releases model clients
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.CleanupQueue != nil {
		if err := c.CleanupQueue.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
