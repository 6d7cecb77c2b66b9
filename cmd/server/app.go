package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/config"
	"github.com/spraicheux/offerflow/internal/events"
	"github.com/spraicheux/offerflow/internal/extraction"
	"github.com/spraicheux/offerflow/internal/platform/dialog360"
	"github.com/spraicheux/offerflow/internal/platform/gemini"
	"github.com/spraicheux/offerflow/internal/platform/postgres"
	"github.com/spraicheux/offerflow/internal/platform/redis"
	"github.com/spraicheux/offerflow/internal/service"
	"github.com/spraicheux/offerflow/internal/service/auth"
	"github.com/spraicheux/offerflow/internal/store"
	"github.com/spraicheux/offerflow/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	submissionStore store.SubmissionStore
	offerStore      store.OfferStore
	clientStore     store.ClientStore
	taskStore       *postgres.PostgresTaskStore

	// Service interfaces
	jwtService     auth.JWTService
	apiKeyVerifier auth.APIKeyVerifier
	extractor      extraction.Extractor
	downloader     task.Downloader
	ingestService  service.IngestService
	resultCache    redis.ResultCache

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.apiKeyVerifier = auth.NewBcryptVerifier()

	// Stores
	app.submissionStore = postgres.NewPostgresSubmissionStore(db, logger)
	app.offerStore = postgres.NewPostgresOfferStore(db, logger)
	app.clientStore = postgres.NewPostgresClientStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Result cache; falls back to in-memory storage when Redis is down
	app.resultCache = redis.NewResultCache(ctx, logger, cfg.Redis)

	// Media downloader for attachment URLs
	app.downloader = dialog360.NewMediaDownloader(logger, cfg.Media)

	// LLM extraction service
	app.extractor, err = gemini.NewGeminiExtractor(
		ctx,
		logger.With("component", "llm_extractor"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}
	logger.Info("offer extractor initialized", "model", cfg.LLM.ModelName)

	// Event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Repositories and ingest service
	submissionRepo := service.NewSubmissionRepositoryAdapter(app.submissionStore, db)
	offerRepo := service.NewOfferRepositoryAdapter(app.offerStore)

	app.ingestService, err = service.NewIngestService(
		submissionRepo,
		offerRepo,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest service: %w", err)
	}

	// Task factory feeding the extraction worker pool
	taskFactory := task.NewOfferExtractionTaskFactory(
		app.ingestService,
		app.extractor,
		offerRepo,
		app.downloader,
		app.resultCache,
		logger,
	)

	// Recovered tasks are rebuilt through the same factory
	app.taskStore.SetHydrator(func(taskType string, payload []byte) (task.Task, error) {
		if taskType != task.TaskTypeOfferExtraction {
			return nil, fmt.Errorf("unknown task type %q", taskType)
		}

		var p struct {
			SubmissionID uuid.UUID `json:"submission_id"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
		}

		return taskFactory.CreateTask(p.SubmissionID)
	})

	app.taskRunner, err = setupTaskRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Route job request events into the task runner
	handler := task.NewJobRequestEventHandler(taskFactory, app.taskRunner, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(handler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
func setupTaskRunner(app *application) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:              app.config.Task.QueueSize,
		WorkerCount:            app.config.Task.WorkerCount,
		StuckTaskAge:           time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(app.config.Task.StuckTaskIntervalMinutes) * time.Minute,
	}, app.logger)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
