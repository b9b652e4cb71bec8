package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/config"
	"github.com/classmentor/classroom-service/internal/delivery/httpd"
	"github.com/classmentor/classroom-service/internal/repository"
	"github.com/classmentor/classroom-service/internal/service"
	"github.com/classmentor/classroom-service/internal/service/integration"
	"github.com/classmentor/classroom-service/internal/service/storage"
	"github.com/classmentor/classroom-service/internal/worker"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
	db     *sql.DB
	events integration.EventPublisher
	pool   *worker.Pool
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	fileStore, err := storage.NewMinIOStore(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Timeout:   cfg.Storage.Timeout,
	})
	if err != nil {
		return nil, err
	}

	analyzerClient := integration.NewAnalyzerClient(
		cfg.Analysis.WorkerURL,
		cfg.Analysis.RequestTimeout,
		cfg.Analysis.RetryCount,
		cfg.Analysis.RetryDelay,
		log,
	)

	events, err := integration.NewEventPublisher(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		// Event publication is best effort; the pipeline runs without it.
		log.Error().Err(err).Msg("Failed to connect to RabbitMQ, events disabled")
		events = nil
	}

	pool := worker.NewPool(cfg.Analysis.Workers, log)
	pool.Start()

	userRepo := repository.NewUserRepository(db, log)
	classroomRepo := repository.NewClassroomRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	weakTopicRepo := repository.NewWeakTopicRepository(db, log)
	recommendationRepo := repository.NewRecommendationRepository(db, log)

	analysisService := service.NewAnalysisService(
		submissionRepo,
		weakTopicRepo,
		assignmentRepo,
		analyzerClient,
		events,
		pool,
		cfg.Analysis,
		log,
	)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		assignmentRepo,
		fileStore,
		analysisService,
		cfg.Storage.URLExpiry,
		log,
	)
	classroomService := service.NewClassroomService(classroomRepo, weakTopicRepo, submissionRepo, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, classroomRepo, fileStore, cfg.Storage.URLExpiry, log)
	studentService := service.NewStudentService(weakTopicRepo, recommendationRepo, userRepo, log)
	userService := service.NewUserService(userRepo, log)

	handler := httpd.NewHandler(
		classroomService,
		assignmentService,
		submissionService,
		analysisService,
		studentService,
		userService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(90 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		config: cfg,
		db:     db,
		events: events,
		pool:   pool,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting classroom service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down classroom service...")

	err := a.server.Shutdown(ctx)

	a.pool.Stop()

	if a.events != nil {
		if closeErr := a.events.Close(); closeErr != nil {
			a.logger.Error().Err(closeErr).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if closeErr := a.db.Close(); closeErr != nil {
			a.logger.Error().Err(closeErr).Msg("Failed to close database connection")
		}
	}

	return err
}
