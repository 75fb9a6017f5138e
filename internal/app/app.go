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

	"github.com/coursebridge/originality-service/internal/config"
	"github.com/coursebridge/originality-service/internal/delivery/httpd"
	"github.com/coursebridge/originality-service/internal/repository"
	"github.com/coursebridge/originality-service/internal/service"
	"github.com/coursebridge/originality-service/internal/service/analyzer"
	"github.com/coursebridge/originality-service/internal/worker"
	"github.com/coursebridge/originality-service/internal/worker/queue"
)

type App struct {
	server         *http.Server
	logger         zerolog.Logger
	config         *config.Config
	db             *sql.DB
	analysisWorker worker.AnalysisWorker
	rabbitMQRepo   repository.RabbitMQRepository
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	rabbitMQRepo, err := repository.NewRabbitMQRepository(cfg.RabbitMQ.URL, log)
	if err != nil {
		return nil, err
	}

	if err := rabbitMQRepo.SetupQueue(
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.SubmissionRouteKey,
	); err != nil {
		return nil, err
	}

	publisher := queue.NewRabbitMQPublisher(rabbitMQRepo.Channel(), log)
	consumer := queue.NewRabbitMQConsumer(
		rabbitMQRepo.Channel(),
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		log,
	)

	checkRepo := repository.NewCheckRepository(db, log)
	corpusRepo := repository.NewCorpusRepository(db, log)

	matcher := analyzer.NewSimilarityMatcher(analyzer.MatcherConfig{
		SimilarityThreshold: cfg.Analysis.SimilarityThreshold,
		MinMatchLength:      cfg.Analysis.MinMatchLength,
		NgramSize:           cfg.Analysis.NgramSize,
		WordJaccardWeight:   cfg.Analysis.WordJaccardWeight,
	})

	detector := analyzer.NewPatternDetector(analyzer.PatternDetectorConfig{
		SuspiciousThreshold: cfg.Analysis.SuspiciousThreshold,
	})

	aggregator := analyzer.NewScoreAggregator(analyzer.AggregatorConfig{
		TopSources:    cfg.Analysis.TopSources,
		SourceWeight:  cfg.Analysis.SourceWeight,
		PatternWeight: cfg.Analysis.PatternWeight,
	})

	analysisService := service.NewAnalysisService(
		checkRepo,
		corpusRepo,
		matcher,
		detector,
		aggregator,
		publisher,
		log,
		service.AnalysisConfig{
			Exchange:           cfg.RabbitMQ.Exchange,
			SubmissionRouteKey: cfg.RabbitMQ.SubmissionRouteKey,
			CompletedRouteKey:  cfg.RabbitMQ.CompletedRouteKey,
			FailedRouteKey:     cfg.RabbitMQ.FailedRouteKey,
		},
	)

	workerPool := worker.NewWorkerPool(cfg.Analysis.MaxWorkers, log)

	analysisWorker := worker.NewAnalysisWorker(
		workerPool,
		consumer,
		analysisService,
		log,
	)

	checkService := service.NewCheckService(
		checkRepo,
		workerPool,
		log,
		service.CheckConfig{
			FlagThreshold: cfg.Analysis.FlagThreshold,
		},
	)

	handler := httpd.NewHandler(
		analysisService,
		checkService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

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
		server:         server,
		logger:         log,
		config:         cfg,
		db:             db,
		analysisWorker: analysisWorker,
		rabbitMQRepo:   rabbitMQRepo,
	}, nil
}

func (a *App) Run() error {
	ctx := context.Background()
	if err := a.analysisWorker.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start analysis worker")
		return err
	}

	a.logger.Info().Msgf("Starting originality service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down originality service...")

	if err := a.analysisWorker.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop analysis worker")
	}

	if a.rabbitMQRepo != nil {
		if err := a.rabbitMQRepo.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Originality service stopped")
	return nil
}
