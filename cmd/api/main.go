package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradecraft/gradecraft-api/internal/config"
	"github.com/gradecraft/gradecraft-api/internal/handler"
	"github.com/gradecraft/gradecraft-api/internal/middleware"
	"github.com/gradecraft/gradecraft-api/internal/router"
	"github.com/gradecraft/gradecraft-api/internal/service"
	"github.com/gradecraft/gradecraft-api/pkg/inference"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if cfg.HuggingFaceAPIKey == "" {
		logger.Warn().Msg("no inference api key configured, evaluation calls will fail until one is set")
	}

	client := inference.NewClient(inference.Config{
		APIKey:      cfg.HuggingFaceAPIKey,
		BaseURL:     cfg.InferenceBaseURL,
		MinInterval: cfg.InferenceMinInterval,
		CacheSize:   cfg.InferenceCacheSize,
		Logger:      logger,
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationService := service.NewEvaluationService(client, service.ModelSet{
		TextGeneration:     cfg.TextGenerationModel,
		SentimentAnalysis:  cfg.SentimentAnalysisModel,
		TextSummarization:  cfg.TextSummarizationModel,
		QuestionAnswering:  cfg.QuestionAnsweringModel,
		TextClassification: cfg.TextClassificationModel,
	}, logger)

	evaluationHandler := handler.NewEvaluationHandler(evaluationService, client, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: evaluationHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
