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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/carelink-go-api/internal/config"
	"github.com/noah-isme/carelink-go-api/internal/database"
	"github.com/noah-isme/carelink-go-api/internal/handler"
	"github.com/noah-isme/carelink-go-api/internal/middleware"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/repository"
	"github.com/noah-isme/carelink-go-api/internal/router"
	"github.com/noah-isme/carelink-go-api/internal/service"
	"github.com/noah-isme/carelink-go-api/pkg/expo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Senior{}, &models.Student{}, &models.ServiceRequest{}, &models.Feedback{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, feedback aggregates will not be cached")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, acceptance events will not be published")
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	requestRepo := repository.NewRequestRepository(db)
	seniorRepo := repository.NewSeniorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	pushClient := expo.New(expo.Config{
		Endpoint: cfg.ExpoPushEndpoint,
		Timeout:  cfg.PushTimeout,
	}, logger)
	notifier := service.NewAcceptanceNotifier(pushClient, natsConn, cfg.NATSSubject, logger)

	requestService := service.NewRequestService(requestRepo, seniorRepo, studentRepo, notifier, validate, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, requestRepo, redisClient, cfg.FeedbackCacheTTL, validate, logger)
	seniorService := service.NewSeniorService(seniorRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, requestRepo, validate, logger)

	requestHandler := handler.NewRequestHandler(requestService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	seniorHandler := handler.NewSeniorHandler(seniorService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})

	var jwtMiddleware fiber.Handler
	if cfg.JWTSecret != "" {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	router.Register(app, cfg, router.Dependencies{
		RequestHandler:  requestHandler,
		FeedbackHandler: feedbackHandler,
		SeniorHandler:   seniorHandler,
		StudentHandler:  studentHandler,
		JWTMiddleware:   jwtMiddleware,
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
