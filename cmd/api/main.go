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

	"github.com/noah-isme/quizmaster-go-api/internal/config"
	"github.com/noah-isme/quizmaster-go-api/internal/database"
	"github.com/noah-isme/quizmaster-go-api/internal/handler"
	"github.com/noah-isme/quizmaster-go-api/internal/middleware"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
	"github.com/noah-isme/quizmaster-go-api/internal/router"
	"github.com/noah-isme/quizmaster-go-api/internal/service"
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

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Admin{},
		&models.Subject{},
		&models.Chapter{},
		&models.Quiz{},
		&models.Question{},
		&models.Score{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	authService := service.NewAuthService(studentRepo, adminRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	catalogService := service.NewCatalogService(subjectRepo, chapterRepo, validate, logger)
	quizService := service.NewQuizService(quizRepo, chapterRepo, scoreRepo, validate, logger)
	attemptService := service.NewAttemptService(quizRepo, scoreRepo, redisClient, cfg.SessionSlack, cfg.AttemptAcceptLate, validate, logger)
	statsService := service.NewStatsService(studentRepo, subjectRepo, chapterRepo, quizRepo, scoreRepo, redisClient, cfg.StatsCacheTTL, logger)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureDefaultAdmin(bootstrapCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		cancelBootstrap()
		log.Fatalf("failed to ensure default admin: %v", err)
	}
	cancelBootstrap()

	authHandler := handler.NewAuthHandler(authService, logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	attemptHandler := handler.NewAttemptHandler(attemptService, logger)
	dashboardHandler := handler.NewDashboardHandler(statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		QuizHandler:      quizHandler,
		AttemptHandler:   attemptHandler,
		DashboardHandler: dashboardHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
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
