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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sge-estagio-api/internal/config"
	"github.com/noah-isme/sge-estagio-api/internal/database"
	"github.com/noah-isme/sge-estagio-api/internal/handler"
	"github.com/noah-isme/sge-estagio-api/internal/middleware"
	"github.com/noah-isme/sge-estagio-api/internal/models"
	"github.com/noah-isme/sge-estagio-api/internal/repository"
	"github.com/noah-isme/sge-estagio-api/internal/router"
	"github.com/noah-isme/sge-estagio-api/internal/scheduler"
	"github.com/noah-isme/sge-estagio-api/internal/service"
	"github.com/noah-isme/sge-estagio-api/pkg/mailer"
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
		&models.Estagio{},
		&models.EstagioLocal{},
		&models.EstagioConfirmacao{},
		&models.NotificacaoLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	outbound, err := buildMailer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	estagioRepo := repository.NewEstagioRepository(db)
	confirmacaoRepo := repository.NewConfirmacaoRepository(db)
	notificacaoRepo := repository.NewNotificacaoRepository(db)
	cadastroRepo := repository.NewCadastroRepository(db)

	notificacaoService := service.NewNotificacaoService(outbound, notificacaoRepo, cfg.ConfirmBaseURL, logger)
	estagioService := service.NewEstagioService(estagioRepo, confirmacaoRepo, notificacaoRepo, cadastroRepo, notificacaoService, validate, logger)
	confirmacaoService := service.NewConfirmacaoService(confirmacaoRepo, estagioRepo, validate, logger)

	estagioHandler := handler.NewEstagioHandler(estagioService, logger)
	confirmacaoHandler := handler.NewConfirmacaoHandler(confirmacaoService, logger)

	watcher := scheduler.NewExpirationWatcher(
		estagioRepo,
		cadastroRepo,
		notificacaoService,
		redisClient,
		cfg.WatcherCron,
		cfg.ReminderHorizon,
		cfg.ReminderDedup,
		logger,
	)
	if !cfg.WatcherDisabled {
		if err := watcher.Start(); err != nil {
			log.Fatalf("failed to start expiration watcher: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EstagioHandler:     estagioHandler,
		ConfirmacaoHandler: confirmacaoHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, watcher)
}

func buildMailer(cfg config.Config, logger zerolog.Logger) (mailer.Mailer, error) {
	if cfg.MailerProvider == "log" {
		return mailer.NewLogMailer(logger), nil
	}

	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	})
}

func waitForShutdown(app *fiber.App, watcher *scheduler.ExpirationWatcher) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
