package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcelovidal/padel-v1-sub001/config"
	"github.com/marcelovidal/padel-v1-sub001/db"
	"github.com/marcelovidal/padel-v1-sub001/geo"
	"github.com/marcelovidal/padel-v1-sub001/handlers"
	"github.com/marcelovidal/padel-v1-sub001/live"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	api "github.com/marcelovidal/padel-v1-sub001/routes"
	"github.com/marcelovidal/padel-v1-sub001/services"
	"github.com/marcelovidal/padel-v1-sub001/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Миграции схемы
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Error("failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Загрузчик файлов (Cloudflare R2). Без конфигурации загрузка отключена.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, file uploads are disabled")
	}

	// Почтовый транспорт. Без конфигурации уведомления не отправляются.
	var emailService *services.EmailService
	if cfg.SMTPEnabled() {
		emailService = services.NewEmailService(cfg)
		logger.Info("email service initialized", slog.String("host", cfg.SMTPHost))
	} else {
		logger.Warn("SMTP is not configured, email notifications are disabled")
	}

	// Справочник городов.
	var geoClient *geo.Client
	if cfg.GeoAPIBaseURL != "" {
		geoClient = geo.NewClient(cfg.GeoAPIBaseURL)
		logger.Info("geo client initialized", slog.String("base_url", cfg.GeoAPIBaseURL))
	}

	// WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	claimRepo := repositories.NewPostgresClubClaimRepository(dbConn, clubRepo)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	resultRepo := repositories.NewPostgresMatchResultRepository(dbConn)
	logger.Info("repositories initialized")

	// Сервисы
	authService := services.NewAuthService(userRepo)
	playerService := services.NewPlayerService(playerRepo, uploader)
	clubService := services.NewClubService(clubRepo, geoClient, uploader, logger)
	clubClaimService := services.NewClubClaimService(claimRepo, clubRepo, userRepo, emailService, wsHub, logger)
	matchService := services.NewMatchService(matchRepo, playerRepo, wsHub, logger)
	resultService := services.NewResultService(matchRepo, resultRepo, userRepo, emailService, wsHub, logger)
	adminService := services.NewAdminService(userRepo)
	dashboardService := services.NewDashboardService(playerRepo, matchRepo, resultRepo, clubRepo, claimRepo)
	logger.Info("services initialized")

	// Обработчики HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	playerHandler := handlers.NewPlayerHandler(playerService)
	matchHandler := handlers.NewMatchHandler(matchService, resultService)
	clubHandler := handlers.NewClubHandler(clubService, clubClaimService)
	adminHandler := handlers.NewAdminHandler(adminService, clubClaimService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Маршрутизатор
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		playerHandler,
		matchHandler,
		clubHandler,
		adminHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
