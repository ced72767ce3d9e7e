package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/storeline/storeadmin/internal/auth"
	"github.com/storeline/storeadmin/internal/config"
	"github.com/storeline/storeadmin/internal/db"
	"github.com/storeline/storeadmin/internal/domain"
	"github.com/storeline/storeadmin/internal/export"
	"github.com/storeline/storeadmin/internal/i18n"
	"github.com/storeline/storeadmin/internal/repository"
	"github.com/storeline/storeadmin/internal/server"
	"github.com/storeline/storeadmin/internal/service"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	registry := domain.DefaultRegistry()
	entityRepo := repository.NewEntityRepository(conn.Pool, registry)
	tenantRepo := repository.NewTenantRepository(conn.Pool)

	// Create services
	checker := auth.NewPermissionChecker(domain.DefaultPermissionMatrix(registry))
	lifecycle := service.NewLifecycleService(checker, entityRepo, registry,
		service.WithStrictDestroy(cfg.Lifecycle.StrictDestroy),
		service.WithLogger(logger),
	)
	exporter := export.NewService(lifecycle, registry, export.WithLogger(logger))

	handler := server.NewHandler(lifecycle, exporter, registry, entityRepo, tenantRepo, i18n.Translate, logger)
	router := server.NewRouter(handler, logger, cfg.Server.AllowedOrigins)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server exited")
}
