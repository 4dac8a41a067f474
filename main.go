package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"croprotation/internal"
	"croprotation/internal/config"
	"croprotation/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := internal.DefaultLogger.With("main")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if level, ok := internal.ParseLogLevel(appConfig.LogLevel); ok {
		internal.DefaultLogger.SetLevel(level)
	} else {
		logger.Warn("Unknown LOG_LEVEL %q, keeping INFO", appConfig.LogLevel)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	if err := appContainer.Init(ctx); err != nil {
		logger.Error("Failed to initialize container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Data.CatalogFile != "" {
		if _, err := appContainer.SeedCatalog(ctx, appConfig.Data.CatalogFile); err != nil {
			logger.Error("Failed to seed crop catalog: %v", err)
			os.Exit(1)
		}
	}

	servers := []*http.Server{{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           appContainer.API.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if appConfig.Profiling.Enabled {
		servers = append(servers, &http.Server{
			Addr:              ":" + appConfig.Profiling.Port,
			Handler:           appContainer.Ops.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
		logger.Info("Ops server on :%s (healthz, pprof under /debug)", appConfig.Profiling.Port)
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}
	logger.Info("Crop rotation API listening on :%s", appConfig.Server.Port)

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Server %s shutdown: %v", srv.Addr, err)
		}
	}
	logger.Info("Server stopped")
}
