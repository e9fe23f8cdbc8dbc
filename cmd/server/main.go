// Reactive Notebook Server - notebook execution engine
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carter293/reactive-notebook/internal/config"
	gatewayhttp "github.com/carter293/reactive-notebook/internal/gateway/http"
	"github.com/carter293/reactive-notebook/internal/kernel"
	"github.com/carter293/reactive-notebook/internal/logger"
	"github.com/carter293/reactive-notebook/internal/observer"
	"github.com/carter293/reactive-notebook/internal/orchestrator"
	"github.com/carter293/reactive-notebook/internal/storage/bunstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// A kernel subprocess is this same binary re-exec'd with the hidden
	// flag; detect that before anything else spins up so a child kernel
	// never opens its own database connection or HTTP listener.
	for _, arg := range os.Args[1:] {
		if arg == cfg.Kernel.ReexecFlag {
			if err := kernel.RunStdio(context.Background(), os.Stdin, os.Stdout); err != nil {
				os.Exit(1)
			}
			return
		}
	}

	appLogger := logger.New(cfg.Logging)

	appLogger.Info("Starting Reactive Notebook Server",
		"version", "1.0.0",
		"port", cfg.Server.Port,
	)

	db, err := bunstore.OpenDB(cfg.Database, cfg.Logging.Level == "debug")
	if err != nil {
		appLogger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	appLogger.Info("Database connected", "max_conns", cfg.Database.MaxConnections)

	store := bunstore.New(db)
	events := observer.NewManager(appLogger)
	registry := orchestrator.NewRegistry(store, events, appLogger, cfg.Kernel.ReexecFlag)
	gw := gatewayhttp.NewServer(registry, events, appLogger)
	router := gw.NewRouter()

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.Error("Server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		appLogger.Info("Server shutdown initiated", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.Error("Graceful shutdown failed", "error", err)
			if err := server.Close(); err != nil {
				appLogger.Error("Server close failed", "error", err)
			}
		}

		appLogger.Info("Server stopped")
	}
}
