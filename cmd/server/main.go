package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/config"
	"github.com/ClareAI/astra-outbound-caller/internal/handler"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 20 * time.Second

// Server is the outbound caller HTTP server
type Server struct {
	config         *config.CallerConfig
	router         *mux.Router
	handlerManager *handler.HandlerManager
	httpServer     *http.Server
}

// NewServer creates the server and every service behind it
func NewServer(cfg *config.CallerConfig) (*Server, error) {
	// Create router
	router := mux.NewRouter()

	// Initialize handler manager - it will create all services internally
	handlerManager, err := handler.NewHandlerManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handler manager: %w", err)
	}

	// Setup all routes through handler manager
	handlerManager.SetupAllRoutes(router)

	return &Server{
		config:         cfg,
		router:         router,
		handlerManager: handlerManager,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			// /initiate-call waits on the voice-AI provider and then on the dial
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	logger.Base().Info("Starting server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("base_url", s.config.BaseURL))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes Redis
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.handlerManager.Close()
	return s.httpServer.Shutdown(ctx)
}

func main() {
	// 0. Load .env file for local development if it exists
	// This will not override environment variables set by Helm/Docker
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: .env file not found or skipped (expected in production): %v", err)
	}

	// 1. Load configuration from environment
	cfg := config.LoadFromEnv()

	if _, err := logger.Init(cfg.LogEnv); err != nil {
		log.Printf("Failed to initialize zap logger, falling back to std log: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Base().Error("Invalid configuration", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	// 2. Create the server
	server, err := NewServer(cfg)
	if err != nil {
		logger.Base().Error("Failed to create server", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Base().Info("Server initialized successfully", zap.String("port", cfg.Port))

	// 3. Start the server and wait for a signal
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Base().Error("Server failed", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Base().Info("Shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Base().Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
