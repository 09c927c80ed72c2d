package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fisiocare/backend/internal/db"
	"github.com/fisiocare/backend/internal/handlers"
	"github.com/fisiocare/backend/internal/logger"
	"github.com/fisiocare/backend/internal/repository/postgres"
	"github.com/fisiocare/backend/internal/service/appointment"
	"github.com/fisiocare/backend/internal/service/auth"
	"github.com/fisiocare/backend/internal/service/chat"
	"github.com/fisiocare/backend/internal/service/exercise"
	"github.com/fisiocare/backend/internal/service/profile"
	"github.com/fisiocare/backend/internal/service/training"
	"github.com/fisiocare/backend/internal/service/treatment"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	authService, err := auth.NewAuthService(auth.Config{
		AccessSecret:    c.AccessTokenSecret,
		RefreshSecret:   c.RefreshTokenSecret,
		AccessTokenTTL:  c.AccessTokenTTL,
		RefreshTokenTTL: c.RefreshTokenTTL,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(handlers.Services{
		Auth:         authService,
		Profiles:     profile.NewService(storage.Physio(), storage.Patient()),
		Treatments:   treatment.NewService(storage),
		Exercises:    exercise.NewService(storage.Exercise()),
		Appointments: appointment.NewService(storage),
		Chat:         chat.NewService(storage),
		Training:     training.NewService(storage),
	}, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
