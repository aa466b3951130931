// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevigo/pr-warden/internal/app"
	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/db"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/logger"
	"github.com/sevigo/pr-warden/internal/policy"
	"github.com/sevigo/pr-warden/internal/server"
	"github.com/sevigo/pr-warden/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger, destination is resolved from cfg.Logging.Output
	slogLogger := logger.NewLogger(cfg.Logging, nil)

	// Policy
	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		if !errors.Is(err, policy.ErrPolicyNotFound) {
			return nil, nil, fmt.Errorf("failed to load policy: %w", err)
		}
		slogLogger.Warn("policy file not found, using defaults", "path", cfg.PolicyPath)
		pol = policy.Default()
	}

	// Database
	dbConn, dbCleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage
	store := storage.NewStore(dbConn.DB)

	// Check Job
	checkJob := jobs.NewCheckJob(cfg, pol, store, slogLogger)

	// Dispatcher
	dispatcher := jobs.NewDispatcher(checkJob, cfg.MaxWorkers, slogLogger)

	// Server
	srv := server.NewServer(ctx, cfg, dispatcher, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, dispatcher, dbConn, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
