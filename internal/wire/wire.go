//go:build wireinject
// +build wireinject

package wire

import (
	"context"
	"errors"
	"io"

	"github.com/google/wire"

	"github.com/sevigo/pr-warden/internal/app"
	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/db"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/logger"
	"github.com/sevigo/pr-warden/internal/policy"
	"github.com/sevigo/pr-warden/internal/server"
	"github.com/sevigo/pr-warden/internal/storage"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		config.LoadConfig,
		db.NewDatabase,
		storage.NewStore,
		jobs.NewDispatcher,
		jobs.NewCheckJob,
		logger.NewLogger,
		providePolicy,
		provideLoggerConfig,
		provideLogWriter,
		provideDBConfig,
		provideMaxWorkers,
	)
	return &app.App{}, nil, nil
}

func providePolicy(cfg *config.Config) (*policy.Policy, error) {
	pol, err := policy.Load(cfg.PolicyPath)
	if errors.Is(err, policy.ErrPolicyNotFound) {
		return policy.Default(), nil
	}
	return pol, err
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter() io.Writer {
	// nil lets the logger resolve the configured output destination.
	return nil
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideMaxWorkers(cfg *config.Config) int {
	return cfg.MaxWorkers
}
