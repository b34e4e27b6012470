// Package app wires the record store and services shared by the API server
// and the summary worker.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"expenzy/internal/config"
	"expenzy/internal/database"
	"expenzy/internal/repositories"
)

// Backend is an open record store
type Backend struct {
	Name  string
	Store *repositories.Store
	// Ping checks connectivity for the health probe.
	Ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Close releases the underlying connection
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// OpenBackend connects to the store named by STORE_BACKEND. SQL backends get
// their schema migrated before use.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		mongoStore, err := repositories.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		slog.Info("mongo record store connected", "database", cfg.Store.MongoDatabase)
		return &Backend{
			Name:  config.BackendMongo,
			Store: mongoStore.Store(),
			Ping:  mongoStore.Ping,
			close: mongoStore.Close,
		}, nil

	case config.BackendPostgres, config.BackendSQLite:
		db, err := database.Initialize(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s database: %w", cfg.Store.Backend, err)
		}
		return &Backend{
			Name:  cfg.Store.Backend,
			Store: repositories.NewSQLStore(db.DB),
			Ping:  db.Ping,
			close: func(context.Context) error { return db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
