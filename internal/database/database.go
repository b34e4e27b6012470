package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenzy/internal/config"
	"expenzy/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// New opens the postgres database described by cfg
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// NewSQLite opens a file-backed sqlite database; used for single-node setups
func NewSQLite(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	return &DB{
		DB:     db,
		config: &config.DatabaseConfig{MaxConnections: 1, MaxIdleConns: 1},
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Summary{},
		&models.SummaryCategory{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	return db.Ping(context.Background())
}

// Ping checks the connection within ctx's deadline
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateIndexes adds the lookup indexes that the gorm tags do not express
func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)",
		"CREATE INDEX IF NOT EXISTS idx_summaries_user_kind ON summaries(user_id, kind)",
		"CREATE INDEX IF NOT EXISTS idx_summary_categories_position ON summary_categories(summary_id, position)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("failed to create index", "query", query, "error", err)
		}
	}

	return nil
}

// Initialize opens the SQL store selected by cfg and brings its schema up to date
func Initialize(cfg *config.Config) (*DB, error) {
	if cfg.Store.Backend == config.BackendSQLite {
		db, err := NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		if err := db.CreateIndexes(); err != nil {
			slog.Warn("failed to create some indexes", "error", err)
		}
		slog.Info("sqlite database initialized", "path", cfg.Store.SQLitePath)
		return db, nil
	}

	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	runner := NewMigrationRunner(sqlDB, cfg.Database.MigrationsPath, cfg.Database.SeedsPath)
	if err := runner.RunIfEnabled(cfg.Database.AutoMigrate, cfg.Database.SeedDatabase); err != nil {
		slog.Warn("migration runner failed, falling back to gorm AutoMigrate", "error", err)

		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		slog.Warn("failed to create some indexes", "error", err)
	}

	slog.Info("database initialized", "host", cfg.Database.Host, "name", cfg.Database.Name)

	return db, nil
}
