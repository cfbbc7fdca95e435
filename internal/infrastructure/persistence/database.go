// Package persistence stores organizations and receipts with GORM on
// postgres, or on sqlite for local development.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/sanad/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database wraps the GORM handle shared by the repositories
type Database struct {
	DB *gorm.DB
}

// Option adjusts the GORM configuration before the connection opens
type Option func(*gorm.Config)

// WithGormLogger routes GORM's statement log through l
func WithGormLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// NewDatabase connects to the driver named in cfg, sizes the pool and pings.
// An empty driver means postgres.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	var (
		dialector gorm.Dialector
		sizePool  func(*sql.DB)
	)
	switch cfg.Driver {
	case "postgres", "":
		gormCfg.PrepareStmt = true
		dialector = postgres.Open(cfg.DSN())
		sizePool = func(db *sql.DB) {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
			db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
		}
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
		// a single writer, otherwise concurrent requests hit "database is locked"
		sizePool = func(db *sql.DB) { db.SetMaxOpenConns(1) }
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driverName(cfg.Driver), err)
	}
	d := &Database{DB: gdb}
	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	sizePool(pool)
	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driverName(cfg.Driver), err)
	}
	return d, nil
}

func driverName(driver string) string {
	if driver == "" {
		return "postgres"
	}
	return driver
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	return pool, nil
}

// AutoMigrate creates or updates the voucher tables. Used for sqlite
// development databases; postgres schemas are managed by cmd/migrate.
func (d *Database) AutoMigrate(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases every pooled connection
func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

// Ping reports whether the database answers within ctx
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// ConnectionStats is the pool snapshot reported by /system/info
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// Stats snapshots the connection pool
func (d *Database) Stats() (ConnectionStats, error) {
	pool, err := d.pool()
	if err != nil {
		return ConnectionStats{}, err
	}
	s := pool.Stats()
	return ConnectionStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}, nil
}
