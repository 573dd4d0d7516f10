package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Manager owns the source-of-truth connection pool
type Manager struct {
	cfg Config
	db  *gorm.DB
	log *logger.CtxZapLogger
}

// NewManager opens the database.
// gormLog may be nil, in which case GORM runs silent.
func NewManager(cfg Config, gormLog gormlogger.Interface, log *logger.CtxZapLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if gormLog == nil || !cfg.EnableLog {
		gormLog = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Debug("database connected", zap.String("driver", cfg.Driver))
	return &Manager{cfg: cfg, db: db, log: log}, nil
}

func dialector(cfg Config) gorm.Dialector {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN)
	case "mysql":
		return mysql.Open(cfg.DSN)
	default:
		return sqlite.Open(cfg.DSN)
	}
}

func (m *Manager) DB() *gorm.DB {
	return m.db
}

func (m *Manager) Config() Config {
	return m.cfg
}

// Use registers a GORM plugin (metrics)
func (m *Manager) Use(plugin gorm.Plugin) error {
	if err := m.db.Use(plugin); err != nil {
		return fmt.Errorf("register plugin %s: %w", plugin.Name(), err)
	}
	return nil
}

// Migrate runs AutoMigrate for the given models
func (m *Manager) Migrate(ctx context.Context, models ...any) error {
	if err := m.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	m.log.InfoCtx(ctx, "database migrated", zap.Int("models", len(models)))
	return nil
}

func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats connection pool statistics
func (m *Manager) Stats() sql.DBStats {
	sqlDB, err := m.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Shutdown closes the pool (samber/do Shutdowner)
func (m *Manager) Shutdown() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		m.log.Error("failed to close database", zap.Error(err))
		return err
	}
	m.log.Debug("database connection closed")
	return nil
}
