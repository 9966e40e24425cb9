package persistence

import (
	"fmt"
	"time"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/duka/backend/internal/infrastructure/config"
	applogger "github.com/duka/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// Options tunes the GORM session created by NewDatabase
type Options struct {
	Logger        *zap.Logger
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

// NewDatabase opens a postgres or sqlite database according to cfg.Driver
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, GormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	RegisterShopGuard(db)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; a single connection keeps row updates ordered
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// GormConfig builds the GORM settings shared by every connection.
// Timestamps are written in UTC so that both drivers compare them alike.
func GormConfig(opts Options) *gorm.Config {
	var gl logger.Interface = logger.Default.LogMode(logger.Silent)
	if opts.Logger != nil {
		gl = applogger.NewGormLogger(opts.Logger, opts.LogLevel, opts.SlowThreshold)
	}
	return &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&shop.Shop{},
		&inventory.Category{},
		&inventory.StockItem{},
		&partner.Customer{},
		&trade.Sale{},
		&trade.SaleLineItem{},
		&finance.Debt{},
		&finance.Payment{},
		&finance.Expenditure{},
	}
}

// AutoMigrate creates or updates the schema from the entity definitions.
// Production databases are migrated with the SQL files instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
