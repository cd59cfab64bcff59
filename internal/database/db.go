package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medshop/internal/config"
	"medshop/internal/model"
	"medshop/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultCategories are seeded into an empty categories table
var DefaultCategories = []model.Category{
	{Name: "Antibiotics", Description: "Antibacterial medications"},
	{Name: "Pain Relief", Description: "Analgesics and anti-inflammatory drugs"},
	{Name: "Vitamins & Supplements", Description: "Nutritional supplements"},
	{Name: "Diabetes", Description: "Diabetes management medications"},
	{Name: "Cardiovascular", Description: "Heart and blood pressure medications"},
	{Name: "Respiratory", Description: "Asthma and respiratory medications"},
	{Name: "Dermatology", Description: "Skin care medications"},
	{Name: "Gastrointestinal", Description: "Digestive system medications"},
	{Name: "Neurology", Description: "Nervous system medications"},
	{Name: "Oncology", Description: "Cancer treatment medications"},
	{Name: "Other", Description: "Miscellaneous medications"},
}

// NewConnection opens the postgres pool, migrates the schema and seeds reference data
func NewConnection(cfg config.PostgresConfig, logCfg config.LoggerConfig, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig(logCfg.DBLevel, log))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := SeedCategories(context.Background(), db); err != nil {
		log.Warnw("failed to seed default categories", "error", err)
	}

	return db, nil
}

// GormConfig enables error translation (ErrDuplicatedKey) and routes gorm's log through zap
func GormConfig(level string, log *logger.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{log.WithComponent("gorm")}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  parseGormLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}
}

// Migrate creates or updates every table of the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.InventoryItem{},
		&model.Customer{},
		&model.Wholesaler{},
		&model.Staff{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.Bill{},
	)
}

// SeedCategories inserts the default categories when none exist
func SeedCategories(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := make([]model.Category, len(DefaultCategories))
	copy(categories, DefaultCategories)
	return db.WithContext(ctx).Create(&categories).Error
}

// Ping checks the connection within the deadline of ctx
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}

func parseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
