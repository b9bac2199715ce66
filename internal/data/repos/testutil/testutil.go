package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/maatchaa/maatchaa-backend/internal/data/db"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/catalog"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB returns a fresh, migrated in-memory sqlite database for one test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// SeedProduct inserts a product. createdAt orders the discovery listing.
func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, title, description string, createdAt time.Time, keywords ...string) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Title:       title,
		Description: description,
		ShopDomain:  "test-shop.myshopify.com",
		CreatedAt:   createdAt,
	}
	if len(keywords) > 0 {
		p.SearchKeywords = catalog.EncodeKeywords(keywords)
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}
