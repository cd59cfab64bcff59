// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"medshop/internal/database"
	"medshop/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a freshly migrated, isolated in-memory SQLite database.
// Categories are not seeded so tests control every row.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	// A named shared-cache memory DB lets every pooled connection see the same data
	dsn := fmt.Sprintf("file:medshop_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("silent", logger.Nop()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection serializes transactions the way row locks would on postgres
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
