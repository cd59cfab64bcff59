package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txCtxKey struct{}

// ErrNoTransaction is returned by operations that only make sense inside RunInTx
var ErrNoTransaction = errors.New("operation requires a transaction")

// TransactionManager runs units of work whose repositories share one transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx commits when fn returns nil and rolls back otherwise.
// A nested call opens a savepoint on the outer transaction, so an inner
// failure only undoes the inner work.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	parent := txFrom(ctx)
	if parent == nil {
		parent = t.db
	}
	return parent.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txCtxKey{}, tx))
	})
}

// GetDB returns the transaction bound to ctx, or rootDB when there is none.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx := txFrom(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}

// InTx reports whether ctx carries an open transaction
func InTx(ctx context.Context) bool {
	return txFrom(ctx) != nil
}

func txFrom(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txCtxKey{}).(*gorm.DB)
	return tx
}

// advisoryXactLock serialises transactions on key until the surrounding
// transaction ends. SQLite has a single writer and needs no lock.
func advisoryXactLock(ctx context.Context, rootDB *gorm.DB, key string) error {
	if !InTx(ctx) {
		return ErrNoTransaction
	}
	db := GetDB(ctx, rootDB)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

// forUpdate adds SELECT ... FOR UPDATE (dropped by dialects without row locks)
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
