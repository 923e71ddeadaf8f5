// Package repository holds the GORM queries behind every service.
//
// Repositories never open transactions themselves. A service opens one
// with Transaction, and every repository call made with the returned
// context joins it, including calls made by domain event handlers.
package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx returns a context carrying tx.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction carried by ctx, if any.
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// DB returns the transaction in ctx, or fallback, bound to ctx.
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// Transaction runs fn inside a database transaction. fn receives a context
// carrying the transaction; returning an error rolls everything back.
// When ctx already carries a transaction, fn joins it.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := TxFrom(ctx); ok {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
