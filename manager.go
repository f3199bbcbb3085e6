// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the session facade over a connection pool

package faucet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Manager is a thin session facade over a connection pool. Every
// operation delegates to the pool, the manager adds no caching,
// statement tracking or dialect logic of its own.
type Manager struct {
	name string
	pool Pool
}

func newManager(name string, pool Pool) *Manager {
	return &Manager{name: name, pool: pool}
}

// Name returns the name of the connection the manager is bound to
func (m *Manager) Name() string {
	return m.name
}

// Ping verifies the underlying pool
func (m *Manager) Ping(ctx context.Context) error {
	return m.pool.Ping(ctx)
}

// Exec runs a statement and returns the number of affected rows
func (m *Manager) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := m.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec on %q: %w", m.name, err)
	}
	return tag.RowsAffected(), nil
}

// Query runs a query returning multiple rows
func (m *Manager) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.pool.Query(ctx, sql, args...)
}

// QueryRow runs a query expected to return at most one row
func (m *Manager) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.pool.QueryRow(ctx, sql, args...)
}

// InTx runs fn inside a transaction. The transaction is committed when
// fn returns nil and rolled back when it returns an error or panics,
// panics are re-raised after the rollback.
func (m *Manager) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin on %q: %w", m.name, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit on %q: %w", m.name, err)
	}
	return nil
}
