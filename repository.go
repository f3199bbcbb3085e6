// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the generic struct mapped repository

package faucet

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is a typed query helper bound to one table of one
// connection. Row values are mapped into T by column name, matching
// either the field name or its db struct tag.
type Repository[T any] struct {
	manager *Manager
	table   string
}

// NewRepository returns a repository for T over the given connection
func NewRepository[T any](conn *Connection, table string) *Repository[T] {
	return &Repository[T]{
		manager: conn.Manager(),
		table:   table,
	}
}

// Table returns the table the repository is bound to
func (r *Repository[T]) Table() string {
	return r.table
}

// Manager returns the session facade the repository runs on
func (r *Repository[T]) Manager() *Manager {
	return r.manager
}

// Select runs the query and maps every row into a T
func (r *Repository[T]) Select(ctx context.Context, sql string, args ...any) ([]T, error) {
	rows, err := r.manager.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// One runs the query and maps exactly one row into a T.
// It fails with pgx.ErrNoRows when the query returns nothing and with
// pgx.ErrTooManyRows when it returns more than one row.
func (r *Repository[T]) One(ctx context.Context, sql string, args ...any) (T, error) {
	rows, err := r.manager.Query(ctx, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
}

// All returns every row of the bound table
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	return r.Select(ctx, "SELECT * FROM "+r.table)
}

// Count returns the number of rows in the bound table
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.manager.QueryRow(ctx, "SELECT count(*) FROM "+r.table).Scan(&n)
	return n, err
}

// Exec runs a statement and returns the number of affected rows
func (r *Repository[T]) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return r.manager.Exec(ctx, sql, args...)
}
