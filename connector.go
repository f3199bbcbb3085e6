// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the connector opening database connection pools

package faucet

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of *pgxpool.Pool the library relies on.
// Tests may substitute their own implementation.
type Pool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

var _ Pool = (*pgxpool.Pool)(nil)

// Connector opens a single connection pool for the given options.
// It makes exactly one attempt per call, retrying is the bootstrapper's job.
type Connector interface {
	Connect(ctx context.Context, opts Options) (Pool, error)
}

// ConnectorFunc adapts a plain function to the Connector interface
type ConnectorFunc func(ctx context.Context, opts Options) (Pool, error)

// Connect calls the wrapped function
func (f ConnectorFunc) Connect(ctx context.Context, opts Options) (Pool, error) {
	return f(ctx, opts)
}

// NewConnector returns the connector implementation for the given driver
func NewConnector(driver Driver) (Connector, error) {
	switch driver {
	case DriverPostgres:
		return pgxConnector{}, nil
	default:
		return nil, fmt.Errorf("driver %q: %w", driver, ErrUnsupportedDriver)
	}
}

// pgxConnector opens pgx connection pools
type pgxConnector struct{}

// Connect parses the options into a pool configuration, opens the pool
// and verifies it with a ping. A pool that fails the ping is closed
// before the error is returned, the caller never receives a half open pool.
func (pgxConnector) Connect(ctx context.Context, opts Options) (Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("parsing configuration for connection %q: %w", opts.Name, err)
	}
	applyPoolOptions(cfg, opts)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, wrapConnectError(opts, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectError(opts, err)
	}
	return pool, nil
}

// applyPoolOptions carries the pool tuning fields into the pgx configuration
func applyPoolOptions(cfg *pgxpool.Config, opts Options) {
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime.Std()
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime.Std()
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout.Std()
	}
}

func wrapConnectError(opts Options, err error) error {
	return fmt.Errorf("opening database connection %q: %w", opts.Name, err)
}
