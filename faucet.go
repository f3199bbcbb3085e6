// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the connection bootstrapper

// Package faucet provides named database connections with a retrying bootstrapper, a connection registry and composition helpers
package faucet

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Bootstrapper establishes database connections and tracks them in a
// named registry. The zero configuration uses the driver based
// connector and a quiet console logger.
type Bootstrapper struct {
	registry  *Registry
	connector Connector
	logger    Logger
}

// BootstrapOption customizes a Bootstrapper
type BootstrapOption func(*Bootstrapper)

// WithRegistry makes the bootstrapper track connections in the given registry
func WithRegistry(r *Registry) BootstrapOption {
	return func(b *Bootstrapper) {
		b.registry = r
	}
}

// WithConnector pins the connector used for every connection
// regardless of the configured driver. Intended for tests and for
// callers bringing their own dialing logic.
func WithConnector(c Connector) BootstrapOption {
	return func(b *Bootstrapper) {
		b.connector = c
	}
}

// WithLogger sets the logger used by the bootstrapper
func WithLogger(l Logger) BootstrapOption {
	return func(b *Bootstrapper) {
		b.logger = l
	}
}

// NewBootstrapper returns a bootstrapper with its own empty registry
func NewBootstrapper(options ...BootstrapOption) *Bootstrapper {
	b := &Bootstrapper{
		registry: NewRegistry(),
		logger:   NewConsoleLogger(false),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Registry returns the registry owned by the bootstrapper
func (b *Bootstrapper) Registry() *Registry {
	return b.registry
}

// Logger returns the logger used by the bootstrapper
func (b *Bootstrapper) Logger() Logger {
	return b.logger
}

// Establish opens the configured connection, retrying failed attempts.
//
// With KeepAlive set and an open connection already registered under
// the same name the existing handle is returned without dialing.
// Otherwise the connector is invoked until it succeeds, the attempt
// budget is exhausted or the context ends. RetryAttempts of zero or
// less retries indefinitely, RetryDelay of zero retries immediately.
// The pause between attempts is a timed wait that also honors context
// cancellation.
//
// On success the connection is registered and returned. A stale closed
// handle of the same name is displaced, an open one makes Establish
// fail with ErrDuplicateConnection and the freshly dialed pool is
// closed again, no partial state is left behind.
func (b *Bootstrapper) Establish(ctx context.Context, opts Options) (*Connection, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options for connection %q: %w", opts.Name, err)
	}

	if opts.KeepAlive {
		if conn, err := b.registry.Get(opts.Name); err == nil && conn.IsOpen() {
			b.logger.Verbose("reusing open connection %q", opts.Name)
			return conn, nil
		}
	}

	connector := b.connector
	if connector == nil {
		c, err := NewConnector(opts.Driver)
		if err != nil {
			return nil, err
		}
		connector = c
	}

	var (
		delay    = opts.RetryDelay.Std()
		limited  = opts.RetryAttempts > 0
		attempts int
		lastErr  error
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, &ConnectionError{Name: opts.Name, Attempts: attempts, Err: joinErrors(err, lastErr)}
		}

		pool, err := connector.Connect(ctx, opts)
		attempts++
		if err == nil {
			return b.register(newConnection(opts, pool), attempts)
		}
		lastErr = err

		if limited && attempts >= opts.RetryAttempts {
			return nil, &ConnectionError{Name: opts.Name, Attempts: attempts, Err: lastErr}
		}
		if opts.VerboseRetryLog {
			b.logger.Error("unable to connect to %q: %v; retrying in %s (attempt %d)",
				opts.Name, err, delay, attempts)
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &ConnectionError{Name: opts.Name, Attempts: attempts, Err: joinErrors(ctx.Err(), lastErr)}
			case <-timer.C:
			}
		}
	}
}

// register inserts the freshly established connection into the
// registry, displacing a stale closed handle of the same name
func (b *Bootstrapper) register(conn *Connection, attempts int) (*Connection, error) {
	if existing, err := b.registry.Get(conn.Name()); err == nil && !existing.IsOpen() {
		b.registry.Remove(conn.Name())
	}
	if err := b.registry.Insert(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	b.logger.Verbose("connection %q established after %d attempt(s)", conn.Name(), attempts)
	return conn, nil
}

// joinErrors joins non nil errors, keeping single errors unwrapped
func joinErrors(err, last error) error {
	if last == nil {
		return err
	}
	return errors.Join(err, last)
}
