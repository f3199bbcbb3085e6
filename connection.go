// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the connection handle

package faucet

import (
	"context"
	"sync"
)

// Connection is an established database session handle.
// It is owned by whichever caller requested it and is closed exactly
// once, either explicitly or when the owning registry is torn down.
type Connection struct {
	name    string
	opts    Options
	pool    Pool
	manager *Manager

	closeOnce sync.Once
	closed    chan struct{}
}

func newConnection(opts Options, pool Pool) *Connection {
	c := &Connection{
		name:   opts.Name,
		opts:   opts,
		pool:   pool,
		closed: make(chan struct{}),
	}
	c.manager = newManager(c.name, pool)
	return c
}

// Name returns the registry name of the connection
func (c *Connection) Name() string {
	return c.name
}

// Options returns the options the connection was established with
func (c *Connection) Options() Options {
	return c.opts
}

// Pool exposes the underlying connection pool
func (c *Connection) Pool() Pool {
	return c.pool
}

// Manager returns the session facade bound to this connection
func (c *Connection) Manager() *Manager {
	return c.manager
}

// Ping verifies that the connection is still usable
func (c *Connection) Ping(ctx context.Context) error {
	if !c.IsOpen() {
		return ErrConnectionClosed
	}
	return c.pool.Ping(ctx)
}

// IsOpen reports whether the handle has not been closed yet.
// It does not dial the server, use Ping for a live check.
func (c *Connection) IsOpen() bool {
	select {
	case <-c.closed:
		return false
	default:
		return true
	}
}

// Close releases the underlying pool. Only the first call has an
// effect, later calls return nil as well.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.pool.Close()
	})
	return nil
}

// Closed returns a channel that is closed once the handle is closed
func (c *Connection) Closed() <-chan struct{} {
	return c.closed
}
