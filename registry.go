// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the named connection registry

package faucet

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Registry holds established connections keyed by name.
// It also acts as the root cleanup container, functions registered
// with Cleanup and CleanupError run once the registry is closed.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	cleanups    []func() error
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		connections: map[string]*Connection{},
	}
}

// Has reports whether a connection is registered under the given name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connections[name]
	return ok
}

// Get returns the connection registered under the given name
func (r *Registry) Get(name string) (*Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[name]
	if !ok {
		return nil, fmt.Errorf("connection %q: %w", name, ErrUnknownConnection)
	}
	return conn, nil
}

// Insert registers a connection under its name
func (r *Registry) Insert(conn *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.connections[conn.Name()]; ok {
		return fmt.Errorf("connection %q: %w", conn.Name(), ErrDuplicateConnection)
	}
	r.connections[conn.Name()] = conn
	return nil
}

// Remove unregisters and returns the connection under the given name.
// The connection is not closed, that stays the caller's responsibility.
func (r *Registry) Remove(name string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.connections[name]
	if ok {
		delete(r.connections, name)
	}
	return conn, ok
}

// Names returns the sorted names of all registered connections
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.connections)
	sort.Strings(names)
	return names
}

// Len returns the number of registered connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Cleanup registers a cleanup function
func (r *Registry) Cleanup(fn func()) {
	r.CleanupError(func() error {
		fn()
		return nil
	})
}

// CleanupError registers a cleanup function returning an error
func (r *Registry) CleanupError(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, fn)
}

// Close tears the registry down. All connections are closed in
// parallel, then the cleanup functions run in registration order and
// their errors are collected. The registry is empty afterwards and
// closing it again is a no-op.
func (r *Registry) Close() error {
	r.mu.Lock()
	connections := lo.Values(r.connections)
	cleanups := r.cleanups
	r.connections = map[string]*Connection{}
	r.cleanups = nil
	r.mu.Unlock()

	var g errgroup.Group
	for _, conn := range connections {
		g.Go(conn.Close)
	}

	errs := []error{}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	for _, cleanup := range cleanups {
		if err := cleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
