// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: database related dependencies
package example

import (
	"context"

	"github.com/getoutreach/faucet"
	"github.com/getoutreach/faucet/example/adapter/postgres"
	"github.com/getoutreach/faucet/example/contract"
)

// Binding names claimed by the database container
const (
	BindingPrimary   = "db.primary"
	BindingReplica   = "db.replica"
	BindingUserStore = "store.users"
)

// Database represents database related dependency container
type Database struct {
	app *Container
}

// Define resolves dependencies
func (c *Database) Define(ctx context.Context, cf *Config, a *Container) {
	c.app = a

	bind(a.Bindings, BindingPrimary, func() (*faucet.Connection, error) {
		opts := cf.Primary
		// a keeper may already hold this name, reuse its handle
		opts.KeepAlive = true
		return a.Boot.Establish(ctx, opts)
	})

	bind(a.Bindings, BindingReplica, func() (*faucet.Connection, error) {
		opts := cf.Replica
		opts.KeepAlive = true
		return a.Boot.Establish(ctx, opts)
	})

	bind(a.Bindings, BindingUserStore, func() (contract.UserStore, error) {
		primary, err := c.Primary()
		if err != nil {
			return nil, err
		}
		replica, err := c.Replica()
		if err != nil {
			return nil, err
		}
		return postgres.NewUserStore(primary, replica), nil
	})
}

// Primary returns the primary connection, establishing it on first use
func (c *Database) Primary() (*faucet.Connection, error) {
	return faucet.Resolve[*faucet.Connection](c.app.Bindings, BindingPrimary)
}

// Replica returns the replica connection, establishing it on first use
func (c *Database) Replica() (*faucet.Connection, error) {
	return faucet.Resolve[*faucet.Connection](c.app.Bindings, BindingReplica)
}

// UserStore returns the user persistence
func (c *Database) UserStore() (contract.UserStore, error) {
	return faucet.Resolve[contract.UserStore](c.app.Bindings, BindingUserStore)
}
