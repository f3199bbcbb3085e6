// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: background workers keeping connections healthy

package example

import (
	"context"
	"time"

	"github.com/getoutreach/faucet"
)

// BindingPrimaryKeeper is the binding name of the primary connection keeper
const BindingPrimaryKeeper = "keeper.primary"

// Workers represents background worker dependency container
type Workers struct {
	app *Container
}

// Define resolves dependencies
func (c *Workers) Define(ctx context.Context, cf *Config, a *Container) {
	c.app = a

	bind(a.Bindings, BindingPrimaryKeeper, func() (*faucet.Keeper, error) {
		return faucet.NewKeeper(a.Boot, cf.Primary, &faucet.KeeperConfig{
			Interval: 15 * time.Second,
		}), nil
	})
}

// PrimaryKeeper returns the keeper supervising the primary connection
func (c *Workers) PrimaryKeeper() (*faucet.Keeper, error) {
	return faucet.Resolve[*faucet.Keeper](c.app.Bindings, BindingPrimaryKeeper)
}
