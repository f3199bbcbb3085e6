// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: env specific overrides
package example

import (
	"context"

	"github.com/getoutreach/faucet"
)

// WithLocalEnvironment redefines application dependency graph for local
// development where no replica runs, reads go to the primary
func WithLocalEnvironment(ctx context.Context, cf *Config, a *Container) {
	bind(a.Bindings, BindingReplica, func() (*faucet.Connection, error) {
		return faucet.Resolve[*faucet.Connection](a.Bindings, BindingPrimary)
	})
}

// WithVerboseLogging makes the bootstrapper report every retry attempt
func WithVerboseLogging(ctx context.Context, cf *Config, a *Container) {
	a.Boot = faucet.NewBootstrapper(
		faucet.WithLogger(faucet.NewConsoleLogger(true)),
	)
	cf.Primary.VerboseRetryLog = true
	cf.Replica.VerboseRetryLog = true
}
