// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: application root dependency container
package example

import (
	"context"
	"errors"

	"github.com/getoutreach/faucet"
)

// Config represents a application configuration structure
type Config struct {
	Primary faucet.Options
	Replica faucet.Options
}

// Definer allows to redefine container on startup
type Definer = func(ctx context.Context, cf *Config, a *Container)

// Container represents root application dependency container
type Container struct {
	Boot     *faucet.Bootstrapper
	Bindings *faucet.Bindings
	Database *Database
	Service  *Service
	Workers  *Workers
}

// NewApplication returns instance of the root dependency container.
// Definers run before the containers claim their names, the first
// definition of a name wins.
func NewApplication(ctx context.Context, cf *Config, definers ...Definer) *Container {
	a := &Container{
		Boot:     faucet.NewBootstrapper(),
		Bindings: faucet.NewBindings(),
		Database: new(Database),
		Service:  new(Service),
		Workers:  new(Workers),
	}
	return faucet.DefineContainers(ctx, cf, definers, a,
		a.Database, a.Service, a.Workers,
	)
}

// bind registers a constructor unless the name is already taken
func bind[T any](b *faucet.Bindings, name string, build func() (T, error)) {
	err := faucet.Bind(b, name, build)
	if err != nil && !errors.Is(err, faucet.ErrDuplicateBinding) {
		panic(err)
	}
}
