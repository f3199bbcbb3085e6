// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: application service dependencies

package example

import (
	"context"

	"github.com/getoutreach/faucet"
	"github.com/getoutreach/faucet/example/service"
)

// BindingUserService is the binding name of the user service
const BindingUserService = "service.users"

// Service represents application service dependency container
type Service struct {
	app *Container
}

// Define resolves dependencies
func (c *Service) Define(ctx context.Context, cf *Config, a *Container) {
	c.app = a

	bind(a.Bindings, BindingUserService, func() (*service.UserService, error) {
		store, err := a.Database.UserStore()
		if err != nil {
			return nil, err
		}
		return service.NewUserService(store), nil
	})
}

// Users returns the user service
func (c *Service) Users() (*service.UserService, error) {
	return faucet.Resolve[*service.UserService](c.app.Bindings, BindingUserService)
}
