// Copyright 2024 Outreach Corporation. All Rights Reserved.
// Description: services for example application

// Package service provides services for example application
package service

import (
	"context"
	"fmt"

	"github.com/getoutreach/faucet/example/contract"
)

// UserService serves user reads and writes
type UserService struct {
	store contract.UserStore
}

func NewUserService(store contract.UserStore) *UserService {
	return &UserService{
		store: store,
	}
}

func (s *UserService) Get(ctx context.Context, id int64) (*contract.User, error) {
	return s.store.Get(ctx, id)
}

func (s *UserService) Signup(ctx context.Context, email, name string) (*contract.User, error) {
	u, err := s.store.Create(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("can't create a user:%w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]contract.User, error) {
	return s.store.List(ctx)
}
